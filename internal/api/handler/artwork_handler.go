package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// ArtworkHandler handles artwork uploads and browsing.
type ArtworkHandler struct {
	service ports.ArtworkService
}

func NewArtworkHandler(service ports.ArtworkService) *ArtworkHandler {
	return &ArtworkHandler{service: service}
}

// List returns the predefined artworks and the caller's own uploads.
// Admins see every artwork.
//
// @Summary      List artworks
// @Tags         artworks
// @Produce      json
// @Security     BearerAuth
// @Param        predefined  query  boolean  false  "Only predefined (true) or only uploads (false)"
// @Success      200  {array}  domain.Artwork
// @Router       /artworks [get]
func (h *ArtworkHandler) List(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	predefined, err := queryBool(c, "predefined")
	if err != nil {
		return err
	}
	artworks, err := h.service.List(c.Request().Context(), ports.ListArtworksFilter{Viewer: viewer, Predefined: predefined})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artworks)
}

// Get returns an artwork visible to the caller.
//
// @Summary      Get an artwork
// @Tags         artworks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Artwork id"
// @Success      200  {object}  domain.Artwork
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /artworks/{id} [get]
func (h *ArtworkHandler) Get(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	artwork, err := h.service.Get(c.Request().Context(), c.Param("id"), viewer)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, artwork)
}

// Create uploads an artwork. isPredefined is honoured for admins only.
//
// @Summary      Upload an artwork
// @Tags         artworks
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        title         formData  string   true   "Title"
// @Param        description   formData  string   false  "Description"
// @Param        isPredefined  formData  boolean  false  "Publish to every customer (admin only)"
// @Param        file          formData  file     true   "Artwork file"
// @Success      201  {object}  domain.Artwork
// @Failure      400  {object}  map[string]string
// @Failure      408  {object}  map[string]string
// @Router       /artworks [post]
func (h *ArtworkHandler) Create(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	if !isMultipart(c) {
		return fmt.Errorf("%w: artworks must be uploaded as multipart/form-data", domain.ErrInvalidInput)
	}

	in := ports.ArtworkInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}
	if raw := c.FormValue("isPredefined"); raw != "" {
		if in.IsPredefined, err = strconv.ParseBool(raw); err != nil {
			return fmt.Errorf("%w: isPredefined must be true or false", domain.ErrInvalidInput)
		}
	}

	uploads, closeUploads, err := formUploads(c, "file", "media")
	if err != nil {
		return err
	}
	defer closeUploads()

	artwork, err := h.service.Create(c.Request().Context(), in, viewer, uploads)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, artwork)
}

// Delete removes an artwork owned by the caller, or any artwork for admins.
//
// @Summary      Delete an artwork
// @Tags         artworks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Artwork id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /artworks/{id} [delete]
func (h *ArtworkHandler) Delete(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), viewer); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "artwork deleted"})
}
