package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

// UserHandler handles profile and account administration endpoints.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

type updateProfileRequest struct {
	Name            *string         `json:"name,omitempty"`
	Phone           *string         `json:"phone,omitempty"`
	Address         *domain.Address `json:"address,omitempty"`
	CurrentPassword string          `json:"currentPassword,omitempty"`
	NewPassword     string          `json:"newPassword,omitempty" validate:"omitempty,min=6"`
}

type adminUpdateUserRequest struct {
	Name    *string         `json:"name,omitempty"`
	Phone   *string         `json:"phone,omitempty"`
	Address *domain.Address `json:"address,omitempty"`
	Role    *string         `json:"role,omitempty" validate:"omitempty,oneof=admin customer"`
}

type deleteUsersRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

type deleteUsersResponse struct {
	Deleted int64 `json:"deleted"`
}

// Me returns the caller's profile.
//
// @Summary      Get my profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	user, err := h.service.GetProfile(c.Request().Context(), viewer.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe changes the caller's profile. A password change requires the
// current password.
//
// @Summary      Update my profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile changes"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /users/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateProfile(c.Request().Context(), viewer.UserID, ports.UpdateProfileInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteMe removes the caller's account.
//
// @Summary      Delete my account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Router       /users/me [delete]
func (h *UserHandler) DeleteMe(c echo.Context) error {
	viewer, err := ctxViewer(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAccount(c.Request().Context(), viewer.UserID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "account deleted"})
}

// List returns a page of users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Partial match on name or email"
// @Param        role    query     string  false  "admin or customer"
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  ports.UserPage
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, limit, err := paging(c)
	if err != nil {
		return err
	}
	result, err := h.service.List(c.Request().Context(), ports.ListUsersFilter{
		Search: c.QueryParam("search"),
		Role:   c.QueryParam("role"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Get returns a user.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update changes a user's profile or role.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "User id"
// @Param        body  body      adminUpdateUserRequest  true  "Changes"
// @Success      200   {object}  domain.User
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req adminUpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.AdminUpdateUserInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Role:    req.Role,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes a user.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

// DeleteMany removes several users at once.
//
// @Summary      Bulk delete users
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      deleteUsersRequest  true  "User ids"
// @Success      200   {object}  deleteUsersResponse
// @Failure      400   {object}  map[string]string
// @Router       /users [delete]
func (h *UserHandler) DeleteMany(c echo.Context) error {
	var req deleteUsersRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.service.DeleteMany(c.Request().Context(), req.IDs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, deleteUsersResponse{Deleted: n})
}
