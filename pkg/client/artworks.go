package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type ArtworksAPI struct{ c *Client }

type ArtworkInput struct {
	Title       string
	Description string
	// IsPredefined publishes the artwork to every customer. Admin only.
	IsPredefined bool
}

// List returns the caller's uploads and the predefined gallery. A non-nil
// predefined narrows the result to one of the two.
func (a *ArtworksAPI) List(ctx context.Context, predefined *bool) ([]Artwork, error) {
	v := url.Values{}
	if predefined != nil {
		v.Set("predefined", strconv.FormatBool(*predefined))
	}
	var out []Artwork
	if err := a.c.do(ctx, http.MethodGet, "/artworks", v, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *ArtworksAPI) Get(ctx context.Context, id string) (*Artwork, error) {
	var out Artwork
	if err := a.c.do(ctx, http.MethodGet, "/artworks/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create uploads an artwork. At least one file is required.
func (a *ArtworksAPI) Create(ctx context.Context, in ArtworkInput, files ...File) (*Artwork, error) {
	fields := map[string]string{"title": in.Title}
	if in.Description != "" {
		fields["description"] = in.Description
	}
	if in.IsPredefined {
		fields["isPredefined"] = "true"
	}
	var out Artwork
	if err := a.c.upload(ctx, http.MethodPost, "/artworks", fields, "file", files, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *ArtworksAPI) Delete(ctx context.Context, id string) error {
	return a.c.do(ctx, http.MethodDelete, "/artworks/"+url.PathEscape(id), nil, nil, nil)
}
