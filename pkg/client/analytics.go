package client

import (
	"context"
	"net/http"
)

type AnalyticsAPI struct{ c *Client }

// Dashboard returns the admin sales summary.
func (a *AnalyticsAPI) Dashboard(ctx context.Context) (*Analytics, error) {
	var out Analytics
	if err := a.c.do(ctx, http.MethodGet, "/analytics", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
