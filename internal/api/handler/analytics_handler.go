package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/core/ports"
)

type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Dashboard returns the admin dashboard summary.
//
// @Summary      Dashboard analytics
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Analytics
// @Router       /analytics [get]
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	summary, err := h.service.Dashboard(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
