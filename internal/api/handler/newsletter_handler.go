package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/printcraft/storefront/internal/core/ports"
)

// NewsletterHandler handles subscriptions and broadcasts.
type NewsletterHandler struct {
	service ports.NewsletterService
}

func NewNewsletterHandler(service ports.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{service: service}
}

type subscriptionRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type sendNewsletterRequest struct {
	Subject string `json:"subject" validate:"required"`
	HTML    string `json:"html" validate:"required"`
}

type sendNewsletterResponse struct {
	Message    string `json:"message"`
	Recipients int    `json:"recipients"`
}

// Subscribe adds an email to the mailing list.
//
// @Summary      Subscribe to the newsletter
// @Tags         newsletter
// @Accept       json
// @Produce      json
// @Param        body  body      subscriptionRequest  true  "Email"
// @Success      201   {object}  domain.Subscriber
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /newsletter/subscribe [post]
func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	var req subscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	sub, err := h.service.Subscribe(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sub)
}

// Unsubscribe removes an email from the mailing list.
//
// @Summary      Unsubscribe from the newsletter
// @Tags         newsletter
// @Accept       json
// @Produce      json
// @Param        body  body      subscriptionRequest  true  "Email"
// @Success      200   {object}  messageResponse
// @Failure      404   {object}  map[string]string
// @Router       /newsletter/unsubscribe [post]
func (h *NewsletterHandler) Unsubscribe(c echo.Context) error {
	var req subscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.service.Unsubscribe(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "unsubscribed"})
}

// Send schedules a broadcast to every subscriber.
//
// @Summary      Send a newsletter
// @Tags         newsletter
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sendNewsletterRequest  true  "Subject and HTML body"
// @Success      202   {object}  sendNewsletterResponse
// @Failure      400   {object}  map[string]string
// @Router       /newsletter/send [post]
func (h *NewsletterHandler) Send(c echo.Context) error {
	var req sendNewsletterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	n, err := h.service.Send(c.Request().Context(), req.Subject, req.HTML)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, sendNewsletterResponse{Message: "newsletter scheduled", Recipients: n})
}

// Subscribers returns a page of subscribers.
//
// @Summary      List subscribers
// @Tags         newsletter
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size"
// @Success      200    {object}  ports.SubscriberPage
// @Router       /newsletter/subscribers [get]
func (h *NewsletterHandler) Subscribers(c echo.Context) error {
	page, limit, err := paging(c)
	if err != nil {
		return err
	}
	result, err := h.service.ListSubscribers(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
