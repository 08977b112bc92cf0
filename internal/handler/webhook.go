package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v83/webhook"

	"stripe-billing-webhook/internal/apperr"
	"stripe-billing-webhook/internal/service"
)

type WebhookHandler struct {
	webhookService service.WebhookService
	webhookSecret  string
}

func NewWebhookHandler(webhookService service.WebhookService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		webhookSecret:  webhookSecret,
	}
}

// HandleStripeWebhook verifies the request signature, dispatches the event
// and maps service errors onto the transport response.
func (h *WebhookHandler) HandleStripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		return c.String(http.StatusBadRequest, "Missing Stripe signature")
	}

	// The signature covers the exact raw bytes, so the body must not pass
	// through any decoder first.
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "Failed to read request body")
	}

	event, err := webhook.ConstructEventWithOptions(body, signature, h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Error().Err(err).Msg("webhook signature verification failed")
		return c.String(http.StatusBadRequest, "Webhook signature verification failed: "+err.Error())
	}

	if err := h.webhookService.Process(ctx, &event); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}

// respondError is the only place service error kinds become status codes.
func respondError(c echo.Context, err error) error {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		log.Error().Err(err).Msg("webhook error")
		return c.String(http.StatusInternalServerError, "Webhook error: "+err.Error())
	}

	log.Error().Err(appErr.Err).
		Str("entity", appErr.Entity).
		Str("entity_id", appErr.EntityID).
		Msg(appErr.Message)

	switch appErr.Kind {
	case apperr.KindBadRequest:
		return c.String(http.StatusBadRequest, appErr.Message)
	case apperr.KindNotFound:
		return c.String(http.StatusNotFound, appErr.Message)
	default:
		return c.String(http.StatusInternalServerError, appErr.Message)
	}
}
