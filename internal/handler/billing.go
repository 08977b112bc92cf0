package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"stripe-billing-webhook/internal/dto"
	"stripe-billing-webhook/internal/service"
)

type BillingHandler struct {
	billingService service.BillingService
}

func NewBillingHandler(billingService service.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

func userIDFromContext(c echo.Context) (string, error) {
	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
	}
	return userID, nil
}

func (h *BillingHandler) CreateCheckout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	url, err := h.billingService.CreateCheckoutSession(ctx, userID, req.PriceID, req.Quantity, req.Mode)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.CheckoutResponse{
		CheckoutURL: url,
	})
}

func (h *BillingHandler) GetCredits(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	amount, err := h.billingService.GetCredits(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.CreditsResponse{Amount: amount})
}

func (h *BillingHandler) UseCredits(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.UseCreditsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	balance, err := h.billingService.UseCredits(ctx, userID, req.Amount)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.CreditsResponse{Amount: balance})
}

func (h *BillingHandler) GetSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	status, err := h.billingService.GetSubscription(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	resp := &dto.SubscriptionResponse{Active: status.Active}
	if sub := status.Subscription; sub != nil {
		resp.SubscriptionID = sub.StripeSubscriptionID
		resp.Status = sub.Status
		resp.PriceID = sub.PriceID
		resp.CancelAtPeriodEnd = sub.CancelAtPeriodEnd
		resp.CurrentPeriodStart = sub.CurrentPeriodStart.UTC().Format(time.RFC3339)
		resp.CurrentPeriodEnd = sub.CurrentPeriodEnd.UTC().Format(time.RFC3339)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *BillingHandler) CancelSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	if err := h.billingService.CancelSubscription(ctx, userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "canceled"})
}
