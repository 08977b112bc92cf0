package client

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"

	"stripe-billing-webhook/internal/config"
)

// Subscription is the slice of a stripe subscription this service cares
// about. Period bounds are unix seconds, as stripe reports them.
type Subscription struct {
	ID                 string
	CustomerID         string
	Status             string
	PriceID            string // price of the first line item
	CurrentPeriodStart int64
	CurrentPeriodEnd   int64
	CancelAtPeriodEnd  bool
}

type CheckoutParams struct {
	PriceID       string
	Quantity      int64
	Mode          string // payment, subscription
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

type StripeClient interface {
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (string, error)
}

type stripeClientImpl struct {
	sc *stripe.Client
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		sc: stripe.NewClient(stripeCfg.APIKey),
	}
}

func (c *stripeClientImpl) RetrieveSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	sub, err := c.sc.V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
	if err != nil {
		return nil, fmt.Errorf("stripe retrieve subscription %s: %w", subscriptionID, err)
	}

	out := &Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		out.CustomerID = sub.Customer.ID
	}
	// Since the 2025 API versions, period bounds live on the items.
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			out.PriceID = item.Price.ID
		}
		out.CurrentPeriodStart = item.CurrentPeriodStart
		out.CurrentPeriodEnd = item.CurrentPeriodEnd
	}

	return out, nil
}

func (c *stripeClientImpl) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_, err := c.sc.V1Subscriptions.Cancel(ctx, subscriptionID, nil)
	if err != nil {
		return fmt.Errorf("stripe cancel subscription %s: %w", subscriptionID, err)
	}
	return nil
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (string, error) {
	quantity := params.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	createParams := &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(params.Mode),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(params.PriceID),
				Quantity: stripe.Int64(quantity),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
	}
	if params.CustomerEmail != "" {
		createParams.CustomerEmail = stripe.String(params.CustomerEmail)
	}

	session, err := c.sc.V1CheckoutSessions.Create(ctx, createParams)
	if err != nil {
		return "", fmt.Errorf("stripe create checkout session: %w", err)
	}

	return session.URL, nil
}
