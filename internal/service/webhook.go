package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v83"
	"gorm.io/gorm"

	"stripe-billing-webhook/internal/apperr"
	"stripe-billing-webhook/internal/client"
	"stripe-billing-webhook/internal/model"
	"stripe-billing-webhook/internal/repository"
)

// defaultMinorUnitsPerCredit converts settled amounts into credits:
// 1 credit per 100 minor units (1 credit per dollar for USD).
const defaultMinorUnitsPerCredit = 100

// WebhookService reconciles verified stripe events into payment, credit
// and subscription records.
type WebhookService interface {
	Process(ctx context.Context, event *stripe.Event) error
}

type webhookServiceImpl struct {
	stripeClient        client.StripeClient
	userRepo            repository.UserRepository
	paymentRepo         repository.PaymentRepository
	creditRepo          repository.CreditRepository
	subscriptionRepo    repository.SubscriptionRepository
	webhookEventRepo    repository.WebhookEventRepository
	minorUnitsPerCredit int64
}

func NewWebhookService(
	stripeClient client.StripeClient,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	creditRepo repository.CreditRepository,
	subscriptionRepo repository.SubscriptionRepository,
	webhookEventRepo repository.WebhookEventRepository,
) WebhookService {
	return &webhookServiceImpl{
		stripeClient:        stripeClient,
		userRepo:            userRepo,
		paymentRepo:         paymentRepo,
		creditRepo:          creditRepo,
		subscriptionRepo:    subscriptionRepo,
		webhookEventRepo:    webhookEventRepo,
		minorUnitsPerCredit: defaultMinorUnitsPerCredit,
	}
}

func (s *webhookServiceImpl) Process(ctx context.Context, event *stripe.Event) error {
	log.Info().Str("event_id", event.ID).Str("event_type", string(event.Type)).
		Msg("processing webhook event")

	var err error
	switch event.Type {
	case "checkout.session.completed":
		err = s.handleCheckoutCompleted(ctx, event)
	case "invoice.payment_succeeded":
		err = s.handleInvoicePaymentSucceeded(ctx, event)
	case "customer.subscription.updated":
		err = s.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		err = s.handleSubscriptionDeleted(ctx, event)
	default:
		// Unrecognized event types are acknowledged as no-ops.
		return nil
	}

	if err != nil {
		return err
	}

	s.markProcessed(ctx, event)
	return nil
}

// markProcessed appends to the audit log. Failures (including primary-key
// conflicts on redelivery) never affect the response.
func (s *webhookServiceImpl) markProcessed(ctx context.Context, event *stripe.Event) {
	if err := s.webhookEventRepo.MarkProcessed(ctx, event.ID, string(event.Type)); err != nil {
		log.Warn().Err(err).Str("event_id", event.ID).Msg("failed to record processed event")
	}
}

func (s *webhookServiceImpl) handleCheckoutCompleted(ctx context.Context, event *stripe.Event) error {
	var session model.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return apperr.Internal("failed to decode checkout session", err)
	}

	if session.CustomerEmail == "" {
		log.Error().Str("checkout_id", session.ID).Msg("no customer email in session")
		return apperr.BadRequest("No customer email in session")
	}

	log.Info().Str("email", session.CustomerEmail).Msg("checkout completed")

	user, err := s.userRepo.FindByEmail(ctx, session.CustomerEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("user", session.CustomerEmail, "User not found")
		}
		return apperr.Dependency("Error finding user", err)
	}

	switch session.Mode {
	case "payment":
		return s.handleOneTimePayment(ctx, user.ID, &session)
	case "subscription":
		return s.handleSubscriptionCheckout(ctx, user.ID, &session)
	default:
		// Other modes (e.g. setup) require no action.
		return nil
	}
}

func (s *webhookServiceImpl) handleOneTimePayment(ctx context.Context, userID string, session *model.CheckoutSession) error {
	err := s.paymentRepo.Create(ctx, &model.Payment{
		UserID:           userID,
		StripeCheckoutID: session.ID,
		Amount:           session.AmountTotal,
		Currency:         session.Currency,
		Status:           "succeeded",
		PaymentType:      "one-time",
	})
	if err != nil {
		return apperr.Dependency("Error creating payment record", err)
	}

	if session.AmountTotal <= 0 {
		return nil
	}

	creditAmount := session.AmountTotal / s.minorUnitsPerCredit

	// Read-then-write on purpose: concurrent checkouts for the same user
	// can lose an update here (see DESIGN.md).
	credit, err := s.creditRepo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Dependency("Error reading credits", err)
	}

	if credit != nil {
		if err := s.creditRepo.SetAmount(ctx, userID, credit.Amount+creditAmount); err != nil {
			return apperr.Dependency("Error updating credits", err)
		}
	} else {
		err := s.creditRepo.Create(ctx, &model.Credit{
			UserID: userID,
			Amount: creditAmount,
		})
		if err != nil {
			return apperr.Dependency("Error inserting credits", err)
		}
	}

	log.Info().Int64("credits", creditAmount).Str("user_id", userID).Msg("added credits")
	return nil
}

func (s *webhookServiceImpl) handleSubscriptionCheckout(ctx context.Context, userID string, session *model.CheckoutSession) error {
	subscriptionID := session.Subscription.ID()
	if subscriptionID == "" {
		return nil
	}

	sub, err := s.stripeClient.RetrieveSubscription(ctx, subscriptionID)
	if err != nil {
		return apperr.Dependency("Error retrieving subscription", err)
	}

	err = s.subscriptionRepo.Create(ctx, &model.Subscription{
		StripeSubscriptionID: subscriptionID,
		UserID:               userID,
		StripeCustomerID:     session.Customer.ID(),
		Status:               sub.Status,
		PriceID:              sub.PriceID,
		CurrentPeriodStart:   time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:     time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	})
	if err != nil {
		return apperr.Dependency("Error creating subscription record", err)
	}

	log.Info().Str("subscription_id", subscriptionID).Str("user_id", userID).
		Msg("created subscription record")
	return nil
}

func (s *webhookServiceImpl) handleInvoicePaymentSucceeded(ctx context.Context, event *stripe.Event) error {
	var invoice model.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return apperr.Internal("failed to decode invoice", err)
	}

	// Standalone invoices carry no subscription and are ignored.
	subscriptionID := invoice.Subscription.ID()
	if subscriptionID == "" {
		return nil
	}

	sub, err := s.stripeClient.RetrieveSubscription(ctx, subscriptionID)
	if err != nil {
		return apperr.Dependency("Error retrieving subscription", err)
	}

	dbSub, err := s.subscriptionRepo.FindByStripeID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("subscription", subscriptionID, "Subscription not found")
		}
		return apperr.Dependency("Error finding subscription", err)
	}

	// Always overwrite from the freshly fetched subscription, not the invoice.
	err = s.subscriptionRepo.UpdatePeriod(ctx, subscriptionID, sub.Status,
		time.Unix(sub.CurrentPeriodStart, 0).UTC(),
		time.Unix(sub.CurrentPeriodEnd, 0).UTC())
	if err != nil {
		return apperr.Dependency("Error updating subscription", err)
	}

	log.Info().Str("subscription_id", subscriptionID).Str("user_id", dbSub.UserID).
		Msg("updated subscription from invoice")

	err = s.paymentRepo.Create(ctx, &model.Payment{
		UserID:           dbSub.UserID,
		StripeCheckoutID: invoice.ID,
		Amount:           invoice.AmountPaid,
		Currency:         invoice.Currency,
		Status:           "succeeded",
		PaymentType:      "subscription",
	})
	if err != nil {
		return apperr.Dependency("Error creating payment record", err)
	}

	return nil
}

func (s *webhookServiceImpl) handleSubscriptionUpdated(ctx context.Context, event *stripe.Event) error {
	var subEvent model.SubscriptionEvent
	if err := json.Unmarshal(event.Data.Raw, &subEvent); err != nil {
		return apperr.Internal("failed to decode subscription", err)
	}

	if _, err := s.subscriptionRepo.FindByStripeID(ctx, subEvent.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("subscription", subEvent.ID, "Subscription not found")
		}
		return apperr.Dependency("Error finding subscription", err)
	}

	err := s.subscriptionRepo.UpdateStatus(ctx, subEvent.ID, subEvent.Status,
		subEvent.CancelAtPeriodEnd,
		time.Unix(subEvent.CurrentPeriodEnd, 0).UTC())
	if err != nil {
		return apperr.Dependency("Error updating subscription", err)
	}

	log.Info().Str("subscription_id", subEvent.ID).Str("status", subEvent.Status).
		Msg("updated subscription")
	return nil
}

func (s *webhookServiceImpl) handleSubscriptionDeleted(ctx context.Context, event *stripe.Event) error {
	var subEvent model.SubscriptionEvent
	if err := json.Unmarshal(event.Data.Raw, &subEvent); err != nil {
		return apperr.Internal("failed to decode subscription", err)
	}

	if err := s.subscriptionRepo.Cancel(ctx, subEvent.ID); err != nil {
		return apperr.Dependency("Error updating subscription", err)
	}

	log.Info().Str("subscription_id", subEvent.ID).Msg("marked subscription as canceled")
	return nil
}
