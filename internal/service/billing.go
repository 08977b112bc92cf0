package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"stripe-billing-webhook/internal/apperr"
	"stripe-billing-webhook/internal/client"
	"stripe-billing-webhook/internal/config"
	"stripe-billing-webhook/internal/model"
	"stripe-billing-webhook/internal/repository"
)

// SubscriptionStatus is a user-facing view of the most recent subscription.
type SubscriptionStatus struct {
	Subscription *model.Subscription
	Active       bool
}

type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID string, priceID string, quantity int64, mode string) (string, error)
	GetCredits(ctx context.Context, userID string) (int64, error)
	UseCredits(ctx context.Context, userID string, amount int64) (int64, error)
	GetSubscription(ctx context.Context, userID string) (*SubscriptionStatus, error)
	CancelSubscription(ctx context.Context, userID string) error
}

type billingServiceImpl struct {
	stripeClient     client.StripeClient
	stripeCfg        *config.Stripe
	userRepo         repository.UserRepository
	creditRepo       repository.CreditRepository
	subscriptionRepo repository.SubscriptionRepository
}

func NewBillingService(
	stripeClient client.StripeClient,
	stripeCfg *config.Stripe,
	userRepo repository.UserRepository,
	creditRepo repository.CreditRepository,
	subscriptionRepo repository.SubscriptionRepository,
) BillingService {
	return &billingServiceImpl{
		stripeClient:     stripeClient,
		stripeCfg:        stripeCfg,
		userRepo:         userRepo,
		creditRepo:       creditRepo,
		subscriptionRepo: subscriptionRepo,
	}
}

func (s *billingServiceImpl) CreateCheckoutSession(ctx context.Context, userID string, priceID string, quantity int64, mode string) (string, error) {
	if priceID == "" {
		priceID = s.stripeCfg.PriceID
	}
	if priceID == "" {
		return "", apperr.BadRequest("no price id configured")
	}
	if mode == "" {
		mode = "subscription"
	}
	if mode != "payment" && mode != "subscription" {
		return "", apperr.BadRequest(fmt.Sprintf("invalid checkout mode %q", mode))
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("user", userID, "User not found")
		}
		return "", apperr.Dependency("Error finding user", err)
	}

	url, err := s.stripeClient.CreateCheckoutSession(ctx, &client.CheckoutParams{
		PriceID:       priceID,
		Quantity:      quantity,
		Mode:          mode,
		CustomerEmail: user.Email,
		SuccessURL:    s.stripeCfg.SuccessURL,
		CancelURL:     s.stripeCfg.CancelURL,
	})
	if err != nil {
		return "", apperr.Dependency("Error creating checkout session", err)
	}

	log.Info().Str("user_id", userID).Str("price_id", priceID).Str("mode", mode).
		Msg("created checkout session")
	return url, nil
}

// GetCredits returns the user's balance, creating a zero-amount row on
// first read.
func (s *billingServiceImpl) GetCredits(ctx context.Context, userID string) (int64, error) {
	credit, err := s.creditRepo.FindByUserID(ctx, userID)
	if err == nil {
		return credit.Amount, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.Dependency("Error reading credits", err)
	}

	err = s.creditRepo.Create(ctx, &model.Credit{
		UserID: userID,
		Amount: 0,
	})
	if err != nil {
		return 0, apperr.Dependency("Error inserting credits", err)
	}

	return 0, nil
}

func (s *billingServiceImpl) UseCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, apperr.BadRequest("credit amount must be positive")
	}

	balance, err := s.GetCredits(ctx, userID)
	if err != nil {
		return 0, err
	}

	if balance < amount {
		return balance, apperr.BadRequest("insufficient credits")
	}

	newBalance := balance - amount
	if err := s.creditRepo.SetAmount(ctx, userID, newBalance); err != nil {
		return balance, apperr.Dependency("Error updating credits", err)
	}

	log.Info().Str("user_id", userID).Int64("used", amount).Int64("balance", newBalance).
		Msg("used credits")
	return newBalance, nil
}

func (s *billingServiceImpl) GetSubscription(ctx context.Context, userID string) (*SubscriptionStatus, error) {
	sub, err := s.subscriptionRepo.FindLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &SubscriptionStatus{}, nil
		}
		return nil, apperr.Dependency("Error finding subscription", err)
	}

	active := sub.Status == "active" && sub.CurrentPeriodEnd.After(time.Now().UTC())

	return &SubscriptionStatus{
		Subscription: sub,
		Active:       active,
	}, nil
}

func (s *billingServiceImpl) CancelSubscription(ctx context.Context, userID string) error {
	sub, err := s.subscriptionRepo.FindLatestByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("subscription", userID, "Subscription not found")
		}
		return apperr.Dependency("Error finding subscription", err)
	}

	if err := s.stripeClient.CancelSubscription(ctx, sub.StripeSubscriptionID); err != nil {
		return apperr.Dependency("Error canceling subscription", err)
	}

	if err := s.subscriptionRepo.Cancel(ctx, sub.StripeSubscriptionID); err != nil {
		return apperr.Dependency("Error updating subscription", err)
	}

	log.Info().Str("subscription_id", sub.StripeSubscriptionID).Str("user_id", userID).
		Msg("canceled subscription")
	return nil
}
