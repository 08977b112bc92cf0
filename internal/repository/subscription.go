package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stripe-billing-webhook/internal/model"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	FindByStripeID(ctx context.Context, subscriptionID string) (*model.Subscription, error)
	FindLatestByUserID(ctx context.Context, userID string) (*model.Subscription, error)
	UpdatePeriod(ctx context.Context, subscriptionID, status string, periodStart, periodEnd time.Time) error
	UpdateStatus(ctx context.Context, subscriptionID, status string, cancelAtPeriodEnd bool, periodEnd time.Time) error
	Cancel(ctx context.Context, subscriptionID string) error
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{
		db: db,
	}
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) FindByStripeID(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", subscriptionID).
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) FindLatestByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&sub).Error

	if err != nil {
		return nil, err
	}

	return &sub, nil
}

// UpdatePeriod overwrites status and both period bounds from a freshly
// fetched stripe subscription.
func (r *subscriptionRepoImpl) UpdatePeriod(ctx context.Context, subscriptionID, status string, periodStart, periodEnd time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("stripe_subscription_id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"status":               status,
			"current_period_start": periodStart,
			"current_period_end":   periodEnd,
			"updated_at":           time.Now().UTC(),
		}).Error
}

func (r *subscriptionRepoImpl) UpdateStatus(ctx context.Context, subscriptionID, status string, cancelAtPeriodEnd bool, periodEnd time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("stripe_subscription_id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"status":               status,
			"cancel_at_period_end": cancelAtPeriodEnd,
			"current_period_end":   periodEnd,
			"updated_at":           time.Now().UTC(),
		}).Error
}

// Cancel marks the row canceled. Matching zero rows is not an error.
func (r *subscriptionRepoImpl) Cancel(ctx context.Context, subscriptionID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("stripe_subscription_id = ?", subscriptionID).
		Updates(map[string]interface{}{
			"status":     "canceled",
			"updated_at": time.Now().UTC(),
		}).Error
}
