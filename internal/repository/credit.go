package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stripe-billing-webhook/internal/model"
)

type CreditRepository interface {
	FindByUserID(ctx context.Context, userID string) (*model.Credit, error)
	Create(ctx context.Context, credit *model.Credit) error
	SetAmount(ctx context.Context, userID string, amount int64) error
}

type creditRepoImpl struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepoImpl{
		db: db,
	}
}

func (r *creditRepoImpl) FindByUserID(ctx context.Context, userID string) (*model.Credit, error) {
	var credit model.Credit
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&credit).Error

	if err != nil {
		return nil, err
	}

	return &credit, nil
}

func (r *creditRepoImpl) Create(ctx context.Context, credit *model.Credit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

func (r *creditRepoImpl) SetAmount(ctx context.Context, userID string, amount int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Credit{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"amount":     amount,
			"updated_at": time.Now().UTC(),
		}).Error
}
