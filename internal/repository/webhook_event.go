package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stripe-billing-webhook/internal/model"
)

// WebhookEventRepository is an append-only audit log of processed events.
// It is never consulted before handling, so redelivered events are
// processed again.
type WebhookEventRepository interface {
	MarkProcessed(ctx context.Context, eventID, eventType string) error
}

type webhookEventRepoImpl struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepoImpl{db: db}
}

func (r *webhookEventRepoImpl) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	return r.db.WithContext(ctx).Create(&model.WebhookEvent{
		EventID:     eventID,
		EventType:   eventType,
		ProcessedAt: time.Now().UTC(),
	}).Error
}
