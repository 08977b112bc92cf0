package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string `gorm:"primaryKey;size:36;not null"`
	Email     string `gorm:"size:255;uniqueIndex;not null"`
	Name      string `gorm:"size:255"`
	CreatedAt time.Time
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Payment is an append-only audit record, one row per settled charge event.
type Payment struct {
	ID               uint   `gorm:"primaryKey"`
	UserID           string `gorm:"size:36;index;not null"`
	StripeCheckoutID string `gorm:"size:128;index;not null"` // checkout session id or invoice id
	Amount           int64  `gorm:"not null"`                // smallest currency unit (cents)
	Currency         string `gorm:"size:8;not null"`
	Status           string `gorm:"size:32;not null"`       // succeeded, failed
	PaymentType      string `gorm:"size:32;index;not null"` // one-time, subscription
	CreatedAt        time.Time
}

// Credit is a running balance, exactly one row per user.
type Credit struct {
	UserID    string `gorm:"primaryKey;size:36;not null"`
	Amount    int64  `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Subscription struct {
	StripeSubscriptionID string `gorm:"primaryKey;size:128;not null"`
	UserID               string `gorm:"size:36;index;not null"`
	StripeCustomerID     string `gorm:"size:128;index"`
	Status               string `gorm:"size:32;not null"` // mirrors stripe's lifecycle (active, past_due, canceled, ...)
	PriceID              string `gorm:"size:128"`
	CurrentPeriodStart   time.Time
	CurrentPeriodEnd     time.Time
	CancelAtPeriodEnd    bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// WebhookEvent records processed events for auditing. It is intentionally
// not consulted before handling: redelivered events are processed again.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
