package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stripe-billing-webhook/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Payment{},
		&model.Credit{},
		&model.Subscription{},
		&model.WebhookEvent{},
	))

	return db
}

func TestUserRepositoryAssignsIDAndFindsByEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &model.User{Email: "someone@example.com"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	found, err := repo.FindByEmail(ctx, "someone@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCreditRepositorySetAmount(t *testing.T) {
	db := newTestDB(t)
	repo := NewCreditRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Credit{UserID: "u1", Amount: 2}))
	require.NoError(t, repo.SetAmount(ctx, "u1", 7))

	credit, err := repo.FindByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(7), credit.Amount)
	require.False(t, credit.UpdatedAt.IsZero())
}

func TestSubscriptionRepositoryLifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Subscription{
		StripeSubscriptionID: "sub_1",
		UserID:               "u1",
		Status:               "active",
	}))

	periodStart := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdatePeriod(ctx, "sub_1", "active", periodStart, periodEnd))

	sub, err := repo.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	require.Equal(t, periodEnd, sub.CurrentPeriodEnd.UTC())

	require.NoError(t, repo.UpdateStatus(ctx, "sub_1", "past_due", true, periodEnd))
	sub, err = repo.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	require.Equal(t, "past_due", sub.Status)
	require.True(t, sub.CancelAtPeriodEnd)

	require.NoError(t, repo.Cancel(ctx, "sub_1"))
	sub, err = repo.FindByStripeID(ctx, "sub_1")
	require.NoError(t, err)
	require.Equal(t, "canceled", sub.Status)
}

func TestSubscriptionRepositoryCancelZeroRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)

	require.NoError(t, repo.Cancel(context.Background(), "sub_unknown"))
}

func TestSubscriptionRepositoryDuplicateCreateFails(t *testing.T) {
	db := newTestDB(t)
	repo := NewSubscriptionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Subscription{
		StripeSubscriptionID: "sub_1",
		UserID:               "u1",
		Status:               "active",
	}))
	require.Error(t, repo.Create(ctx, &model.Subscription{
		StripeSubscriptionID: "sub_1",
		UserID:               "u1",
		Status:               "active",
	}))
}

func TestWebhookEventRepositoryMarkProcessed(t *testing.T) {
	db := newTestDB(t)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.MarkProcessed(ctx, "evt_1", "checkout.session.completed"))

	// Redelivery hits the primary key; the caller only logs this.
	require.Error(t, repo.MarkProcessed(ctx, "evt_1", "checkout.session.completed"))

	var record model.WebhookEvent
	require.NoError(t, db.First(&record, "event_id = ?", "evt_1").Error)
	require.Equal(t, "checkout.session.completed", record.EventType)
}

func TestPaymentRepositoryListByUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Payment{
		UserID: "u1", StripeCheckoutID: "cs_1", Amount: 500, Currency: "usd",
		Status: "succeeded", PaymentType: "one-time",
	}))
	require.NoError(t, repo.Create(ctx, &model.Payment{
		UserID: "u1", StripeCheckoutID: "in_1", Amount: 1500, Currency: "usd",
		Status: "succeeded", PaymentType: "subscription",
	}))
	require.NoError(t, repo.Create(ctx, &model.Payment{
		UserID: "u2", StripeCheckoutID: "cs_2", Amount: 100, Currency: "usd",
		Status: "succeeded", PaymentType: "one-time",
	}))

	payments, err := repo.ListByUserID(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, payments, 2)
}
