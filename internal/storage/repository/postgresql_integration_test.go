package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/reels-funnel/internal/migrations"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

func setupStorage(t *testing.T) (*Storage, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx)
	require.NoError(t, err)

	storage, err := New(dsn)
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		storage.DB.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return storage, cleanup
}

func TestUpsertUser_KeepsFirstReferrer(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 100, nil))
	require.NoError(t, storage.UpsertUser(ctx, 200, nil))

	ref := int64(100)
	require.NoError(t, storage.UpsertUser(ctx, 300, &ref))

	// Повторный заход с другим реферером не перетирает первого
	other := int64(200)
	require.NoError(t, storage.UpsertUser(ctx, 300, &other))

	user, err := storage.GetUser(ctx, 300)
	require.NoError(t, err)
	require.NotNil(t, user.ReferrerID)
	require.Equal(t, int64(100), *user.ReferrerID)
}

func TestDeleteUser_NullsDanglingReferrals(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 100, nil))
	ref := int64(100)
	require.NoError(t, storage.UpsertUser(ctx, 300, &ref))

	// Удаление реферера не блокируется ссылками на него
	deleted, err := storage.DeleteUser(ctx, 100)
	require.NoError(t, err)
	require.True(t, deleted)

	user, err := storage.GetUser(ctx, 300)
	require.NoError(t, err)
	require.Nil(t, user.ReferrerID)
}

func TestInsertFreeTrial_SecondInsertIsNoop(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 1, nil))

	now := time.Now()
	inserted, err := storage.InsertFreeTrial(ctx, 1, now, now.AddDate(0, 0, 60))
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = storage.InsertFreeTrial(ctx, 1, now, now.AddDate(0, 0, 60))
	require.NoError(t, err)
	require.False(t, inserted)

	trial, err := storage.GetFreeTrial(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, trial)
	require.Equal(t, models.TrialActive, trial.Status)
}

func TestExpireTrials_MarksOnlyLapsed(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 1, nil))
	require.NoError(t, storage.UpsertUser(ctx, 2, nil))

	now := time.Now()
	_, err := storage.InsertFreeTrial(ctx, 1, now.AddDate(0, 0, -70), now.AddDate(0, 0, -10))
	require.NoError(t, err)
	_, err = storage.InsertFreeTrial(ctx, 2, now, now.AddDate(0, 0, 60))
	require.NoError(t, err)

	expired, err := storage.ExpireTrials(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), expired)

	ids, err := storage.ListEntitledUserIDs(ctx, now)
	require.NoError(t, err)
	require.Equal(t, []int64{2}, ids)
}

func TestPickUnseenReel_Rotation(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 1, nil))

	reelID, err := storage.InsertReel(ctx, "first", 99)
	require.NoError(t, err)
	require.NoError(t, storage.UpsertAsset(ctx, models.ReelAsset{
		ReelID: reelID, Kind: models.AssetVideo, FileRef: "file-video-1",
	}))

	// Рилс без видео не участвует в ротации
	noVideoID, err := storage.InsertReel(ctx, "captions only", 99)
	require.NoError(t, err)
	require.NoError(t, storage.UpsertAsset(ctx, models.ReelAsset{
		ReelID: noVideoID, Kind: models.AssetCaption, Text: "hello",
	}))

	bundle, err := storage.PickUnseenReel(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, bundle)
	require.Equal(t, reelID, bundle.Reel.ID)

	inserted, err := storage.InsertDelivery(ctx, models.Delivery{
		UserID: 1, ReelID: reelID, SentAt: time.Now(),
	})
	require.NoError(t, err)
	require.True(t, inserted)

	// Всё просмотрено
	bundle, err = storage.PickUnseenReel(ctx, 1)
	require.NoError(t, err)
	require.Nil(t, bundle)

	// Сброс открывает ротацию заново
	reset, err := storage.ResetDeliveries(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), reset)

	bundle, err = storage.PickUnseenReel(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, bundle)
	require.Equal(t, reelID, bundle.Reel.ID)
}

func TestInsertDelivery_Conflict(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 1, nil))
	reelID, err := storage.InsertReel(ctx, "first", 99)
	require.NoError(t, err)

	inserted, err := storage.InsertDelivery(ctx, models.Delivery{
		UserID: 1, ReelID: reelID, SentAt: time.Now(),
	})
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = storage.InsertDelivery(ctx, models.Delivery{
		UserID: 1, ReelID: reelID, SentAt: time.Now(),
	})
	require.NoError(t, err)
	require.False(t, inserted)
}

func TestInsertPayment_DuplicateExternalID(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 1, nil))

	inserted, err := storage.InsertPayment(ctx, 1, "pay-1", 1000, time.Now())
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = storage.InsertPayment(ctx, 1, "pay-1", 1000, time.Now())
	require.NoError(t, err)
	require.False(t, inserted)

	// Платежи без внешнего идентификатора не конфликтуют между собой
	inserted, err = storage.InsertPayment(ctx, 1, "", 500, time.Now())
	require.NoError(t, err)
	require.True(t, inserted)
	inserted, err = storage.InsertPayment(ctx, 1, "", 500, time.Now())
	require.NoError(t, err)
	require.True(t, inserted)

	sum, err := storage.SumPayments(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2000), sum)
}

func TestMarkInvoicesPaid_OneWayFlip(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 1, nil))

	require.NoError(t, storage.InsertInvoice(ctx, models.Invoice{
		ID:          "2b7c8d1e-0000-4000-8000-000000000001",
		UserID:      1,
		Email:       "user@example.com",
		Status:      models.InvoicePending,
		Periodicity: "PERIOD_30_DAYS",
		PaymentURL:  "https://pay.example.com/1",
	}))

	flipped, err := storage.MarkInvoicesPaid(ctx, 1)
	require.NoError(t, err)
	require.True(t, flipped)

	flipped, err = storage.MarkInvoicesPaid(ctx, 1)
	require.NoError(t, err)
	require.False(t, flipped)
}

func TestCancelSubscription(t *testing.T) {
	storage, cleanup := setupStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, storage.UpsertUser(ctx, 1, nil))

	paidUntil := time.Now().AddDate(0, 1, 0)
	require.NoError(t, storage.UpsertSubscriptionActive(ctx, 1, &paidUntil))

	canceled, err := storage.CancelSubscription(ctx, 1)
	require.NoError(t, err)
	require.True(t, canceled)

	canceled, err = storage.CancelSubscription(ctx, 1)
	require.NoError(t, err)
	require.False(t, canceled)

	sub, err := storage.GetSubscription(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, sub)
	require.Equal(t, models.SubscriptionCanceled, sub.Status)
}
