package payment

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/paymentprovider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) InsertPayment(ctx context.Context, userID int64, externalID string, amount int64, paidAt time.Time) (bool, error) {
	args := m.Called(ctx, userID, externalID, amount, paidAt)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) InsertInvoice(ctx context.Context, inv models.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}
func (m *RepoMock) MarkInvoicesPaid(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type LedgerMock struct{ mock.Mock }

func (m *LedgerMock) ActivatePaid(ctx context.Context, userID int64, period models.Period) (*time.Time, error) {
	args := m.Called(ctx, userID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

type DirectoryMock struct{ mock.Mock }

func (m *DirectoryMock) OnPaymentConfirmed(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreateInvoice(email, periodicity string) (*paymentprovider.CreateInvoiceResponse, error) {
	args := m.Called(email, periodicity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.CreateInvoiceResponse), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestConfirm_MalformedEvent(t *testing.T) {
	svc := New(new(RepoMock), new(LedgerMock), new(DirectoryMock), new(ProviderMock), newNoopLogger())

	_, err := svc.Confirm(context.Background(), models.PaymentEvent{Status: "success"})
	assert.ErrorIs(t, err, ErrMalformedEvent)

	// Событие без статуса тоже неполное, а не "чужой статус"
	_, err = svc.Confirm(context.Background(), models.PaymentEvent{UserID: 42})
	assert.ErrorIs(t, err, ErrMalformedEvent)
}

func TestConfirm_NonSuccessIsSkipped(t *testing.T) {
	repo := new(RepoMock)
	ledger := new(LedgerMock)
	svc := New(repo, ledger, new(DirectoryMock), new(ProviderMock), newNoopLogger())

	outcome, err := svc.Confirm(context.Background(), models.PaymentEvent{
		UserID: 42,
		Status: "failed",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmSkipped, outcome)
	repo.AssertNotCalled(t, "InsertPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	ledger.AssertNotCalled(t, "ActivatePaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_AppliesKnownPeriod(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	ledger := new(LedgerMock)
	directory := new(DirectoryMock)

	paidUntil := time.Now().AddDate(0, 0, 30)
	repo.On("InsertPayment", ctx, int64(42), "pay-1", int64(1000), mock.Anything).Return(true, nil)
	repo.On("MarkInvoicesPaid", ctx, int64(42)).Return(true, nil)
	ledger.On("ActivatePaid", ctx, int64(42), models.Period{Days: 30}).Return(&paidUntil, nil)
	directory.On("OnPaymentConfirmed", ctx, int64(42)).Return(nil)

	svc := New(repo, ledger, directory, new(ProviderMock), newNoopLogger())
	outcome, err := svc.Confirm(ctx, models.PaymentEvent{
		UserID:      42,
		Status:      "success",
		PaymentID:   "pay-1",
		Periodicity: "PERIOD_30_DAYS",
		Amount:      1000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmApplied, outcome)
	repo.AssertExpectations(t)
	ledger.AssertExpectations(t)
	directory.AssertExpectations(t)
}

func TestConfirm_UnknownPeriodicityGivesUnlimitedAccess(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	ledger := new(LedgerMock)
	directory := new(DirectoryMock)

	repo.On("InsertPayment", ctx, int64(42), "pay-2", int64(0), mock.Anything).Return(true, nil)
	repo.On("MarkInvoicesPaid", ctx, int64(42)).Return(false, nil)
	ledger.On("ActivatePaid", ctx, int64(42), models.Period{}).Return(nil, nil)
	directory.On("OnPaymentConfirmed", ctx, int64(42)).Return(nil)

	svc := New(repo, ledger, directory, new(ProviderMock), newNoopLogger())
	outcome, err := svc.Confirm(ctx, models.PaymentEvent{
		UserID:      42,
		Status:      "success",
		PaymentID:   "pay-2",
		Periodicity: "PERIOD_LIFETIME",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmApplied, outcome)
	ledger.AssertExpectations(t)
}

func TestConfirm_DuplicateByExternalID(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	ledger := new(LedgerMock)

	repo.On("InsertPayment", ctx, int64(42), "pay-1", int64(1000), mock.Anything).Return(false, nil)

	svc := New(repo, ledger, new(DirectoryMock), new(ProviderMock), newNoopLogger())
	outcome, err := svc.Confirm(ctx, models.PaymentEvent{
		UserID:      42,
		Status:      "success",
		PaymentID:   "pay-1",
		Periodicity: "PERIOD_30_DAYS",
		Amount:      1000,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmDuplicate, outcome)
	ledger.AssertNotCalled(t, "ActivatePaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirm_DuplicateWithoutExternalID(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	ledger := new(LedgerMock)

	repo.On("MarkInvoicesPaid", ctx, int64(42)).Return(false, nil)

	svc := New(repo, ledger, new(DirectoryMock), new(ProviderMock), newNoopLogger())
	outcome, err := svc.Confirm(ctx, models.PaymentEvent{
		UserID: 42,
		Status: "success",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ConfirmDuplicate, outcome)
	ledger.AssertNotCalled(t, "ActivatePaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartSubscription(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	provider := new(ProviderMock)

	provider.On("CreateInvoice", "user@example.com", "PERIOD_30_DAYS").
		Return(&paymentprovider.CreateInvoiceResponse{
			ID:         "inv-1",
			Status:     "in-progress",
			PaymentURL: "https://pay.example.com/inv-1",
		}, nil)
	repo.On("InsertInvoice", ctx, mock.MatchedBy(func(inv models.Invoice) bool {
		return inv.ID == "inv-1" && inv.UserID == 42 && inv.Status == models.InvoicePending
	})).Return(nil)

	svc := New(repo, new(LedgerMock), new(DirectoryMock), provider, newNoopLogger())
	url, err := svc.StartSubscription(ctx, models.InvoiceRequest{
		UserID:      42,
		Email:       "user@example.com",
		Periodicity: "PERIOD_30_DAYS",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/inv-1", url)
	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}
