// Package payment обрабатывает события платёжного шлюза и выставляет счета.
// Повторные доставки одного события не продлевают подписку дважды.
package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/paymentprovider"
)

// ErrMalformedEvent возвращается для события без идентификатора пользователя.
// Такое событие нельзя обработать и нет смысла доставлять повторно.
var ErrMalformedEvent = errors.New("malformed payment event")

// statusSuccess единственный статус события, ведущий к продлению подписки.
const statusSuccess = "success"

// periods сроки продления по коду тарифа. Неизвестный код означает
// бессрочный доступ.
var periods = map[string]models.Period{
	"PERIOD_30_DAYS": {Days: 30},
	"PERIOD_90_DAYS": {Days: 90},
}

// Repository определяет методы журнала платежей и счетов.
type Repository interface {
	// InsertPayment записывает платёж, false при повторном внешнем идентификаторе.
	InsertPayment(ctx context.Context, userID int64, externalID string, amount int64, paidAt time.Time) (bool, error)
	// InsertInvoice сохраняет выставленный счёт.
	InsertInvoice(ctx context.Context, inv models.Invoice) error
	// MarkInvoicesPaid переводит ожидающие счета пользователя в paid.
	MarkInvoicesPaid(ctx context.Context, userID int64) (bool, error)
}

// Ledger продление подписки после подтверждения оплаты.
type Ledger interface {
	ActivatePaid(ctx context.Context, userID int64, period models.Period) (*time.Time, error)
}

// Directory уведомление о подтверждённой оплате для смены роли.
type Directory interface {
	OnPaymentConfirmed(ctx context.Context, userID int64) error
}

// InvoiceProvider клиент платёжного шлюза.
type InvoiceProvider interface {
	CreateInvoice(email, periodicity string) (*paymentprovider.CreateInvoiceResponse, error)
}

// Service реализует обработку платёжных событий.
type Service struct {
	repo      Repository
	ledger    Ledger
	directory Directory
	provider  InvoiceProvider
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, ledger Ledger, directory Directory, provider InvoiceProvider, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		directory: directory,
		provider:  provider,
		log:       log,
	}
}

// Confirm обрабатывает событие платёжного шлюза. События с чужим статусом
// молча пропускаются, повторные доставки распознаются по внешнему
// идентификатору платежа либо по уже закрытым счетам пользователя.
func (s *Service) Confirm(ctx context.Context, event models.PaymentEvent) (models.ConfirmOutcome, error) {
	if event.UserID == 0 || event.Status == "" {
		return "", ErrMalformedEvent
	}
	if event.Status != statusSuccess {
		s.log.Info("skipped payment event",
			slog.Int64("user_id", event.UserID), slog.String("status", event.Status))
		return models.ConfirmSkipped, nil
	}

	now := time.Now()
	if event.PaymentID != "" {
		inserted, err := s.repo.InsertPayment(ctx, event.UserID, event.PaymentID, event.Amount, now)
		if err != nil {
			return "", err
		}
		if !inserted {
			s.log.Info("duplicate payment event",
				slog.Int64("user_id", event.UserID), slog.String("payment_id", event.PaymentID))
			return models.ConfirmDuplicate, nil
		}
		if _, err := s.repo.MarkInvoicesPaid(ctx, event.UserID); err != nil {
			s.log.Warn("failed to close pending invoices",
				slog.Int64("user_id", event.UserID), slog.Any("err", err))
		}
	} else {
		flipped, err := s.repo.MarkInvoicesPaid(ctx, event.UserID)
		if err != nil {
			return "", err
		}
		if !flipped {
			s.log.Info("duplicate payment event without external id",
				slog.Int64("user_id", event.UserID))
			return models.ConfirmDuplicate, nil
		}
		if _, err := s.repo.InsertPayment(ctx, event.UserID, "", event.Amount, now); err != nil {
			s.log.Warn("failed to journal payment",
				slog.Int64("user_id", event.UserID), slog.Any("err", err))
		}
	}

	paidUntil, err := s.ledger.ActivatePaid(ctx, event.UserID, periods[event.Periodicity])
	if err != nil {
		return "", err
	}
	if err := s.directory.OnPaymentConfirmed(ctx, event.UserID); err != nil {
		s.log.Warn("failed to finalize user role",
			slog.Int64("user_id", event.UserID), slog.Any("err", err))
	}

	s.log.Info("confirmed payment",
		slog.Int64("user_id", event.UserID),
		slog.String("periodicity", event.Periodicity),
		slog.Any("paid_until", paidUntil))
	return models.ConfirmApplied, nil
}

// StartSubscription выставляет счёт через шлюз, сохраняет его
// и возвращает ссылку на оплату.
func (s *Service) StartSubscription(ctx context.Context, req models.InvoiceRequest) (string, error) {
	resp, err := s.provider.CreateInvoice(req.Email, req.Periodicity)
	if err != nil {
		return "", err
	}

	invoiceID := resp.ID
	if invoiceID == "" {
		invoiceID = uuid.NewString()
	}
	inv := models.Invoice{
		ID:          invoiceID,
		UserID:      req.UserID,
		Email:       req.Email,
		Status:      models.InvoicePending,
		Periodicity: req.Periodicity,
		PaymentURL:  resp.PaymentURL,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.InsertInvoice(ctx, inv); err != nil {
		return "", err
	}

	s.log.Info("created invoice",
		slog.Int64("user_id", req.UserID),
		slog.String("invoice_id", invoiceID),
		slog.String("periodicity", req.Periodicity))
	return resp.PaymentURL, nil
}
