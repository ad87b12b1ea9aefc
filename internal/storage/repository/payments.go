package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// InsertPayment записывает платёж в журнал. Повторная вставка платежа
// с уже известным внешним идентификатором игнорируется, возвращается false.
// Платёж без внешнего идентификатора записывается всегда.
func (s *Storage) InsertPayment(ctx context.Context, userID int64, externalID string, amount int64, paidAt time.Time) (bool, error) {
	const op = "storage.InsertPayment"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var extID any
	if externalID != "" {
		extID = externalID
	}
	query := `INSERT INTO payments (user_id, external_id, amount, paid_at)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (external_id) DO NOTHING;`
	res, err := s.DB.ExecContext(ctx, query, userID, extID, amount, paidAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// SumPayments возвращает сумму всех платежей.
func (s *Storage) SumPayments(ctx context.Context) (int64, error) {
	const op = "storage.SumPayments"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var sum int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&sum); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return sum, nil
}

// InsertInvoice сохраняет выставленный счёт.
func (s *Storage) InsertInvoice(ctx context.Context, inv models.Invoice) error {
	const op = "storage.InsertInvoice"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO invoices (id, user_id, email, status, periodicity, payment_url, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := s.DB.ExecContext(ctx, query, inv.ID, inv.UserID, inv.Email,
		inv.Status, inv.Periodicity, inv.PaymentURL, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// MarkInvoicesPaid переводит ожидающие счета пользователя в статус paid.
// Переход одноразовый, обратного нет. Возвращает false, если ожидающих
// счетов не было.
func (s *Storage) MarkInvoicesPaid(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.MarkInvoicesPaid"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE invoices
			  SET status = $1
			  WHERE user_id = $2 AND status = $3`
	res, err := s.DB.ExecContext(ctx, query, models.InvoicePaid, userID, models.InvoicePending)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}
