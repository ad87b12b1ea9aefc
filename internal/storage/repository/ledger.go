package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// GetSubscription возвращает строку подписки пользователя.
// Если подписки нет, возвращает (nil, nil).
func (s *Storage) GetSubscription(ctx context.Context, userID int64) (*models.Subscription, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, status, paid_until
			  FROM subscriptions
			  WHERE user_id = $1`
	sub := &models.Subscription{}
	var paidUntil sql.NullTime
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&sub.UserID, &sub.Status, &paidUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if paidUntil.Valid {
		sub.PaidUntil = &paidUntil.Time
	}
	return sub, nil
}

// UpsertSubscriptionActive переводит подписку пользователя в статус ACTIVE
// с новой датой окончания. paidUntil == nil означает бессрочный доступ.
func (s *Storage) UpsertSubscriptionActive(ctx context.Context, userID int64, paidUntil *time.Time) error {
	const op = "storage.UpsertSubscriptionActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, status, paid_until, updated_at)
			  VALUES ($1, $2, $3, now())
			  ON CONFLICT (user_id) DO UPDATE
			  SET status = EXCLUDED.status,
			      paid_until = EXCLUDED.paid_until,
			      updated_at = now();`
	_, err := s.DB.ExecContext(ctx, query, userID, models.SubscriptionActive, paidUntil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// CancelSubscription переводит активную подписку в CANCELED, сохраняя
// paid_until для истории. Возвращает false, если активной подписки не было.
func (s *Storage) CancelSubscription(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.CancelSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET status = $1, updated_at = now()
			  WHERE user_id = $2 AND status = $3`
	res, err := s.DB.ExecContext(ctx, query, models.SubscriptionCanceled, userID, models.SubscriptionActive)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// GetFreeTrial возвращает строку пробного периода пользователя.
// Если триала не было, возвращает (nil, nil).
func (s *Storage) GetFreeTrial(ctx context.Context, userID int64) (*models.FreeTrial, error) {
	const op = "storage.GetFreeTrial"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT user_id, started_at, expires_at, status
			  FROM free_trials
			  WHERE user_id = $1`
	trial := &models.FreeTrial{}
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&trial.UserID,
		&trial.StartedAt, &trial.ExpiresAt, &trial.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return trial, nil
}

// InsertFreeTrial атомарно создаёт строку пробного периода. Возвращает false,
// если строка уже существовала: триал одноразовый, повторная вставка
// игнорируется на уровне БД.
func (s *Storage) InsertFreeTrial(ctx context.Context, userID int64, startedAt, expiresAt time.Time) (bool, error) {
	const op = "storage.InsertFreeTrial"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO free_trials (user_id, started_at, expires_at, status)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_id) DO NOTHING;`
	res, err := s.DB.ExecContext(ctx, query, userID, startedAt, expiresAt, models.TrialActive)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// ExpireTrial принудительно завершает активный триал пользователя, срез даты
// окончания переносится на now. Возвращает false, если активного триала нет.
func (s *Storage) ExpireTrial(ctx context.Context, userID int64, now time.Time) (bool, error) {
	const op = "storage.ExpireTrial"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE free_trials
			  SET status = $1, expires_at = $2
			  WHERE user_id = $3 AND status = $4`
	res, err := s.DB.ExecContext(ctx, query, models.TrialExpired, now, userID, models.TrialActive)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// ExpireTrials помечает протухшие активные триалы как EXPIRED и возвращает
// количество затронутых строк.
func (s *Storage) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.ExpireTrials"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE free_trials
			  SET status = $1
			  WHERE status = $2 AND expires_at < $3`
	res, err := s.DB.ExecContext(ctx, query, models.TrialExpired, models.TrialActive, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}

// ListEntitledUserIDs возвращает идентификаторы пользователей, у которых
// в момент now есть действующий доступ: активная подписка либо активный триал.
func (s *Storage) ListEntitledUserIDs(ctx context.Context, now time.Time) ([]int64, error) {
	const op = "storage.ListEntitledUserIDs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.id
			  FROM users u
			  WHERE EXISTS (SELECT 1 FROM subscriptions s
			                WHERE s.user_id = u.id AND s.status = 'ACTIVE'
			                  AND (s.paid_until IS NULL OR s.paid_until >= $1))
			     OR EXISTS (SELECT 1 FROM free_trials t
			                WHERE t.user_id = u.id AND t.status = 'ACTIVE'
			                  AND t.expires_at >= $1)
			  ORDER BY u.id;`
	rows, err := s.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
