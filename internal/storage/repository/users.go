package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// UpsertUser создаёт пользователя при первом контакте или обновляет
// last_seen при повторном. Реферер записывается через COALESCE и потому
// никогда не перезаписывает уже установленное значение.
func (s *Storage) UpsertUser(ctx context.Context, userID int64, referrerID *int64) error {
	const op = "storage.UpsertUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (id, role, referrer_id, created_at, updated_at, last_seen)
			  VALUES ($1, $2, $3, now(), now(), now())
			  ON CONFLICT (id) DO UPDATE
			  SET referrer_id = COALESCE(users.referrer_id, EXCLUDED.referrer_id),
			      last_seen = now(),
			      updated_at = now();`
	_, err := s.DB.ExecContext(ctx, query, userID, models.RoleUnregistered, referrerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUser возвращает пользователя по его идентификатору.
func (s *Storage) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, handle, role, referrer_id, price_offer, created_at, updated_at, last_seen
			  FROM users
			  WHERE id = $1`
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, userID)

	var referrerID sql.NullInt64
	var priceOffer sql.NullInt64
	var lastSeen sql.NullTime
	if err := row.Scan(&u.ID, &u.Handle, &u.Role, &referrerID, &priceOffer,
		&u.CreatedAt, &u.UpdatedAt, &lastSeen); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if referrerID.Valid {
		u.ReferrerID = &referrerID.Int64
	}
	if priceOffer.Valid {
		p := int(priceOffer.Int64)
		u.PriceOffer = &p
	}
	if lastSeen.Valid {
		u.LastSeen = &lastSeen.Time
	}
	return u, nil
}

// UpdateRole меняет роль пользователя.
func (s *Storage) UpdateRole(ctx context.Context, userID int64, role models.Role) error {
	const op = "storage.UpdateRole"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET role = $1, updated_at = now()
			  WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, role, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateHandle сохраняет ник пользователя.
func (s *Storage) UpdateHandle(ctx context.Context, userID int64, handle string) error {
	const op = "storage.UpdateHandle"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET handle = $1, updated_at = now()
			  WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, handle, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePriceOffer сохраняет индивидуальную цену, назначенную админом.
func (s *Storage) UpdatePriceOffer(ctx context.Context, userID int64, price int) error {
	const op = "storage.UpdatePriceOffer"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET price_offer = $1, updated_at = now()
			  WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, price, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsers возвращает всех пользователей со сводными полями для админки:
// признаком действующего доступа и числом приглашённых.
func (s *Storage) ListUsers(ctx context.Context) ([]models.UserOverview, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.id, u.handle, u.role, u.price_offer, u.referrer_id, u.created_at,
			      (EXISTS (SELECT 1 FROM subscriptions s
			               WHERE s.user_id = u.id AND s.status = 'ACTIVE'
			                 AND (s.paid_until IS NULL OR s.paid_until >= now()))) AS paid,
			      (SELECT COUNT(*) FROM users r WHERE r.referrer_id = u.id) AS referrals
			  FROM users u
			  ORDER BY u.created_at;`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.UserOverview
	for rows.Next() {
		var o models.UserOverview
		var priceOffer sql.NullInt64
		var referrerID sql.NullInt64
		if err = rows.Scan(&o.ID, &o.Handle, &o.Role, &priceOffer, &referrerID,
			&o.JoinedAt, &o.Paid, &o.Referrals); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if priceOffer.Valid {
			p := int(priceOffer.Int64)
			o.PriceOffer = &p
		}
		if referrerID.Valid {
			o.ReferrerID = &referrerID.Int64
		}
		result = append(result, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountUsers возвращает общее число пользователей.
func (s *Storage) CountUsers(ctx context.Context) (int, error) {
	const op = "storage.CountUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM users`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CountPaidUsers возвращает число пользователей с действующей оплаченной подпиской.
func (s *Storage) CountPaidUsers(ctx context.Context) (int, error) {
	const op = "storage.CountPaidUsers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var count int
	query := `SELECT COUNT(*) FROM subscriptions
			  WHERE status = 'ACTIVE' AND (paid_until IS NULL OR paid_until >= now())`
	if err := s.DB.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// TopReferrers возвращает пользователей с наибольшим числом приглашённых.
func (s *Storage) TopReferrers(ctx context.Context, limit int) ([]models.ReferralCount, error) {
	const op = "storage.TopReferrers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT referrer_id, COUNT(*) AS cnt
			  FROM users
			  WHERE referrer_id IS NOT NULL
			  GROUP BY referrer_id
			  ORDER BY cnt DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.ReferralCount
	for rows.Next() {
		var rc models.ReferralCount
		if err = rows.Scan(&rc.UserID, &rc.Count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, rc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteUser удаляет пользователя вместе со связанными записями леджера,
// доставок и платежей.
func (s *Storage) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM users WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}
