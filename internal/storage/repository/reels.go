package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// InsertReel создаёт новый рилс и возвращает его идентификатор.
func (s *Storage) InsertReel(ctx context.Context, title string, createdBy int64) (int64, error) {
	const op = "storage.InsertReel"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID int64
	query := `INSERT INTO reels (title, created_by)
			  VALUES ($1, $2)
			  RETURNING id;`
	if err := s.DB.QueryRowContext(ctx, query, title, createdBy).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// UpsertAsset добавляет ассет рилса или заменяет уже существующий ассет
// того же вида.
func (s *Storage) UpsertAsset(ctx context.Context, asset models.ReelAsset) error {
	const op = "storage.UpsertAsset"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reel_assets (reel_id, kind, file_ref, text_content)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (reel_id, kind) DO UPDATE
			  SET file_ref = EXCLUDED.file_ref,
			      text_content = EXCLUDED.text_content;`
	_, err := s.DB.ExecContext(ctx, query, asset.ReelID, asset.Kind, asset.FileRef, asset.Text)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetReelActive включает или выключает рилс в ротации.
// Возвращает false, если рилса не существует.
func (s *Storage) SetReelActive(ctx context.Context, reelID int64, isActive bool) (bool, error) {
	const op = "storage.SetReelActive"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE reels SET is_active = $1 WHERE id = $2`
	res, err := s.DB.ExecContext(ctx, query, isActive, reelID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// DeleteReel удаляет рилс вместе с его ассетами и отметками о доставке.
func (s *Storage) DeleteReel(ctx context.Context, reelID int64) (bool, error) {
	const op = "storage.DeleteReel"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM reels WHERE id = $1`
	res, err := s.DB.ExecContext(ctx, query, reelID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}

// ListReels возвращает все рилсы с количеством ассетов у каждого.
func (s *Storage) ListReels(ctx context.Context) ([]models.Reel, error) {
	const op = "storage.ListReels"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id, r.title, r.is_active, r.created_at, r.created_by,
			      (SELECT COUNT(*) FROM reel_assets a WHERE a.reel_id = r.id) AS assets
			  FROM reels r
			  ORDER BY r.id;`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.Reel
	for rows.Next() {
		var r models.Reel
		if err = rows.Scan(&r.ID, &r.Title, &r.IsActive, &r.CreatedAt,
			&r.CreatedBy, &r.Assets); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetReelBundle возвращает рилс вместе со всеми его ассетами.
func (s *Storage) GetReelBundle(ctx context.Context, reelID int64) (*models.ReelBundle, error) {
	const op = "storage.GetReelBundle"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, is_active, created_at, created_by
			  FROM reels
			  WHERE id = $1`
	bundle := &models.ReelBundle{Assets: make(map[models.AssetKind]models.ReelAsset)}
	err := s.DB.QueryRowContext(ctx, query, reelID).Scan(&bundle.Reel.ID, &bundle.Reel.Title,
		&bundle.Reel.IsActive, &bundle.Reel.CreatedAt, &bundle.Reel.CreatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	assetsQuery := `SELECT reel_id, kind, file_ref, text_content
			  FROM reel_assets
			  WHERE reel_id = $1`
	rows, err := s.DB.QueryContext(ctx, assetsQuery, reelID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	for rows.Next() {
		var a models.ReelAsset
		if err = rows.Scan(&a.ReelID, &a.Kind, &a.FileRef, &a.Text); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		bundle.Assets[a.Kind] = a
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	bundle.Reel.Assets = len(bundle.Assets)
	return bundle, nil
}

// PickUnseenReel выбирает случайный активный рилс с видео, который ещё
// не доставлялся пользователю. Если такого нет, возвращает (nil, nil).
func (s *Storage) PickUnseenReel(ctx context.Context, userID int64) (*models.ReelBundle, error) {
	const op = "storage.PickUnseenReel"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT r.id
			  FROM reels r
			  WHERE r.is_active
			    AND EXISTS (SELECT 1 FROM reel_assets a
			                WHERE a.reel_id = r.id AND a.kind = 'video')
			    AND NOT EXISTS (SELECT 1 FROM reel_deliveries d
			                    WHERE d.reel_id = r.id AND d.user_id = $1)
			  ORDER BY RANDOM()
			  LIMIT 1;`
	var reelID int64
	err := s.DB.QueryRowContext(ctx, query, userID).Scan(&reelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.GetReelBundle(ctx, reelID)
}

// ResetDeliveries удаляет отметки о доставке активных рилсов пользователю,
// открывая ротацию заново. Отметки по выключенным рилсам сохраняются.
func (s *Storage) ResetDeliveries(ctx context.Context, userID int64) (int64, error) {
	const op = "storage.ResetDeliveries"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM reel_deliveries d
			  USING reels r
			  WHERE d.reel_id = r.id AND d.user_id = $1 AND r.is_active`
	res, err := s.DB.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return affected, nil
}
