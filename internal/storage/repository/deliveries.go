package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// HasDelivery проверяет, доставлялся ли рилс пользователю.
func (s *Storage) HasDelivery(ctx context.Context, userID, reelID int64) (bool, error) {
	const op = "storage.HasDelivery"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM reel_deliveries
			      WHERE user_id = $1 AND reel_id = $2
			  )`
	if err := s.DB.QueryRowContext(ctx, query, userID, reelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// InsertDelivery записывает отметку о доставке. Повторная вставка той же пары
// (user_id, reel_id) игнорируется, возвращается false.
func (s *Storage) InsertDelivery(ctx context.Context, d models.Delivery) (bool, error) {
	const op = "storage.InsertDelivery"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO reel_deliveries (user_id, reel_id, sent_at, video_message_id, caption_message_id)
			  VALUES ($1, $2, $3, $4, $5)
			  ON CONFLICT (user_id, reel_id) DO NOTHING;`
	res, err := s.DB.ExecContext(ctx, query, d.UserID, d.ReelID, d.SentAt,
		d.VideoMessageID, d.CaptionMessageID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return affected > 0, nil
}
