// Package courier доставляет рилсы пользователям: потребляет задачи
// из очереди, отправляет превью, видео и описание, записывает отметку
// о доставке. Повторная доставка той же пары (пользователь, рилс)
// не отправляется.
package courier

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/storage/repository"
)

// Repository определяет методы хранилища, нужные курьеру.
type Repository interface {
	// HasDelivery проверяет, доставлялся ли рилс пользователю.
	HasDelivery(ctx context.Context, userID, reelID int64) (bool, error)
	// GetReelBundle возвращает рилс со всеми ассетами.
	GetReelBundle(ctx context.Context, reelID int64) (*models.ReelBundle, error)
	// InsertDelivery записывает отметку о доставке, false при повторе.
	InsertDelivery(ctx context.Context, d models.Delivery) (bool, error)
}

// Ledger проверка доступа на момент отправки.
type Ledger interface {
	IsEntitled(ctx context.Context, userID int64) (bool, error)
}

// Sender отправка сообщений пользователю.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) (int64, error)
	SendPhoto(ctx context.Context, chatID int64, fileRef string) (int64, error)
	SendVideo(ctx context.Context, chatID int64, fileRef, caption string) (int64, error)
}

// Service реализует доставку рилсов.
type Service struct {
	repo   Repository
	ledger Ledger
	sender Sender
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, ledger Ledger, sender Sender, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		ledger: ledger,
		sender: sender,
		log:    log,
	}
}

// HandleMessage обрабатывает сообщение из очереди. Нераспознанное тело
// подтверждается без повторной доставки, ошибка отправки возвращается
// наверх и задача попадает в очередь снова.
func (s *Service) HandleMessage(ctx context.Context, body []byte) error {
	var task models.DeliveryTask
	if err := json.Unmarshal(body, &task); err != nil || task.UserID == 0 || task.ReelID == 0 {
		s.log.Error("dropped malformed delivery task", slog.Any("err", err))
		return nil
	}
	return s.Deliver(ctx, task)
}

// Deliver отправляет рилс пользователю и записывает отметку о доставке.
func (s *Service) Deliver(ctx context.Context, task models.DeliveryTask) error {
	delivered, err := s.repo.HasDelivery(ctx, task.UserID, task.ReelID)
	if err != nil {
		return err
	}
	if delivered {
		s.log.Info("reel already delivered",
			slog.Int64("user_id", task.UserID), slog.Int64("reel_id", task.ReelID))
		return nil
	}

	entitled, err := s.ledger.IsEntitled(ctx, task.UserID)
	if err != nil {
		return err
	}
	if !entitled {
		s.log.Info("skipped delivery, access lapsed", slog.Int64("user_id", task.UserID))
		return nil
	}

	bundle, err := s.repo.GetReelBundle(ctx, task.ReelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Warn("skipped delivery, reel is gone", slog.Int64("reel_id", task.ReelID))
			return nil
		}
		return err
	}
	if !bundle.Reel.IsActive {
		s.log.Info("skipped delivery, reel deactivated", slog.Int64("reel_id", task.ReelID))
		return nil
	}
	video, ok := bundle.Assets[models.AssetVideo]
	if !ok || video.FileRef == "" {
		s.log.Warn("skipped delivery, reel has no video", slog.Int64("reel_id", task.ReelID))
		return nil
	}

	if preview, ok := bundle.Assets[models.AssetPreview]; ok && preview.FileRef != "" {
		if _, err := s.sender.SendPhoto(ctx, task.UserID, preview.FileRef); err != nil {
			return err
		}
	}

	videoMsgID, err := s.sender.SendVideo(ctx, task.UserID, video.FileRef, "")
	if err != nil {
		return err
	}

	var captionMsgID *int64
	if caption, ok := bundle.Assets[models.AssetCaption]; ok && caption.Text != "" {
		id, err := s.sender.SendText(ctx, task.UserID, caption.Text)
		if err != nil {
			return err
		}
		captionMsgID = &id
	}

	inserted, err := s.repo.InsertDelivery(ctx, models.Delivery{
		UserID:           task.UserID,
		ReelID:           task.ReelID,
		SentAt:           time.Now(),
		VideoMessageID:   &videoMsgID,
		CaptionMessageID: captionMsgID,
	})
	if err != nil {
		return err
	}
	if !inserted {
		s.log.Warn("delivery was recorded concurrently",
			slog.Int64("user_id", task.UserID), slog.Int64("reel_id", task.ReelID))
		return nil
	}

	s.log.Info("delivered reel",
		slog.Int64("user_id", task.UserID), slog.Int64("reel_id", task.ReelID))
	return nil
}
