// Package delivery планирует ежедневную рассылку: для каждого пользователя
// с действующим доступом выбирает непросмотренный рилс и публикует задачу
// курьеру в очередь.
package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// Repository определяет методы хранилища, нужные планировщику.
type Repository interface {
	// ExpireTrials помечает протухшие триалы перед планированием.
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
	// ListEntitledUserIDs возвращает пользователей с действующим доступом.
	ListEntitledUserIDs(ctx context.Context, now time.Time) ([]int64, error)
	// PickUnseenReel выбирает случайный непросмотренный рилс, (nil, nil) если нет.
	PickUnseenReel(ctx context.Context, userID int64) (*models.ReelBundle, error)
	// ResetDeliveries открывает ротацию активных рилсов заново.
	ResetDeliveries(ctx context.Context, userID int64) (int64, error)
}

// Publisher публикация задач на доставку в очередь.
type Publisher interface {
	Publish(task models.DeliveryTask) error
}

// Service реализует планирование ежедневной рассылки.
type Service struct {
	repo      Repository
	publisher Publisher
	log       *slog.Logger
	pause     time.Duration
}

// New создает новый экземпляр Service. pause выдерживается между
// пользователями, чтобы не упереться в лимиты транспорта.
func New(repo Repository, publisher Publisher, log *slog.Logger, pause time.Duration) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
		pause:     pause,
	}
}

// RunDaily выполняет один цикл рассылки. Ошибка по одному пользователю
// не прерывает рассылку остальным.
func (s *Service) RunDaily(ctx context.Context) error {
	now := time.Now()

	expired, err := s.repo.ExpireTrials(ctx, now)
	if err != nil {
		s.log.Warn("failed to expire trials", slog.Any("err", err))
	} else if expired > 0 {
		s.log.Info("expired free trials", slog.Int64("count", expired))
	}

	users, err := s.repo.ListEntitledUserIDs(ctx, now)
	if err != nil {
		return err
	}
	s.log.Info("planning daily delivery", slog.Int("users", len(users)))

	planned := 0
	for _, userID := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		bundle, err := s.pickForUser(ctx, userID)
		if err != nil {
			s.log.Error("failed to pick reel", slog.Int64("user_id", userID), slog.Any("err", err))
			continue
		}
		if bundle == nil {
			s.log.Info("no reels available for user", slog.Int64("user_id", userID))
			continue
		}

		task := models.DeliveryTask{UserID: userID, ReelID: bundle.Reel.ID}
		if err := s.publisher.Publish(task); err != nil {
			s.log.Error("failed to publish delivery task",
				slog.Int64("user_id", userID), slog.Int64("reel_id", bundle.Reel.ID), slog.Any("err", err))
			continue
		}
		planned++

		if s.pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.pause):
			}
		}
	}

	s.log.Info("finished daily delivery planning",
		slog.Int("users", len(users)), slog.Int("planned", planned))
	return nil
}

// pickForUser выбирает рилс для пользователя. Если все активные рилсы уже
// просмотрены, ротация сбрасывается и выбор повторяется один раз.
func (s *Service) pickForUser(ctx context.Context, userID int64) (*models.ReelBundle, error) {
	bundle, err := s.repo.PickUnseenReel(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bundle != nil {
		return bundle, nil
	}

	reset, err := s.repo.ResetDeliveries(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reset == 0 {
		return nil, nil
	}
	s.log.Info("reset reel rotation", slog.Int64("user_id", userID), slog.Int64("cleared", reset))
	return s.repo.PickUnseenReel(ctx, userID)
}
