// Package ledger содержит бизнес-логику доступа к контенту: оплаченные
// подписки и одноразовые пробные периоды. Факт доступа кешируется.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/reels-funnel/internal/lib/month"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// entitlementTTL время жизни кеша признака доступа.
const entitlementTTL = 5 * time.Minute

// Repository определяет методы для работы с леджером в хранилище.
type Repository interface {
	// GetSubscription возвращает строку подписки или (nil, nil), если её нет.
	GetSubscription(ctx context.Context, userID int64) (*models.Subscription, error)
	// UpsertSubscriptionActive активирует подписку с новой датой окончания.
	UpsertSubscriptionActive(ctx context.Context, userID int64, paidUntil *time.Time) error
	// CancelSubscription переводит активную подписку в CANCELED.
	CancelSubscription(ctx context.Context, userID int64) (bool, error)
	// GetFreeTrial возвращает строку триала или (nil, nil), если его не было.
	GetFreeTrial(ctx context.Context, userID int64) (*models.FreeTrial, error)
	// InsertFreeTrial атомарно создаёт строку триала, false при повторе.
	InsertFreeTrial(ctx context.Context, userID int64, startedAt, expiresAt time.Time) (bool, error)
	// ExpireTrial принудительно завершает активный триал пользователя.
	ExpireTrial(ctx context.Context, userID int64, now time.Time) (bool, error)
	// ExpireTrials помечает протухшие триалы.
	ExpireTrials(ctx context.Context, now time.Time) (int64, error)
	// ListEntitledUserIDs возвращает пользователей с действующим доступом.
	ListEntitledUserIDs(ctx context.Context, now time.Time) ([]int64, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует бизнес-логику леджера доступа.
type Service struct {
	repo      Repository
	cache     Cache
	log       *slog.Logger
	trialDays int
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger, trialDays int) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		log:       log,
		trialDays: trialDays,
	}
}

func entitlementKey(userID int64) string {
	return fmt.Sprintf("entitled:%d", userID)
}

// IsEntitled сообщает, есть ли у пользователя действующий доступ:
// активная подписка либо активный пробный период.
func (s *Service) IsEntitled(ctx context.Context, userID int64) (bool, error) {
	cacheKey := entitlementKey(userID)
	var cached bool
	found, err := s.cache.Get(cacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read entitlement cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	entitled, err := s.checkEntitled(ctx, userID, time.Now())
	if err != nil {
		return false, err
	}

	if err := s.cache.Set(cacheKey, entitled, entitlementTTL); err != nil {
		s.log.Warn("failed to cache entitlement", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return entitled, nil
}

func (s *Service) checkEntitled(ctx context.Context, userID int64, now time.Time) (bool, error) {
	sub, err := s.repo.GetSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	if sub.EntitledAt(now) {
		return true, nil
	}
	trial, err := s.repo.GetFreeTrial(ctx, userID)
	if err != nil {
		return false, err
	}
	return trial.EntitledAt(now), nil
}

// ActivatePaid активирует или продлевает оплаченную подписку. Продление
// отсчитывается от большего из текущего момента и прежней даты окончания,
// месяцы прибавляются календарно с прижатием ко дню месяца. Нулевой период
// даёт бессрочную подписку. Возвращает новую дату окончания.
func (s *Service) ActivatePaid(ctx context.Context, userID int64, period models.Period) (*time.Time, error) {
	now := time.Now()
	sub, err := s.repo.GetSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	paidUntil := computePaidUntil(now, sub, period)
	if err := s.repo.UpsertSubscriptionActive(ctx, userID, paidUntil); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(entitlementKey(userID)); err != nil {
		s.log.Warn("failed to invalidate entitlement cache", slog.Int64("user_id", userID), slog.Any("err", err))
	}
	s.log.Info("activated paid subscription",
		slog.Int64("user_id", userID), slog.Any("paid_until", paidUntil))
	return paidUntil, nil
}

// computePaidUntil вычисляет новую дату окончания подписки. Активная
// бессрочная подписка остаётся бессрочной.
func computePaidUntil(now time.Time, sub *models.Subscription, period models.Period) *time.Time {
	if period.IsZero() {
		return nil
	}
	base := now
	if sub != nil && sub.Status == models.SubscriptionActive {
		if sub.PaidUntil == nil {
			return nil
		}
		if sub.PaidUntil.After(now) {
			base = *sub.PaidUntil
		}
	}
	t := month.AddMonths(base, period.Months).AddDate(0, 0, period.Days)
	return &t
}

// CancelPaid отменяет активную подписку, сохраняя дату окончания для истории.
// Возвращает false, если активной подписки не было.
func (s *Service) CancelPaid(ctx context.Context, userID int64) (bool, error) {
	canceled, err := s.repo.CancelSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	if canceled {
		if err := s.cache.Invalidate(entitlementKey(userID)); err != nil {
			s.log.Warn("failed to invalidate entitlement cache", slog.Int64("user_id", userID), slog.Any("err", err))
		}
		s.log.Info("canceled paid subscription", slog.Int64("user_id", userID))
	}
	return canceled, nil
}

// StartTrial запускает пробный период. Исход STARTED возможен не более
// одного раза за всю историю пользователя: повторные попытки получают
// код причины отказа.
func (s *Service) StartTrial(ctx context.Context, userID int64) (models.TrialResult, error) {
	now := time.Now()

	sub, err := s.repo.GetSubscription(ctx, userID)
	if err != nil {
		return "", err
	}
	if sub.EntitledAt(now) {
		return models.TrialPaidAlready, nil
	}

	inserted, err := s.repo.InsertFreeTrial(ctx, userID, now, now.AddDate(0, 0, s.trialDays))
	if err != nil {
		return "", err
	}
	if inserted {
		if err := s.cache.Invalidate(entitlementKey(userID)); err != nil {
			s.log.Warn("failed to invalidate entitlement cache", slog.Int64("user_id", userID), slog.Any("err", err))
		}
		s.log.Info("started free trial",
			slog.Int64("user_id", userID), slog.Int("days", s.trialDays))
		return models.TrialStarted, nil
	}

	trial, err := s.repo.GetFreeTrial(ctx, userID)
	if err != nil {
		return "", err
	}
	if trial.EntitledAt(now) {
		return models.TrialActiveAlready, nil
	}
	return models.TrialAlreadyUsed, nil
}

// ExpireTrial принудительно завершает активный триал пользователя, ручной
// путь для администратора. Возвращает false, если активного триала не было.
func (s *Service) ExpireTrial(ctx context.Context, userID int64) (bool, error) {
	expired, err := s.repo.ExpireTrial(ctx, userID, time.Now())
	if err != nil {
		return false, err
	}
	if expired {
		if err := s.cache.Invalidate(entitlementKey(userID)); err != nil {
			s.log.Warn("failed to invalidate entitlement cache", slog.Int64("user_id", userID), slog.Any("err", err))
		}
		s.log.Info("force-expired free trial", slog.Int64("user_id", userID))
	}
	return expired, nil
}

// ExpireTrials помечает протухшие активные триалы как EXPIRED.
func (s *Service) ExpireTrials(ctx context.Context) (int64, error) {
	count, err := s.repo.ExpireTrials(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.log.Info("expired free trials", slog.Int64("count", count))
	}
	return count, nil
}

// ListEntitledUsers возвращает пользователей с действующим доступом.
func (s *Service) ListEntitledUsers(ctx context.Context) ([]int64, error) {
	return s.repo.ListEntitledUserIDs(ctx, time.Now())
}
