// Package directory управляет справочником пользователей и машиной ролей
// онбординга: unregistered -> new_pending/old_pending -> new/old.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/storage/repository"
)

// Ошибки валидации входных данных.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidChoice = errors.New("invalid role choice")
	ErrInvalidHandle = errors.New("invalid handle")
)

// topReferrersLimit сколько рефереров попадает в сводку.
const topReferrersLimit = 5

// Repository определяет методы справочника пользователей в хранилище.
type Repository interface {
	UpsertUser(ctx context.Context, userID int64, referrerID *int64) error
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	UpdateRole(ctx context.Context, userID int64, role models.Role) error
	UpdateHandle(ctx context.Context, userID int64, handle string) error
	UpdatePriceOffer(ctx context.Context, userID int64, price int) error
	ListUsers(ctx context.Context) ([]models.UserOverview, error)
	CountUsers(ctx context.Context) (int, error)
	CountPaidUsers(ctx context.Context) (int, error)
	SumPayments(ctx context.Context) (int64, error)
	TopReferrers(ctx context.Context, limit int) ([]models.ReferralCount, error)
	DeleteUser(ctx context.Context, userID int64) (bool, error)
}

// Service реализует бизнес-логику справочника пользователей.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Touch регистрирует контакт пользователя: создаёт запись при первом
// обращении и обновляет last_seen при повторных. Реферер сохраняется
// только при первом обращении; ссылка на самого себя или на
// несуществующего пользователя игнорируется, регистрацию это не блокирует.
func (s *Service) Touch(ctx context.Context, userID int64, referrerID *int64) error {
	if referrerID != nil && *referrerID == userID {
		s.log.Info("ignored self referral", slog.Int64("user_id", userID))
		referrerID = nil
	}
	if referrerID != nil {
		if _, err := s.repo.GetUser(ctx, *referrerID); err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			s.log.Info("ignored unknown referral",
				slog.Int64("user_id", userID), slog.Int64("referrer_id", *referrerID))
			referrerID = nil
		}
	}
	return s.repo.UpsertUser(ctx, userID, referrerID)
}

// ChooseRole переводит пользователя в выбранную ветку онбординга.
func (s *Service) ChooseRole(ctx context.Context, userID int64, choice string) (models.Role, error) {
	var role models.Role
	switch choice {
	case "new":
		role = models.RoleNewPending
	case "old":
		role = models.RoleOldPending
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidChoice, choice)
	}

	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return "", err
	}
	s.log.Info("user chose onboarding branch",
		slog.Int64("user_id", userID), slog.String("role", string(role)))
	return role, nil
}

// SubmitHandle сохраняет ник пользователя в ветке old_pending. Вне этой
// ветки присланный ник молча игнорируется, возвращается false.
func (s *Service) SubmitHandle(ctx context.Context, userID int64, raw string) (bool, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if user.Role != models.RoleOldPending {
		return false, nil
	}

	handle := strings.TrimPrefix(strings.TrimSpace(raw), "@")
	if len(handle) < 2 || strings.ContainsAny(handle, " \t\n") {
		return false, fmt.Errorf("%w: %q", ErrInvalidHandle, raw)
	}

	if err := s.repo.UpdateHandle(ctx, userID, handle); err != nil {
		return false, err
	}
	s.log.Info("saved user handle", slog.Int64("user_id", userID))
	return true, nil
}

// AssignPrice сохраняет индивидуальную цену и завершает онбординг:
// pending-роль переходит в терминальную. Возвращает итоговую роль.
func (s *Service) AssignPrice(ctx context.Context, userID int64, price int) (models.Role, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	if err := s.repo.UpdatePriceOffer(ctx, userID, price); err != nil {
		return "", err
	}

	role := user.Role
	if role.IsPending() {
		role = role.Final()
		if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
			return "", err
		}
	}
	s.log.Info("assigned price offer",
		slog.Int64("user_id", userID), slog.Int("price", price), slog.String("role", string(role)))
	return role, nil
}

// OnPaymentConfirmed завершает онбординг после оплаты: pending-роль
// переходит в терминальную, терминальные роли не меняются.
func (s *Service) OnPaymentConfirmed(ctx context.Context, userID int64) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !user.Role.IsPending() {
		return nil
	}
	final := user.Role.Final()
	if err := s.repo.UpdateRole(ctx, userID, final); err != nil {
		return err
	}
	s.log.Info("finalized user role after payment",
		slog.Int64("user_id", userID), slog.String("role", string(final)))
	return nil
}

// Get возвращает пользователя по идентификатору.
func (s *Service) Get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers возвращает всех пользователей для админки.
func (s *Service) ListUsers(ctx context.Context) ([]models.UserOverview, error) {
	return s.repo.ListUsers(ctx)
}

// Stats собирает сводную статистику для админа.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	total, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	paid, err := s.repo.CountPaidUsers(ctx)
	if err != nil {
		return nil, err
	}
	sum, err := s.repo.SumPayments(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopReferrers(ctx, topReferrersLimit)
	if err != nil {
		return nil, err
	}
	return &models.Stats{
		TotalUsers:   total,
		PaidUsers:    paid,
		PaymentsSum:  sum,
		TopReferrers: top,
	}, nil
}

// Purge удаляет пользователя вместе со связанными записями.
func (s *Service) Purge(ctx context.Context, userID int64) (bool, error) {
	deleted, err := s.repo.DeleteUser(ctx, userID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("purged user", slog.Int64("user_id", userID))
	}
	return deleted, nil
}
