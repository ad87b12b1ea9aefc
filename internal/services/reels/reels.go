// Package reels управляет библиотекой контента: создание рилсов,
// загрузка ассетов, включение в ротацию и удаление.
package reels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/storage/repository"
)

// Ошибки валидации входных данных.
var (
	ErrReelNotFound = errors.New("reel not found")
	ErrInvalidAsset = errors.New("invalid asset")
)

// Repository определяет методы библиотеки контента в хранилище.
type Repository interface {
	InsertReel(ctx context.Context, title string, createdBy int64) (int64, error)
	UpsertAsset(ctx context.Context, asset models.ReelAsset) error
	SetReelActive(ctx context.Context, reelID int64, isActive bool) (bool, error)
	DeleteReel(ctx context.Context, reelID int64) (bool, error)
	ListReels(ctx context.Context) ([]models.Reel, error)
	GetReelBundle(ctx context.Context, reelID int64) (*models.ReelBundle, error)
}

// Service реализует бизнес-логику библиотеки контента.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create создаёт новый рилс и возвращает его идентификатор.
func (s *Service) Create(ctx context.Context, title string, createdBy int64) (int64, error) {
	id, err := s.repo.InsertReel(ctx, title, createdBy)
	if err != nil {
		return 0, err
	}
	s.log.Info("created reel", slog.Int64("reel_id", id), slog.Int64("created_by", createdBy))
	return id, nil
}

// UpsertAsset добавляет ассет рилса или заменяет существующий того же вида.
// Видео и превью требуют ссылку на файл, описание требует текст.
func (s *Service) UpsertAsset(ctx context.Context, reelID int64, req models.AssetRequest) error {
	if !req.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAsset, req.Kind)
	}
	switch req.Kind {
	case models.AssetVideo, models.AssetPreview:
		if req.FileRef == "" {
			return fmt.Errorf("%w: %s requires file_ref", ErrInvalidAsset, req.Kind)
		}
	case models.AssetCaption:
		if req.Text == "" {
			return fmt.Errorf("%w: caption requires text", ErrInvalidAsset)
		}
	}

	if _, err := s.repo.GetReelBundle(ctx, reelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrReelNotFound
		}
		return err
	}

	asset := models.ReelAsset{
		ReelID:  reelID,
		Kind:    req.Kind,
		FileRef: req.FileRef,
		Text:    req.Text,
	}
	if err := s.repo.UpsertAsset(ctx, asset); err != nil {
		return err
	}
	s.log.Info("saved reel asset",
		slog.Int64("reel_id", reelID), slog.String("kind", string(req.Kind)))
	return nil
}

// SetActive включает или выключает рилс в ротации.
func (s *Service) SetActive(ctx context.Context, reelID int64, isActive bool) error {
	updated, err := s.repo.SetReelActive(ctx, reelID, isActive)
	if err != nil {
		return err
	}
	if !updated {
		return ErrReelNotFound
	}
	s.log.Info("changed reel activity",
		slog.Int64("reel_id", reelID), slog.Bool("is_active", isActive))
	return nil
}

// List возвращает все рилсы с количеством ассетов.
func (s *Service) List(ctx context.Context) ([]models.Reel, error) {
	return s.repo.ListReels(ctx)
}

// Get возвращает рилс со всеми ассетами.
func (s *Service) Get(ctx context.Context, reelID int64) (*models.ReelBundle, error) {
	bundle, err := s.repo.GetReelBundle(ctx, reelID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReelNotFound
		}
		return nil, err
	}
	return bundle, nil
}

// Remove удаляет рилс вместе с ассетами и отметками о доставке.
func (s *Service) Remove(ctx context.Context, reelID int64) error {
	deleted, err := s.repo.DeleteReel(ctx, reelID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrReelNotFound
	}
	s.log.Info("removed reel", slog.Int64("reel_id", reelID))
	return nil
}
