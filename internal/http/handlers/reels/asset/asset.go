// Package asset реализует HTTP-обработчик загрузки ассета рилса.
//
// Повторная загрузка ассета того же вида заменяет предыдущий.
package asset

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/reels-funnel/internal/http/response"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/sl"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/services/reels"
)

// Handler управляет HTTP-запросами на загрузку ассетов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс библиотеки контента.
type Service interface {
	UpsertAsset(ctx context.Context, reelID int64, req models.AssetRequest) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Загрузить ассет рилса
// @Description Добавляет видео, превью или описание. Повторная загрузка заменяет ассет.
// @Tags Reels
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор рилса"
// @Param request body models.AssetRequest true "Ассет"
// @Success 200 {object} response.Response "Ассет сохранён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ассет"
// @Failure 404 {object} response.ErrorResponse "Рилс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/reels/{id}/assets [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reels.asset"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	reelID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid reel id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid reel id"))
		return
	}

	var req models.AssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.UpsertAsset(r.Context(), reelID, req); err != nil {
		switch {
		case errors.Is(err, reels.ErrReelNotFound):
			log.Error("reel not found", slog.Int64("reel_id", reelID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("reel not found"))
		case errors.Is(err, reels.ErrInvalidAsset):
			log.Error("invalid asset", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid asset"))
		default:
			log.Error("failed to save asset", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not save asset"))
		}
		return
	}

	log.Info("saved reel asset",
		slog.Int64("reel_id", reelID), slog.String("kind", string(req.Kind)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reel_id": reelID,
		"kind":    req.Kind,
	}))
}
