// Package setactive реализует HTTP-обработчик включения рилса в ротацию.
package setactive

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

	"github.com/magabrotheeeer/reels-funnel/internal/http/response"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/sl"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/services/reels"
)

// Handler управляет HTTP-запросами на включение и выключение рилса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс библиотеки контента.
type Service interface {
	SetActive(ctx context.Context, reelID int64, isActive bool) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Включить или выключить рилс
// @Description Меняет участие рилса в ежедневной ротации.
// @Tags Reels
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param id path int true "Идентификатор рилса"
// @Param request body models.SetActiveRequest true "Новое состояние"
// @Success 200 {object} response.Response "Состояние обновлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Рилс не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/reels/{id}/active [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reels.setactive"
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

	var req models.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.SetActive(r.Context(), reelID, req.IsActive); err != nil {
		if errors.Is(err, reels.ErrReelNotFound) {
			log.Error("reel not found", slog.Int64("reel_id", reelID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("reel not found"))
			return
		}
		log.Error("failed to change reel activity", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not change reel activity"))
		return
	}

	log.Info("changed reel activity",
		slog.Int64("reel_id", reelID), slog.Bool("is_active", req.IsActive))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reel_id":   reelID,
		"is_active": req.IsActive,
	}))
}
