// Package read реализует HTTP-обработчик чтения рилса со всеми ассетами.
package read

import (
	"context"
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

// Handler управляет HTTP-запросами на чтение рилса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс библиотеки контента.
type Service interface {
	Get(ctx context.Context, reelID int64) (*models.ReelBundle, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить рилс
// @Description Возвращает рилс вместе со всеми его ассетами.
// @Tags Reels
// @Security ApiKeyAuth
// @Produce  json
// @Param id path int true "Идентификатор рилса"
// @Success 200 {object} response.Response "Рилс с ассетами"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Рилс не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/reels/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reels.read"
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

	bundle, err := h.service.Get(r.Context(), reelID)
	if err != nil {
		if errors.Is(err, reels.ErrReelNotFound) {
			log.Error("reel not found", slog.Int64("reel_id", reelID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("reel not found"))
			return
		}
		log.Error("failed to read reel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read reel"))
		return
	}

	log.Info("read reel", slog.Int64("reel_id", reelID))
	render.JSON(w, r, response.OKWithData(bundle))
}
