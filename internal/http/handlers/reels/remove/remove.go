// Package remove реализует HTTP-обработчик удаления рилса.
package remove

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
	"github.com/magabrotheeeer/reels-funnel/internal/services/reels"
)

// Handler управляет HTTP-запросами на удаление рилса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс библиотеки контента.
type Service interface {
	Remove(ctx context.Context, reelID int64) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить рилс
// @Description Удаляет рилс вместе с ассетами и отметками о доставке.
// @Tags Reels
// @Security ApiKeyAuth
// @Produce  json
// @Param id path int true "Идентификатор рилса"
// @Success 200 {object} response.Response "Рилс удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Рилс не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/reels/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reels.remove"
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

	if err := h.service.Remove(r.Context(), reelID); err != nil {
		if errors.Is(err, reels.ErrReelNotFound) {
			log.Error("reel not found", slog.Int64("reel_id", reelID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("reel not found"))
			return
		}
		log.Error("failed to remove reel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove reel"))
		return
	}

	log.Info("removed reel", slog.Int64("reel_id", reelID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reel_id": reelID,
	}))
}
