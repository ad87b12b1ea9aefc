// Package list реализует HTTP-обработчик списка рилсов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/reels-funnel/internal/http/response"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/sl"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// Handler управляет HTTP-запросами на список рилсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс библиотеки контента.
type Service interface {
	List(ctx context.Context) ([]models.Reel, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список рилсов
// @Description Возвращает все рилсы с количеством загруженных ассетов.
// @Tags Reels
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} response.Response "Список рилсов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/reels [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reels.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	items, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list reels", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list reels"))
		return
	}

	log.Info("listed reels", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reels": items,
		"count": len(items),
	}))
}
