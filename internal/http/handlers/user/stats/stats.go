// Package stats реализует HTTP-обработчик сводной статистики для админа.
package stats

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

// Handler управляет HTTP-запросами на сводную статистику.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики справочника.
type Service interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Сводная статистика
// @Description Возвращает количество пользователей, оплативших и сумму платежей.
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} response.Response "Статистика"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.stats"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Error("failed to collect stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not collect stats"))
		return
	}

	log.Info("collected stats",
		slog.Int("total_users", stats.TotalUsers), slog.Int("paid_users", stats.PaidUsers))
	render.JSON(w, r, response.OKWithData(stats))
}
