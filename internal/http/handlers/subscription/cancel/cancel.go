// Package cancel реализует HTTP-обработчик отмены оплаченной подписки.
package cancel

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/reels-funnel/internal/http/response"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/sl"
)

// Handler управляет HTTP-запросами на отмену подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс леджера доступа.
type Service interface {
	CancelPaid(ctx context.Context, userID int64) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить подписку
// @Description Переводит активную подписку в CANCELED, дата окончания сохраняется.
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Подписка отменена"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Активной подписки нет"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/{id}/subscription [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.cancel"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("invalid user id", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user id"))
		return
	}

	canceled, err := h.service.CancelPaid(r.Context(), userID)
	if err != nil {
		log.Error("failed to cancel subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not cancel subscription"))
		return
	}
	if !canceled {
		log.Error("no active subscription", slog.Int64("user_id", userID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("no active subscription"))
		return
	}

	log.Info("canceled subscription", slog.Int64("user_id", userID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": userID,
	}))
}
