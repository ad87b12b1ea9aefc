// Package purge реализует HTTP-обработчик удаления пользователя
// вместе со связанными записями леджера, доставок и платежей.
package purge

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

// Handler управляет HTTP-запросами на удаление пользователя.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики справочника.
type Service interface {
	Purge(ctx context.Context, userID int64) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удалить пользователя
// @Description Удаляет пользователя вместе с подпиской, триалом, доставками и платежами.
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Пользователь удалён"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.purge"
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

	deleted, err := h.service.Purge(r.Context(), userID)
	if err != nil {
		log.Error("failed to purge user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not purge user"))
		return
	}
	if !deleted {
		log.Error("user not found", slog.Int64("user_id", userID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}

	log.Info("purged user", slog.Int64("user_id", userID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": userID,
	}))
}
