// Package entitlement реализует HTTP-обработчик проверки доступа пользователя.
package entitlement

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

// Handler управляет HTTP-запросами на проверку доступа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс леджера доступа.
type Service interface {
	IsEntitled(ctx context.Context, userID int64) (bool, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверить доступ пользователя
// @Description Сообщает, есть ли у пользователя действующая подписка или триал.
// @Tags Users
// @Produce  json
// @Param id path int true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Признак доступа"
// @Failure 400 {object} response.ErrorResponse "Некорректный идентификатор"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/{id}/entitlement [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.entitlement"
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

	entitled, err := h.service.IsEntitled(r.Context(), userID)
	if err != nil {
		log.Error("failed to check entitlement", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not check entitlement"))
		return
	}

	log.Info("checked entitlement",
		slog.Int64("user_id", userID), slog.Bool("entitled", entitled))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id":  userID,
		"entitled": entitled,
	}))
}
