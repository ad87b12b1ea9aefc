// Package list реализует HTTP-обработчик админского списка пользователей.
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

// Handler управляет HTTP-запросами на список пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики справочника.
type Service interface {
	ListUsers(ctx context.Context) ([]models.UserOverview, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Description Возвращает всех пользователей со сводными полями для админки.
// @Tags Admin
// @Security ApiKeyAuth
// @Produce  json
// @Success 200 {object} response.Response "Список пользователей"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	log.Info("listed users", slog.Int("count", len(users)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"users": users,
		"count": len(users),
	}))
}
