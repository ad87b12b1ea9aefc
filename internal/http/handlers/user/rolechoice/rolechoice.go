// Package rolechoice реализует HTTP-обработчик выбора ветки онбординга.
package rolechoice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/reels-funnel/internal/http/response"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/sl"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/services/directory"
)

// Handler управляет HTTP-запросами на выбор ветки онбординга.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики справочника.
type Service interface {
	ChooseRole(ctx context.Context, userID int64, choice string) (models.Role, error)
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
// @Summary Выбрать ветку онбординга
// @Description Переводит пользователя в new_pending или old_pending по его выбору.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.RoleChoiceRequest true "Выбор пользователя"
// @Success 200 {object} response.Response "Роль обновлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или выбор"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/role [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.rolechoice"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RoleChoiceRequest
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

	role, err := h.service.ChooseRole(r.Context(), req.UserID, req.Choice)
	if err != nil {
		if errors.Is(err, directory.ErrInvalidChoice) {
			log.Error("invalid role choice", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid role choice"))
			return
		}
		if errors.Is(err, directory.ErrUserNotFound) {
			log.Error("user not found", slog.Int64("user_id", req.UserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to choose role", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update role"))
		return
	}

	log.Info("updated user role",
		slog.Int64("user_id", req.UserID), slog.String("role", string(role)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": req.UserID,
		"role":    role,
	}))
}
