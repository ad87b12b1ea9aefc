// Package touch реализует HTTP-обработчик регистрации контакта пользователя.
//
// Первое обращение создаёт запись в справочнике, повторные обновляют
// last_seen. Реферер учитывается только при первом обращении.
package touch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/reels-funnel/internal/http/response"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/sl"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
)

// Handler управляет HTTP-запросами на регистрацию контакта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики справочника.
type Service interface {
	Touch(ctx context.Context, userID int64, referrerID *int64) error
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
// @Summary Зарегистрировать контакт пользователя
// @Description Создаёт пользователя при первом контакте или обновляет отметку активности.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.TouchRequest true "Идентификатор пользователя и реферер"
// @Success 200 {object} response.Response "Контакт зарегистрирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/touch [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.touch"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.TouchRequest
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

	if err := h.service.Touch(r.Context(), req.UserID, req.ReferrerID); err != nil {
		log.Error("failed to touch user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register user contact"))
		return
	}

	log.Info("registered user contact", slog.Int64("user_id", req.UserID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": req.UserID,
	}))
}
