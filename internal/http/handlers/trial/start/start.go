// Package start реализует HTTP-обработчик запуска пробного периода.
//
// Триал одноразовый: повторные запросы получают код причины отказа,
// а не вторую попытку.
package start

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

// Handler управляет HTTP-запросами на запуск триала.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс леджера доступа.
type Service interface {
	StartTrial(ctx context.Context, userID int64) (models.TrialResult, error)
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
// @Summary Запустить пробный период
// @Description Запускает одноразовый триал. Повторные запросы возвращают код причины отказа.
// @Tags Trial
// @Accept  json
// @Produce  json
// @Param request body models.TrialStartRequest true "Идентификатор пользователя"
// @Success 200 {object} response.Response "Код исхода"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /trial/start [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.start"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.TrialStartRequest
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

	result, err := h.service.StartTrial(r.Context(), req.UserID)
	if err != nil {
		log.Error("failed to start trial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not start trial"))
		return
	}

	log.Info("trial start processed",
		slog.Int64("user_id", req.UserID), slog.String("result", string(result)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": req.UserID,
		"result":  result,
	}))
}
