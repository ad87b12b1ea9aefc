// Package handle реализует HTTP-обработчик сохранения ника пользователя.
//
// Ник принимается только в ветке old_pending, в остальных состояниях
// запрос подтверждается без сохранения.
package handle

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

// Handler управляет HTTP-запросами на сохранение ника.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики справочника.
type Service interface {
	SubmitHandle(ctx context.Context, userID int64, raw string) (bool, error)
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
// @Summary Сохранить ник пользователя
// @Description Сохраняет ник в ветке old_pending, вне её запрос игнорируется.
// @Tags Users
// @Accept  json
// @Produce  json
// @Param request body models.HandleRequest true "Ник пользователя"
// @Success 200 {object} response.Response "Запрос обработан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ник"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /users/handle [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.handle"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.HandleRequest
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

	saved, err := h.service.SubmitHandle(r.Context(), req.UserID, req.Handle)
	if err != nil {
		switch {
		case errors.Is(err, directory.ErrUserNotFound):
			log.Error("user not found", slog.Int64("user_id", req.UserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		case errors.Is(err, directory.ErrInvalidHandle):
			log.Error("invalid handle", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid handle"))
		default:
			log.Error("failed to submit handle", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not save handle"))
		}
		return
	}

	log.Info("handle request processed",
		slog.Int64("user_id", req.UserID), slog.Bool("saved", saved))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": req.UserID,
		"saved":   saved,
	}))
}
