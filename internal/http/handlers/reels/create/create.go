// Package create реализует HTTP-обработчик создания рилса.
package create

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

// Handler управляет HTTP-запросами на создание рилса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс библиотеки контента.
type Service interface {
	Create(ctx context.Context, title string, createdBy int64) (int64, error)
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
// @Summary Создать рилс
// @Description Создаёт пустой рилс, ассеты загружаются отдельными запросами.
// @Tags Reels
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param request body models.CreateReelRequest true "Данные рилса"
// @Success 200 {object} response.Response "Идентификатор рилса"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/reels [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reels.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreateReelRequest
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

	id, err := h.service.Create(r.Context(), req.Title, req.CreatedBy)
	if err != nil {
		log.Error("failed to create reel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create reel"))
		return
	}

	log.Info("created reel", slog.Int64("reel_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"reel_id": id,
	}))
}
