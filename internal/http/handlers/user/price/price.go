// Package price реализует HTTP-обработчик назначения индивидуальной цены.
//
// Операция доступна только администратору и завершает онбординг:
// pending-роль переходит в терминальную.
package price

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

// Handler управляет HTTP-запросами на назначение цены.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики справочника.
type Service interface {
	AssignPrice(ctx context.Context, userID int64, price int) (models.Role, error)
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
// @Summary Назначить индивидуальную цену
// @Description Сохраняет цену для пользователя и завершает его онбординг.
// @Tags Admin
// @Security ApiKeyAuth
// @Accept  json
// @Produce  json
// @Param request body models.PriceRequest true "Пользователь и цена"
// @Success 200 {object} response.Response "Цена назначена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/price [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.price"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.PriceRequest
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

	role, err := h.service.AssignPrice(r.Context(), req.UserID, req.Price)
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			log.Error("user not found", slog.Int64("user_id", req.UserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to assign price", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not assign price"))
		return
	}

	log.Info("assigned price",
		slog.Int64("user_id", req.UserID), slog.Int("price", req.Price))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user_id": req.UserID,
		"price":   req.Price,
		"role":    role,
	}))
}
