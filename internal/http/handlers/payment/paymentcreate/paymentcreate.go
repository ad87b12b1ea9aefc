// Package paymentcreate реализует HTTP-обработчик выставления счёта
// на оплату подписки через платёжный шлюз.
package paymentcreate

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

// Handler управляет HTTP-запросами на выставление счёта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики платежей.
type Service interface {
	StartSubscription(ctx context.Context, req models.InvoiceRequest) (string, error)
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
// @Summary Выставить счёт на оплату
// @Description Создаёт счёт в платёжном шлюзе и возвращает ссылку на оплату.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.InvoiceRequest true "Данные для счёта"
// @Success 200 {object} response.Response "Ссылка на оплату"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка шлюза или сервера"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentcreate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.InvoiceRequest
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

	paymentURL, err := h.service.StartSubscription(r.Context(), req)
	if err != nil {
		log.Error("failed to create invoice", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create invoice"))
		return
	}

	log.Info("created invoice", slog.Int64("user_id", req.UserID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"payment_url": paymentURL,
	}))
}
