// Package paymentwebhook реализует HTTP-обработчик вебхука платёжного шлюза.
//
// Событие с чужим статусом подтверждается без действий, повторные доставки
// распознаются сервисом и подписку второй раз не продлевают. Событие без
// идентификатора пользователя подтверждается, чтобы шлюз не доставлял его
// снова: повторная доставка его не исправит.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/reels-funnel/internal/http/response"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/sl"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/services/payment"
)

// Handler управляет HTTP-запросами вебхука об оплате.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики платежей.
type Service interface {
	Confirm(ctx context.Context, event models.PaymentEvent) (models.ConfirmOutcome, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного шлюза
// @Description Принимает событие об оплате и продлевает подписку. Повторные доставки безопасны.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.PaymentEvent true "Событие шлюза"
// @Success 200 {object} response.Response "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера, шлюз повторит доставку"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentwebhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var event models.PaymentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		log.Error("failed to decode webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	outcome, err := h.service.Confirm(r.Context(), event)
	if err != nil {
		if errors.Is(err, payment.ErrMalformedEvent) {
			log.Error("malformed payment event", sl.Err(err))
			render.JSON(w, r, response.Error("malformed payment event"))
			return
		}
		log.Error("failed to confirm payment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not confirm payment"))
		return
	}

	log.Info("processed payment event",
		slog.Int64("user_id", event.UserID), slog.String("outcome", string(outcome)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"outcome": outcome,
	}))
}
