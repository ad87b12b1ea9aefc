package paymentwebhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/services/payment"
)

// MockService реализует интерфейс paymentwebhook.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Confirm(ctx context.Context, event models.PaymentEvent) (models.ConfirmOutcome, error) {
	args := m.Called(ctx, event)
	return args.Get(0).(models.ConfirmOutcome), args.Error(1)
}

func TestPaymentWebhookHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное подтверждение платежа",
			body: `{"user_id":42,"status":"success","payment_id":"pay-1","periodicity":"PERIOD_30_DAYS","amount":1000}`,
			setupMock: func(m *MockService) {
				m.On("Confirm", mock.Anything, mock.MatchedBy(func(e models.PaymentEvent) bool {
					return e.UserID == 42 && e.PaymentID == "pay-1"
				})).Return(models.ConfirmApplied, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"outcome":"APPLIED"`,
		},
		{
			name: "повторная доставка события",
			body: `{"user_id":42,"status":"success","payment_id":"pay-1"}`,
			setupMock: func(m *MockService) {
				m.On("Confirm", mock.Anything, mock.Anything).Return(models.ConfirmDuplicate, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"outcome":"DUPLICATE"`,
		},
		{
			name: "событие с чужим статусом пропускается",
			body: `{"user_id":42,"status":"failed"}`,
			setupMock: func(m *MockService) {
				m.On("Confirm", mock.Anything, mock.Anything).Return(models.ConfirmSkipped, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"outcome":"SKIPPED"`,
		},
		{
			name:           "некорректный JSON",
			body:           `not json`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name: "событие без пользователя подтверждается без повтора",
			body: `{"status":"success"}`,
			setupMock: func(m *MockService) {
				m.On("Confirm", mock.Anything, mock.Anything).
					Return(models.ConfirmOutcome(""), payment.ErrMalformedEvent)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"error":"malformed payment event"`,
		},
		{
			name: "ошибка сервиса ведёт к повтору доставки",
			body: `{"user_id":42,"status":"success"}`,
			setupMock: func(m *MockService) {
				m.On("Confirm", mock.Anything, mock.Anything).
					Return(models.ConfirmOutcome(""), errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not confirm payment"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
