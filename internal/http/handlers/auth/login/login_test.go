package login

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/reels-funnel/internal/lib/jwt"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/password"
)

func TestLoginHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	maker := jwt.NewJWTMaker("test-secret-key", time.Hour)

	hash, err := password.GetHash("correct-password")
	require.NoError(t, err)

	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "успешная авторизация",
			body:           `{"username":"admin","password":"correct-password"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   `"token":`,
		},
		{
			name:           "неверный пароль",
			body:           `{"username":"admin","password":"wrong-password"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"invalid credentials"`,
		},
		{
			name:           "неизвестный пользователь",
			body:           `{"username":"intruder","password":"correct-password"}`,
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"invalid credentials"`,
		},
		{
			name:           "некорректный JSON",
			body:           `not json`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "слишком короткий пароль не проходит валидацию",
			body:           `{"username":"admin","password":"123"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"status":"Error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := New(logger, maker, "admin", hash)

			req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())
		})
	}
}
