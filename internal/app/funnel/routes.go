// Package funnel предоставляет маршруты для основного приложения.
package funnel

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/reels-funnel/internal/config"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/health"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/payment/paymentcreate"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/payment/paymentwebhook"
	reelsasset "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/reels/asset"
	reelscreate "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/reels/create"
	reelslist "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/reels/list"
	reelsread "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/reels/read"
	reelsremove "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/reels/remove"
	reelssetactive "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/reels/setactive"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/subscription/cancel"
	trialexpire "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/trial/expire"
	trialstart "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/trial/start"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/user/entitlement"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/user/handle"
	userlist "github.com/magabrotheeeer/reels-funnel/internal/http/handlers/user/list"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/user/price"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/user/purge"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/user/rolechoice"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/user/stats"
	"github.com/magabrotheeeer/reels-funnel/internal/http/handlers/user/touch"
	"github.com/magabrotheeeer/reels-funnel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/jwt"
	directoryservice "github.com/magabrotheeeer/reels-funnel/internal/services/directory"
	ledgerservice "github.com/magabrotheeeer/reels-funnel/internal/services/ledger"
	paymentservice "github.com/magabrotheeeer/reels-funnel/internal/services/payment"
	reelsservice "github.com/magabrotheeeer/reels-funnel/internal/services/reels"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, maker jwt.Maker,
	directoryService *directoryservice.Service, ledgerService *ledgerservice.Service,
	paymentService *paymentservice.Service, reelsService *reelsservice.Service) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки, дергаются ботом от имени пользователей
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Post("/login", login.New(logger, maker, cfg.AdminUser, cfg.AdminPasswordHash).ServeHTTP)
			r.Post("/users/touch", touch.New(logger, directoryService).ServeHTTP)
			r.Post("/users/role", rolechoice.New(logger, directoryService).ServeHTTP)
			r.Post("/users/handle", handle.New(logger, directoryService).ServeHTTP)
			r.Get("/users/{id}/entitlement", entitlement.New(logger, ledgerService).ServeHTTP)
			r.Post("/trial/start", trialstart.New(logger, ledgerService).ServeHTTP)
			r.Post("/payments", paymentcreate.New(logger, paymentService).ServeHTTP)
		})

		// Webhook endpoint платёжного шлюза (без аутентификации)
		r.Post("/payments/webhook", paymentwebhook.New(logger, paymentService).ServeHTTP)

		// Группа с JWT аутентификацией для администратора
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Get("/admin/users", userlist.New(logger, directoryService).ServeHTTP)
			r.Get("/admin/stats", stats.New(logger, directoryService).ServeHTTP)
			r.Post("/admin/users/price", price.New(logger, directoryService).ServeHTTP)
			r.Delete("/admin/users/{id}", purge.New(logger, directoryService).ServeHTTP)
			r.Delete("/admin/users/{id}/subscription", cancel.New(logger, ledgerService).ServeHTTP)
			r.Delete("/admin/users/{id}/trial", trialexpire.New(logger, ledgerService).ServeHTTP)
			r.Post("/admin/reels", reelscreate.New(logger, reelsService).ServeHTTP)
			r.Get("/admin/reels", reelslist.New(logger, reelsService).ServeHTTP)
			r.Get("/admin/reels/{id}", reelsread.New(logger, reelsService).ServeHTTP)
			r.Post("/admin/reels/{id}/assets", reelsasset.New(logger, reelsService).ServeHTTP)
			r.Patch("/admin/reels/{id}/active", reelssetactive.New(logger, reelsService).ServeHTTP)
			r.Delete("/admin/reels/{id}", reelsremove.New(logger, reelsService).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
