// Package funnel собирает HTTP-сервис воронки: хранилище, кэш,
// сервисы домена и маршруты админского и публичного API.
package funnel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/reels-funnel/internal/cache"
	"github.com/magabrotheeeer/reels-funnel/internal/config"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/jwt"
	"github.com/magabrotheeeer/reels-funnel/internal/migrations"
	"github.com/magabrotheeeer/reels-funnel/internal/paymentprovider"
	directoryservice "github.com/magabrotheeeer/reels-funnel/internal/services/directory"
	ledgerservice "github.com/magabrotheeeer/reels-funnel/internal/services/ledger"
	paymentservice "github.com/magabrotheeeer/reels-funnel/internal/services/payment"
	reelsservice "github.com/magabrotheeeer/reels-funnel/internal/services/reels"
	"github.com/magabrotheeeer/reels-funnel/internal/storage/repository"
)

// App представляет HTTP-приложение воронки.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  cache.Cache
}

// New создает приложение: подключает базу, прогоняет миграции,
// инициализирует кэш и сервисы, собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	maker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	ledgerService := ledgerservice.New(db, cacheRedis, logger, cfg.TrialDays)
	directoryService := directoryservice.New(db, logger)
	reelsService := reelsservice.New(db, logger)
	providerClient := paymentprovider.NewClient(cfg.LavaAPIKey, cfg.LavaOfferID)
	paymentService := paymentservice.New(db, ledgerService, directoryService, providerClient, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, maker, directoryService, ledgerService, paymentService, reelsService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  *cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		if cerr := a.cache.Db.Close(); cerr != nil {
			a.logger.Error("failed to close redis client", slog.Any("err", cerr))
		}
		return err
	}
}
