// Package courier собирает воркер доставки: читает задания из очереди
// и отправляет рилсы пользователям через Bot API.
package courier

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/reels-funnel/internal/cache"
	"github.com/magabrotheeeer/reels-funnel/internal/config"
	"github.com/magabrotheeeer/reels-funnel/internal/rabbitmq"
	courierservice "github.com/magabrotheeeer/reels-funnel/internal/services/courier"
	ledgerservice "github.com/magabrotheeeer/reels-funnel/internal/services/ledger"
	"github.com/magabrotheeeer/reels-funnel/internal/storage/repository"
	"github.com/magabrotheeeer/reels-funnel/internal/transport"
)

// App представляет приложение курьера.
type App struct {
	conn           *amqp.Connection
	ch             *amqp.Channel
	courierService *courierservice.Service
	logger         *slog.Logger
}

func waitForDB(db *repository.Storage) error {
	for range 10 {
		err := repository.CheckDatabaseReady(db)
		if err == nil {
			return nil
		}
		time.Sleep(3 * time.Second)
	}
	return fmt.Errorf("database not ready after retries")
}

// New создает новый экземпляр приложения курьера.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetDeliveryQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		conn.Close()
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	sender := transport.NewClient(cfg.BotToken)
	ledgerService := ledgerservice.New(db, cacheRedis, logger, cfg.TrialDays)
	courierService := courierservice.New(db, ledgerService, sender, logger)

	return &App{
		conn:           conn,
		ch:             ch,
		courierService: courierService,
		logger:         logger,
	}, nil
}

// Run запускает потребление очереди доставки.
func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, rabbitmq.DeliveryQueue, func(body []byte) error {
		return a.courierService.HandleMessage(ctx, body)
	})
	if err != nil {
		a.logger.Error("failed to start delivery queue consumer", slog.Any("err", err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("courier service shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
