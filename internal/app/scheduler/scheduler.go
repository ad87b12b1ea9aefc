// Package scheduler содержит логику планировщика ежедневной рассылки рилсов.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/reels-funnel/internal/config"
	librabbitmq "github.com/magabrotheeeer/reels-funnel/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/reels-funnel/internal/lib/sl"
	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/rabbitmq"
	deliveryservice "github.com/magabrotheeeer/reels-funnel/internal/services/delivery"
	"github.com/magabrotheeeer/reels-funnel/internal/storage/repository"
)

// App представляет приложение планировщика.
type App struct {
	deliveryService *deliveryservice.Service
	cron            *cron.Cron
	conn            *amqp.Connection
	ch              *amqp.Channel
	logger          *slog.Logger
}

// amqpPublisher отправляет задания на доставку в очередь.
type amqpPublisher struct {
	ch *amqp.Channel
}

func (p *amqpPublisher) Publish(task models.DeliveryTask) error {
	return librabbitmq.PublishMessage(p.ch, rabbitmq.ExchangeName, rabbitmq.DeliveryRoutingKey, task)
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

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}

	queues := rabbitmq.GetDeliveryQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		closeResources(nil, conn, logger)
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}

	if err := waitForDB(db); err != nil {
		closeResources(ch, conn, logger)
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	deliveryService := deliveryservice.New(db, &amqpPublisher{ch: ch}, logger, cfg.InterUserPause)

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.CronSpec, func() {
		if err := deliveryService.RunDaily(ctx); err != nil {
			logger.Error("daily delivery run failed", sl.Err(err))
		}
	}); err != nil {
		closeResources(ch, conn, logger)
		return nil, fmt.Errorf("failed to schedule daily delivery: %w", err)
	}

	return &App{
		deliveryService: deliveryService,
		cron:            c,
		conn:            conn,
		ch:              ch,
		logger:          logger,
	}, nil
}

func closeResources(ch *amqp.Channel, conn *amqp.Connection, logger *slog.Logger) {
	if ch != nil {
		if err := ch.Close(); err != nil {
			logger.Error("failed to close channel", "error", err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil {
			logger.Error("failed to close connection", "error", err)
		}
	}
}

// Run запускает планировщик.
func (a *App) Run(ctx context.Context) error {
	a.cron.Start()
	a.logger.Info("daily delivery scheduler started")

	<-ctx.Done()

	a.logger.Info("shutting down scheduler service")

	stopCtx := a.cron.Stop()
	<-stopCtx.Done()

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
