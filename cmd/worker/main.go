package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/coopcare/admin-api/internal/config"
	"github.com/coopcare/admin-api/internal/email"
	"github.com/coopcare/admin-api/internal/repository/postgres"
	"github.com/coopcare/admin-api/pkg/logger"
	redisbroker "github.com/coopcare/admin-api/pkg/messaging/redis"
	"github.com/coopcare/admin-api/pkg/metrics"
	"github.com/coopcare/admin-api/pkg/worker"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewBroker(redisbroker.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, log)
	if err != nil {
		log.Fatal(err, "failed to connect to redis")
	}
	defer broker.Close()

	dispatcher := worker.NewDispatcher(
		postgres.NewNotificationRepository(db),
		email.NewSMTPService(cfg.SMTP),
		broker,
		worker.DispatcherConfig{
			BatchSize:    cfg.Notifier.BatchSize,
			PollInterval: cfg.Notifier.PollInterval,
			MaxRetries:   cfg.Notifier.MaxRetries,
			RetryBackoff: cfg.Notifier.RetryBackoff,
		},
		log,
		metrics.NewMetrics("coopcare_worker"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	dispatcher.Start(ctx)
	log.Info("worker stopped")
}
