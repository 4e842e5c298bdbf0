// Command narration-worker consumes published narrations and hands them to
// the local narrator.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"loan-eligibility/internal/config"
	"loan-eligibility/internal/event"
	"loan-eligibility/internal/infrastructure/logging"
	"loan-eligibility/internal/narration"

	"github.com/spf13/viper"
)

const consumerTag = "narration-worker"

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Narration worker starting...", "config_source", viper.ConfigFileUsed())

	if err := run(cfg, logger); err != nil {
		logger.Error("Narration worker failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Narration worker stopped.")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	conn, err := event.Connect(cfg.RabbitMQ, 5, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	handler := event.NewNarrationEventHandler(narration.NewLogNarrator(logger), logger)
	consumer, err := event.NewConsumer(
		conn,
		cfg.RabbitMQ.ExchangeName,
		cfg.RabbitMQ.NarrationQueue,
		consumerTag,
		event.NarrationRoutingKeys,
		handler.HandleDelivery,
		logger,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	logger.Info("Shutdown signal received.")
	consumer.Stop()
	return nil
}
