package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-eligibility/internal/api"
	"loan-eligibility/internal/api/middleware"
	"loan-eligibility/internal/bot"
	"loan-eligibility/internal/config"
	"loan-eligibility/internal/domain/eligibility"
	"loan-eligibility/internal/event"
	"loan-eligibility/internal/infrastructure/logging"
	"loan-eligibility/internal/narration"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Loan Eligibility API
// @version 1.0
// @description Decides loan eligibility from nine applicant attributes.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	rabbitMQConn := setupRabbitMQ(cfg, logger)
	redisClient := initializeRedisClient(cfg, logger)
	rateLimiter := initializeRateLimiter(cfg, redisClient, logger)

	publisher, narrator := initializeNarration(cfg, rabbitMQConn, logger)
	dispatcher := narration.NewDispatcher(narrator, cfg.Eligibility.NarrationDelay, logger)
	service := eligibility.NewEligibilityService(publisher, dispatcher, buildVoice(cfg.Eligibility), logger)

	botCtx, stopBot := context.WithCancel(context.Background())
	telegramBot := startTelegramBot(botCtx, cfg, service, logger)

	cronScheduler := startBatchJobs(cfg, logger, rateLimiter, telegramBot)
	router := api.SetupRouter(service, rateLimiter, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(shutdownResources{
		srv:           srv,
		cronScheduler: cronScheduler,
		stopBot:       stopBot,
		bot:           telegramBot,
		dispatcher:    dispatcher,
		rabbitConn:    rabbitMQConn,
		redisClient:   redisClient,
	}, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func buildVoice(cfg config.EligibilityConfig) narration.Voice {
	voice := narration.DefaultVoice()
	if cfg.NarrationLanguage != "" {
		voice.Language = cfg.NarrationLanguage
	}
	if cfg.NarrationRate > 0 {
		voice.Rate = cfg.NarrationRate
	}
	if cfg.NarrationPitch > 0 {
		voice.Pitch = cfg.NarrationPitch
	}
	return voice
}

// initializeNarration publishes events and narrations through RabbitMQ when a
// connection exists and falls back to logging narrations otherwise.
func initializeNarration(cfg *config.Config, rabbitConn *amqp.Connection, logger *slog.Logger) (eligibility.Publisher, narration.Narrator) {
	if rabbitConn == nil {
		logger.Info("No RabbitMQ connection; evaluation events are disabled and narrations are logged.")
		return nil, narration.NewLogNarrator(logger)
	}

	publisher, err := event.NewRabbitMQEventPublisher(rabbitConn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to initialize RabbitMQ publisher; narrations will be logged", "error", err)
		return nil, narration.NewLogNarrator(logger)
	}
	return publisher, publisher
}

func initializeRateLimiter(cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) *middleware.RateLimiterMiddleware {
	return middleware.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger)
}

func startTelegramBot(ctx context.Context, cfg *config.Config, service eligibility.EligibilityService, logger *slog.Logger) *bot.Bot {
	if !cfg.Telegram.Enabled {
		logger.Info("Telegram bot is disabled via configuration.")
		return nil
	}
	if cfg.Telegram.Token == "" {
		logger.Error("Telegram bot enabled but no token configured; skipping.")
		return nil
	}

	telegramBot, err := bot.NewBot(cfg.Telegram.Token, cfg.Telegram.Debug, service, cfg.Eligibility.ComputeDelay, logger)
	if err != nil {
		logger.Error("Failed to start Telegram bot", "error", err)
		return nil
	}

	go func() {
		if err := telegramBot.Start(ctx); err != nil {
			logger.Error("Telegram bot stopped with error", "error", err)
		}
	}()
	return telegramBot
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

type shutdownResources struct {
	srv           *http.Server
	cronScheduler *cron.Cron
	stopBot       context.CancelFunc
	bot           *bot.Bot
	dispatcher    *narration.Dispatcher
	rabbitConn    *amqp.Connection
	redisClient   *redis.Client
}

// handleShutdown stops intake first, then drains pending replies and
// narrations before closing the broker they publish to.
func handleShutdown(res shutdownResources, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	triggerReason := waitForShutdownTrigger(shutdownChan, serverErrors, logger)

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	shutdownHTTPServer(res.srv, serverErrors, logger)
	stopTelegramBot(res.stopBot, res.bot, logger)
	stopCronScheduler(res.cronScheduler, logger)
	drainNarrations(res.dispatcher, logger)
	closeRabbitMQConnection(res.rabbitConn, logger)
	closeRedisClient(res.redisClient, logger)

	logger.Info("Application shutdown process complete.")
}

func waitForShutdownTrigger(shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) string {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received.", "signal", sig.String())
		return "signal: " + sig.String()
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		logger.Info("Server goroutine finished before signal.", "error", err)
		return "server exited"
	}
}

func stopTelegramBot(stop context.CancelFunc, telegramBot *bot.Bot, logger *slog.Logger) {
	if stop != nil {
		stop()
	}
	if telegramBot == nil {
		return
	}
	logger.Info("Waiting for pending Telegram replies...")
	telegramBot.Wait()
	logger.Info("Telegram bot stopped.")
}

func drainNarrations(dispatcher *narration.Dispatcher, logger *slog.Logger) {
	if dispatcher == nil {
		return
	}
	logger.Info("Draining scheduled narrations...")
	done := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("Narrations drained.")
	case <-time.After(15 * time.Second):
		logger.Warn("Timed out draining narrations.")
	}
}

func stopCronScheduler(cronScheduler *cron.Cron, logger *slog.Logger) {
	if cronScheduler == nil {
		return
	}
	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}
}

func closeRabbitMQConnection(rabbitConn *amqp.Connection, logger *slog.Logger) {
	if rabbitConn != nil && !rabbitConn.IsClosed() {
		logger.Info("Closing RabbitMQ connection...")
		if err := rabbitConn.Close(); err != nil {
			logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
		} else {
			logger.Info("RabbitMQ connection closed.")
		}
	} else if rabbitConn == nil {
		logger.Info("RabbitMQ connection was not established, skipping close.")
	} else {
		logger.Info("RabbitMQ connection already closed, skipping close.")
	}
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		} else {
			logger.Info("HTTP server shutdown initiated.")
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}

// initializeRedisClient returns nil when no address is configured, which
// keeps rate limiting in memory.
func initializeRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if cfg.Redis.Addr == "" {
		logger.Info("Redis address not configured; rate limiting stays in memory.")
		return nil
	}
	logger.Info("Initializing central Redis client...")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if status := rdb.Ping(ctx); status.Err() != nil {
		logger.Error("Failed to connect to Redis", "error", status.Err(), "addr", cfg.Redis.Addr)
		_ = rdb.Close()
		os.Exit(1)
		return nil
	}

	logger.Info("Central Redis client connected successfully.", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return rdb
}

func closeRedisClient(redisClient *redis.Client, logger *slog.Logger) {
	if redisClient != nil {
		logger.Info("Closing central Redis client connection...")
		if err := redisClient.Close(); err != nil {
			logger.Error("Failed to close central Redis client connection gracefully", "error", err)
		} else {
			logger.Info("Central Redis client connection closed.")
		}
	} else {
		logger.Info("Redis client was not initialized, skipping close.")
	}
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, rateLimiter *middleware.RateLimiterMiddleware, telegramBot *bot.Bot) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.LimiterCleanupSchedule
	if scheduleSpec == "" {
		scheduleSpec = "@every 10m"
		logger.Warn("Limiter cleanup schedule not configured, using default", "schedule", scheduleSpec)
	}

	if rateLimiter != nil && rateLimiter.Backend() == "memory" {
		jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
			jobLogger := logger.With("job_name", "RateLimiterCleanup")
			removed := rateLimiter.Cleanup()
			jobLogger.Debug("Rate limiter cleanup finished.", "removed", removed)
		}))
		if err != nil {
			logger.Error("Failed to schedule rate limiter cleanup job", "schedule", scheduleSpec, slog.Any("error", err))
		} else {
			logger.Info("Scheduled rate limiter cleanup job", "schedule", scheduleSpec, "job_id", jobID)
		}
	}

	if telegramBot != nil {
		pruneSpec := cfg.Batch.SummaryPruneSchedule
		if pruneSpec == "" {
			pruneSpec = "@every 1h"
		}
		ttl := cfg.Telegram.SummaryTTL
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}
		jobID, err := c.AddJob(pruneSpec, cron.FuncJob(func() {
			removed := telegramBot.PruneSummaries(ttl)
			logger.With("job_name", "SummaryPrune").Debug("Telegram summary prune finished.", "removed", removed)
		}))
		if err != nil {
			logger.Error("Failed to schedule summary prune job", "schedule", pruneSpec, slog.Any("error", err))
		} else {
			logger.Info("Scheduled summary prune job", "schedule", pruneSpec, "ttl", ttl, "job_id", jobID)
		}
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

// setupRabbitMQ returns nil when the broker is disabled or unreachable; the
// service then runs without outbound events.
func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) *amqp.Connection {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ is disabled via configuration.")
		return nil
	}

	conn, err := event.Connect(cfg.RabbitMQ, 5, logger)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		return nil
	}
	return conn
}
