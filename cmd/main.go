/**
 * @description
 * This is the main entry point for the kiosk booking service. It initializes
 * and wires together all the components of the application: configuration,
 * database connection, Redis coupon cache, RabbitMQ notification producer,
 * payment client, repository, services, the HTTP router, and the cron
 * scheduler that drives the booking lifecycle.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/MightWarriorNo1/kioskads-booking-service/internal/api"
	"github.com/MightWarriorNo1/kioskads-booking-service/internal/app"
	"github.com/MightWarriorNo1/kioskads-booking-service/internal/config"
	"github.com/MightWarriorNo1/kioskads-booking-service/internal/store"
	"github.com/MightWarriorNo1/kioskads-booking-service/pkg/paymentclient"
	"github.com/MightWarriorNo1/kioskads-booking-service/pkg/rabbitmq"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// Load a local .env file when present; environment variables win.
	_ = godotenv.Load()

	// Load application configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.BookingTimezone)
	if err != nil {
		logger.Error("invalid booking timezone", "timezone", cfg.BookingTimezone, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Establish database connection with connection pool configuration
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolCfg.MaxConns = 100
	poolCfg.MinConns = 20
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to work with transaction pooling
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Optional Redis coupon cache; validation falls back to the store when
	// Redis is not configured.
	var couponCache app.CouponCache
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("unable to parse Redis URL", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		couponCache = app.NewRedisCouponCache(redisClient, cfg.CouponCachePrefix, time.Duration(cfg.CouponCacheTTLSeconds)*time.Second)
		logger.Info("redis coupon cache enabled")
	} else {
		logger.Warn("REDIS_URL not set, coupon caching disabled")
	}

	// Optional notification producer; booking transitions are best-effort
	// notifiers and proceed without one.
	var notifier app.EventPublisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("unable to connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		notifier = app.NewNotifier(producer, cfg.NotificationExchange)
		logger.Info("notification producer connected", "exchange", cfg.NotificationExchange)
	} else {
		logger.Warn("RABBITMQ_URL not set, booking notifications disabled")
	}

	// Initialize application layers
	repository := store.NewPostgresRepository(dbpool)
	tracker := app.NewTracker(loc)
	lifecycle := app.NewLifecycle(repository, notifier, logger)
	couponEngine := app.NewCouponEngine(repository, couponCache, logger)
	payments := paymentclient.NewClient(cfg.PaymentServiceURL)
	service := app.NewService(repository, couponEngine, lifecycle, payments, notifier, tracker,
		cfg.AdditionalResourceDiscountPercent, cfg.PaymentCurrency, logger)
	jobs := app.NewJobs(repository, lifecycle, tracker, logger)
	scheduler := app.NewScheduler(jobs, logger, cfg)

	handler := api.NewHandler(service, lifecycle, jobs, repository, tracker, loc)
	router := api.NewRouter(handler, cfg.JWTSecret)

	// Start the cron scheduler in the background
	scheduler.Start()
	logger.Info("lifecycle scheduler started", "schedule", cfg.LifecycleJobSchedule, "timezone", cfg.BookingTimezone)

	// Configure and start the HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for an OS signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	// Stop the scheduler and wait for any in-flight pass to finish
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	// Attempt to gracefully shut down the server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
