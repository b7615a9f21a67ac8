package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	stripe "github.com/stripe/stripe-go/v79"

	"github.com/hairloft/salon-platform/internal/api/router"
	"github.com/hairloft/salon-platform/internal/booking"
	"github.com/hairloft/salon-platform/internal/branch"
	"github.com/hairloft/salon-platform/internal/catalog"
	appconfig "github.com/hairloft/salon-platform/internal/config"
	"github.com/hairloft/salon-platform/internal/customer"
	"github.com/hairloft/salon-platform/internal/notify"
	"github.com/hairloft/salon-platform/internal/observability/metrics"
	"github.com/hairloft/salon-platform/internal/payments"
	"github.com/hairloft/salon-platform/internal/schedule"
	"github.com/hairloft/salon-platform/internal/tax"
	"github.com/hairloft/salon-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer func() { _ = redisClient.Close() }()

	stripe.Key = cfg.StripeSecretKey

	// Stores and repositories.
	branchStore := branch.NewStore(redisClient)
	catalogRepo := catalog.NewRepository(pool)
	customerRepo := customer.NewRepository(pool)
	scheduleRepo := schedule.NewRepository(pool)
	apptRepo := booking.NewRepository(pool)

	// Collaborators.
	var sender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	} else {
		logger.Warn("sendgrid not configured, booking emails disabled")
		sender = notify.NewStubEmailSender(logger)
	}

	bookingMetrics := metrics.NewBookingMetrics(prometheus.DefaultRegisterer)

	bookingService := booking.NewService(
		branchStore, catalogRepo, scheduleRepo, customerRepo, apptRepo,
		tax.NewStripeCalculator(cfg.Currency),
		booking.Options{
			Charger:  payments.NewStripeFeeCharger(cfg.Currency),
			Notifier: notify.NewBookingMailer(sender, logger),
			Metrics:  bookingMetrics,
			Logger:   logger,
		})

	r := router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(bookingService, logger),
		BranchHandler:      branch.NewHandler(branchStore, logger),
		CatalogHandler:     catalog.NewHandler(catalogRepo, logger),
		ScheduleHandler:    schedule.NewHandler(scheduleRepo, logger),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
