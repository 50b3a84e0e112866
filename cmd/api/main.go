package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/swiftcartlabs/swiftcart-backend/api/routes"
	"github.com/swiftcartlabs/swiftcart-backend/internal/effects"
	"github.com/swiftcartlabs/swiftcart-backend/internal/inventory"
	"github.com/swiftcartlabs/swiftcart-backend/internal/notifications"
	"github.com/swiftcartlabs/swiftcart-backend/internal/orders"
	"github.com/swiftcartlabs/swiftcart-backend/internal/payments"
	"github.com/swiftcartlabs/swiftcart-backend/internal/paymentsettings"
	"github.com/swiftcartlabs/swiftcart-backend/internal/verification"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/config"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/db"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/env"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/instance"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/logger"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/metrics"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/migrate"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/razorpay"
	"github.com/swiftcartlabs/swiftcart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gateway, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create razorpay client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	orderMetrics := metrics.NewOrderMetrics(registry)

	mailer := notifications.NewSMTPMailer(cfg.SMTP)
	notifier, err := notifications.NewService(mailer)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	ordersRepo := orders.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)
	effectsRepo := effects.NewRepository(conn)

	reconciler := inventory.NewReconciler(inventoryRepo, effectsRepo, logg)

	ordersSvc, err := orders.NewService(ordersRepo, dbClient, inventoryRepo, reconciler, effectsRepo, notifier, logg, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	tokenStore := verification.NewStore(redisClient, cfg.Payments.VerificationTokenTTL)

	paymentsSvc, err := payments.NewService(ordersRepo, dbClient, effectsRepo, gateway, ordersSvc, tokenStore, notifier, logg, orderMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	settingsSvc, err := paymentsettings.NewService(paymentsettings.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create payment settings service", err)
		os.Exit(1)
	}

	port := env.Get("PORT", cfg.App.Port)
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, httpMetrics, ordersSvc, paymentsSvc, settingsSvc),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-shutdown
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
