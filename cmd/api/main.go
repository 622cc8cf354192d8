package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/auth"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/config"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/dashboard"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/diagnostics"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/invoices"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/jobs"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/notifications"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/payments"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/payouts"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/promos"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/router"
	"github.com/Mrdanishjr1992/wrenchgo-sub004/internal/symptoms"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure Postgres is running, e.g. make dev-up or docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	queryErrors := diagnostics.NewErrorLog(0)
	stripeClient := payments.NewStripeClient(cfg.StripeSecretKey)

	// Notifications: push enqueue is set after the River client exists
	// (breaks the init cycle).
	var enqueueMu sync.Mutex
	var enqueueFn notifications.EnqueuePushFunc
	enqueuePush := func(ctx context.Context, args notifications.PushNotificationArgs) error {
		enqueueMu.Lock()
		fn := enqueueFn
		enqueueMu.Unlock()
		if fn == nil {
			return nil
		}
		return fn(ctx, args)
	}

	notifRepo := notifications.NewRepository(pool)
	notifSvc := notifications.NewService(notifRepo, enqueuePush, logger)
	notifHandler := notifications.NewHandler(notifSvc, logger)

	// Payouts
	payoutRepo := payouts.NewRepository(pool)
	payoutSvc := payouts.NewService(payoutRepo, stripeClient, notifSvc, logger)
	payoutHandler := payouts.NewHandler(payoutSvc, logger)

	// River workers: weekly payout batch plus push delivery
	workers := river.NewWorkers()
	river.AddWorker(workers, payouts.NewWeeklyPayoutWorker(payoutSvc, logger))
	river.AddWorker(workers, notifications.NewPushWorker(notifRepo, cfg.PushGatewayURL, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			payouts.WeeklySchedule(7 * 24 * time.Hour),
		},
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	enqueueMu.Lock()
	enqueueFn = func(ctx context.Context, args notifications.PushNotificationArgs) error {
		_, err := riverClient.Insert(ctx, args, nil)
		return err
	}
	enqueueMu.Unlock()

	// Auth
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.JWTSecret)
	authHandler := auth.NewHandler(authSvc, logger)

	// Jobs
	jobsRepo := jobs.NewRepository(pool)
	jobsSvc := jobs.NewService(jobsRepo)
	jobsHandler := jobs.NewHandler(jobsSvc, logger)

	// Invoices
	invoiceRepo := invoices.NewRepository(pool)
	invoiceSvc := invoices.NewService(invoiceRepo)
	invoiceHandler := invoices.NewHandler(invoiceSvc, logger)

	// Promos
	promoRPC, err := promos.NewRPC(pool)
	if err != nil {
		slog.Error("Failed to compile promo RPC schemas", "error", err)
		os.Exit(1)
	}
	promoSvc := promos.NewService(promoRPC)
	promoHandler := promos.NewHandler(promoSvc, logger)

	// Payments
	paymentRepo := payments.NewRepository(pool)
	paymentSvc := payments.NewService(paymentRepo, invoiceRepo, stripeClient, notifSvc, logger)
	paymentHandler := payments.NewHandler(paymentSvc, jobsRepo, logger)
	webhookHandler := payments.NewWebhookHandler(paymentSvc, cfg.StripeWebhookSecret, logger)

	// Payment status feed for the client observer
	listener := payments.NewListener(pool, logger)
	listenerCtx, stopListener := context.WithCancel(ctx)
	defer stopListener()
	go func() {
		if err := listener.Listen(listenerCtx); err != nil && listenerCtx.Err() == nil {
			slog.Error("Payment listener stopped", "error", err)
		}
	}()

	// Symptoms & dashboard
	symptomRepo := symptoms.NewRepository(pool, queryErrors)
	symptomHandler := symptoms.NewHandler(symptomRepo, logger)

	dashRepo := dashboard.NewRepository(pool, queryErrors)
	dashHandler := dashboard.NewHandler(dashRepo, logger)

	apiRouter := router.New(router.Deps{
		Auth:           authHandler,
		Jobs:           jobsHandler,
		Invoices:       invoiceHandler,
		Promos:         promoHandler,
		Payouts:        payoutHandler,
		Payments:       paymentHandler,
		Webhook:        webhookHandler,
		Symptoms:       symptomHandler,
		Dashboard:      dashHandler,
		Notifications:  notifHandler,
		Diagnostics:    diagnostics.NewHandler(queryErrors),
		TokenValidator: authSvc,
		CronSecret:     cfg.CronSecret,
		AdminSecret:    cfg.AdminSecret,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	}).Handler(apiRouter)

	// Start River client (runs the payout schedule and push deliveries)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
