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

	"github.com/fightcard/platform/internal/app"
	"github.com/fightcard/platform/internal/auth"
	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/handler"
	"github.com/fightcard/platform/internal/infra"
	"golang.org/x/sync/errgroup"
)

const reconcileTimeout = 2 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	proxies, err := handler.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	if cfg.AutoMigrate {
		if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Initialize dependencies
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiry)
	metrics := infra.NewMetrics()
	services := app.NewServices(pool, jwtMgr, metrics, logger)

	router := app.NewRouter(app.RouterDeps{
		Pool:               pool,
		JWTMgr:             jwtMgr,
		Logger:             logger,
		Metrics:            metrics,
		Services:           services,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		TrustedProxies:     proxies,
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Scheduled reconciliation picks up results whose events were missed by the consumer.
	if cfg.ReconcileCron != "" {
		scheduler := infra.NewScheduler(logger, reconcileTimeout)
		err := scheduler.Add("reconcile_bets", cfg.ReconcileCron, func(ctx context.Context) error {
			_, err := services.Betting.ReconcilePending(ctx)
			return err
		})
		if err != nil {
			return err
		}
		g.Go(func() error {
			scheduler.Run(gctx)
			return nil
		})
	}

	// Settle bets as soon as a recorded result is relayed.
	consumer := infra.NewKafkaConsumer(
		cfg.KafkaBrokers,
		domain.OutboxDraft{AggregateType: domain.AggregateBoutResult, EventType: domain.EventBoutResultRecorded}.Topic(cfg.KafkaTopicPrefix),
		"fightcard-settlement",
		cfg.KafkaEnabled,
		logger,
	)
	defer consumer.Close()
	g.Go(func() error {
		return consumer.Run(gctx, services.Betting.HandleResultRecorded)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
