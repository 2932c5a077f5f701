package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"report_explorer/internal/config"
	"report_explorer/internal/httpapi"
	"report_explorer/internal/publisher"
	"report_explorer/internal/service"
	"report_explorer/internal/source/reportoftheweek"
	"report_explorer/internal/storage/postgres"
)

const defaultConfigPath = "config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to config file")
	flag.Parse()

	// Setup logger
	logger := setupLogger("info")

	// Load configuration
	cfg, err := config.Load(*configPath, flagSet("config"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := sqlx.Open("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		// The store may come up after the API; requests fail with a store
		// error until it does.
		logger.Warn("database not reachable at startup", "error", err)
	} else {
		logger.Info("connected to database")
	}

	var events service.Publisher
	if cfg.RabbitMQ.Enabled() {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		events = rabbitMQ
	}

	favoriteStore := postgres.NewFavoriteStore(db)

	var source service.ReportSource = reportoftheweek.New(reportoftheweek.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		MaxAttempts:    cfg.API.Retry.MaxAttempts,
		InitialBackoff: cfg.API.Retry.InitialBackoff,
		MaxBackoff:     cfg.API.Retry.MaxBackoff,
	}, logger)
	if cfg.API.Breaker.Enabled {
		source = reportoftheweek.NewBreakerSource(source, reportoftheweek.BreakerConfig{
			MaxRequests:      cfg.API.Breaker.MaxRequests,
			Interval:         cfg.API.Breaker.Interval,
			Timeout:          cfg.API.Breaker.Timeout,
			FailureThreshold: cfg.API.Breaker.FailureThreshold,
		}, logger)
	}

	handler := httpapi.NewHandler(
		service.NewReportService(source, logger),
		service.NewFavoriteService(favoriteStore, events, logger),
		favoriteStore,
		logger,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      httpapi.NewRouter(handler, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting report explorer api",
			"addr", srv.Addr,
			"source", source.Name(),
			"breaker", cfg.API.Breaker.Enabled,
			"events", cfg.RabbitMQ.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
