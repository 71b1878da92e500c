package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/loan-tracker/internal/config"
	"github.com/segyhp/loan-tracker/internal/handler"
	"github.com/segyhp/loan-tracker/internal/logging"
	"github.com/segyhp/loan-tracker/internal/metrics"
	"github.com/segyhp/loan-tracker/internal/repository"
	"github.com/segyhp/loan-tracker/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	store, err := repository.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open storage", slog.String("driver", cfg.Storage.Driver), slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	recorder := metrics.NewRecorder()

	// Initialize services
	loanService := service.NewLoanService(store.Loans, logger, recorder)
	userService := service.NewUserService(store.Users, logger)

	router := handler.NewRouter(
		handler.NewLoanHandler(loanService, logger),
		handler.NewUserHandler(userService),
		handler.NewHealthHandler(cfg.Health.Timeout, healthChecks(store)),
		recorder.Handler(),
		logger,
	)

	// Start server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", slog.String("addr", server.Addr), slog.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("server exited")
}

func healthChecks(store *repository.Store) map[string]handler.Checker {
	checks := make(map[string]handler.Checker)
	if db := store.DB(); db != nil {
		checks["database"] = func(ctx context.Context) error { return db.PingContext(ctx) }
	}
	if client := store.Redis(); client != nil {
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}
