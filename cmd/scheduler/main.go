package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/loan-tracker/internal/config"
	"github.com/segyhp/loan-tracker/internal/logging"
	"github.com/segyhp/loan-tracker/internal/repository"
	"github.com/segyhp/loan-tracker/internal/service"
)

// reminderTimeout bounds a single reminder sweep.
const reminderTimeout = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("starting reminder scheduler", slog.String("cron", cfg.Scheduler.Cron))

	store, err := repository.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to open storage", slog.String("driver", cfg.Storage.Driver), slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("memory storage is private to this process; the scheduler will see no loans")
	}

	reminders := service.NewReminderService(store.Loans, logger)
	loc := cfg.Location()

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	job := reminderJob(reminders, logger, func() time.Time { return time.Now().In(loc) })
	if _, err := c.AddFunc(cfg.Scheduler.Cron, job); err != nil {
		logger.Error("failed to schedule reminder job", slog.String("cron", cfg.Scheduler.Cron), slog.Any("error", err))
		os.Exit(1)
	}

	// Start the scheduler
	c.Start()
	logger.Info("scheduler started")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}

// reminderJob evaluates reminders as of clock() and logs one line per reminder.
// Delivery to borrowers happens outside this process.
func reminderJob(reminders *service.ReminderService, logger *slog.Logger, clock func() time.Time) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), reminderTimeout)
		defer cancel()

		due, err := reminders.DueReminders(ctx, clock())
		if err != nil {
			logger.Error("reminder sweep failed", slog.Any("error", err))
			return
		}

		for _, r := range due {
			logger.Info("payment reminder",
				slog.String("kind", r.Kind),
				slog.String("loan_id", r.LoanID),
				slog.String("lender_id", r.LenderID),
				slog.String("borrower", r.BorrowerName),
				slog.Int("month", r.Month),
				slog.String("amount", r.Amount.StringFixed(2)),
				slog.Time("due_date", r.DueDate),
				slog.Int("days_until_due", r.DaysUntilDue),
			)
		}

		logger.Info("reminder sweep finished", slog.Int("reminders", len(due)))
	}
}
