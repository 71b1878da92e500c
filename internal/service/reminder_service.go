package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/internal/repository"
	"github.com/segyhp/loan-tracker/pkg/amortization"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

// ReminderService finds the unpaid installments a lender should be nudged about.
type ReminderService struct {
	loanRepo repository.LoanRepository
	logger   *slog.Logger
}

func NewReminderService(loanRepo repository.LoanRepository, logger *slog.Logger) *ReminderService {
	return &ReminderService{
		loanRepo: loanRepo,
		logger:   logger,
	}
}

// DueReminders returns one reminder per unpaid installment of an active loan
// that is due in exactly 7, 3 or 1 days, or is already overdue, as of now.
func (s *ReminderService) DueReminders(ctx context.Context, now time.Time) ([]domain.Reminder, error) {
	loans, err := s.loanRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	reminders := make([]domain.Reminder, 0)
	for _, loan := range loans {
		if loan.Status != domain.LoanStatusActive {
			continue
		}

		for _, inst := range loan.Schedule {
			if inst.Paid {
				continue
			}

			days := amortization.DaysUntilDue(inst.DueDate, now)
			kind := reminderKind(days)
			if kind == "" {
				continue
			}

			reminders = append(reminders, domain.Reminder{
				Kind:         kind,
				LoanID:       loan.ID,
				LenderID:     loan.Lender.ID,
				BorrowerName: loan.Borrower.Name,
				Month:        inst.Month,
				Amount:       inst.EMI,
				DueDate:      inst.DueDate,
				DaysUntilDue: days,
			})
		}
	}

	s.logger.DebugContext(ctx, "reminders evaluated",
		slog.Int("loans", len(loans)),
		slog.Int("reminders", len(reminders)),
	)
	return reminders, nil
}

func reminderKind(days int) string {
	switch {
	case days < 0:
		return domain.ReminderOverdue
	case days == 7:
		return domain.ReminderDueIn7Days
	case days == 3:
		return domain.ReminderDueIn3Days
	case days == 1:
		return domain.ReminderDueIn1Day
	default:
		return ""
	}
}
