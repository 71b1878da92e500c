package amortization

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// TotalInterest sums the interest column.
func TotalInterest(schedule []domain.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range schedule {
		total = total.Add(inst.Interest)
	}
	return utils.RoundCurrency(total)
}

// TotalAmount is what the borrower repays over the life of the loan.
func TotalAmount(principal decimal.Decimal, schedule []domain.Installment) decimal.Decimal {
	return utils.RoundCurrency(principal.Add(TotalInterest(schedule)))
}

// ProgressPercent is the share of installments already paid, 0 for an empty schedule.
func ProgressPercent(schedule []domain.Installment) decimal.Decimal {
	if len(schedule) == 0 {
		return decimal.Zero
	}
	paid := 0
	for _, inst := range schedule {
		if inst.Paid {
			paid++
		}
	}
	pct := decimal.NewFromInt(int64(paid)).Mul(hundred).Div(decimal.NewFromInt(int64(len(schedule))))
	return utils.RoundCurrency(pct)
}

// TotalPaid sums the EMI of paid installments.
func TotalPaid(schedule []domain.Installment) decimal.Decimal {
	return sumEMI(schedule, true)
}

// RemainingAmount sums the EMI of unpaid installments.
func RemainingAmount(schedule []domain.Installment) decimal.Decimal {
	return sumEMI(schedule, false)
}

func sumEMI(schedule []domain.Installment, paid bool) decimal.Decimal {
	total := decimal.Zero
	for _, inst := range schedule {
		if inst.Paid == paid {
			total = total.Add(inst.EMI)
		}
	}
	return utils.RoundCurrency(total)
}

// NextDueDate returns the due date of the first unpaid installment, or nil when
// everything has been paid.
func NextDueDate(schedule []domain.Installment) *time.Time {
	for _, inst := range schedule {
		if !inst.Paid {
			due := inst.DueDate
			return &due
		}
	}
	return nil
}

// IsOverdue reports whether an unpaid installment is past its due date.
func IsOverdue(inst domain.Installment, now time.Time) bool {
	if inst.Paid {
		return false
	}
	return utils.IsDateOverdue(inst.DueDate, now)
}

// DaysUntilDue is the ceiling day count from now to dueDate; negative when overdue.
func DaysUntilDue(dueDate, now time.Time) int {
	return utils.DaysUntilDue(dueDate, now)
}

// Summarize computes every aggregate for a stored loan.
func Summarize(loan *domain.Loan, now time.Time) domain.LoanSummary {
	overdue := 0
	for _, inst := range loan.Schedule {
		if IsOverdue(inst, now) {
			overdue++
		}
	}

	return domain.LoanSummary{
		LoanID:          loan.ID,
		Status:          loan.Status,
		Principal:       loan.Principal,
		TotalInterest:   TotalInterest(loan.Schedule),
		TotalAmount:     TotalAmount(loan.Principal, loan.Schedule),
		TotalPaid:       TotalPaid(loan.Schedule),
		RemainingAmount: RemainingAmount(loan.Schedule),
		ProgressPercent: ProgressPercent(loan.Schedule),
		NextDueDate:     NextDueDate(loan.Schedule),
		OverdueCount:    overdue,
	}
}
