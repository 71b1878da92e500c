package amortization

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/utils"
)

// interestPrecision bounds the digits carried by the running balance between months.
const interestPrecision = 10

// GenerateSchedule builds the reducing-balance installment sequence for the given terms.
// Every month records the same EMI; only the balance is floored at zero, so rounding of
// the EMI can leave a small residual or clear the balance before the last month.
// A zero startDate means today. Due dates step one calendar month at a time from startDate.
func GenerateSchedule(principal, annualRatePercent decimal.Decimal, months int, startDate time.Time) ([]domain.Installment, error) {
	emi, err := CalculateEMI(principal, annualRatePercent, months)
	if err != nil {
		return nil, err
	}

	if startDate.IsZero() {
		startDate = utils.StartOfDay(time.Now().UTC())
	}

	monthlyRate := decimal.Zero
	if !annualRatePercent.IsZero() {
		monthlyRate = MonthlyRate(annualRatePercent)
	}

	// A rounded EMI that cannot cover the first month's interest would grow the balance.
	if emi.IsZero() || emi.LessThan(principal.Mul(monthlyRate)) {
		return nil, customError.WrapInvalidTerms("monthly installment rounds below the interest it must cover")
	}

	schedule := make([]domain.Installment, 0, months)
	balance := principal
	currentDate := startDate

	for month := 1; month <= months; month++ {
		// Rounded to interestPrecision so the balance keeps a bounded number of digits.
		interest := balance.Mul(monthlyRate).Round(interestPrecision)
		principalPortion := emi.Sub(interest)

		balance = decimal.Max(decimal.Zero, balance.Sub(principalPortion))
		dueDate := utils.AddMonth(currentDate)

		schedule = append(schedule, domain.Installment{
			Month:     month,
			EMI:       emi,
			Principal: utils.RoundCurrency(principalPortion),
			Interest:  utils.RoundCurrency(interest),
			Balance:   utils.RoundCurrency(balance),
			DueDate:   dueDate,
		})

		currentDate = dueDate
	}

	return schedule, nil
}
