package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the minor-unit precision every stored amount is rounded to.
const CurrencyPlaces = 2

// RoundCurrency rounds half away from zero to two decimal places.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// AddMonth advances t by one calendar month.
// Overflowing days normalise forward, so Jan 31 becomes Mar 3 (Mar 2 in leap years).
func AddMonth(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysUntilDue returns the ceiling of (dueDate - now) in whole days.
// Negative values mean the due date has passed.
func DaysUntilDue(dueDate, now time.Time) int {
	days := dueDate.Sub(now).Hours() / 24
	return int(math.Ceil(days))
}

// IsDateOverdue checks if now is strictly past the due date
func IsDateOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}
