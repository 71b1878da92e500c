// Package amortization computes reducing-balance EMI schedules and the
// read-only aggregates derived from them. Every function here is pure.
package amortization

import (
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/utils"
)

// ratePrecision is the number of decimal places the monthly rate and the
// compounding factor are held at.
const ratePrecision = 18

var (
	one         = decimal.NewFromInt(1)
	monthsToPct = decimal.NewFromInt(1200)
)

// ValidateTerms rejects terms the formula is undefined for.
func ValidateTerms(principal, annualRatePercent decimal.Decimal, months int) error {
	if !principal.IsPositive() {
		return customError.WrapInvalidTerms("principal must be greater than zero")
	}
	if annualRatePercent.IsNegative() {
		return customError.WrapInvalidTerms("interest rate must not be negative")
	}
	if months <= 0 {
		return customError.WrapInvalidTerms("duration must be at least one month")
	}
	return nil
}

// MonthlyRate converts an annual percentage into a per-month fraction.
// Formula: annualRatePercent / 12 / 100
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.DivRound(monthsToPct, ratePrecision)
}

// CalculateEMI returns the fixed monthly installment rounded to two places.
// Formula: P * r * (1+r)^n / ((1+r)^n - 1), or P / n when the rate is zero.
func CalculateEMI(principal, annualRatePercent decimal.Decimal, months int) (decimal.Decimal, error) {
	if err := ValidateTerms(principal, annualRatePercent, months); err != nil {
		return decimal.Zero, err
	}

	if annualRatePercent.IsZero() {
		return utils.RoundCurrency(principal.Div(decimal.NewFromInt(int64(months)))), nil
	}

	r := MonthlyRate(annualRatePercent)
	factor := compound(r, months)

	emi := principal.Mul(r).Mul(factor).Div(factor.Sub(one))
	return utils.RoundCurrency(emi), nil
}

// compound returns (1+r)^n with every step held at ratePrecision places so the
// result is identical on every platform.
func compound(r decimal.Decimal, n int) decimal.Decimal {
	base := one.Add(r)
	factor := one
	for i := 0; i < n; i++ {
		factor = factor.Mul(base).Round(ratePrecision)
	}
	return factor
}
