package service

import (
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/internal/domain"
)

// Decimal places kept by every backend; see loans.principal and
// loans.interest_rate in schema.sql.
const (
	principalPlaces = 2
	ratePlaces      = 4
)

// newValidator returns a validator that compares decimal fields numerically,
// so tags like gt=0 work on amounts. Loan terms are also held to the precision
// storage keeps, so a loan never reads back different from what was scheduled.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterStructValidation(validateTermsPrecision, domain.CreateLoanRequest{}, domain.QuoteRequest{})
	return v
}

func validateTermsPrecision(sl validator.StructLevel) {
	var principal, rate decimal.Decimal
	switch r := sl.Current().Interface().(type) {
	case domain.CreateLoanRequest:
		principal, rate = r.Principal, r.InterestRate
	case domain.QuoteRequest:
		principal, rate = r.Principal, r.InterestRate
	default:
		return
	}

	if !hasPlaces(principal, principalPlaces) {
		sl.ReportError(principal, "Principal", "principal", "decimals", strconv.Itoa(principalPlaces))
	}
	if !hasPlaces(rate, ratePlaces) {
		sl.ReportError(rate, "InterestRate", "interest_rate", "decimals", strconv.Itoa(ratePlaces))
	}
}

// hasPlaces reports whether d carries no more than places significant decimals.
func hasPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}
