package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Installment is one month of a loan's amortization schedule. Month is 1-indexed.
type Installment struct {
	Month     int             `json:"month" db:"month"`
	EMI       decimal.Decimal `json:"emi" db:"emi"`
	Principal decimal.Decimal `json:"principal" db:"principal"`
	Interest  decimal.Decimal `json:"interest" db:"interest"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	DueDate   time.Time       `json:"due_date" db:"due_date"`
	Paid      bool            `json:"paid" db:"paid"`
	PaidDate  *time.Time      `json:"paid_date" db:"paid_date"`
}

func (i Installment) clone() Installment {
	if i.PaidDate != nil {
		t := *i.PaidDate
		i.PaidDate = &t
	}
	return i
}
