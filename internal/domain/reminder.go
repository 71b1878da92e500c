package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReminderDueIn7Days = "due_in_7_days"
	ReminderDueIn3Days = "due_in_3_days"
	ReminderDueIn1Day  = "due_in_1_day"
	ReminderOverdue    = "overdue"
)

// Reminder flags one unpaid installment that needs the lender's attention today.
type Reminder struct {
	Kind         string          `json:"kind"`
	LoanID       string          `json:"loan_id"`
	LenderID     string          `json:"lender_id"`
	BorrowerName string          `json:"borrower_name"`
	Month        int             `json:"month"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      time.Time       `json:"due_date"`
	DaysUntilDue int             `json:"days_until_due"`
}
