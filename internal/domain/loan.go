package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoanStatusActive    = "active"
	LoanStatusCompleted = "completed"
)

// Lender is the party that owns the loan record.
type Lender struct {
	ID   string `json:"id" db:"lender_id"`
	Name string `json:"name" db:"lender_name"`
}

// Borrower is a snapshot of the counterparty taken at loan creation.
type Borrower struct {
	Name  string `json:"name" db:"borrower_name"`
	Email string `json:"email,omitempty" db:"borrower_email"`
	Phone string `json:"phone,omitempty" db:"borrower_phone"`
}

// Loan represents a tracked loan together with its generated schedule
type Loan struct {
	ID             string          `json:"id"`
	Principal      decimal.Decimal `json:"principal"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	DurationMonths int             `json:"duration_months"`
	StartDate      time.Time       `json:"start_date"`
	Lender         Lender          `json:"lender"`
	Borrower       Borrower        `json:"borrower"`
	Schedule       []Installment   `json:"schedule"`
	Status         string          `json:"status"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Clone returns a copy that shares no installment state with l.
func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	c := *l
	c.Schedule = make([]Installment, len(l.Schedule))
	for i, inst := range l.Schedule {
		c.Schedule[i] = inst.clone()
	}
	return &c
}

// AllPaid reports whether every installment has been paid.
func (l *Loan) AllPaid() bool {
	if len(l.Schedule) == 0 {
		return false
	}
	for _, inst := range l.Schedule {
		if !inst.Paid {
			return false
		}
	}
	return true
}

// LoanFilter narrows a loan listing. Empty fields match everything.
type LoanFilter struct {
	LenderID      string
	BorrowerEmail string
	BorrowerPhone string
	Status        string
}

// Match reports whether the loan satisfies every non-empty field of f.
func (f LoanFilter) Match(l *Loan) bool {
	if f.LenderID != "" && l.Lender.ID != f.LenderID {
		return false
	}
	if f.BorrowerEmail != "" && l.Borrower.Email != f.BorrowerEmail {
		return false
	}
	if f.BorrowerPhone != "" && l.Borrower.Phone != f.BorrowerPhone {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	return true
}

// DTOs for requests and responses

type BorrowerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone string `json:"phone" validate:"required_without=Email,omitempty,min=5,max=20"`
}

type CreateLoanRequest struct {
	LenderID       string          `json:"lender_id" validate:"required"`
	LenderName     string          `json:"lender_name" validate:"required"`
	Borrower       BorrowerRequest `json:"borrower"`
	Principal      decimal.Decimal `json:"principal" validate:"gt=0"`
	InterestRate   decimal.Decimal `json:"interest_rate" validate:"gte=0"`
	DurationMonths int             `json:"duration_months" validate:"gt=0"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
}

type QuoteRequest struct {
	Principal      decimal.Decimal `json:"principal" validate:"gt=0"`
	InterestRate   decimal.Decimal `json:"interest_rate" validate:"gte=0"`
	DurationMonths int             `json:"duration_months" validate:"gt=0"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
}

type QuoteResponse struct {
	EMI           decimal.Decimal `json:"emi"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Schedule      []Installment   `json:"schedule"`
}

// LoanSummary is the set of read-only aggregates derived from a stored schedule.
type LoanSummary struct {
	LoanID          string          `json:"loan_id"`
	Status          string          `json:"status"`
	Principal       decimal.Decimal `json:"principal"`
	TotalInterest   decimal.Decimal `json:"total_interest"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	ProgressPercent decimal.Decimal `json:"progress_percent"`
	NextDueDate     *time.Time      `json:"next_due_date,omitempty"`
	OverdueCount    int             `json:"overdue_count"`
}

type ScheduleResponse struct {
	LoanID   string        `json:"loan_id"`
	Schedule []Installment `json:"schedule"`
}
