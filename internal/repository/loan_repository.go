package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

//go:embed schema.sql
var schema string

// Migrate creates the tables the postgres repositories rely on.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

const (
	loanColumns = `id, principal, interest_rate, duration_months, start_date, lender_id, lender_name,
		borrower_name, borrower_email, borrower_phone, status, version, created_at, updated_at`
	installmentColumns = `loan_id, month, emi, principal, interest, balance, due_date, paid, paid_date`
)

type loanRow struct {
	ID             string          `db:"id"`
	Principal      decimal.Decimal `db:"principal"`
	InterestRate   decimal.Decimal `db:"interest_rate"`
	DurationMonths int             `db:"duration_months"`
	StartDate      time.Time       `db:"start_date"`
	LenderID       string          `db:"lender_id"`
	LenderName     string          `db:"lender_name"`
	BorrowerName   string          `db:"borrower_name"`
	BorrowerEmail  string          `db:"borrower_email"`
	BorrowerPhone  string          `db:"borrower_phone"`
	Status         string          `db:"status"`
	Version        int             `db:"version"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type installmentRow struct {
	LoanID string `db:"loan_id"`
	domain.Installment
}

func (r loanRow) toDomain(schedule []domain.Installment) *domain.Loan {
	if schedule == nil {
		schedule = []domain.Installment{}
	}
	return &domain.Loan{
		ID:             r.ID,
		Principal:      r.Principal,
		InterestRate:   r.InterestRate,
		DurationMonths: r.DurationMonths,
		StartDate:      r.StartDate,
		Lender:         domain.Lender{ID: r.LenderID, Name: r.LenderName},
		Borrower:       domain.Borrower{Name: r.BorrowerName, Email: r.BorrowerEmail, Phone: r.BorrowerPhone},
		Schedule:       schedule,
		Status:         r.Status,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Get(ctx context.Context, loanID string) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var row loanRow
	if err := r.db.GetContext(ctx, &row, query, loanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.ErrLoanNotFound
		}
		return nil, err
	}

	query = `SELECT ` + installmentColumns + ` FROM loan_installments WHERE loan_id = $1 ORDER BY month`

	var rows []installmentRow
	if err := r.db.SelectContext(ctx, &rows, query, loanID); err != nil {
		return nil, err
	}

	schedule := make([]domain.Installment, 0, len(rows))
	for _, ir := range rows {
		schedule = append(schedule, ir.Installment)
	}

	return row.toDomain(schedule), nil
}

func (r *loanRepository) Save(ctx context.Context, loan *domain.Loan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if loan.Version == 0 {
		err = r.insert(ctx, tx, loan)
	} else {
		err = r.update(ctx, tx, loan)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	loan.Version++
	return nil
}

func (r *loanRepository) insert(ctx context.Context, tx *sqlx.Tx, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING
	`

	res, err := tx.ExecContext(ctx, query,
		loan.ID,
		loan.Principal,
		loan.InterestRate,
		loan.DurationMonths,
		loan.StartDate,
		loan.Lender.ID,
		loan.Lender.Name,
		loan.Borrower.Name,
		loan.Borrower.Email,
		loan.Borrower.Phone,
		loan.Status,
		loan.Version+1,
		loan.CreatedAt,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if err := requireOneRow(res); err != nil {
		return err
	}

	query = `
		INSERT INTO loan_installments (` + installmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, inst := range loan.Schedule {
		_, err = tx.ExecContext(ctx, query,
			loan.ID,
			inst.Month,
			inst.EMI,
			inst.Principal,
			inst.Interest,
			inst.Balance,
			inst.DueDate,
			inst.Paid,
			inst.PaidDate,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// update only touches the mutable columns; terms and the generated schedule
// values are fixed once the loan is inserted.
func (r *loanRepository) update(ctx context.Context, tx *sqlx.Tx, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET status = $3, borrower_name = $4, borrower_email = $5, borrower_phone = $6,
			updated_at = $7, version = version + 1
		WHERE id = $1 AND version = $2
	`

	res, err := tx.ExecContext(ctx, query,
		loan.ID,
		loan.Version,
		loan.Status,
		loan.Borrower.Name,
		loan.Borrower.Email,
		loan.Borrower.Phone,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if err := requireOneRow(res); err != nil {
		return err
	}

	query = `
		UPDATE loan_installments
		SET paid = $3, paid_date = $4
		WHERE loan_id = $1 AND month = $2
	`

	for _, inst := range loan.Schedule {
		if _, err := tx.ExecContext(ctx, query, loan.ID, inst.Month, inst.Paid, inst.PaidDate); err != nil {
			return err
		}
	}

	return nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return customError.ErrVersionConflict
	}
	return nil
}

func (r *loanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	var rows []loanRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+loanColumns+` FROM loans ORDER BY created_at`); err != nil {
		return nil, err
	}

	var instRows []installmentRow
	query := `SELECT ` + installmentColumns + ` FROM loan_installments ORDER BY loan_id, month`
	if err := r.db.SelectContext(ctx, &instRows, query); err != nil {
		return nil, err
	}

	schedules := make(map[string][]domain.Installment, len(rows))
	for _, ir := range instRows {
		schedules[ir.LoanID] = append(schedules[ir.LoanID], ir.Installment)
	}

	loans := make([]*domain.Loan, 0, len(rows))
	for _, row := range rows {
		loans = append(loans, row.toDomain(schedules[row.ID]))
	}
	return loans, nil
}
