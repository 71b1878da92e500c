package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/internal/metrics"
	"github.com/segyhp/loan-tracker/internal/repository"
	"github.com/segyhp/loan-tracker/pkg/amortization"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/utils"
)

type LoanService struct {
	loanRepo repository.LoanRepository
	logger   *slog.Logger
	metrics  *metrics.Recorder
	validate *validator.Validate
	locks    *keyedMutex
	now      func() time.Time
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	logger *slog.Logger,
	recorder *metrics.Recorder,
) *LoanService {
	return &LoanService{
		loanRepo: loanRepo,
		logger:   logger,
		metrics:  recorder,
		validate: newValidator(),
		locks:    newKeyedMutex(),
		now:      time.Now,
	}
}

// CreateLoan validates the terms, generates the schedule and stores the new loan
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapInvalidRequest(err)
	}

	now := s.now()
	startDate := utils.StartOfDay(now.UTC())
	if request.StartDate != nil {
		startDate = *request.StartDate
	}

	schedule, err := amortization.GenerateSchedule(request.Principal, request.InterestRate, request.DurationMonths, startDate)
	if err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		ID:             uuid.NewString(),
		Principal:      request.Principal,
		InterestRate:   request.InterestRate,
		DurationMonths: request.DurationMonths,
		StartDate:      startDate,
		Lender: domain.Lender{
			ID:   request.LenderID,
			Name: request.LenderName,
		},
		Borrower: domain.Borrower{
			Name:  request.Borrower.Name,
			Email: request.Borrower.Email,
			Phone: request.Borrower.Phone,
		},
		Schedule:  schedule,
		Status:    domain.LoanStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.loanRepo.Save(ctx, loan); err != nil {
		return nil, s.storageError(loan.ID, err)
	}

	s.metrics.LoanCreated()
	s.logger.InfoContext(ctx, "loan created",
		slog.String("loan_id", loan.ID),
		slog.String("lender_id", loan.Lender.ID),
		slog.String("principal", loan.Principal.String()),
		slog.Int("duration_months", loan.DurationMonths),
	)

	return loan, nil
}

// GetLoan returns the stored loan with its schedule
func (s *LoanService) GetLoan(ctx context.Context, loanID string) (*domain.Loan, error) {
	loan, err := s.loanRepo.Get(ctx, loanID)
	if err != nil {
		return nil, s.storageError(loanID, err)
	}
	return loan, nil
}

// ListLoans returns every stored loan matching filter, oldest first
func (s *LoanService) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error) {
	loans, err := s.loanRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	matched := make([]*domain.Loan, 0, len(loans))
	for _, loan := range loans {
		if filter.Match(loan) {
			matched = append(matched, loan)
		}
	}
	return matched, nil
}

// GetSummary computes the aggregates of a stored loan as of now
func (s *LoanService) GetSummary(ctx context.Context, loanID string) (*domain.LoanSummary, error) {
	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	summary := amortization.Summarize(loan, s.now())
	return &summary, nil
}

// QuoteSchedule previews the EMI and schedule for the given terms without storing anything
func (s *LoanService) QuoteSchedule(request *domain.QuoteRequest) (*domain.QuoteResponse, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapInvalidRequest(err)
	}

	var startDate time.Time
	if request.StartDate != nil {
		startDate = *request.StartDate
	} else {
		startDate = utils.StartOfDay(s.now().UTC())
	}

	emi, err := amortization.CalculateEMI(request.Principal, request.InterestRate, request.DurationMonths)
	if err != nil {
		return nil, err
	}

	schedule, err := amortization.GenerateSchedule(request.Principal, request.InterestRate, request.DurationMonths, startDate)
	if err != nil {
		return nil, err
	}

	return &domain.QuoteResponse{
		EMI:           emi,
		TotalInterest: amortization.TotalInterest(schedule),
		TotalAmount:   amortization.TotalAmount(request.Principal, schedule),
		Schedule:      schedule,
	}, nil
}

// MarkInstallmentPaid records payment of the installment at the 0-based index.
// Marking an installment that is already paid returns the loan unchanged.
func (s *LoanService) MarkInstallmentPaid(ctx context.Context, loanID string, index int) (*domain.Loan, error) {
	unlock := s.locks.Lock(loanID)
	defer unlock()

	loan, err := s.loanRepo.Get(ctx, loanID)
	if err != nil {
		return nil, s.storageError(loanID, err)
	}

	if index < 0 || index >= len(loan.Schedule) {
		return nil, customError.WrapInstallmentNotFound(loanID, index)
	}

	if loan.Schedule[index].Paid {
		return loan, nil
	}

	now := s.now()
	loan.Schedule[index].Paid = true
	loan.Schedule[index].PaidDate = &now
	loan.UpdatedAt = now

	completed := false
	if loan.Status != domain.LoanStatusCompleted && loan.AllPaid() {
		loan.Status = domain.LoanStatusCompleted
		completed = true
	}

	if err := s.loanRepo.Save(ctx, loan); err != nil {
		return nil, s.storageError(loanID, err)
	}

	s.metrics.InstallmentPaid()
	s.logger.InfoContext(ctx, "installment paid",
		slog.String("loan_id", loanID),
		slog.Int("month", loan.Schedule[index].Month),
		slog.String("amount", loan.Schedule[index].EMI.String()),
	)

	if completed {
		s.metrics.LoanCompleted()
		s.logger.InfoContext(ctx, "loan completed", slog.String("loan_id", loanID))
	}

	return loan, nil
}

// storageError converts a repository error into the matching business error.
func (s *LoanService) storageError(loanID string, err error) error {
	switch {
	case errors.Is(err, customError.ErrLoanNotFound):
		return customError.WrapLoanNotFound(loanID)
	case errors.Is(err, customError.ErrVersionConflict):
		s.logger.Warn("concurrent loan update rejected", slog.String("loan_id", loanID))
		return customError.WrapVersionConflict(loanID)
	default:
		s.logger.Error("loan storage failed", slog.String("loan_id", loanID), slog.Any("error", err))
		return customError.WrapPersistenceError(err)
	}
}
