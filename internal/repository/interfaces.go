package repository

import (
	"context"

	"github.com/segyhp/loan-tracker/internal/domain"
)

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Get retrieves a loan by its ID, or ErrLoanNotFound
	Get(ctx context.Context, loanID string) (*domain.Loan, error)

	// Save upserts the full loan record. A loan with Version 0 is inserted;
	// otherwise the stored version must equal loan.Version or ErrVersionConflict
	// is returned. On success loan.Version is advanced.
	Save(ctx context.Context, loan *domain.Loan) error

	// List retrieves every loan; filtering is left to the caller
	List(ctx context.Context) ([]*domain.Loan, error)
}

// UserRepository defines the interface for user profile operations
type UserRepository interface {
	// Get retrieves a profile by user ID, or ErrUserNotFound
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)

	// Save upserts a profile
	Save(ctx context.Context, user *domain.UserProfile) error
}
