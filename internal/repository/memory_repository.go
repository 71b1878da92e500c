package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/segyhp/loan-tracker/internal/domain"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

// memoryLoanRepository keeps loans in process memory, the device-local backend.
type memoryLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*domain.Loan
}

func NewMemoryLoanRepository() LoanRepository {
	return &memoryLoanRepository{loans: make(map[string]*domain.Loan)}
}

func (r *memoryLoanRepository) Get(ctx context.Context, loanID string) (*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loan, ok := r.loans[loanID]
	if !ok {
		return nil, customError.ErrLoanNotFound
	}
	return loan.Clone(), nil
}

func (r *memoryLoanRepository) Save(ctx context.Context, loan *domain.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.loans[loan.ID]
	switch {
	case loan.Version == 0 && exists:
		return customError.ErrVersionConflict
	case loan.Version != 0 && (!exists || current.Version != loan.Version):
		return customError.ErrVersionConflict
	}

	loan.Version++
	r.loans[loan.ID] = loan.Clone()
	return nil
}

func (r *memoryLoanRepository) List(ctx context.Context) ([]*domain.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loans := make([]*domain.Loan, 0, len(r.loans))
	for _, loan := range r.loans {
		loans = append(loans, loan.Clone())
	}
	sort.Slice(loans, func(i, j int) bool {
		return loans[i].CreatedAt.Before(loans[j].CreatedAt)
	})
	return loans, nil
}

type memoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]domain.UserProfile
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]domain.UserProfile)}
}

func (r *memoryUserRepository) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, customError.ErrUserNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) Save(ctx context.Context, user *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[user.ID] = *user
	return nil
}
