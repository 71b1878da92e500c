package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrInvalidTerms    = errors.New("invalid loan terms")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("loan was modified concurrently")
	ErrPersistence     = errors.New("persistence failure")

	ErrLoanNotFound        = fmt.Errorf("loan %w", ErrNotFound)
	ErrInstallmentNotFound = fmt.Errorf("installment %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeInvalidTerms        = "INVALID_TERMS"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeLoanNotFound        = "LOAN_NOT_FOUND"
	ErrCodeInstallmentNotFound = "INSTALLMENT_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeVersionConflict     = "VERSION_CONFLICT"
	ErrCodePersistence         = "PERSISTENCE_ERROR"
)

// Code extracts the business error code from err, or "" when err carries none.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapInvalidTerms(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidTerms,
		reason,
		ErrInvalidTerms,
	)
}

func WrapInvalidRequest(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidRequest,
		err.Error(),
		ErrInvalidRequest,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapInstallmentNotFound(loanID string, index int) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("Installment %d not found on loan %s", index, loanID),
		ErrInstallmentNotFound,
	)
}

func WrapUserNotFound(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User with ID %s not found", userID),
		ErrUserNotFound,
	)
}

func WrapVersionConflict(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeVersionConflict,
		fmt.Sprintf("Loan with ID %s changed since it was read", loanID),
		ErrVersionConflict,
	)
}

// WrapPersistenceError keeps the storage error in the chain so callers can still
// inspect the original cause.
func WrapPersistenceError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodePersistence,
		"storage operation failed",
		fmt.Errorf("%w: %w", ErrPersistence, err),
	)
}
