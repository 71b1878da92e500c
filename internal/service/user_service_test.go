package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/internal/logging"
	"github.com/segyhp/loan-tracker/internal/mocks"
	"github.com/segyhp/loan-tracker/internal/repository"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

func newTestUserService(repo repository.UserRepository) *UserService {
	s := NewUserService(repo, logging.Discard())
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestUserService_RegisterAndGet(t *testing.T) {
	s := newTestUserService(repository.NewMemoryUserRepository())
	ctx := context.Background()

	user, err := s.Register(ctx, &domain.RegisterUserRequest{ID: "user-1", Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, fixedNow, user.CreatedAt)

	got, err := s.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestUserService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		request domain.RegisterUserRequest
	}{
		{name: "missing id", request: domain.RegisterUserRequest{Name: "Alice", Email: "alice@example.com"}},
		{name: "missing name", request: domain.RegisterUserRequest{ID: "user-1", Email: "alice@example.com"}},
		{name: "bad email", request: domain.RegisterUserRequest{ID: "user-1", Name: "Alice", Email: "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockUserRepository{}
			s := newTestUserService(repo)

			_, err := s.Register(context.Background(), &tt.request)
			assert.Equal(t, customError.ErrCodeInvalidRequest, customError.Code(err))
			assert.ErrorIs(t, err, customError.ErrInvalidRequest)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestUserService_Errors(t *testing.T) {
	connLost := errors.New("connection lost")

	repo := &mocks.MockUserRepository{}
	repo.On("Get", mock.Anything, "ghost").Return(nil, customError.ErrUserNotFound)
	repo.On("Get", mock.Anything, "user-1").Return(nil, connLost)
	repo.On("Save", mock.Anything, mock.Anything).Return(connLost)
	s := newTestUserService(repo)
	ctx := context.Background()

	_, err := s.Get(ctx, "ghost")
	assert.Equal(t, customError.ErrCodeUserNotFound, customError.Code(err))
	assert.ErrorIs(t, err, customError.ErrNotFound)

	_, err = s.Get(ctx, "user-1")
	assert.Equal(t, customError.ErrCodePersistence, customError.Code(err))
	assert.ErrorIs(t, err, connLost)

	_, err = s.Register(ctx, &domain.RegisterUserRequest{ID: "user-1", Name: "Alice", Email: "alice@example.com"})
	assert.Equal(t, customError.ErrCodePersistence, customError.Code(err))

	repo.AssertExpectations(t)
}
