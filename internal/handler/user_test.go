package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/internal/mocks"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

func TestUserHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		setupMock      func(m *mocks.MockUserService)
		expectedStatus int
	}{
		{
			name:   "registered for caller",
			userID: "user-1",
			setupMock: func(m *mocks.MockUserService) {
				m.On("Register", mock.Anything, &domain.RegisterUserRequest{
					ID: "user-1", Name: "Alice", Email: "alice@example.com",
				}).Return(&domain.UserProfile{ID: "user-1", Name: "Alice", Email: "alice@example.com"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing identity",
			setupMock:      func(m *mocks.MockUserService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "invalid profile",
			userID: "user-1",
			setupMock: func(m *mocks.MockUserService) {
				m.On("Register", mock.Anything, mock.Anything).
					Return(nil, customError.WrapInvalidRequest(customError.ErrInvalidRequest))
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.MockUserService{}
			tt.setupMock(users)
			router := newTestRouter(&mocks.MockLoanService{}, users)

			rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/users",
				map[string]string{"id": "spoofed", "name": "Alice", "email": "alice@example.com"}, tt.userID)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			users.AssertExpectations(t)
		})
	}
}

func TestUserHandler_Get(t *testing.T) {
	users := &mocks.MockUserService{}
	users.On("Get", mock.Anything, "user-1").Return(&domain.UserProfile{ID: "user-1", Name: "Alice"}, nil)
	users.On("Get", mock.Anything, "ghost").Return(nil, customError.WrapUserNotFound("ghost"))
	router := newTestRouter(&mocks.MockLoanService{}, users)

	rec, _ := doRequest(t, router, http.MethodGet, "/api/v1/users/user-1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/users/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, customError.ErrCodeUserNotFound, env.Code)

	users.AssertExpectations(t)
}
