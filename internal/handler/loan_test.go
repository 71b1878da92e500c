package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/internal/handler"
	"github.com/segyhp/loan-tracker/internal/logging"
	"github.com/segyhp/loan-tracker/internal/mocks"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(loans *mocks.MockLoanService, users *mocks.MockUserService) http.Handler {
	logger := logging.Discard()
	return handler.NewRouter(
		handler.NewLoanHandler(loans, logger),
		handler.NewUserHandler(users),
		handler.NewHealthHandler(time.Second, nil),
		nil,
		logger,
	)
}

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}, userID string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(handler.UserIDHeader, userID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func sampleLoan() *domain.Loan {
	return &domain.Loan{
		ID:             "loan-1",
		Principal:      decimal.NewFromInt(50000),
		InterestRate:   decimal.NewFromInt(12),
		DurationMonths: 2,
		Lender:         domain.Lender{ID: "lender-1", Name: "Alice"},
		Borrower:       domain.Borrower{Name: "Bob", Email: "bob@example.com"},
		Schedule: []domain.Installment{
			{Month: 1, EMI: decimal.RequireFromString("25375.62")},
			{Month: 2, EMI: decimal.RequireFromString("25375.63")},
		},
		Status:  domain.LoanStatusActive,
		Version: 1,
	}
}

func TestLoanHandler_CreateLoan(t *testing.T) {
	body := map[string]interface{}{
		"lender_id":       "ignored",
		"lender_name":     "Alice",
		"borrower":        map[string]string{"name": "Bob", "email": "bob@example.com"},
		"principal":       "50000",
		"interest_rate":   12,
		"duration_months": 2,
	}

	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(m *mocks.MockLoanService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "created with caller as lender",
			body: body,
			setupMock: func(m *mocks.MockLoanService) {
				m.On("CreateLoan", mock.Anything, mock.MatchedBy(func(req *domain.CreateLoanRequest) bool {
					return req.LenderID == "lender-1" &&
						req.Principal.Equal(decimal.NewFromInt(50000)) &&
						req.InterestRate.Equal(decimal.NewFromInt(12)) &&
						req.DurationMonths == 2 &&
						req.Borrower.Email == "bob@example.com"
				})).Return(sampleLoan(), nil).Once()
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed body",
			body:           "{not json",
			setupMock:      func(m *mocks.MockLoanService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "terms rejected",
			body: body,
			setupMock: func(m *mocks.MockLoanService) {
				m.On("CreateLoan", mock.Anything, mock.Anything).
					Return(nil, customError.WrapInvalidTerms("principal must be greater than zero")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeInvalidTerms,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loans := &mocks.MockLoanService{}
			tt.setupMock(loans)
			router := newTestRouter(loans, &mocks.MockUserService{})

			rec, env := doRequest(t, router, http.MethodPost, "/api/v1/loans", tt.body, "lender-1")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, env.Code)
			if tt.expectedStatus == http.StatusCreated {
				var loan domain.Loan
				require.NoError(t, json.Unmarshal(env.Data, &loan))
				assert.Equal(t, "loan-1", loan.ID)
				assert.Len(t, loan.Schedule, 2)
			}
			loans.AssertExpectations(t)
		})
	}
}

func TestLoanHandler_ListLoans(t *testing.T) {
	loans := &mocks.MockLoanService{}
	loans.On("ListLoans", mock.Anything, domain.LoanFilter{
		LenderID:      "lender-1",
		BorrowerEmail: "bob@example.com",
		Status:        domain.LoanStatusActive,
	}).Return([]*domain.Loan{sampleLoan()}, nil).Once()
	router := newTestRouter(loans, &mocks.MockUserService{})

	rec, env := doRequest(t, router, http.MethodGet,
		"/api/v1/loans?borrower_email=bob@example.com&status=active&lender_id=someone-else", nil, "lender-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got []domain.Loan
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got, 1)
	loans.AssertExpectations(t)
}

func TestLoanHandler_GetLoan(t *testing.T) {
	tests := []struct {
		name           string
		userID         string
		setupMock      func(m *mocks.MockLoanService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "found",
			userID: "lender-1",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "found without caller identity",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "another lender",
			userID: "lender-2",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "not found",
			userID: "lender-1",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("GetLoan", mock.Anything, "loan-1").Return(nil, customError.WrapLoanNotFound("loan-1"))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   customError.ErrCodeLoanNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loans := &mocks.MockLoanService{}
			tt.setupMock(loans)
			router := newTestRouter(loans, &mocks.MockUserService{})

			rec, env := doRequest(t, router, http.MethodGet, "/api/v1/loans/loan-1", nil, tt.userID)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, env.Code)
			loans.AssertExpectations(t)
		})
	}
}

func TestLoanHandler_GetSchedule(t *testing.T) {
	loans := &mocks.MockLoanService{}
	loans.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
	router := newTestRouter(loans, &mocks.MockUserService{})

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/loans/loan-1/schedule", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var schedule domain.ScheduleResponse
	require.NoError(t, json.Unmarshal(env.Data, &schedule))
	assert.Equal(t, "loan-1", schedule.LoanID)
	require.Len(t, schedule.Schedule, 2)
	assert.Equal(t, "25375.63", schedule.Schedule[1].EMI.StringFixed(2))
}

func TestLoanHandler_GetSummary(t *testing.T) {
	loans := &mocks.MockLoanService{}
	loans.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
	loans.On("GetSummary", mock.Anything, "loan-1").Return(&domain.LoanSummary{
		LoanID:          "loan-1",
		Status:          domain.LoanStatusActive,
		ProgressPercent: decimal.RequireFromString("50"),
	}, nil)
	router := newTestRouter(loans, &mocks.MockUserService{})

	rec, env := doRequest(t, router, http.MethodGet, "/api/v1/loans/loan-1/summary", nil, "lender-1")

	assert.Equal(t, http.StatusOK, rec.Code)
	var summary domain.LoanSummary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, "50", summary.ProgressPercent.String())
	loans.AssertExpectations(t)
}

func TestLoanHandler_PayInstallment(t *testing.T) {
	paid := sampleLoan()
	paid.Schedule[0].Paid = true

	tests := []struct {
		name           string
		path           string
		setupMock      func(m *mocks.MockLoanService)
		expectedStatus int
		expectedCode   string
		expectDetail   bool
	}{
		{
			name: "paid",
			path: "/api/v1/loans/loan-1/installments/0/pay",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
				m.On("MarkInstallmentPaid", mock.Anything, "loan-1", 0).Return(paid, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "non-numeric index",
			path:           "/api/v1/loans/loan-1/installments/first/pay",
			setupMock:      func(m *mocks.MockLoanService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "index out of range",
			path: "/api/v1/loans/loan-1/installments/9/pay",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
				m.On("MarkInstallmentPaid", mock.Anything, "loan-1", 9).
					Return(nil, customError.WrapInstallmentNotFound("loan-1", 9))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   customError.ErrCodeInstallmentNotFound,
			expectDetail:   true,
		},
		{
			name: "concurrent update",
			path: "/api/v1/loans/loan-1/installments/1/pay",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
				m.On("MarkInstallmentPaid", mock.Anything, "loan-1", 1).
					Return(nil, customError.WrapVersionConflict("loan-1"))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   customError.ErrCodeVersionConflict,
			expectDetail:   true,
		},
		{
			name: "storage failure",
			path: "/api/v1/loans/loan-1/installments/1/pay",
			setupMock: func(m *mocks.MockLoanService) {
				m.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
				m.On("MarkInstallmentPaid", mock.Anything, "loan-1", 1).
					Return(nil, customError.WrapPersistenceError(errors.New("pq: connection refused")))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   customError.ErrCodePersistence,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loans := &mocks.MockLoanService{}
			tt.setupMock(loans)
			router := newTestRouter(loans, &mocks.MockUserService{})

			rec, env := doRequest(t, router, http.MethodPost, tt.path, nil, "lender-1")

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.expectedCode, env.Code)
			assert.NotContains(t, env.Error, "pq:")
			if tt.expectDetail {
				assert.NotEmpty(t, env.Error)
			}
			loans.AssertExpectations(t)
		})
	}
}

func TestLoanHandler_PayInstallment_OtherLender(t *testing.T) {
	loans := &mocks.MockLoanService{}
	loans.On("GetLoan", mock.Anything, "loan-1").Return(sampleLoan(), nil)
	router := newTestRouter(loans, &mocks.MockUserService{})

	rec, _ := doRequest(t, router, http.MethodPost, "/api/v1/loans/loan-1/installments/0/pay", nil, "lender-2")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	loans.AssertNotCalled(t, "MarkInstallmentPaid", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoanHandler_QuoteSchedule(t *testing.T) {
	loans := &mocks.MockLoanService{}
	loans.On("QuoteSchedule", mock.MatchedBy(func(req *domain.QuoteRequest) bool {
		return req.Principal.Equal(decimal.NewFromInt(1000)) && req.DurationMonths == 1
	})).Return(&domain.QuoteResponse{
		EMI:           decimal.RequireFromString("1006.25"),
		TotalInterest: decimal.RequireFromString("6.25"),
		TotalAmount:   decimal.RequireFromString("1006.25"),
		Schedule:      []domain.Installment{{Month: 1, EMI: decimal.RequireFromString("1006.25")}},
	}, nil)
	router := newTestRouter(loans, &mocks.MockUserService{})

	rec, env := doRequest(t, router, http.MethodPost, "/api/v1/schedules/quote",
		map[string]interface{}{"principal": 1000, "interest_rate": 7.5, "duration_months": 1}, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var quote domain.QuoteResponse
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	assert.Equal(t, "1006.25", quote.EMI.StringFixed(2))
	loans.AssertExpectations(t)
}
