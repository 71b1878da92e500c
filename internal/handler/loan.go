package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/pkg/response"
)

// UserIDHeader carries the identity an upstream authenticator verified.
const UserIDHeader = "X-User-ID"

type LoanService interface {
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, error)
	GetLoan(ctx context.Context, loanID string) (*domain.Loan, error)
	ListLoans(ctx context.Context, filter domain.LoanFilter) ([]*domain.Loan, error)
	GetSummary(ctx context.Context, loanID string) (*domain.LoanSummary, error)
	QuoteSchedule(request *domain.QuoteRequest) (*domain.QuoteResponse, error)
	MarkInstallmentPaid(ctx context.Context, loanID string, index int) (*domain.Loan, error)
}

type LoanHandler struct {
	service LoanService
	logger  *slog.Logger
}

func NewLoanHandler(service LoanService, logger *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service: service,
		logger:  logger,
	}
}

// CreateLoan handles POST /api/v1/loans. The caller's identity, when present,
// is the lender of the new loan.
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if userID := r.Header.Get(UserIDHeader); userID != "" {
		request.LenderID = userID
	}

	loan, err := h.service.CreateLoan(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, loan)
}

// ListLoans handles GET /api/v1/loans?borrower_email=&borrower_phone=&status=
func (h *LoanHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.LoanFilter{
		LenderID:      query.Get("lender_id"),
		BorrowerEmail: query.Get("borrower_email"),
		BorrowerPhone: query.Get("borrower_phone"),
		Status:        query.Get("status"),
	}
	if userID := r.Header.Get(UserIDHeader); userID != "" {
		filter.LenderID = userID
	}

	loans, err := h.service.ListLoans(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loan, ok := h.loadOwnedLoan(w, r)
	if !ok {
		return
	}
	response.Success(w, loan)
}

func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loan, ok := h.loadOwnedLoan(w, r)
	if !ok {
		return
	}
	response.Success(w, domain.ScheduleResponse{LoanID: loan.ID, Schedule: loan.Schedule})
}

func (h *LoanHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.loadOwnedLoan(w, r); !ok {
		return
	}

	summary, err := h.service.GetSummary(r.Context(), mux.Vars(r)["loanId"])
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, summary)
}

// PayInstallment handles POST /api/v1/loans/{loanId}/installments/{index}/pay
// where index is 0-based.
func (h *LoanHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		response.BadRequest(w, "Installment index must be an integer", err)
		return
	}

	if _, ok := h.loadOwnedLoan(w, r); !ok {
		return
	}

	loan, err := h.service.MarkInstallmentPaid(r.Context(), mux.Vars(r)["loanId"], index)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

// QuoteSchedule handles POST /api/v1/schedules/quote and stores nothing
func (h *LoanHandler) QuoteSchedule(w http.ResponseWriter, r *http.Request) {
	var request domain.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	quote, err := h.service.QuoteSchedule(&request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, quote)
}

// loadOwnedLoan fetches the loan named in the path and rejects callers that
// identify as someone other than its lender.
func (h *LoanHandler) loadOwnedLoan(w http.ResponseWriter, r *http.Request) (*domain.Loan, bool) {
	loanID := mux.Vars(r)["loanId"]

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}

	if userID := r.Header.Get(UserIDHeader); userID != "" && userID != loan.Lender.ID {
		h.logger.WarnContext(r.Context(), "loan access denied",
			slog.String("loan_id", loanID),
			slog.String("user_id", userID),
		)
		response.Forbidden(w, "Loan belongs to another lender")
		return nil, false
	}

	return loan, true
}
