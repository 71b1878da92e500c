package handler

import (
	"errors"
	"net/http"

	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/response"
)

var statusByCode = map[string]int{
	customError.ErrCodeInvalidTerms:        http.StatusBadRequest,
	customError.ErrCodeInvalidRequest:      http.StatusBadRequest,
	customError.ErrCodeLoanNotFound:        http.StatusNotFound,
	customError.ErrCodeInstallmentNotFound: http.StatusNotFound,
	customError.ErrCodeUserNotFound:        http.StatusNotFound,
	customError.ErrCodeVersionConflict:     http.StatusConflict,
	customError.ErrCodePersistence:         http.StatusInternalServerError,
}

// writeError renders err with the HTTP status matching its business code.
// Storage details are not echoed back to the client.
func writeError(w http.ResponseWriter, err error) {
	var be *customError.BusinessError
	if !errors.As(err, &be) {
		response.InternalServerError(w, "Internal server error")
		return
	}

	status, ok := statusByCode[be.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	var detail error
	if status != http.StatusInternalServerError {
		detail = be.Unwrap()
	}

	response.CodedError(w, status, be.Code, be.Message, detail)
}
