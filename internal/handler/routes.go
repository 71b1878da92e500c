package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/loan-tracker/pkg/response"
)

// NewRouter wires every HTTP endpoint behind the CORS layer. metrics may be nil
// to leave /metrics out.
func NewRouter(
	loanHandler *LoanHandler,
	userHandler *UserHandler,
	healthHandler *HealthHandler,
	metrics http.Handler,
	logger *slog.Logger,
) http.Handler {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware(logger))

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	if metrics != nil {
		router.Handle("/metrics", metrics).Methods("GET")
	}

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(response.JSONMiddleware)

	api.HandleFunc("/loans", loanHandler.CreateLoan).Methods("POST")
	api.HandleFunc("/loans", loanHandler.ListLoans).Methods("GET")
	api.HandleFunc("/loans/{loanId}", loanHandler.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/schedule", loanHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/loans/{loanId}/summary", loanHandler.GetSummary).Methods("GET")
	api.HandleFunc("/loans/{loanId}/installments/{index}/pay", loanHandler.PayInstallment).Methods("POST")
	api.HandleFunc("/schedules/quote", loanHandler.QuoteSchedule).Methods("POST")

	api.HandleFunc("/users", userHandler.Register).Methods("POST")
	api.HandleFunc("/users/{userId}", userHandler.Get).Methods("GET")

	return response.CORSMiddleware(router)
}
