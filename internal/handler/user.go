package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/pkg/response"
)

type UserService interface {
	Register(ctx context.Context, request *domain.RegisterUserRequest) (*domain.UserProfile, error)
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
}

type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register handles POST /api/v1/users for the identity in the X-User-ID header
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get(UserIDHeader)
	if userID == "" {
		response.Unauthorized(w, "Missing "+UserIDHeader+" header")
		return
	}

	var request domain.RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}
	request.ID = userID

	user, err := h.service.Register(r.Context(), &request)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Get(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, user)
}
