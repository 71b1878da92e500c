package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/segyhp/loan-tracker/internal/domain"
	"github.com/segyhp/loan-tracker/internal/repository"
	customError "github.com/segyhp/loan-tracker/pkg/errors"
)

type UserService struct {
	userRepo repository.UserRepository
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Register stores the profile for an authenticated user id, replacing any earlier one
func (s *UserService) Register(ctx context.Context, request *domain.RegisterUserRequest) (*domain.UserProfile, error) {
	if err := s.validate.Struct(request); err != nil {
		return nil, customError.WrapInvalidRequest(err)
	}

	user := &domain.UserProfile{
		ID:        request.ID,
		Name:      request.Name,
		Email:     request.Email,
		CreatedAt: s.now(),
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("user storage failed", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, customError.WrapPersistenceError(err)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	return user, nil
}

func (s *UserService) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, customError.ErrUserNotFound) {
			return nil, customError.WrapUserNotFound(userID)
		}
		return nil, customError.WrapPersistenceError(err)
	}
	return user, nil
}
