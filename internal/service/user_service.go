package service

import (
	"log/slog"

	"github.com/google/uuid"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

// UserService registers marketplace identities. Authentication is outside
// this service; callers supply the acting user id on every operation.
type UserService struct {
	store  domain.Store
	logger *slog.Logger
}

func NewUserService(store domain.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

func (s *UserService) CreateUser(username string, role domain.Role) (*domain.User, error) {
	if username == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "username is required")
	}
	if !domain.ValidRole(role) {
		return nil, errors.NewAppErrorf(errors.InvalidInput, "unknown role %q", role)
	}

	user := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Role:     role,
	}

	if err := s.store.Users().CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) GetUser(id uuid.UUID) (*domain.User, error) {
	return s.store.Users().GetUser(id)
}
