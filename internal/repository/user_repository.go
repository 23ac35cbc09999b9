package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

type userRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewUserRepository(db SQLExecutor, logger *slog.Logger) domain.UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) CreateUser(user *domain.User) error {
	query := `
		INSERT INTO users (id, username, role, created_at)
		VALUES ($1, $2, $3, $4)
	`

	now := time.Now().UTC()
	_, err := r.db.Exec(query, user.ID, user.Username, user.Role, now)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				r.logger.Warn("Duplicate username", "username", user.Username)
				return errors.ErrDuplicateUser
			}
		}
		r.logger.Error("Failed to create user", "username", user.Username, "error", err)
		return errors.NewAppError(errors.StorageError, "failed to create user").WithDetails(err.Error())
	}

	user.CreatedAt = now
	r.logger.Info("User created", "user_id", user.ID, "role", user.Role)
	return nil
}

func (r *userRepository) GetUser(id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, username, role, created_at
		FROM users WHERE id = $1
	`

	var user domain.User
	err := r.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Role,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrUserNotFound
		}
		r.logger.Error("Failed to get user", "user_id", id, "error", err)
		return nil, errors.NewAppError(errors.StorageError, "failed to get user").WithDetails(err.Error())
	}

	return &user, nil
}
