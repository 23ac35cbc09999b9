package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrimarket/internal/domain"
	"agrimarket/internal/errors"
)

func TestCreateUser_RejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.CreateUser("someone", domain.Role("wholesaler"))
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.InvalidInput, appErr.Code)

	_, err = env.users.CreateUser("", domain.RoleBuyer)
	require.Error(t, err)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.CreateUser("rama", domain.RoleFarmer)
	require.NoError(t, err)

	_, err = env.users.CreateUser("rama", domain.RoleBuyer)
	require.Error(t, err)
	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.DuplicateUser, appErr.Code)
}
