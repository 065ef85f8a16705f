package mock_cache

import (
	"context"

	"github.com/bluehaven/rentals/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserCache struct {
	mock.Mock
}

func (m *UserCache) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *UserCache) Set(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserCache) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
