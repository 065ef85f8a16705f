package mock_repository

import (
	"context"
	"time"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

// Transactor calls fn with a nil transaction, or fails with BeginErr.
type Transactor struct {
	BeginErr error
}

func (t *Transactor) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	if t.BeginErr != nil {
		return t.BeginErr
	}
	return fn(nil)
}

type Users struct {
	mock.Mock
}

func (m *Users) CreateWithTx(ctx context.Context, tx *sqlx.Tx, user *domain.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *Users) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *Users) GetAll(ctx context.Context, limit, offset int, filters *repository.UserFilters) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset, filters)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *Users) Count(ctx context.Context, filters *repository.UserFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Users) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(map[domain.Role]int64)
	return stats, args.Error(1)
}

func (m *Users) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *Users) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type AuthIdentities struct {
	mock.Mock
}

func (m *AuthIdentities) CreateWithTx(ctx context.Context, tx *sqlx.Tx, identity *domain.AuthIdentity) error {
	args := m.Called(ctx, tx, identity)
	return args.Error(0)
}

func (m *AuthIdentities) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuthIdentity, error) {
	args := m.Called(ctx, id)
	identity, _ := args.Get(0).(*domain.AuthIdentity)
	return identity, args.Error(1)
}

func (m *AuthIdentities) GetByEmail(ctx context.Context, email string) (*domain.AuthIdentity, error) {
	args := m.Called(ctx, email)
	identity, _ := args.Get(0).(*domain.AuthIdentity)
	return identity, args.Error(1)
}

func (m *AuthIdentities) UpdatePasswordWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *AuthIdentities) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type RefreshSession struct {
	mock.Mock
}

func (m *RefreshSession) Create(ctx context.Context, session *domain.RefreshSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *RefreshSession) GetByToken(ctx context.Context, token uuid.UUID) (*domain.RefreshSession, error) {
	args := m.Called(ctx, token)
	session, _ := args.Get(0).(*domain.RefreshSession)
	return session, args.Error(1)
}

func (m *RefreshSession) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RefreshSession) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type PasswordResets struct {
	mock.Mock
}

func (m *PasswordResets) Create(ctx context.Context, reset *domain.PasswordReset) error {
	args := m.Called(ctx, reset)
	return args.Error(0)
}

func (m *PasswordResets) GetByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	args := m.Called(ctx, token)
	reset, _ := args.Get(0).(*domain.PasswordReset)
	return reset, args.Error(1)
}

func (m *PasswordResets) MarkUsedWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, tx, id, usedAt)
	return args.Error(0)
}

type Posts struct {
	mock.Mock
}

func (m *Posts) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *Posts) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *Posts) GetByIDForUpdateWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Post, error) {
	args := m.Called(ctx, tx, id)
	post, _ := args.Get(0).(*domain.Post)
	return post, args.Error(1)
}

func (m *Posts) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, post *domain.Post) error {
	args := m.Called(ctx, tx, post)
	return args.Error(0)
}

func (m *Posts) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *Posts) GetAll(ctx context.Context, limit, offset int, filters *repository.PostFilters) ([]domain.Post, error) {
	args := m.Called(ctx, limit, offset, filters)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Error(1)
}

func (m *Posts) Count(ctx context.Context, filters *repository.PostFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Posts) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Post, error) {
	args := m.Called(ctx, ownerID)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Error(1)
}

func (m *Posts) GetByStatus(ctx context.Context, status domain.PostStatus) ([]domain.Post, error) {
	args := m.Called(ctx, status)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Error(1)
}

func (m *Posts) GetEditedPending(ctx context.Context) ([]domain.Post, error) {
	args := m.Called(ctx)
	posts, _ := args.Get(0).([]domain.Post)
	return posts, args.Error(1)
}

func (m *Posts) CountByStatus(ctx context.Context) (map[domain.PostStatus]int64, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(map[domain.PostStatus]int64)
	return stats, args.Error(1)
}

func (m *Posts) CountByCategory(ctx context.Context) (map[domain.Category]int64, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(map[domain.Category]int64)
	return stats, args.Error(1)
}

type EmailVerifications struct {
	mock.Mock
}

func (m *EmailVerifications) Create(ctx context.Context, verification *domain.EmailVerification) error {
	args := m.Called(ctx, verification)
	return args.Error(0)
}

func (m *EmailVerifications) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailVerification, error) {
	args := m.Called(ctx, id)
	verification, _ := args.Get(0).(*domain.EmailVerification)
	return verification, args.Error(1)
}

func (m *EmailVerifications) GetUnusedByEmail(ctx context.Context, email string) ([]domain.EmailVerification, error) {
	args := m.Called(ctx, email)
	verifications, _ := args.Get(0).([]domain.EmailVerification)
	return verifications, args.Error(1)
}

func (m *EmailVerifications) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *EmailVerifications) InvalidateUnused(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *EmailVerifications) ExistsUsed(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *EmailVerifications) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
