package repository

import (
	"context"
	"time"

	"github.com/bluehaven/rentals/internal/db"
	"github.com/bluehaven/rentals/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Transactor         Transactor
	Users              Users
	AuthIdentities     AuthIdentities
	RefreshSession     RefreshSession
	PasswordResets     PasswordResets
	Posts              Posts
	EmailVerifications EmailVerifications
}

func NewRepositories(conn *sqlx.DB) *Repositories {
	return &Repositories{
		Transactor:         newTransactor(conn),
		Users:              newUserRepository(conn),
		AuthIdentities:     newAuthIdentityRepository(conn),
		RefreshSession:     newRefreshSessionRepository(conn),
		PasswordResets:     newPasswordResetRepository(conn),
		Posts:              newPostRepository(conn),
		EmailVerifications: newEmailVerificationRepository(conn),
	}
}

// Transactor runs fn in one database transaction. Repositories expose
// ...WithTx methods that take the transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type transactor struct {
	db *sqlx.DB
}

func newTransactor(conn *sqlx.DB) *transactor {
	return &transactor{db: conn}
}

func (t *transactor) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return db.WithTx(ctx, t.db, fn)
}

type Users interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAll(ctx context.Context, limit, offset int, filters *UserFilters) ([]domain.User, error)
	Count(ctx context.Context, filters *UserFilters) (int64, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserFilters struct {
	Role   *domain.Role
	Search *string
}

type AuthIdentities interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, identity *domain.AuthIdentity) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AuthIdentity, error)
	GetByEmail(ctx context.Context, email string) (*domain.AuthIdentity, error)
	UpdatePasswordWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type RefreshSession interface {
	Create(ctx context.Context, session *domain.RefreshSession) error
	GetByToken(ctx context.Context, token uuid.UUID) (*domain.RefreshSession, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

type PasswordResets interface {
	Create(ctx context.Context, reset *domain.PasswordReset) error
	GetByToken(ctx context.Context, token string) (*domain.PasswordReset, error)
	MarkUsedWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, usedAt time.Time) error
}

type Posts interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	GetByIDForUpdateWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Post, error)
	UpdateWithTx(ctx context.Context, tx *sqlx.Tx, post *domain.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetAll(ctx context.Context, limit, offset int, filters *PostFilters) ([]domain.Post, error)
	Count(ctx context.Context, filters *PostFilters) (int64, error)
	GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Post, error)
	GetByStatus(ctx context.Context, status domain.PostStatus) ([]domain.Post, error)
	GetEditedPending(ctx context.Context) ([]domain.Post, error)
	CountByStatus(ctx context.Context) (map[domain.PostStatus]int64, error)
	CountByCategory(ctx context.Context) (map[domain.Category]int64, error)
}

type EmailVerifications interface {
	Create(ctx context.Context, verification *domain.EmailVerification) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailVerification, error)
	GetUnusedByEmail(ctx context.Context, email string) ([]domain.EmailVerification, error)
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error
	InvalidateUnused(ctx context.Context, email string) (int64, error)
	ExistsUsed(ctx context.Context, email string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
