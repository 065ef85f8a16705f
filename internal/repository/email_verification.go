package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bluehaven/rentals/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type emailVerificationRepository struct {
	db *sqlx.DB
}

func newEmailVerificationRepository(db *sqlx.DB) *emailVerificationRepository {
	return &emailVerificationRepository{
		db: db,
	}
}

func (r *emailVerificationRepository) Create(ctx context.Context, verification *domain.EmailVerification) error {
	const op = "repository.emailVerification.Create"

	const query = `
    INSERT INTO email_verification (id, email, code, user_name, created_at, expires_at, is_used)
    VALUES (uuid_to_bin(:id), :email, :code, :user_name, :created_at, :expires_at, :is_used)
    `

	res, err := r.db.NamedExecContext(ctx, query, verification)
	if err != nil {
		return fmt.Errorf("%s: insert email verification failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}

func (r *emailVerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.EmailVerification, error) {
	const op = "repository.emailVerification.GetByID"

	const query = `
    SELECT id, email, code, user_name, created_at, expires_at, is_used, used_at
    FROM email_verification
    WHERE id = uuid_to_bin(?)
    `

	var verification domain.EmailVerification
	if err := r.db.GetContext(ctx, &verification, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select email verification failed: %w", op, err)
	}

	return &verification, nil
}

func (r *emailVerificationRepository) GetUnusedByEmail(ctx context.Context, email string) ([]domain.EmailVerification, error) {
	const op = "repository.emailVerification.GetUnusedByEmail"

	const query = `
    SELECT id, email, code, user_name, created_at, expires_at, is_used, used_at
    FROM email_verification
    WHERE email = ? AND is_used = 0
    ORDER BY created_at DESC
    `

	verifications := []domain.EmailVerification{}
	if err := r.db.SelectContext(ctx, &verifications, query, email); err != nil {
		return nil, fmt.Errorf("%s: select email verifications failed: %w", op, err)
	}

	return verifications, nil
}

// MarkUsed flips is_used only if the record is still unused. A concurrent
// redeem that lost the race gets domain.ErrNoRowsAffected.
func (r *emailVerificationRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) error {
	const op = "repository.emailVerification.MarkUsed"

	const query = `
    UPDATE email_verification
    SET is_used = 1, used_at = ?
    WHERE id = uuid_to_bin(?) AND is_used = 0
    `

	res, err := r.db.ExecContext(ctx, query, usedAt, id)
	if err != nil {
		return fmt.Errorf("%s: update email_verification failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

// InvalidateUnused retires outstanding codes. used_at stays NULL so an
// invalidated code never counts as a redemption.
func (r *emailVerificationRepository) InvalidateUnused(ctx context.Context, email string) (int64, error) {
	const op = "repository.emailVerification.InvalidateUnused"

	const query = `
    UPDATE email_verification
    SET is_used = 1
    WHERE email = ? AND is_used = 0
    `

	res, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return 0, fmt.Errorf("%s: update email_verification failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}

func (r *emailVerificationRepository) ExistsUsed(ctx context.Context, email string) (bool, error) {
	const op = "repository.emailVerification.ExistsUsed"

	const query = `SELECT EXISTS(SELECT 1 FROM email_verification WHERE email = ? AND is_used = 1 AND used_at IS NOT NULL)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		return false, fmt.Errorf("%s: select email verification failed: %w", op, err)
	}

	return exists, nil
}

func (r *emailVerificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const op = "repository.emailVerification.DeleteExpired"

	res, err := r.db.ExecContext(ctx, `DELETE FROM email_verification WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: delete email verifications failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}
