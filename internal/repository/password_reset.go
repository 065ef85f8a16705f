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

type passwordResetRepository struct {
	db *sqlx.DB
}

func newPasswordResetRepository(db *sqlx.DB) *passwordResetRepository {
	return &passwordResetRepository{
		db: db,
	}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) error {
	const op = "repository.passwordReset.Create"

	const query = `
	INSERT INTO password_reset (id, identity_id, token, expires_at, created_at)
	VALUES (uuid_to_bin(:id), uuid_to_bin(:identity_id), :token, :expires_at, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, reset); err != nil {
		return fmt.Errorf("%s: insert password reset failed: %w", op, err)
	}

	return nil
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*domain.PasswordReset, error) {
	const op = "repository.passwordReset.GetByToken"

	const query = `
	SELECT id, identity_id, token, expires_at, used_at, created_at
	FROM password_reset
	WHERE token = ?
	`

	var reset domain.PasswordReset
	if err := r.db.GetContext(ctx, &reset, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select password reset failed: %w", op, err)
	}

	return &reset, nil
}

func (r *passwordResetRepository) MarkUsedWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, usedAt time.Time) error {
	const op = "repository.passwordReset.MarkUsedWithTx"

	res, err := tx.ExecContext(ctx, `UPDATE password_reset SET used_at = ? WHERE id = uuid_to_bin(?) AND used_at IS NULL`, usedAt, id)
	if err != nil {
		return fmt.Errorf("%s: update password reset failed: %w", op, err)
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
