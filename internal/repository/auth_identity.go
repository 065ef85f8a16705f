package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bluehaven/rentals/internal/db"
	"github.com/bluehaven/rentals/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type authIdentityRepository struct {
	db *sqlx.DB
}

func newAuthIdentityRepository(db *sqlx.DB) *authIdentityRepository {
	return &authIdentityRepository{
		db: db,
	}
}

func (r *authIdentityRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, identity *domain.AuthIdentity) error {
	const op = "repository.authIdentity.CreateWithTx"

	const query = `
	INSERT INTO auth_identity (id, email, password_hash, created_at)
	VALUES (uuid_to_bin(?), ?, ?, ?)
	`

	_, err := tx.ExecContext(ctx, query, identity.ID, identity.Email, identity.PasswordHash, identity.CreatedAt)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: insert auth identity failed: %w", op, err)
	}

	return nil
}

func (r *authIdentityRepository) get(ctx context.Context, op string, where string, arg interface{}) (*domain.AuthIdentity, error) {
	query := `SELECT id, email, password_hash, created_at FROM auth_identity WHERE ` + where

	var identity domain.AuthIdentity
	if err := r.db.GetContext(ctx, &identity, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select auth identity failed: %w", op, err)
	}

	return &identity, nil
}

func (r *authIdentityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AuthIdentity, error) {
	return r.get(ctx, "repository.authIdentity.GetByID", "id = uuid_to_bin(?)", id)
}

func (r *authIdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.AuthIdentity, error) {
	return r.get(ctx, "repository.authIdentity.GetByEmail", "email = ?", email)
}

func (r *authIdentityRepository) UpdatePasswordWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, passwordHash string) error {
	const op = "repository.authIdentity.UpdatePasswordWithTx"

	res, err := tx.ExecContext(ctx, `UPDATE auth_identity SET password_hash = ? WHERE id = uuid_to_bin(?)`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("%s: update auth identity failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *authIdentityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repository.authIdentity.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM auth_identity WHERE id = uuid_to_bin(?)`, id)
	if err != nil {
		return fmt.Errorf("%s: delete auth identity failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
