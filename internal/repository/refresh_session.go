package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bluehaven/rentals/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type refreshSessionRepository struct {
	db *sqlx.DB
}

func newRefreshSessionRepository(db *sqlx.DB) *refreshSessionRepository {
	return &refreshSessionRepository{
		db: db,
	}
}

func (r *refreshSessionRepository) Create(ctx context.Context, session *domain.RefreshSession) error {
	const query = `
				INSERT INTO refresh_session (id, user_id, refresh_token, user_agent, ip, expires_in)
				VALUES (uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?)
				`
	_, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.RefreshToken, session.UserAgent, session.IP, session.ExpiresIn)

	if err != nil {
		return fmt.Errorf("db insert refresh session: %w", err)
	}

	return nil
}

func (r *refreshSessionRepository) GetByToken(ctx context.Context, token uuid.UUID) (*domain.RefreshSession, error) {
	const query = `
	SELECT id, user_id, refresh_token, user_agent, ip, expires_in, created_at
	FROM refresh_session
	WHERE refresh_token = uuid_to_bin(?)
	`

	var session domain.RefreshSession
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select refresh session failed: %w", err)
	}

	return &session, nil
}

func (r *refreshSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_session WHERE id = uuid_to_bin(?)`, id)
	if err != nil {
		return fmt.Errorf("delete refresh session failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	// a concurrent refresh already consumed the token
	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *refreshSessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_session WHERE user_id = uuid_to_bin(?)`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh sessions failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected failed: %w", err)
	}

	return rows, nil
}
