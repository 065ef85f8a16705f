package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bluehaven/rentals/internal/db"
	"github.com/bluehaven/rentals/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, first_name, last_name, full_name, email, role, user_type, profile_image,
	id_documents, is_verified, is_active, created_at, updated_at`

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, user *domain.User) error {
	const op = "repository.user.CreateWithTx"

	const query = `
	INSERT INTO user
	(id, first_name, last_name, full_name, email, role, profile_image, id_documents, is_verified, is_active)
	VALUES(uuid_to_bin(?), ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	result, err := tx.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.FullName,
		user.Email,
		user.Role,
		user.ProfileImage,
		user.IDDocuments,
		user.IsVerified,
		user.IsActive,
	)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("%s: db insert user: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected failed: %w", op, err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) getOne(ctx context.Context, op string, where string, arg interface{}) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM user WHERE ` + where

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select from user failed: %w", op, err)
	}
	user.NormalizeRole()

	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.getOne(ctx, "repository.user.GetByID", "id = uuid_to_bin(?)", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "repository.user.GetByEmail", "email = ?", email)
}

func buildUserWhere(filters *UserFilters) (string, []interface{}) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}

	if filters == nil {
		return strings.Join(conditions, " AND "), args
	}

	if filters.Role != nil {
		// legacy rows keep the role in user_type
		conditions = append(conditions, "COALESCE(NULLIF(role, ''), user_type, 'boarding_finder') = ?")
		args = append(args, *filters.Role)
	}

	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		search := strings.TrimSpace(*filters.Search)
		conditions = append(conditions, "(email LIKE CONCAT('%', ?, '%') OR full_name LIKE CONCAT('%', ?, '%'))")
		args = append(args, search, search)
	}

	return strings.Join(conditions, " AND "), args
}

func (r *userRepository) GetAll(ctx context.Context, limit, offset int, filters *UserFilters) ([]domain.User, error) {
	const op = "repository.user.GetAll"

	where, args := buildUserWhere(filters)
	query := fmt.Sprintf(`SELECT %s FROM user WHERE %s ORDER BY created_at DESC LIMIT ? OFFSET ?`, userColumns, where)
	args = append(args, limit, offset)

	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("%s: select users failed: %w", op, err)
	}

	for i := range users {
		users[i].NormalizeRole()
	}

	return users, nil
}

func (r *userRepository) Count(ctx context.Context, filters *UserFilters) (int64, error) {
	const op = "repository.user.Count"

	where, args := buildUserWhere(filters)

	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM user WHERE `+where, args...); err != nil {
		return 0, fmt.Errorf("%s: count users failed: %w", op, err)
	}

	return count, nil
}

func (r *userRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	const op = "repository.user.CountByRole"

	const query = `
		SELECT role, user_type, COUNT(*) AS count
		FROM user
		GROUP BY role, user_type
	`

	type roleStat struct {
		Role     string  `db:"role"`
		UserType *string `db:"user_type"`
		Count    int64   `db:"count"`
	}

	var stats []roleStat
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("%s: count users failed: %w", op, err)
	}

	result := make(map[domain.Role]int64)
	for _, stat := range stats {
		var legacy string
		if stat.UserType != nil {
			legacy = *stat.UserType
		}
		result[domain.ParseRole(stat.Role, legacy)] += stat.Count
	}

	return result, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const op = "repository.user.Update"

	const query = `
	UPDATE user
	SET first_name = ?, last_name = ?, full_name = ?, role = ?, profile_image = ?, id_documents = ?,
		is_verified = ?, is_active = ?
	WHERE id = uuid_to_bin(?);
	`

	_, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.FullName,
		user.Role,
		user.ProfileImage,
		user.IDDocuments,
		user.IsVerified,
		user.IsActive,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: update user by id failed: %w", op, err)
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repository.user.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM user WHERE id = uuid_to_bin(?)`, id)
	if err != nil {
		return fmt.Errorf("%s: delete user failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}
