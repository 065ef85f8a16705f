package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bluehaven/rentals/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PostFilters struct {
	Status     *domain.PostStatus
	OwnerID    *uuid.UUID
	Categories []string
	Districts  []string
	ForWhom    []string
	MinRent    *float64
	MaxRent    *float64
	Search     *string
	SortBy     string // "created_at", "rent"
	Order      string // "asc", "desc"
}

const postColumns = `id, title, category, for_whom, location, description, rent, email, mobile,
	owner_id, owner_name, images, status, is_edited, edited_at, decline_reason, declined_at,
	resubmitted_at, created_at, updated_at`

type postRepository struct {
	db *sqlx.DB
}

func newPostRepository(db *sqlx.DB) *postRepository {
	return &postRepository{
		db: db,
	}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	const op = "repository.post.Create"

	const query = `
	INSERT INTO post (id, title, category, for_whom, location, description, rent, email, mobile,
		owner_id, owner_name, images, status, is_edited, created_at, updated_at)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?, ?, ?, ?, uuid_to_bin(?), ?, ?, ?, ?, ?, ?)
	`

	res, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.Title,
		post.Category,
		post.ForWhom,
		post.Location,
		post.Description,
		post.Rent,
		post.Email,
		post.Mobile,
		post.OwnerID,
		post.OwnerName,
		post.Images,
		post.Status,
		post.IsEdited,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: insert post failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: %w", op, domain.ErrNoRowsAffected)
	}

	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	const op = "repository.post.GetByID"

	query := `SELECT ` + postColumns + ` FROM post WHERE id = uuid_to_bin(?)`

	var post domain.Post
	if err := r.db.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select post failed: %w", op, err)
	}

	return &post, nil
}

// GetByIDForUpdateWithTx locks the row until tx ends.
func (r *postRepository) GetByIDForUpdateWithTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*domain.Post, error) {
	const op = "repository.post.GetByIDForUpdateWithTx"

	query := `SELECT ` + postColumns + ` FROM post WHERE id = uuid_to_bin(?) FOR UPDATE`

	var post domain.Post
	if err := tx.GetContext(ctx, &post, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select post failed: %w", op, err)
	}

	return &post, nil
}

func (r *postRepository) UpdateWithTx(ctx context.Context, tx *sqlx.Tx, post *domain.Post) error {
	const op = "repository.post.UpdateWithTx"

	const query = `
	UPDATE post
	SET title = ?, category = ?, for_whom = ?, location = ?, description = ?, rent = ?, email = ?, mobile = ?,
		images = ?, status = ?, is_edited = ?, edited_at = ?, decline_reason = ?, declined_at = ?,
		resubmitted_at = ?, updated_at = ?
	WHERE id = uuid_to_bin(?)
	`

	res, err := tx.ExecContext(ctx, query,
		post.Title,
		post.Category,
		post.ForWhom,
		post.Location,
		post.Description,
		post.Rent,
		post.Email,
		post.Mobile,
		post.Images,
		post.Status,
		post.IsEdited,
		post.EditedAt,
		post.DeclineReason,
		post.DeclinedAt,
		post.ResubmittedAt,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: update post failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	// MySQL reports 0 for an update that changes nothing, so only more than one is wrong
	if rows > 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "repository.post.Delete"

	res, err := r.db.ExecContext(ctx, `DELETE FROM post WHERE id = uuid_to_bin(?)`, id)
	if err != nil {
		return fmt.Errorf("%s: delete post failed: %w", op, err)
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

func buildPostWhere(filters *PostFilters) (string, []interface{}) {
	conditions := []string{"1 = 1"}
	args := []interface{}{}

	if filters == nil {
		return strings.Join(conditions, " AND "), args
	}

	if filters.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filters.Status)
	}

	if filters.OwnerID != nil {
		conditions = append(conditions, "owner_id = uuid_to_bin(?)")
		args = append(args, *filters.OwnerID)
	}

	in := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
		conditions = append(conditions, fmt.Sprintf("%s IN (%s)", column, placeholders))
		for _, v := range values {
			args = append(args, v)
		}
	}
	in("category", filters.Categories)
	in("location", filters.Districts)
	in("for_whom", filters.ForWhom)

	if filters.MinRent != nil {
		conditions = append(conditions, "rent >= ?")
		args = append(args, *filters.MinRent)
	}

	if filters.MaxRent != nil {
		conditions = append(conditions, "rent <= ?")
		args = append(args, *filters.MaxRent)
	}

	if filters.Search != nil && strings.TrimSpace(*filters.Search) != "" {
		conditions = append(conditions, "(title LIKE CONCAT('%', ?, '%') OR location LIKE CONCAT('%', ?, '%'))")
		search := strings.TrimSpace(*filters.Search)
		args = append(args, search, search)
	}

	return strings.Join(conditions, " AND "), args
}

func postOrderBy(filters *PostFilters) string {
	orderBy := "created_at"
	orderDir := "DESC"

	if filters != nil {
		if filters.SortBy == "rent" {
			orderBy = "rent"
		}
		if filters.Order == "asc" {
			orderDir = "ASC"
		}
	}

	return fmt.Sprintf("%s %s, id %s", orderBy, orderDir, orderDir)
}

func (r *postRepository) GetAll(ctx context.Context, limit, offset int, filters *PostFilters) ([]domain.Post, error) {
	const op = "repository.post.GetAll"

	where, args := buildPostWhere(filters)
	query := fmt.Sprintf(`SELECT %s FROM post WHERE %s ORDER BY %s LIMIT ? OFFSET ?`, postColumns, where, postOrderBy(filters))
	args = append(args, limit, offset)

	posts := []domain.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("%s: select posts failed: %w", op, err)
	}

	return posts, nil
}

func (r *postRepository) Count(ctx context.Context, filters *PostFilters) (int64, error) {
	const op = "repository.post.Count"

	where, args := buildPostWhere(filters)

	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM post WHERE `+where, args...); err != nil {
		return 0, fmt.Errorf("%s: count posts failed: %w", op, err)
	}

	return count, nil
}

func (r *postRepository) GetByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Post, error) {
	const op = "repository.post.GetByOwner"

	query := `SELECT ` + postColumns + ` FROM post WHERE owner_id = uuid_to_bin(?) ORDER BY created_at DESC`

	posts := []domain.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, ownerID); err != nil {
		return nil, fmt.Errorf("%s: select posts failed: %w", op, err)
	}

	return posts, nil
}

func (r *postRepository) GetByStatus(ctx context.Context, status domain.PostStatus) ([]domain.Post, error) {
	const op = "repository.post.GetByStatus"

	query := `SELECT ` + postColumns + ` FROM post WHERE status = ? ORDER BY created_at DESC`

	posts := []domain.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, status); err != nil {
		return nil, fmt.Errorf("%s: select posts failed: %w", op, err)
	}

	return posts, nil
}

func (r *postRepository) GetEditedPending(ctx context.Context) ([]domain.Post, error) {
	const op = "repository.post.GetEditedPending"

	query := `SELECT ` + postColumns + ` FROM post WHERE is_edited = 1 AND status = ? ORDER BY edited_at DESC`

	posts := []domain.Post{}
	if err := r.db.SelectContext(ctx, &posts, query, domain.PostStatusPending); err != nil {
		return nil, fmt.Errorf("%s: select posts failed: %w", op, err)
	}

	return posts, nil
}

type groupCount struct {
	Key   string `db:"group_key"`
	Count int64  `db:"count"`
}

func (r *postRepository) CountByStatus(ctx context.Context) (map[domain.PostStatus]int64, error) {
	const op = "repository.post.CountByStatus"

	var stats []groupCount
	if err := r.db.SelectContext(ctx, &stats, `SELECT status AS group_key, COUNT(*) AS count FROM post GROUP BY status`); err != nil {
		return nil, fmt.Errorf("%s: count posts failed: %w", op, err)
	}

	result := make(map[domain.PostStatus]int64, len(stats))
	for _, stat := range stats {
		result[domain.PostStatus(stat.Key)] = stat.Count
	}

	return result, nil
}

func (r *postRepository) CountByCategory(ctx context.Context) (map[domain.Category]int64, error) {
	const op = "repository.post.CountByCategory"

	var stats []groupCount
	if err := r.db.SelectContext(ctx, &stats, `SELECT category AS group_key, COUNT(*) AS count FROM post GROUP BY category`); err != nil {
		return nil, fmt.Errorf("%s: count posts failed: %w", op, err)
	}

	result := make(map[domain.Category]int64, len(stats))
	for _, stat := range stats {
		result[domain.Category(stat.Key)] = stat.Count
	}

	return result, nil
}
