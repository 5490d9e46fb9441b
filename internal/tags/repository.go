package tags

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"medspa_crm_backend/platform/apperr"
)

const uniqueViolationCode = "23505"

// Tag is a tag row.
type Tag struct {
	ID        uuid.UUID
	Name      string
	Color     *string
	CreatedAt time.Time
}

// Repository provides persistence for tags.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new tags repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all tags sorted by name.
func (r *Repository) List(ctx context.Context) ([]Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, color, created_at FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	result := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	return result, nil
}

// Create inserts a tag; duplicate names conflict.
func (r *Repository) Create(ctx context.Context, name string, color *string) (Tag, error) {
	var t Tag
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tags (name, color) VALUES ($1, $2)
		RETURNING id, name, color, created_at`,
		name, color,
	).Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Tag{}, apperr.Conflict("tag name already exists")
		}
		return Tag{}, fmt.Errorf("create tag: %w", err)
	}

	return t, nil
}

// FindOrCreate returns the tag with the given name, creating it with the
// given color when absent. The color is not overwritten on an existing tag.
func (r *Repository) FindOrCreate(ctx context.Context, name string, color string) (Tag, error) {
	var t Tag
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tags (name, color) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, color, created_at`,
		name, color,
	).Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		return Tag{}, fmt.Errorf("find or create tag: %w", err)
	}

	return t, nil
}

// Update applies partial updates to a tag.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name *string, color *string) (Tag, error) {
	var t Tag
	err := r.pool.QueryRow(ctx, `
		UPDATE tags SET
			name = COALESCE($2, name),
			color = COALESCE($3, color)
		WHERE id = $1
		RETURNING id, name, color, created_at`,
		id, name, color,
	).Scan(&t.ID, &t.Name, &t.Color, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tag{}, apperr.NotFound("tag not found")
		}
		if isUniqueViolation(err) {
			return Tag{}, apperr.Conflict("tag name already exists")
		}
		return Tag{}, fmt.Errorf("update tag: %w", err)
	}

	return t, nil
}

// Delete removes a tag; lead associations cascade away.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("tag not found")
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
