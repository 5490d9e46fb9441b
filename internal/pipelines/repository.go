package pipelines

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

// Stage is a pipeline stage with its current-lead count.
type Stage struct {
	ID        uuid.UUID
	Name      string
	SortOrder int
	Color     *string
	LeadCount int
	CreatedAt time.Time
}

// Repository provides persistence for pipeline stages.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new pipelines repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all stages ordered by sort_order with current-lead counts.
func (r *Repository) List(ctx context.Context) ([]Stage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name, s.sort_order, s.color, s.created_at, COUNT(l.id)
		FROM pipeline_stages s
		LEFT JOIN leads l ON l.current_stage_id = s.id
		GROUP BY s.id
		ORDER BY s.sort_order ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}
	defer rows.Close()

	stages := []Stage{}
	for rows.Next() {
		var st Stage
		if err := rows.Scan(&st.ID, &st.Name, &st.SortOrder, &st.Color, &st.CreatedAt, &st.LeadCount); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		stages = append(stages, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list stages: %w", err)
	}

	return stages, nil
}

// Create inserts a stage. When no sort order is given the stage is appended
// after the current last one.
func (r *Repository) Create(ctx context.Context, name string, sortOrder *int, color *string) (Stage, error) {
	var st Stage
	err := r.pool.QueryRow(ctx, `
		INSERT INTO pipeline_stages (name, sort_order, color)
		VALUES ($1, COALESCE($2, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM pipeline_stages)), $3)
		RETURNING id, name, sort_order, color, created_at`,
		name, sortOrder, color,
	).Scan(&st.ID, &st.Name, &st.SortOrder, &st.Color, &st.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return Stage{}, apperr.Conflict("stage name already exists")
		}
		return Stage{}, fmt.Errorf("create stage: %w", err)
	}

	return st, nil
}

// Update applies partial updates to a stage.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name *string, sortOrder *int, color *string) (Stage, error) {
	var st Stage
	err := r.pool.QueryRow(ctx, `
		UPDATE pipeline_stages SET
			name = COALESCE($2, name),
			sort_order = COALESCE($3, sort_order),
			color = COALESCE($4, color)
		WHERE id = $1
		RETURNING id, name, sort_order, color, created_at`,
		id, name, sortOrder, color,
	).Scan(&st.ID, &st.Name, &st.SortOrder, &st.Color, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Stage{}, apperr.NotFound("pipeline stage not found")
		}
		if isUniqueViolation(err) {
			return Stage{}, apperr.Conflict("stage name already exists")
		}
		return Stage{}, fmt.Errorf("update stage: %w", err)
	}

	return st, nil
}

// Delete removes a stage. Leads pointing at it fall back to NULL via the
// foreign key; their history rows cascade away with the stage.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM pipeline_stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stage: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("pipeline stage not found")
	}

	return nil
}

// Reorder rewrites sort_order 1..N following the given id order, in one
// transaction so a bad id leaves the board untouched.
func (r *Repository) Reorder(ctx context.Context, ids []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reorder stages: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, id := range ids {
		result, err := tx.Exec(ctx, `
			UPDATE pipeline_stages SET sort_order = $2 WHERE id = $1`, id, i+1)
		if err != nil {
			return fmt.Errorf("reorder stages: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperr.NotFound("pipeline stage not found")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("reorder stages: commit: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
