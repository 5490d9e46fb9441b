package activities

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"medspa_crm_backend/platform/apperr"
)

const foreignKeyViolationCode = "23503"

// Activity is one append-only audit log entry on a lead.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Repository provides persistence for activities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new activities repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByLead returns a lead's activities, newest first.
func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Activity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, type, payload, created_at
		FROM activities
		WHERE lead_id = $1
		ORDER BY created_at DESC`, leadID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	result := []Activity{}
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.Type, &a.Payload, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	return result, nil
}

// Create appends a manual activity entry.
func (r *Repository) Create(ctx context.Context, leadID uuid.UUID, activityType string, payload []byte) (Activity, error) {
	var a Activity
	err := r.pool.QueryRow(ctx, `
		INSERT INTO activities (lead_id, type, payload)
		VALUES ($1, $2, $3)
		RETURNING id, lead_id, type, payload, created_at`,
		leadID, activityType, payload,
	).Scan(&a.ID, &a.LeadID, &a.Type, &a.Payload, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return Activity{}, apperr.NotFound("lead not found")
		}
		return Activity{}, fmt.Errorf("create activity: %w", err)
	}

	return a, nil
}
