package opportunities

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

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

// Opportunity is the expected-revenue record attached to a lead. One per
// lead, enforced by a unique constraint.
type Opportunity struct {
	ID                 uuid.UUID
	LeadID             uuid.UUID
	ExpectedValueCents int64
	ProcedureCode      *string
	ExpectedDate       *time.Time
	CreatedAt          time.Time
}

// Repository provides persistence for opportunities.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new opportunities repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts the opportunity for a lead.
func (r *Repository) Create(ctx context.Context, leadID uuid.UUID, valueCents int64, procedureCode *string, expectedDate *time.Time) (Opportunity, error) {
	var o Opportunity
	err := r.pool.QueryRow(ctx, `
		INSERT INTO opportunities (lead_id, expected_value_cents, procedure_code, expected_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, expected_value_cents, procedure_code, expected_date, created_at`,
		leadID, valueCents, procedureCode, expectedDate,
	).Scan(&o.ID, &o.LeadID, &o.ExpectedValueCents, &o.ProcedureCode, &o.ExpectedDate, &o.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case uniqueViolationCode:
				return Opportunity{}, apperr.Conflict("lead already has an opportunity")
			case foreignKeyViolationCode:
				return Opportunity{}, apperr.NotFound("lead not found")
			}
		}
		return Opportunity{}, fmt.Errorf("create opportunity: %w", err)
	}

	return o, nil
}

// GetByLeadID returns the opportunity attached to a lead.
func (r *Repository) GetByLeadID(ctx context.Context, leadID uuid.UUID) (Opportunity, error) {
	var o Opportunity
	err := r.pool.QueryRow(ctx, `
		SELECT id, lead_id, expected_value_cents, procedure_code, expected_date, created_at
		FROM opportunities
		WHERE lead_id = $1`,
		leadID,
	).Scan(&o.ID, &o.LeadID, &o.ExpectedValueCents, &o.ProcedureCode, &o.ExpectedDate, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Opportunity{}, apperr.NotFound("opportunity not found")
		}
		return Opportunity{}, fmt.Errorf("get opportunity: %w", err)
	}

	return o, nil
}

// Update applies partial updates to an opportunity.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, valueCents *int64, procedureCode *string, expectedDate *time.Time) (Opportunity, error) {
	var o Opportunity
	err := r.pool.QueryRow(ctx, `
		UPDATE opportunities SET
			expected_value_cents = COALESCE($2, expected_value_cents),
			procedure_code = COALESCE($3, procedure_code),
			expected_date = COALESCE($4, expected_date)
		WHERE id = $1
		RETURNING id, lead_id, expected_value_cents, procedure_code, expected_date, created_at`,
		id, valueCents, procedureCode, expectedDate,
	).Scan(&o.ID, &o.LeadID, &o.ExpectedValueCents, &o.ProcedureCode, &o.ExpectedDate, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Opportunity{}, apperr.NotFound("opportunity not found")
		}
		return Opportunity{}, fmt.Errorf("update opportunity: %w", err)
	}

	return o, nil
}
