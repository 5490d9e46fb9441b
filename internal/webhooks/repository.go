package webhooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository holds the dedupe lookup and the in-place update path for
// webhook-ingested leads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new webhooks repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindLeadByIdentity returns the oldest lead matching any of the non-empty
// identity fields. The bool reports whether a match was found.
func (r *Repository) FindLeadByIdentity(ctx context.Context, externalID, email, phoneNumber string) (uuid.UUID, bool, error) {
	var externalParam, emailParam, phoneParam interface{}
	if externalID != "" {
		externalParam = externalID
	}
	if email != "" {
		emailParam = email
	}
	if phoneNumber != "" {
		phoneParam = phoneNumber
	}
	if externalParam == nil && emailParam == nil && phoneParam == nil {
		return uuid.Nil, false, nil
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT id FROM leads
		WHERE ($1::text IS NOT NULL AND external_id = $1)
			OR ($2::text IS NOT NULL AND email = $2)
			OR ($3::text IS NOT NULL AND phone = $3)
		ORDER BY created_at ASC
		LIMIT 1`,
		externalParam, emailParam, phoneParam,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("find lead by identity: %w", err)
	}

	return id, true, nil
}

// OverwriteLead updates a deduped lead's contact fields and fully replaces
// its tag set in one transaction.
func (r *Repository) OverwriteLead(ctx context.Context, leadID uuid.UUID, ex Extracted, tagIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("overwrite lead: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		UPDATE leads SET
			external_id = COALESCE(NULLIF($2, ''), external_id),
			first_name = COALESCE(NULLIF($3, ''), first_name),
			email = COALESCE(NULLIF($4, ''), email),
			phone = COALESCE(NULLIF($5, ''), phone),
			source = $6
		WHERE id = $1`,
		leadID, ex.ExternalID, ex.FirstName, ex.Email, ex.Phone, ex.Source,
	); err != nil {
		return fmt.Errorf("overwrite lead: update: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM lead_tags WHERE lead_id = $1`, leadID); err != nil {
		return fmt.Errorf("overwrite lead: clear tags: %w", err)
	}
	for _, tagID := range tagIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_tags (lead_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, leadID, tagID); err != nil {
			return fmt.Errorf("overwrite lead: attach tag: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("overwrite lead: commit: %w", err)
	}

	return nil
}
