package campaigns

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medspa_crm_backend/platform/apperr"
)

// Campaign is a marketing campaign with its attributed-lead count.
type Campaign struct {
	ID                uuid.UUID
	Name              string
	Platform          *string
	MonthlySpendCents int64
	LeadCount         int
	CreatedAt         time.Time
}

// Repository provides persistence for campaigns.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new campaigns repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all campaigns, newest first, with attributed-lead counts.
func (r *Repository) List(ctx context.Context) ([]Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.platform, c.monthly_spend_cents, c.created_at, COUNT(l.id)
		FROM campaigns c
		LEFT JOIN leads l ON l.campaign_id = c.id
		GROUP BY c.id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	result := []Campaign{}
	for rows.Next() {
		var cmp Campaign
		if err := rows.Scan(&cmp.ID, &cmp.Name, &cmp.Platform, &cmp.MonthlySpendCents, &cmp.CreatedAt, &cmp.LeadCount); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		result = append(result, cmp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	return result, nil
}

// Create inserts a campaign.
func (r *Repository) Create(ctx context.Context, name string, platform *string, monthlySpendCents int64) (Campaign, error) {
	var cmp Campaign
	err := r.pool.QueryRow(ctx, `
		INSERT INTO campaigns (name, platform, monthly_spend_cents)
		VALUES ($1, $2, $3)
		RETURNING id, name, platform, monthly_spend_cents, created_at`,
		name, platform, monthlySpendCents,
	).Scan(&cmp.ID, &cmp.Name, &cmp.Platform, &cmp.MonthlySpendCents, &cmp.CreatedAt)
	if err != nil {
		return Campaign{}, fmt.Errorf("create campaign: %w", err)
	}

	return cmp, nil
}

// Update applies partial updates to a campaign.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name *string, platform *string, monthlySpendCents *int64) (Campaign, error) {
	var cmp Campaign
	err := r.pool.QueryRow(ctx, `
		UPDATE campaigns SET
			name = COALESCE($2, name),
			platform = COALESCE($3, platform),
			monthly_spend_cents = COALESCE($4, monthly_spend_cents)
		WHERE id = $1
		RETURNING id, name, platform, monthly_spend_cents, created_at`,
		id, name, platform, monthlySpendCents,
	).Scan(&cmp.ID, &cmp.Name, &cmp.Platform, &cmp.MonthlySpendCents, &cmp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Campaign{}, apperr.NotFound("campaign not found")
		}
		return Campaign{}, fmt.Errorf("update campaign: %w", err)
	}

	return cmp, nil
}

// Delete removes a campaign; attributed leads keep existing with a NULL
// campaign reference.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("campaign not found")
	}

	return nil
}
