package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"medspa_crm_backend/internal/reports/timerange"
)

const invoicePaidKind = "invoice_paid"

// ConversionCounts are the funnel event counts over a window.
type ConversionCounts struct {
	ConsultBooked int
	ConsultShow   int
	InvoicePaid   int
}

// CampaignRevenue is the raw per-campaign revenue row. CampaignID is the
// text form of the uuid, or "unknown" for unattributed leads.
type CampaignRevenue struct {
	CampaignID   string
	CampaignName string
	SpendCents   int64
	RevenueCents int64
}

// DailyRevenue is one per-UTC-day revenue bucket.
type DailyRevenue struct {
	Day          time.Time
	RevenueCents int64
}

// Repository runs the revenue reporting queries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RevenueCents sums invoice_paid value over the window.
func (r *Repository) RevenueCents(ctx context.Context, b timerange.Bounds) (int64, error) {
	var cents int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(value_cents), 0)
		FROM kpi_events
		WHERE kind = $1
			AND ($2::timestamptz IS NULL OR occurred_at >= $2)
			AND ($3::timestamptz IS NULL OR occurred_at < $3)`,
		invoicePaidKind, b.From, b.To,
	).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("sum revenue: %w", err)
	}

	return cents, nil
}

// Conversions counts the funnel events over the window.
func (r *Repository) Conversions(ctx context.Context, b timerange.Bounds) (ConversionCounts, error) {
	var counts ConversionCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE kind = 'consult_booked'),
			COUNT(*) FILTER (WHERE kind = 'consult_show'),
			COUNT(*) FILTER (WHERE kind = 'invoice_paid')
		FROM kpi_events
		WHERE ($1::timestamptz IS NULL OR occurred_at >= $1)
			AND ($2::timestamptz IS NULL OR occurred_at < $2)`,
		b.From, b.To,
	).Scan(&counts.ConsultBooked, &counts.ConsultShow, &counts.InvoicePaid)
	if err != nil {
		return ConversionCounts{}, fmt.Errorf("count conversions: %w", err)
	}

	return counts, nil
}

// RevenueByCampaign groups invoice_paid revenue by the paying lead's
// campaign, descending by revenue. Leads without a campaign land in the
// "unknown" bucket.
func (r *Repository) RevenueByCampaign(ctx context.Context, b timerange.Bounds) ([]CampaignRevenue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT
			COALESCE(l.campaign_id::text, 'unknown'),
			COALESCE(c.name, 'Unknown'),
			COALESCE(c.monthly_spend_cents, 0),
			COALESCE(SUM(e.value_cents), 0)
		FROM kpi_events e
		LEFT JOIN leads l ON l.id = e.lead_id
		LEFT JOIN campaigns c ON c.id = l.campaign_id
		WHERE e.kind = $1
			AND ($2::timestamptz IS NULL OR e.occurred_at >= $2)
			AND ($3::timestamptz IS NULL OR e.occurred_at < $3)
		GROUP BY 1, 2, 3
		ORDER BY 4 DESC`,
		invoicePaidKind, b.From, b.To)
	if err != nil {
		return nil, fmt.Errorf("revenue by campaign: %w", err)
	}
	defer rows.Close()

	result := []CampaignRevenue{}
	for rows.Next() {
		var row CampaignRevenue
		if err := rows.Scan(&row.CampaignID, &row.CampaignName, &row.SpendCents, &row.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan campaign revenue: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("revenue by campaign: %w", err)
	}

	return result, nil
}

// RevenueDaily buckets invoice_paid revenue per UTC day, ascending.
func (r *Repository) RevenueDaily(ctx context.Context, b timerange.Bounds) ([]DailyRevenue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', occurred_at AT TIME ZONE 'UTC'), COALESCE(SUM(value_cents), 0)
		FROM kpi_events
		WHERE kind = $1
			AND ($2::timestamptz IS NULL OR occurred_at >= $2)
			AND ($3::timestamptz IS NULL OR occurred_at < $3)
		GROUP BY 1
		ORDER BY 1 ASC`,
		invoicePaidKind, b.From, b.To)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	defer rows.Close()

	result := []DailyRevenue{}
	for rows.Next() {
		var row DailyRevenue
		if err := rows.Scan(&row.Day, &row.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan daily revenue: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}

	return result, nil
}
