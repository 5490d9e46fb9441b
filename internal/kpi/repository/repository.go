// Package repository provides the KPI fact-table queries backing the
// dashboard aggregator.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"medspa_crm_backend/internal/reports/timerange"
	"medspa_crm_backend/platform/apperr"
)

const foreignKeyViolationCode = "23503"

// Known KPI event kinds. The column is free-form; these are the kinds the
// dashboard aggregates.
const (
	KindConsultBooked = "consult_booked"
	KindConsultShow   = "consult_show"
	KindInvoicePaid   = "invoice_paid"
	KindAdClick       = "ad_click"
)

// Event is a recorded KPI fact.
type Event struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	Kind       string
	ValueCents *int64
	OccurredAt time.Time
	Metadata   []byte
}

// CreateEventParams holds the fields for recording a KPI event.
type CreateEventParams struct {
	LeadID     uuid.UUID
	Kind       string
	ValueCents *int64
	OccurredAt *time.Time
	Metadata   []byte
}

// RevenueTotal is the invoice_paid aggregate over a window.
type RevenueTotal struct {
	Cents  int64
	Events int
}

// SourceCount is a leads-per-source bucket.
type SourceCount struct {
	Source string
	Count  int
}

// CampaignLeads is a leads-per-campaign bucket with campaign details.
type CampaignLeads struct {
	CampaignID        uuid.UUID
	Name              string
	MonthlySpendCents int64
	Count             int
}

// Repository defines the queries the dashboard service runs.
type Repository interface {
	CreateEvent(ctx context.Context, params CreateEventParams) (Event, error)
	CountLeads(ctx context.Context, r timerange.Range) (int, error)
	CountEvents(ctx context.Context, kind string, r timerange.Range) (int, error)
	RevenueTotal(ctx context.Context, r timerange.Range) (RevenueTotal, error)
	CampaignSpendCents(ctx context.Context, until time.Time) (int64, error)
	LeadsBySource(ctx context.Context, r timerange.Range) ([]SourceCount, error)
	LeadsByCampaign(ctx context.Context, r timerange.Range) ([]CampaignLeads, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new KPI repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// CreateEvent records a KPI fact against a lead.
func (r *Repo) CreateEvent(ctx context.Context, params CreateEventParams) (Event, error) {
	var ev Event
	err := r.pool.QueryRow(ctx, `
		INSERT INTO kpi_events (lead_id, kind, value_cents, occurred_at, metadata)
		VALUES ($1, $2, $3, COALESCE($4, now()), $5)
		RETURNING id, lead_id, kind, value_cents, occurred_at, metadata`,
		params.LeadID, params.Kind, params.ValueCents, params.OccurredAt, params.Metadata,
	).Scan(&ev.ID, &ev.LeadID, &ev.Kind, &ev.ValueCents, &ev.OccurredAt, &ev.Metadata)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
			return Event{}, apperr.NotFound("lead not found")
		}
		return Event{}, fmt.Errorf("create kpi event: %w", err)
	}

	return ev, nil
}

// CountLeads counts leads created inside the window.
func (r *Repo) CountLeads(ctx context.Context, rng timerange.Range) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads WHERE created_at >= $1 AND created_at < $2`,
		rng.From, rng.To,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count leads: %w", err)
	}
	return count, nil
}

// CountEvents counts KPI events of a kind inside the window.
func (r *Repo) CountEvents(ctx context.Context, kind string, rng timerange.Range) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM kpi_events
		WHERE kind = $1 AND occurred_at >= $2 AND occurred_at < $3`,
		kind, rng.From, rng.To,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count kpi events: %w", err)
	}
	return count, nil
}

// RevenueTotal sums invoice_paid value over the window.
func (r *Repo) RevenueTotal(ctx context.Context, rng timerange.Range) (RevenueTotal, error) {
	var total RevenueTotal
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(value_cents), 0), COUNT(*)
		FROM kpi_events
		WHERE kind = $1 AND occurred_at >= $2 AND occurred_at < $3`,
		KindInvoicePaid, rng.From, rng.To,
	).Scan(&total.Cents, &total.Events)
	if err != nil {
		return RevenueTotal{}, fmt.Errorf("sum revenue: %w", err)
	}
	return total, nil
}

// CampaignSpendCents sums the standing monthly spend of campaigns created
// before the window end. The figure is not prorated to the window.
func (r *Repo) CampaignSpendCents(ctx context.Context, until time.Time) (int64, error) {
	var cents int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(monthly_spend_cents), 0)
		FROM campaigns WHERE created_at < $1`,
		until,
	).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("sum campaign spend: %w", err)
	}
	return cents, nil
}

// LeadsBySource buckets leads created inside the window by source.
func (r *Repo) LeadsBySource(ctx context.Context, rng timerange.Range) ([]SourceCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT COALESCE(source, 'Unknown'), COUNT(*)
		FROM leads
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 2 DESC`,
		rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("leads by source: %w", err)
	}
	defer rows.Close()

	result := []SourceCount{}
	for rows.Next() {
		var sc SourceCount
		if err := rows.Scan(&sc.Source, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan source bucket: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads by source: %w", err)
	}

	return result, nil
}

// LeadsByCampaign buckets attributed leads created inside the window by
// campaign, with the campaign's name and standing spend.
func (r *Repo) LeadsByCampaign(ctx context.Context, rng timerange.Range) ([]CampaignLeads, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.campaign_id, COALESCE(c.name, 'Unknown'), COALESCE(c.monthly_spend_cents, 0), COUNT(*)
		FROM leads l
		LEFT JOIN campaigns c ON c.id = l.campaign_id
		WHERE l.campaign_id IS NOT NULL AND l.created_at >= $1 AND l.created_at < $2
		GROUP BY l.campaign_id, c.name, c.monthly_spend_cents
		ORDER BY COUNT(*) DESC`,
		rng.From, rng.To)
	if err != nil {
		return nil, fmt.Errorf("leads by campaign: %w", err)
	}
	defer rows.Close()

	result := []CampaignLeads{}
	for rows.Next() {
		var cl CampaignLeads
		if err := rows.Scan(&cl.CampaignID, &cl.Name, &cl.MonthlySpendCents, &cl.Count); err != nil {
			return nil, fmt.Errorf("scan campaign bucket: %w", err)
		}
		result = append(result, cl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads by campaign: %w", err)
	}

	return result, nil
}
