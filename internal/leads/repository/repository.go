package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"medspa_crm_backend/platform/apperr"
)

const (
	leadNotFoundMessage  = "lead not found"
	stageNotFoundMessage = "pipeline stage not found"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// GetStageByName retrieves a pipeline stage by its unique name.
func (r *Repo) GetStageByName(ctx context.Context, name string) (Stage, error) {
	query := `
		SELECT id, name, sort_order, color
		FROM pipeline_stages
		WHERE name = $1`

	var st Stage
	err := r.pool.QueryRow(ctx, query, name).Scan(&st.ID, &st.Name, &st.SortOrder, &st.Color)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Stage{}, apperr.NotFound(stageNotFoundMessage)
		}
		return Stage{}, fmt.Errorf("get stage by name: %w", err)
	}

	return st, nil
}

// Create inserts a lead, its first stage-history row and its tag
// associations in a single transaction.
func (r *Repo) Create(ctx context.Context, params CreateParams) (Lead, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var leadID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO leads (external_id, first_name, email, phone, source, ad_platform, campaign_id, current_stage_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		params.ExternalID, params.FirstName, params.Email, params.Phone,
		params.Source, params.AdPlatform, params.CampaignID, params.StageID,
	).Scan(&leadID)
	if err != nil {
		return Lead{}, fmt.Errorf("create lead: insert: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_stages (lead_id, stage_id) VALUES ($1, $2)`,
		leadID, params.StageID,
	); err != nil {
		return Lead{}, fmt.Errorf("create lead: insert stage history: %w", err)
	}

	for _, tagID := range params.TagIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_tags (lead_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			leadID, tagID,
		); err != nil {
			return Lead{}, apperr.Wrap(apperr.KindBadRequest, "unknown tag id", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, fmt.Errorf("create lead: commit: %w", err)
	}

	return r.getLead(ctx, leadID)
}

const leadSelect = `
	SELECT l.id, l.external_id, l.first_name, l.email, l.phone, l.source, l.ad_platform, l.campaign_id, l.created_at,
		s.id, s.name, s.sort_order, s.color,
		c.id, c.name, c.platform, c.monthly_spend_cents,
		o.id, o.lead_id, o.expected_value_cents, o.procedure_code, o.expected_date, o.created_at,
		(SELECT COUNT(*) FROM activities a WHERE a.lead_id = l.id),
		(SELECT COUNT(*) FROM kpi_events k WHERE k.lead_id = l.id)
	FROM leads l
	LEFT JOIN pipeline_stages s ON s.id = l.current_stage_id
	LEFT JOIN campaigns c ON c.id = l.campaign_id
	LEFT JOIN opportunities o ON o.lead_id = l.id`

func scanLead(row pgx.Row) (Lead, error) {
	var lead Lead
	var stageID *uuid.UUID
	var stageName *string
	var stageOrder *int
	var stageColor *string
	var campaignID *uuid.UUID
	var campaignName *string
	var campaignPlatform *string
	var campaignSpend *int64
	var opp Opportunity
	var oppID *uuid.UUID
	var oppLeadID *uuid.UUID
	var oppValue *int64

	err := row.Scan(
		&lead.ID, &lead.ExternalID, &lead.FirstName, &lead.Email, &lead.Phone,
		&lead.Source, &lead.AdPlatform, &lead.CampaignID, &lead.CreatedAt,
		&stageID, &stageName, &stageOrder, &stageColor,
		&campaignID, &campaignName, &campaignPlatform, &campaignSpend,
		&oppID, &oppLeadID, &oppValue, &opp.ProcedureCode, &opp.ExpectedDate, &opp.CreatedAt,
		&lead.ActivityCount, &lead.KpiEventCount,
	)
	if err != nil {
		return Lead{}, err
	}

	if stageID != nil {
		lead.CurrentStage = &Stage{ID: *stageID, Name: *stageName, SortOrder: *stageOrder, Color: stageColor}
	}
	if campaignID != nil {
		lead.Campaign = &Campaign{ID: *campaignID, Name: *campaignName, Platform: campaignPlatform, MonthlySpendCents: *campaignSpend}
	}
	if oppID != nil {
		opp.ID = *oppID
		opp.LeadID = *oppLeadID
		opp.ExpectedValueCents = *oppValue
		lead.Opportunity = &opp
	}

	return lead, nil
}

func (r *Repo) getLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, leadSelect+` WHERE l.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, apperr.NotFound(leadNotFoundMessage)
		}
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}

	tagsByLead, err := r.loadTags(ctx, []uuid.UUID{id})
	if err != nil {
		return Lead{}, err
	}
	lead.Tags = tagsByLead[id]
	if lead.Tags == nil {
		lead.Tags = []Tag{}
	}

	return lead, nil
}

func (r *Repo) loadTags(ctx context.Context, leadIDs []uuid.UUID) (map[uuid.UUID][]Tag, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT lt.lead_id, t.id, t.name, t.color
		FROM lead_tags lt
		JOIN tags t ON t.id = lt.tag_id
		WHERE lt.lead_id = ANY($1)
		ORDER BY t.name ASC`, leadIDs)
	if err != nil {
		return nil, fmt.Errorf("load lead tags: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]Tag)
	for rows.Next() {
		var leadID uuid.UUID
		var tag Tag
		if err := rows.Scan(&leadID, &tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, fmt.Errorf("scan lead tag: %w", err)
		}
		result[leadID] = append(result[leadID], tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load lead tags: %w", err)
	}

	return result, nil
}

// GetByID retrieves a lead with its full stage history, activities and KPI events.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (LeadDetail, error) {
	lead, err := r.getLead(ctx, id)
	if err != nil {
		return LeadDetail{}, err
	}

	detail := LeadDetail{Lead: lead}

	historyRows, err := r.pool.Query(ctx, `
		SELECT ls.id, s.id, s.name, s.sort_order, s.color, ls.changed_at
		FROM lead_stages ls
		JOIN pipeline_stages s ON s.id = ls.stage_id
		WHERE ls.lead_id = $1
		ORDER BY ls.changed_at DESC`, id)
	if err != nil {
		return LeadDetail{}, fmt.Errorf("load stage history: %w", err)
	}
	defer historyRows.Close()

	for historyRows.Next() {
		var entry StageHistoryEntry
		if err := historyRows.Scan(&entry.ID, &entry.Stage.ID, &entry.Stage.Name, &entry.Stage.SortOrder, &entry.Stage.Color, &entry.ChangedAt); err != nil {
			return LeadDetail{}, fmt.Errorf("scan stage history: %w", err)
		}
		detail.StageHistory = append(detail.StageHistory, entry)
	}
	if err := historyRows.Err(); err != nil {
		return LeadDetail{}, fmt.Errorf("load stage history: %w", err)
	}

	activityRows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, type, payload, created_at
		FROM activities
		WHERE lead_id = $1
		ORDER BY created_at DESC`, id)
	if err != nil {
		return LeadDetail{}, fmt.Errorf("load activities: %w", err)
	}
	defer activityRows.Close()

	for activityRows.Next() {
		var act Activity
		if err := activityRows.Scan(&act.ID, &act.LeadID, &act.Type, &act.Payload, &act.CreatedAt); err != nil {
			return LeadDetail{}, fmt.Errorf("scan activity: %w", err)
		}
		detail.Activities = append(detail.Activities, act)
	}
	if err := activityRows.Err(); err != nil {
		return LeadDetail{}, fmt.Errorf("load activities: %w", err)
	}

	eventRows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, kind, value_cents, occurred_at, metadata
		FROM kpi_events
		WHERE lead_id = $1
		ORDER BY occurred_at DESC`, id)
	if err != nil {
		return LeadDetail{}, fmt.Errorf("load kpi events: %w", err)
	}
	defer eventRows.Close()

	for eventRows.Next() {
		var ev KpiEvent
		if err := eventRows.Scan(&ev.ID, &ev.LeadID, &ev.Kind, &ev.ValueCents, &ev.OccurredAt, &ev.Metadata); err != nil {
			return LeadDetail{}, fmt.Errorf("scan kpi event: %w", err)
		}
		detail.KpiEvents = append(detail.KpiEvents, ev)
	}
	if err := eventRows.Err(); err != nil {
		return LeadDetail{}, fmt.Errorf("load kpi events: %w", err)
	}

	return detail, nil
}

// List retrieves leads matching the filters, newest first.
func (r *Repo) List(ctx context.Context, params ListParams) ([]Lead, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	var tagIDsParam interface{}
	if len(params.TagIDs) > 0 {
		tagIDsParam = params.TagIDs
	}

	query := leadSelect + `
	WHERE ($1::text IS NULL OR l.first_name ILIKE $1 OR l.email ILIKE $1 OR l.phone ILIKE $1)
		AND ($2::uuid IS NULL OR l.current_stage_id = $2)
		AND ($3::uuid[] IS NULL OR EXISTS (
			SELECT 1 FROM lead_tags lt WHERE lt.lead_id = l.id AND lt.tag_id = ANY($3)))
		AND ($4::uuid IS NULL OR l.campaign_id = $4)
	ORDER BY l.created_at DESC`

	rows, err := r.pool.Query(ctx, query, searchParam, params.StageID, tagIDsParam, params.CampaignID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	var ids []uuid.UUID
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, lead)
		ids = append(ids, lead.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	if len(ids) > 0 {
		tagsByLead, err := r.loadTags(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range leads {
			leads[i].Tags = tagsByLead[leads[i].ID]
			if leads[i].Tags == nil {
				leads[i].Tags = []Tag{}
			}
		}
	}

	return leads, nil
}

// UpdateStage moves a lead to a new stage: history row, current-stage pointer
// and the stage_change activity are written in one transaction so the
// current-stage reference can never drift from the history log.
func (r *Repo) UpdateStage(ctx context.Context, leadID, stageID uuid.UUID) (StageChange, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return StageChange{}, fmt.Errorf("update stage: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var toStage string
	err = tx.QueryRow(ctx, `SELECT name FROM pipeline_stages WHERE id = $1`, stageID).Scan(&toStage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StageChange{}, apperr.NotFound(stageNotFoundMessage)
		}
		return StageChange{}, fmt.Errorf("update stage: load stage: %w", err)
	}

	var fromStage *string
	err = tx.QueryRow(ctx, `
		SELECT s.name
		FROM leads l
		LEFT JOIN pipeline_stages s ON s.id = l.current_stage_id
		WHERE l.id = $1
		FOR UPDATE OF l`, leadID).Scan(&fromStage)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StageChange{}, apperr.NotFound(leadNotFoundMessage)
		}
		return StageChange{}, fmt.Errorf("update stage: load lead: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO lead_stages (lead_id, stage_id) VALUES ($1, $2)`, leadID, stageID); err != nil {
		return StageChange{}, fmt.Errorf("update stage: insert history: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE leads SET current_stage_id = $2 WHERE id = $1`, leadID, stageID); err != nil {
		return StageChange{}, fmt.Errorf("update stage: update lead: %w", err)
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"fromStage": fromStage,
		"toStage":   toStage,
	})
	if _, err := tx.Exec(ctx, `
		INSERT INTO activities (lead_id, type, payload) VALUES ($1, 'stage_change', $2)`,
		leadID, payload); err != nil {
		return StageChange{}, fmt.Errorf("update stage: insert activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return StageChange{}, fmt.Errorf("update stage: commit: %w", err)
	}

	return StageChange{FromStage: fromStage, ToStage: toStage}, nil
}

// ReplaceTags swaps the lead's full tag set (delete-all then insert) and
// appends the tag_updated activity, all in one transaction.
func (r *Repo) ReplaceTags(ctx context.Context, leadID uuid.UUID, tagIDs []uuid.UUID) (TagChange, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return TagChange{}, fmt.Errorf("replace tags: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leads WHERE id = $1 FOR UPDATE)`, leadID).Scan(&exists)
	if err != nil {
		return TagChange{}, fmt.Errorf("replace tags: check lead: %w", err)
	}
	if !exists {
		return TagChange{}, apperr.NotFound(leadNotFoundMessage)
	}

	previous, err := tagNames(ctx, tx, `
		SELECT t.name FROM lead_tags lt JOIN tags t ON t.id = lt.tag_id
		WHERE lt.lead_id = $1 ORDER BY t.name ASC`, leadID)
	if err != nil {
		return TagChange{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM lead_tags WHERE lead_id = $1`, leadID); err != nil {
		return TagChange{}, fmt.Errorf("replace tags: delete: %w", err)
	}

	for _, tagID := range tagIDs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO lead_tags (lead_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, leadID, tagID); err != nil {
			return TagChange{}, apperr.Wrap(apperr.KindBadRequest, "unknown tag id", err)
		}
	}

	current := []string{}
	if len(tagIDs) > 0 {
		current, err = tagNames(ctx, tx, `
			SELECT name FROM tags WHERE id = ANY($1) ORDER BY name ASC`, tagIDs)
		if err != nil {
			return TagChange{}, err
		}
	}

	payload, _ := json.Marshal(map[string]interface{}{"tagIds": tagIDs})
	if _, err := tx.Exec(ctx, `
		INSERT INTO activities (lead_id, type, payload) VALUES ($1, 'tag_updated', $2)`,
		leadID, payload); err != nil {
		return TagChange{}, fmt.Errorf("replace tags: insert activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return TagChange{}, fmt.Errorf("replace tags: commit: %w", err)
	}

	return TagChange{
		Added:   diffNames(current, previous),
		Removed: diffNames(previous, current),
	}, nil
}

func tagNames(ctx context.Context, tx pgx.Tx, query string, arg interface{}) ([]string, error) {
	rows, err := tx.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("load tag names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load tag names: %w", err)
	}

	return names, nil
}

// diffNames returns the entries of a that are not in b.
func diffNames(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, name := range b {
		inB[name] = struct{}{}
	}

	diff := []string{}
	for _, name := range a {
		if _, ok := inB[name]; !ok {
			diff = append(diff, name)
		}
	}
	return diff
}

// Update applies partial updates to a lead's contact fields.
func (r *Repo) Update(ctx context.Context, params UpdateParams) (Lead, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			first_name = COALESCE($2, first_name),
			email = COALESCE($3, email),
			phone = COALESCE($4, phone),
			source = COALESCE($5, source),
			ad_platform = COALESCE($6, ad_platform),
			campaign_id = COALESCE($7, campaign_id)
		WHERE id = $1`,
		params.ID, params.FirstName, params.Email, params.Phone,
		params.Source, params.AdPlatform, params.CampaignID,
	)
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return Lead{}, apperr.NotFound(leadNotFoundMessage)
	}

	return r.getLead(ctx, params.ID)
}

// Delete removes a lead; dependent rows cascade via foreign keys.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMessage)
	}

	return nil
}
