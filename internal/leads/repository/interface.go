package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Stage is a pipeline stage as stored.
type Stage struct {
	ID        uuid.UUID
	Name      string
	SortOrder int
	Color     *string
}

// Tag is a tag as stored.
type Tag struct {
	ID    uuid.UUID
	Name  string
	Color *string
}

// Campaign is the campaign a lead is attributed to.
type Campaign struct {
	ID                uuid.UUID
	Name              string
	Platform          *string
	MonthlySpendCents int64
}

// Opportunity is the one-to-one expected-revenue record on a lead.
type Opportunity struct {
	ID                 uuid.UUID
	LeadID             uuid.UUID
	ExpectedValueCents int64
	ProcedureCode      *string
	ExpectedDate       *time.Time
	CreatedAt          time.Time
}

// StageHistoryEntry is one append-only stage assignment.
type StageHistoryEntry struct {
	ID        uuid.UUID
	Stage     Stage
	ChangedAt time.Time
}

// Activity is one append-only audit log entry.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// KpiEvent is one KPI fact record.
type KpiEvent struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	Kind       string
	ValueCents *int64
	OccurredAt time.Time
	Metadata   []byte
}

// Lead is a lead row with its embedded associations resolved.
type Lead struct {
	ID            uuid.UUID
	ExternalID    *string
	FirstName     *string
	Email         *string
	Phone         *string
	Source        *string
	AdPlatform    *string
	CampaignID    *uuid.UUID
	CurrentStage  *Stage
	Campaign      *Campaign
	Opportunity   *Opportunity
	Tags          []Tag
	ActivityCount int
	KpiEventCount int
	CreatedAt     time.Time
}

// LeadDetail is a lead with its full history loaded.
type LeadDetail struct {
	Lead
	StageHistory []StageHistoryEntry
	Activities   []Activity
	KpiEvents    []KpiEvent
}

// CreateParams holds the fields for inserting a lead.
type CreateParams struct {
	ExternalID *string
	FirstName  *string
	Email      *string
	Phone      *string
	Source     *string
	AdPlatform *string
	CampaignID *uuid.UUID
	// StageID is the initial pipeline stage. Callers resolve it before the
	// insert; the repository writes the lead, the first history row and the
	// tag associations in one transaction.
	StageID uuid.UUID
	TagIDs  []uuid.UUID
}

// UpdateParams holds partial updates to a lead's contact fields.
type UpdateParams struct {
	ID         uuid.UUID
	FirstName  *string
	Email      *string
	Phone      *string
	Source     *string
	AdPlatform *string
	CampaignID *uuid.UUID
}

// ListParams holds list filters.
type ListParams struct {
	Search     string
	StageID    *uuid.UUID
	TagIDs     []uuid.UUID
	CampaignID *uuid.UUID
}

// StageChange reports the result of a stage transition.
type StageChange struct {
	FromStage *string
	ToStage   string
}

// TagChange reports the tag names added and removed by a replacement.
type TagChange struct {
	Added   []string
	Removed []string
}

// Repository defines persistence operations for the leads module.
type Repository interface {
	GetStageByName(ctx context.Context, name string) (Stage, error)
	Create(ctx context.Context, params CreateParams) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (LeadDetail, error)
	List(ctx context.Context, params ListParams) ([]Lead, error)
	UpdateStage(ctx context.Context, leadID, stageID uuid.UUID) (StageChange, error)
	ReplaceTags(ctx context.Context, leadID uuid.UUID, tagIDs []uuid.UUID) (TagChange, error)
	Update(ctx context.Context, params UpdateParams) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
