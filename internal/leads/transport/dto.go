package transport

import "github.com/google/uuid"

// CreateLeadRequest contains data for creating a new lead.
type CreateLeadRequest struct {
	ExternalID *string     `json:"externalId,omitempty" validate:"omitempty,max=100"`
	FirstName  *string     `json:"firstName,omitempty" validate:"omitempty,max=100"`
	Email      *string     `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string     `json:"phone,omitempty" validate:"omitempty,max=30"`
	Source     *string     `json:"source,omitempty" validate:"omitempty,max=100"`
	AdPlatform *string     `json:"adPlatform,omitempty" validate:"omitempty,max=50"`
	CampaignID *uuid.UUID  `json:"campaignId,omitempty"`
	StageID    *uuid.UUID  `json:"stageId,omitempty"`
	TagIDs     []uuid.UUID `json:"tags,omitempty" validate:"omitempty,dive,required"`
}

// UpdateLeadRequest contains partial updates to a lead's contact fields.
type UpdateLeadRequest struct {
	FirstName  *string    `json:"firstName,omitempty" validate:"omitempty,max=100"`
	Email      *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string    `json:"phone,omitempty" validate:"omitempty,max=30"`
	Source     *string    `json:"source,omitempty" validate:"omitempty,max=100"`
	AdPlatform *string    `json:"adPlatform,omitempty" validate:"omitempty,max=50"`
	CampaignID *uuid.UUID `json:"campaignId,omitempty"`
}

// UpdateLeadStageRequest moves a lead to an existing pipeline stage.
type UpdateLeadStageRequest struct {
	StageID uuid.UUID `json:"stageId" validate:"required"`
}

// UpdateLeadTagsRequest replaces the lead's full tag set. An empty list
// clears all tags.
type UpdateLeadTagsRequest struct {
	TagIDs []uuid.UUID `json:"tagIds" validate:"required"`
}

// ListLeadsRequest holds the supported list filters.
type ListLeadsRequest struct {
	Search     string `form:"search"`
	StageID    string `form:"stageId"`
	TagIDs     string `form:"tagIds"` // comma-separated
	CampaignID string `form:"campaignId"`
}

// StageResponse represents a pipeline stage in API responses.
type StageResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	Color     *string   `json:"color,omitempty"`
}

// TagResponse represents a tag in API responses.
type TagResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color *string   `json:"color,omitempty"`
}

// CampaignResponse represents the campaign a lead is attributed to.
type CampaignResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Platform          *string   `json:"platform,omitempty"`
	MonthlySpendCents int64     `json:"monthlySpendCents"`
}

// OpportunityResponse represents the expected-revenue record on a lead.
type OpportunityResponse struct {
	ID                 uuid.UUID `json:"id"`
	LeadID             uuid.UUID `json:"leadId"`
	ExpectedValueCents int64     `json:"expectedValueCents"`
	ExpectedValue      float64   `json:"expectedValue"`
	ProcedureCode      *string   `json:"procedureCode,omitempty"`
	ExpectedDate       *string   `json:"expectedDate,omitempty"`
	CreatedAt          string    `json:"createdAt"`
}

// StageHistoryResponse is one append-only stage assignment record.
type StageHistoryResponse struct {
	ID        uuid.UUID     `json:"id"`
	Stage     StageResponse `json:"stage"`
	ChangedAt string        `json:"changedAt"`
}

// ActivityResponse is one append-only audit log entry.
type ActivityResponse struct {
	ID        uuid.UUID   `json:"id"`
	LeadID    uuid.UUID   `json:"leadId"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	CreatedAt string      `json:"createdAt"`
}

// KpiEventResponse is one KPI fact record attached to a lead.
type KpiEventResponse struct {
	ID         uuid.UUID   `json:"id"`
	LeadID     uuid.UUID   `json:"leadId"`
	Kind       string      `json:"kind"`
	ValueCents *int64      `json:"valueCents,omitempty"`
	OccurredAt string      `json:"occurredAt"`
	Metadata   interface{} `json:"metadata,omitempty"`
}

// LeadResponse represents a lead in list responses.
type LeadResponse struct {
	ID            uuid.UUID            `json:"id"`
	ExternalID    *string              `json:"externalId,omitempty"`
	FirstName     *string              `json:"firstName,omitempty"`
	Email         *string              `json:"email,omitempty"`
	Phone         *string              `json:"phone,omitempty"`
	Source        *string              `json:"source,omitempty"`
	AdPlatform    *string              `json:"adPlatform,omitempty"`
	CurrentStage  *StageResponse       `json:"currentStage,omitempty"`
	Tags          []TagResponse        `json:"tags"`
	Campaign      *CampaignResponse    `json:"campaign,omitempty"`
	Opportunity   *OpportunityResponse `json:"opportunity,omitempty"`
	ActivityCount int                  `json:"activityCount"`
	KpiEventCount int                  `json:"kpiEventCount"`
	CreatedAt     string               `json:"createdAt"`
}

// LeadDetailResponse is the full lead view including history.
type LeadDetailResponse struct {
	LeadResponse
	StageHistory []StageHistoryResponse `json:"stageHistory"`
	Activities   []ActivityResponse     `json:"activities"`
	KpiEvents    []KpiEventResponse     `json:"kpiEvents"`
}

// LeadListResponse wraps a list of leads.
type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// DeleteLeadResponse confirms a deletion.
type DeleteLeadResponse struct {
	Message string `json:"message"`
}
