package transport

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CreateKpiEventRequest records one KPI fact against a lead.
type CreateKpiEventRequest struct {
	LeadID     uuid.UUID       `json:"leadId" validate:"required"`
	Kind       string          `json:"kind" validate:"required,min=1,max=50"`
	ValueCents *int64          `json:"valueCents,omitempty" validate:"omitempty,min=0"`
	OccurredAt *string         `json:"occurredAt,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// KpiEventResponse is a recorded KPI event.
type KpiEventResponse struct {
	ID         uuid.UUID   `json:"id"`
	LeadID     uuid.UUID   `json:"leadId"`
	Kind       string      `json:"kind"`
	ValueCents *int64      `json:"valueCents,omitempty"`
	OccurredAt string      `json:"occurredAt"`
	Metadata   interface{} `json:"metadata,omitempty"`
}

// DashboardRequest holds the dashboard query window.
type DashboardRequest struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// Summary is the headline block of the dashboard.
type Summary struct {
	TotalLeads        int     `json:"totalLeads"`
	ConsultBooked     int     `json:"consultBooked"`
	ConsultShown      int     `json:"consultShown"`
	RevenueCents      int64   `json:"revenueCents"`
	Revenue           float64 `json:"revenue"`
	SpendCents        int64   `json:"spendCents"`
	Spend             float64 `json:"spend"`
	ROI               float64 `json:"roi"`
	LeadToConsultRate float64 `json:"leadToConsultRate"`
	ConsultToShowRate float64 `json:"consultToShowRate"`
	ShowToWonRate     float64 `json:"showToWonRate"`
}

// SourceCount is one leads-by-source bucket.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// CampaignLeads is one leads-by-campaign bucket.
type CampaignLeads struct {
	CampaignID        uuid.UUID `json:"campaignId"`
	CampaignName      string    `json:"campaignName"`
	MonthlySpendCents int64     `json:"monthlySpendCents"`
	LeadCount         int       `json:"leadCount"`
}

// Period echoes the resolved reporting window.
type Period struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DashboardResponse is the full dashboard payload.
type DashboardResponse struct {
	Summary         Summary         `json:"summary"`
	LeadsBySource   []SourceCount   `json:"leadsBySource"`
	LeadsByCampaign []CampaignLeads `json:"leadsByCampaign"`
	Period          Period          `json:"period"`
}
