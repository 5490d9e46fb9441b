package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"medspa_crm_backend/internal/events"
	"medspa_crm_backend/internal/leads/repository"
	"medspa_crm_backend/internal/leads/transport"
	"medspa_crm_backend/platform/apperr"
	"medspa_crm_backend/platform/logger"
	"medspa_crm_backend/platform/phone"
	"medspa_crm_backend/platform/sanitize"
	"medspa_crm_backend/platform/validator"
)

// DefaultStageName is the pipeline stage assigned to new leads that do not
// specify one.
const DefaultStageName = "New"

// Service implements the leads business logic.
type Service struct {
	repo      repository.Repository
	log       *logger.Logger
	validator *validator.Validator
	bus       events.Bus
}

// New creates a new leads service.
func New(repo repository.Repository, log *logger.Logger, v *validator.Validator, bus events.Bus) *Service {
	return &Service{repo: repo, log: log, validator: v, bus: bus}
}

// Create validates and persists a new lead. When no stage is given the lead
// starts in the default stage; a missing default stage is an error rather
// than a silently stage-less lead.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindValidation, "invalid lead data", err)
	}

	stageID := req.StageID
	if stageID == nil {
		stage, err := s.repo.GetStageByName(ctx, DefaultStageName)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		stageID = &stage.ID
	}

	params := repository.CreateParams{
		ExternalID: trimmed(req.ExternalID),
		FirstName:  cleanName(req.FirstName),
		Email:      normalizedEmail(req.Email),
		Phone:      normalizedPhone(req.Phone),
		Source:     trimmed(req.Source),
		AdPlatform: trimmed(req.AdPlatform),
		CampaignID: req.CampaignID,
		StageID:    *stageID,
		TagIDs:     req.TagIDs,
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		ExternalID: deref(lead.ExternalID),
		FirstName:  deref(lead.FirstName),
		Email:      deref(lead.Email),
		Phone:      deref(lead.Phone),
		Source:     deref(lead.Source),
	})

	return toLeadResponse(lead), nil
}

// Get retrieves a lead with its stage history, activities and KPI events.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.LeadDetailResponse, error) {
	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	return toLeadDetailResponse(detail), nil
}

// List retrieves leads matching the given filters, newest first.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListParams{Search: strings.TrimSpace(req.Search)}

	if req.StageID != "" {
		id, err := uuid.Parse(req.StageID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid stageId")
		}
		params.StageID = &id
	}
	if req.CampaignID != "" {
		id, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid campaignId")
		}
		params.CampaignID = &id
	}
	for _, raw := range strings.Split(req.TagIDs, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return transport.LeadListResponse{}, apperr.BadRequest("invalid tagIds")
		}
		params.TagIDs = append(params.TagIDs, id)
	}

	leads, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}

	return transport.LeadListResponse{Items: items, Total: len(items)}, nil
}

// UpdateStage moves a lead to an existing pipeline stage and returns the
// refreshed lead detail.
func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, req transport.UpdateLeadStageRequest) (transport.LeadDetailResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindValidation, "invalid stage data", err)
	}

	change, err := s.repo.UpdateStage(ctx, id, req.StageID)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	s.bus.Publish(ctx, events.LeadStageChanged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     id,
		ExternalID: deref(detail.ExternalID),
		FromStage:  deref(change.FromStage),
		ToStage:    change.ToStage,
	})

	return toLeadDetailResponse(detail), nil
}

// UpdateTags replaces the lead's full tag set and returns the refreshed
// lead detail. An empty list clears all tags.
func (s *Service) UpdateTags(ctx context.Context, id uuid.UUID, req transport.UpdateLeadTagsRequest) (transport.LeadDetailResponse, error) {
	if req.TagIDs == nil {
		return transport.LeadDetailResponse{}, apperr.Validation("tagIds is required")
	}

	change, err := s.repo.ReplaceTags(ctx, id, req.TagIDs)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	if len(change.Added) > 0 || len(change.Removed) > 0 {
		s.bus.Publish(ctx, events.LeadTagsUpdated{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     id,
			ExternalID: deref(detail.ExternalID),
			Added:      change.Added,
			Removed:    change.Removed,
		})
	}

	return toLeadDetailResponse(detail), nil
}

// Update applies partial updates to a lead's contact fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindValidation, "invalid lead data", err)
	}

	lead, err := s.repo.Update(ctx, repository.UpdateParams{
		ID:         id,
		FirstName:  cleanName(req.FirstName),
		Email:      normalizedEmail(req.Email),
		Phone:      normalizedPhone(req.Phone),
		Source:     trimmed(req.Source),
		AdPlatform: trimmed(req.AdPlatform),
		CampaignID: req.CampaignID,
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	return toLeadResponse(lead), nil
}

// Delete removes a lead and all its dependent records.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cleanName(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitize.Text(*s)
	if v == "" {
		return nil
	}
	return &v
}

func normalizedEmail(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*s))
	if v == "" {
		return nil
	}
	return &v
}

// normalizedPhone stores E.164 when the number parses, the trimmed raw
// value otherwise. Webhook payloads carry numbers in every format the ad
// platforms produce and dropping them would lose the dedupe key.
func normalizedPhone(s *string) *string {
	if s == nil {
		return nil
	}
	raw := strings.TrimSpace(*s)
	if raw == "" {
		return nil
	}
	normalized := phone.NormalizeE164(raw)
	return &normalized
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func toStageResponse(st repository.Stage) transport.StageResponse {
	return transport.StageResponse{ID: st.ID, Name: st.Name, SortOrder: st.SortOrder, Color: st.Color}
}

func toTagResponses(tags []repository.Tag) []transport.TagResponse {
	out := make([]transport.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, transport.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	return out
}

func toOpportunityResponse(o repository.Opportunity) transport.OpportunityResponse {
	resp := transport.OpportunityResponse{
		ID:                 o.ID,
		LeadID:             o.LeadID,
		ExpectedValueCents: o.ExpectedValueCents,
		ExpectedValue:      float64(o.ExpectedValueCents) / 100,
		ProcedureCode:      o.ProcedureCode,
		CreatedAt:          formatTime(o.CreatedAt),
	}
	if o.ExpectedDate != nil {
		date := o.ExpectedDate.UTC().Format("2006-01-02")
		resp.ExpectedDate = &date
	}
	return resp
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:            lead.ID,
		ExternalID:    lead.ExternalID,
		FirstName:     lead.FirstName,
		Email:         lead.Email,
		Phone:         lead.Phone,
		Source:        lead.Source,
		AdPlatform:    lead.AdPlatform,
		Tags:          toTagResponses(lead.Tags),
		ActivityCount: lead.ActivityCount,
		KpiEventCount: lead.KpiEventCount,
		CreatedAt:     formatTime(lead.CreatedAt),
	}
	if lead.CurrentStage != nil {
		st := toStageResponse(*lead.CurrentStage)
		resp.CurrentStage = &st
	}
	if lead.Campaign != nil {
		resp.Campaign = &transport.CampaignResponse{
			ID:                lead.Campaign.ID,
			Name:              lead.Campaign.Name,
			Platform:          lead.Campaign.Platform,
			MonthlySpendCents: lead.Campaign.MonthlySpendCents,
		}
	}
	if lead.Opportunity != nil {
		opp := toOpportunityResponse(*lead.Opportunity)
		resp.Opportunity = &opp
	}
	return resp
}

func toLeadDetailResponse(detail repository.LeadDetail) transport.LeadDetailResponse {
	resp := transport.LeadDetailResponse{
		LeadResponse: toLeadResponse(detail.Lead),
		StageHistory: make([]transport.StageHistoryResponse, 0, len(detail.StageHistory)),
		Activities:   make([]transport.ActivityResponse, 0, len(detail.Activities)),
		KpiEvents:    make([]transport.KpiEventResponse, 0, len(detail.KpiEvents)),
	}

	for _, entry := range detail.StageHistory {
		resp.StageHistory = append(resp.StageHistory, transport.StageHistoryResponse{
			ID:        entry.ID,
			Stage:     toStageResponse(entry.Stage),
			ChangedAt: formatTime(entry.ChangedAt),
		})
	}
	for _, act := range detail.Activities {
		resp.Activities = append(resp.Activities, transport.ActivityResponse{
			ID:        act.ID,
			LeadID:    act.LeadID,
			Type:      act.Type,
			Payload:   decodeJSON(act.Payload),
			CreatedAt: formatTime(act.CreatedAt),
		})
	}
	for _, ev := range detail.KpiEvents {
		resp.KpiEvents = append(resp.KpiEvents, transport.KpiEventResponse{
			ID:         ev.ID,
			LeadID:     ev.LeadID,
			Kind:       ev.Kind,
			ValueCents: ev.ValueCents,
			OccurredAt: formatTime(ev.OccurredAt),
			Metadata:   decodeJSON(ev.Metadata),
		})
	}

	return resp
}

func decodeJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}
