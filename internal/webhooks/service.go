package webhooks

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	leadtransport "medspa_crm_backend/internal/leads/transport"
	"medspa_crm_backend/internal/tags"
	"medspa_crm_backend/platform/logger"
)

// LeadCreator is the lead lifecycle entry point used for brand-new leads,
// so webhook creations inherit the default-stage and event behavior.
type LeadCreator interface {
	Create(ctx context.Context, req leadtransport.CreateLeadRequest) (leadtransport.LeadResponse, error)
}

// TagStore finds or creates tags by name.
type TagStore interface {
	FindOrCreate(ctx context.Context, name string, color string) (tags.Tag, error)
}

// LeadStore is the dedupe lookup and overwrite path.
type LeadStore interface {
	FindLeadByIdentity(ctx context.Context, externalID, email, phone string) (uuid.UUID, bool, error)
	OverwriteLead(ctx context.Context, leadID uuid.UUID, ex Extracted, tagIDs []uuid.UUID) error
}

// Service ingests inbound CRM lead webhooks.
type Service struct {
	store   LeadStore
	leadSvc LeadCreator
	tags    TagStore
	log     *logger.Logger
}

// NewService creates a new webhooks service.
func NewService(store LeadStore, leadSvc LeadCreator, tagStore TagStore, log *logger.Logger) *Service {
	return &Service{store: store, leadSvc: leadSvc, tags: tagStore, log: log}
}

// ProcessLead extracts the payload, resolves surviving tags, and either
// overwrites a deduped lead or creates a new one through the lead
// lifecycle service.
func (s *Service) ProcessLead(ctx context.Context, payload LeadPayload) (uuid.UUID, error) {
	ex := Extract(payload)

	tagIDs := make([]uuid.UUID, 0, len(ex.Tags))
	for _, name := range ex.Tags {
		tag, err := s.tags.FindOrCreate(ctx, name, TagColor(name))
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	leadID, found, err := s.store.FindLeadByIdentity(ctx, ex.ExternalID, ex.Email, ex.Phone)
	if err != nil {
		return uuid.Nil, err
	}

	if found {
		if err := s.store.OverwriteLead(ctx, leadID, ex, tagIDs); err != nil {
			return uuid.Nil, err
		}
		s.log.Info("webhook lead deduped", "leadId", leadID, "externalId", ex.ExternalID)
		return leadID, nil
	}

	req := leadtransport.CreateLeadRequest{
		Source: &ex.Source,
		TagIDs: tagIDs,
	}
	if ex.ExternalID != "" {
		req.ExternalID = &ex.ExternalID
	}
	if ex.FirstName != "" {
		req.FirstName = &ex.FirstName
	}
	if ex.Email != "" {
		req.Email = &ex.Email
	}
	if ex.Phone != "" {
		req.Phone = &ex.Phone
	}

	created, err := s.leadSvc.Create(ctx, req)
	if err != nil {
		return uuid.Nil, err
	}

	s.log.Info("webhook lead created", "leadId", created.ID, "externalId", ex.ExternalID)
	return created.ID, nil
}
