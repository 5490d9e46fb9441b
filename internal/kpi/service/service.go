package service

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"medspa_crm_backend/internal/kpi/repository"
	"medspa_crm_backend/internal/kpi/transport"
	"medspa_crm_backend/internal/reports/timerange"
	"medspa_crm_backend/platform/apperr"
	"medspa_crm_backend/platform/logger"
	"medspa_crm_backend/platform/validator"
)

// defaultWindow is the dashboard window when no bounds are given.
const defaultWindow = 30 * 24 * time.Hour

// Service computes the marketing dashboard and records KPI events.
type Service struct {
	repo      repository.Repository
	log       *logger.Logger
	validator *validator.Validator
}

// New creates a new KPI service.
func New(repo repository.Repository, log *logger.Logger, v *validator.Validator) *Service {
	return &Service{repo: repo, log: log, validator: v}
}

// RecordEvent validates and persists a KPI event.
func (s *Service) RecordEvent(ctx context.Context, req transport.CreateKpiEventRequest) (transport.KpiEventResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return transport.KpiEventResponse{}, apperr.Wrap(apperr.KindValidation, "invalid kpi event", err)
	}

	params := repository.CreateEventParams{
		LeadID:     req.LeadID,
		Kind:       req.Kind,
		ValueCents: req.ValueCents,
		Metadata:   req.Metadata,
	}
	if req.OccurredAt != nil && *req.OccurredAt != "" {
		occurred, err := time.Parse(time.RFC3339, *req.OccurredAt)
		if err != nil {
			return transport.KpiEventResponse{}, apperr.BadRequest("occurredAt must be RFC 3339")
		}
		utc := occurred.UTC()
		params.OccurredAt = &utc
	}

	ev, err := s.repo.CreateEvent(ctx, params)
	if err != nil {
		return transport.KpiEventResponse{}, err
	}

	resp := transport.KpiEventResponse{
		ID:         ev.ID,
		LeadID:     ev.LeadID,
		Kind:       ev.Kind,
		ValueCents: ev.ValueCents,
		OccurredAt: ev.OccurredAt.UTC().Format(time.RFC3339),
	}
	if len(ev.Metadata) > 0 {
		var metadata interface{}
		if err := json.Unmarshal(ev.Metadata, &metadata); err == nil {
			resp.Metadata = metadata
		}
	}

	return resp, nil
}

// Dashboard aggregates the marketing funnel for the window. The independent
// reads run concurrently; the first failure cancels the rest.
func (s *Service) Dashboard(ctx context.Context, req transport.DashboardRequest) (transport.DashboardResponse, error) {
	window, err := timerange.Parse(req.From, req.To, defaultWindow)
	if err != nil {
		return transport.DashboardResponse{}, err
	}

	var (
		totalLeads    int
		consultBooked int
		consultShown  int
		revenue       repository.RevenueTotal
		spendCents    int64
		bySource      []repository.SourceCount
		byCampaign    []repository.CampaignLeads
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totalLeads, err = s.repo.CountLeads(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		consultBooked, err = s.repo.CountEvents(gctx, repository.KindConsultBooked, window)
		return err
	})
	g.Go(func() error {
		var err error
		consultShown, err = s.repo.CountEvents(gctx, repository.KindConsultShow, window)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, err = s.repo.RevenueTotal(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		spendCents, err = s.repo.CampaignSpendCents(gctx, window.To)
		return err
	})
	g.Go(func() error {
		var err error
		bySource, err = s.repo.LeadsBySource(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		byCampaign, err = s.repo.LeadsByCampaign(gctx, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.DashboardResponse{}, err
	}

	summary := buildSummary(totalLeads, consultBooked, consultShown, revenue, spendCents)

	resp := transport.DashboardResponse{
		Summary:         summary,
		LeadsBySource:   make([]transport.SourceCount, 0, len(bySource)),
		LeadsByCampaign: make([]transport.CampaignLeads, 0, len(byCampaign)),
		Period: transport.Period{
			From: window.From.Format(time.RFC3339),
			To:   window.To.Format(time.RFC3339),
		},
	}
	for _, sc := range bySource {
		resp.LeadsBySource = append(resp.LeadsBySource, transport.SourceCount{Source: sc.Source, Count: sc.Count})
	}
	for _, cl := range byCampaign {
		resp.LeadsByCampaign = append(resp.LeadsByCampaign, transport.CampaignLeads{
			CampaignID:        cl.CampaignID,
			CampaignName:      cl.Name,
			MonthlySpendCents: cl.MonthlySpendCents,
			LeadCount:         cl.Count,
		})
	}

	return resp, nil
}

// buildSummary computes the funnel rates. Every denominator can be zero on
// a fresh install, in which case the rate reports 0 rather than NaN.
func buildSummary(totalLeads, consultBooked, consultShown int, revenue repository.RevenueTotal, spendCents int64) transport.Summary {
	summary := transport.Summary{
		TotalLeads:    totalLeads,
		ConsultBooked: consultBooked,
		ConsultShown:  consultShown,
		RevenueCents:  revenue.Cents,
		Revenue:       float64(revenue.Cents) / 100,
		SpendCents:    spendCents,
		Spend:         float64(spendCents) / 100,
	}

	if totalLeads > 0 {
		summary.LeadToConsultRate = round2(float64(consultBooked) / float64(totalLeads) * 100)
	}
	if consultBooked > 0 {
		summary.ConsultToShowRate = round2(float64(consultShown) / float64(consultBooked) * 100)
	}
	if consultShown > 0 {
		summary.ShowToWonRate = round2(float64(revenue.Events) / float64(consultShown) * 100)
	}
	if spendCents > 0 {
		summary.ROI = float64(revenue.Cents-spendCents) / float64(spendCents) * 100
	}

	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
