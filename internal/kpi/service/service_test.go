package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"medspa_crm_backend/internal/kpi/repository"
	"medspa_crm_backend/internal/kpi/transport"
	"medspa_crm_backend/internal/reports/timerange"
	"medspa_crm_backend/platform/apperr"
	"medspa_crm_backend/platform/logger"
	"medspa_crm_backend/platform/validator"
)

type fakeRepo struct {
	totalLeads    int
	consultBooked int
	consultShown  int
	revenue       repository.RevenueTotal
	spendCents    int64
	bySource      []repository.SourceCount
	byCampaign    []repository.CampaignLeads

	createdEvent repository.CreateEventParams
}

func (f *fakeRepo) CreateEvent(ctx context.Context, params repository.CreateEventParams) (repository.Event, error) {
	f.createdEvent = params
	return repository.Event{
		ID:         uuid.New(),
		LeadID:     params.LeadID,
		Kind:       params.Kind,
		ValueCents: params.ValueCents,
		OccurredAt: time.Now().UTC(),
		Metadata:   params.Metadata,
	}, nil
}

func (f *fakeRepo) CountLeads(ctx context.Context, r timerange.Range) (int, error) {
	return f.totalLeads, nil
}

func (f *fakeRepo) CountEvents(ctx context.Context, kind string, r timerange.Range) (int, error) {
	switch kind {
	case repository.KindConsultBooked:
		return f.consultBooked, nil
	case repository.KindConsultShow:
		return f.consultShown, nil
	}
	return 0, nil
}

func (f *fakeRepo) RevenueTotal(ctx context.Context, r timerange.Range) (repository.RevenueTotal, error) {
	return f.revenue, nil
}

func (f *fakeRepo) CampaignSpendCents(ctx context.Context, until time.Time) (int64, error) {
	return f.spendCents, nil
}

func (f *fakeRepo) LeadsBySource(ctx context.Context, r timerange.Range) ([]repository.SourceCount, error) {
	return f.bySource, nil
}

func (f *fakeRepo) LeadsByCampaign(ctx context.Context, r timerange.Range) ([]repository.CampaignLeads, error) {
	return f.byCampaign, nil
}

func newTestService(repo *fakeRepo) *Service {
	return New(repo, logger.New("test"), validator.New())
}

func TestDashboardComputesFunnelRates(t *testing.T) {
	repo := &fakeRepo{
		totalLeads:    30,
		consultBooked: 10,
		consultShown:  4,
		revenue:       repository.RevenueTotal{Cents: 300_000, Events: 3},
		spendCents:    100_000,
	}
	svc := newTestService(repo)

	resp, err := svc.Dashboard(context.Background(), transport.DashboardRequest{})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	s := resp.Summary
	if s.LeadToConsultRate != 33.33 {
		t.Errorf("LeadToConsultRate = %v, want 33.33", s.LeadToConsultRate)
	}
	if s.ConsultToShowRate != 40 {
		t.Errorf("ConsultToShowRate = %v, want 40", s.ConsultToShowRate)
	}
	if s.ShowToWonRate != 75 {
		t.Errorf("ShowToWonRate = %v, want 75", s.ShowToWonRate)
	}
	if s.ROI != 200 {
		t.Errorf("ROI = %v, want 200", s.ROI)
	}
	if s.Revenue != 3000 || s.RevenueCents != 300_000 {
		t.Errorf("revenue = %v / %v cents", s.Revenue, s.RevenueCents)
	}
	if s.Spend != 1000 || s.SpendCents != 100_000 {
		t.Errorf("spend = %v / %v cents", s.Spend, s.SpendCents)
	}
}

func TestDashboardZeroDenominators(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	resp, err := svc.Dashboard(context.Background(), transport.DashboardRequest{})
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}

	s := resp.Summary
	if s.LeadToConsultRate != 0 || s.ConsultToShowRate != 0 || s.ShowToWonRate != 0 || s.ROI != 0 {
		t.Errorf("expected all rates 0 on empty data, got %+v", s)
	}
}

func TestDashboardRejectsMalformedRange(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.Dashboard(context.Background(), transport.DashboardRequest{From: "last tuesday"})
	if err == nil {
		t.Fatal("expected error for malformed from")
	}
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Errorf("expected bad-request kind, got %v", apperr.GetKind(err))
	}
}

func TestRecordEventParsesOccurredAt(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	occurred := "2025-06-01T12:00:00Z"
	_, err := svc.RecordEvent(context.Background(), transport.CreateKpiEventRequest{
		LeadID:     uuid.New(),
		Kind:       repository.KindConsultBooked,
		OccurredAt: &occurred,
	})
	if err != nil {
		t.Fatalf("RecordEvent returned error: %v", err)
	}

	if repo.createdEvent.OccurredAt == nil {
		t.Fatal("occurredAt not forwarded")
	}
	want := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if !repo.createdEvent.OccurredAt.Equal(want) {
		t.Errorf("occurredAt = %v, want %v", repo.createdEvent.OccurredAt, want)
	}
}

func TestRecordEventRequiresKind(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.RecordEvent(context.Background(), transport.CreateKpiEventRequest{LeadID: uuid.New()})
	if err == nil {
		t.Fatal("expected validation error for missing kind")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("expected validation kind, got %v", apperr.GetKind(err))
	}
}
