package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"medspa_crm_backend/internal/events"
	"medspa_crm_backend/internal/leads/repository"
	"medspa_crm_backend/internal/leads/transport"
	"medspa_crm_backend/platform/apperr"
	"medspa_crm_backend/platform/logger"
	"medspa_crm_backend/platform/validator"
)

type fakeRepo struct {
	stages       map[string]repository.Stage
	created      []repository.CreateParams
	lead         repository.Lead
	detail       repository.LeadDetail
	stageChange  repository.StageChange
	tagChange    repository.TagChange
	listParams   repository.ListParams
	updateParams repository.UpdateParams
	deleted      []uuid.UUID
}

func (f *fakeRepo) GetStageByName(ctx context.Context, name string) (repository.Stage, error) {
	st, ok := f.stages[name]
	if !ok {
		return repository.Stage{}, apperr.NotFound("pipeline stage not found")
	}
	return st, nil
}

func (f *fakeRepo) Create(ctx context.Context, params repository.CreateParams) (repository.Lead, error) {
	f.created = append(f.created, params)
	lead := f.lead
	lead.ID = uuid.New()
	return lead, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (repository.LeadDetail, error) {
	return f.detail, nil
}

func (f *fakeRepo) List(ctx context.Context, params repository.ListParams) ([]repository.Lead, error) {
	f.listParams = params
	return []repository.Lead{f.lead}, nil
}

func (f *fakeRepo) UpdateStage(ctx context.Context, leadID, stageID uuid.UUID) (repository.StageChange, error) {
	return f.stageChange, nil
}

func (f *fakeRepo) ReplaceTags(ctx context.Context, leadID uuid.UUID, tagIDs []uuid.UUID) (repository.TagChange, error) {
	return f.tagChange, nil
}

func (f *fakeRepo) Update(ctx context.Context, params repository.UpdateParams) (repository.Lead, error) {
	f.updateParams = params
	return f.lead, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func newTestService(repo *fakeRepo) (*Service, *events.InMemoryBus) {
	log := logger.New("test")
	bus := events.NewInMemoryBus(log)
	return New(repo, log, validator.New(), bus), bus
}

func strPtr(s string) *string { return &s }

func TestCreateAssignsDefaultStage(t *testing.T) {
	defaultStage := repository.Stage{ID: uuid.New(), Name: DefaultStageName}
	repo := &fakeRepo{stages: map[string]repository.Stage{DefaultStageName: defaultStage}}
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		FirstName: strPtr("Jane"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 create call, got %d", len(repo.created))
	}
	if repo.created[0].StageID != defaultStage.ID {
		t.Errorf("expected default stage %s, got %s", defaultStage.ID, repo.created[0].StageID)
	}
}

func TestCreateFailsWhenDefaultStageMissing(t *testing.T) {
	repo := &fakeRepo{stages: map[string]repository.Stage{}}
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		FirstName: strPtr("Jane"),
	})
	if err == nil {
		t.Fatal("expected error when default stage is missing")
	}
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("expected not-found kind, got %v", apperr.GetKind(err))
	}
	if len(repo.created) != 0 {
		t.Errorf("lead must not be created without a stage, got %d creates", len(repo.created))
	}
}

func TestCreateRejectsInvalidEmail(t *testing.T) {
	repo := &fakeRepo{stages: map[string]repository.Stage{}}
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Email: strPtr("not-an-email"),
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("expected validation kind, got %v", apperr.GetKind(err))
	}
}

func TestCreateNormalizesContactFields(t *testing.T) {
	defaultStage := repository.Stage{ID: uuid.New(), Name: DefaultStageName}
	repo := &fakeRepo{stages: map[string]repository.Stage{DefaultStageName: defaultStage}}
	svc, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		Email: strPtr("  Jane@Example.COM "),
		Phone: strPtr("(212) 555-0175"),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	params := repo.created[0]
	if params.Email == nil || *params.Email != "jane@example.com" {
		t.Errorf("email not normalized: %v", params.Email)
	}
	if params.Phone == nil || *params.Phone != "+12125550175" {
		t.Errorf("phone not normalized to E.164: %v", params.Phone)
	}
}

func TestCreatePublishesLeadCreated(t *testing.T) {
	defaultStage := repository.Stage{ID: uuid.New(), Name: DefaultStageName}
	repo := &fakeRepo{
		stages: map[string]repository.Stage{DefaultStageName: defaultStage},
		lead:   repository.Lead{ExternalID: strPtr("ext-1")},
	}
	svc, bus := newTestService(repo)

	received := make(chan events.LeadCreated, 1)
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if created, ok := e.(events.LeadCreated); ok {
			received <- created
		}
		return nil
	}))

	if _, err := svc.Create(context.Background(), transport.CreateLeadRequest{ExternalID: strPtr("ext-1")}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	select {
	case e := <-received:
		if e.ExternalID != "ext-1" {
			t.Errorf("expected external id ext-1, got %q", e.ExternalID)
		}
	case <-waitTimeout(t):
		t.Fatal("timed out waiting for lead.created event")
	}
}

func TestUpdateStagePublishesTransition(t *testing.T) {
	from := "New"
	repo := &fakeRepo{
		stageChange: repository.StageChange{FromStage: &from, ToStage: "Contacted"},
		detail:      repository.LeadDetail{Lead: repository.Lead{ExternalID: strPtr("ext-2")}},
	}
	svc, bus := newTestService(repo)

	received := make(chan events.LeadStageChanged, 1)
	bus.Subscribe(events.LeadStageChanged{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if changed, ok := e.(events.LeadStageChanged); ok {
			received <- changed
		}
		return nil
	}))

	_, err := svc.UpdateStage(context.Background(), uuid.New(), transport.UpdateLeadStageRequest{StageID: uuid.New()})
	if err != nil {
		t.Fatalf("UpdateStage returned error: %v", err)
	}

	select {
	case e := <-received:
		if e.FromStage != "New" || e.ToStage != "Contacted" {
			t.Errorf("unexpected transition %q -> %q", e.FromStage, e.ToStage)
		}
	case <-waitTimeout(t):
		t.Fatal("timed out waiting for lead.stage_changed event")
	}
}

func TestUpdateTagsSkipsEventWhenUnchanged(t *testing.T) {
	repo := &fakeRepo{tagChange: repository.TagChange{}}
	svc, bus := newTestService(repo)

	published := make(chan struct{}, 1)
	bus.Subscribe(events.LeadTagsUpdated{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		published <- struct{}{}
		return nil
	}))

	_, err := svc.UpdateTags(context.Background(), uuid.New(), transport.UpdateLeadTagsRequest{TagIDs: []uuid.UUID{}})
	if err != nil {
		t.Fatalf("UpdateTags returned error: %v", err)
	}

	select {
	case <-published:
		t.Fatal("no event expected when the tag set is unchanged")
	default:
	}
}

func TestListParsesFilters(t *testing.T) {
	repo := &fakeRepo{}
	svc, _ := newTestService(repo)

	stageID := uuid.New()
	tagA := uuid.New()
	tagB := uuid.New()

	_, err := svc.List(context.Background(), transport.ListLeadsRequest{
		Search:  " jane ",
		StageID: stageID.String(),
		TagIDs:  tagA.String() + "," + tagB.String(),
	})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if repo.listParams.Search != "jane" {
		t.Errorf("search not trimmed: %q", repo.listParams.Search)
	}
	if repo.listParams.StageID == nil || *repo.listParams.StageID != stageID {
		t.Errorf("stage filter not parsed: %v", repo.listParams.StageID)
	}
	if len(repo.listParams.TagIDs) != 2 {
		t.Errorf("expected 2 tag filters, got %d", len(repo.listParams.TagIDs))
	}
}

func TestListRejectsMalformedStageID(t *testing.T) {
	svc, _ := newTestService(&fakeRepo{})

	_, err := svc.List(context.Background(), transport.ListLeadsRequest{StageID: "nope"})
	if err == nil {
		t.Fatal("expected error for malformed stageId")
	}
	if apperr.GetKind(err) != apperr.KindBadRequest {
		t.Errorf("expected bad-request kind, got %v", apperr.GetKind(err))
	}
}

func waitTimeout(t *testing.T) <-chan time.Time {
	t.Helper()
	return time.After(2 * time.Second)
}
