package webhooks

import (
	"context"
	"testing"

	"github.com/google/uuid"

	leadtransport "medspa_crm_backend/internal/leads/transport"
	"medspa_crm_backend/internal/tags"
	"medspa_crm_backend/platform/logger"
)

type fakeLeadStore struct {
	existingID uuid.UUID
	found      bool

	overwrittenID   uuid.UUID
	overwrittenWith Extracted
	overwrittenTags []uuid.UUID
}

func (f *fakeLeadStore) FindLeadByIdentity(ctx context.Context, externalID, email, phone string) (uuid.UUID, bool, error) {
	return f.existingID, f.found, nil
}

func (f *fakeLeadStore) OverwriteLead(ctx context.Context, leadID uuid.UUID, ex Extracted, tagIDs []uuid.UUID) error {
	f.overwrittenID = leadID
	f.overwrittenWith = ex
	f.overwrittenTags = tagIDs
	return nil
}

type fakeLeadCreator struct {
	created   *leadtransport.CreateLeadRequest
	createdID uuid.UUID
}

func (f *fakeLeadCreator) Create(ctx context.Context, req leadtransport.CreateLeadRequest) (leadtransport.LeadResponse, error) {
	f.created = &req
	f.createdID = uuid.New()
	return leadtransport.LeadResponse{ID: f.createdID}, nil
}

type fakeTagStore struct {
	byName map[string]uuid.UUID
}

func (f *fakeTagStore) FindOrCreate(ctx context.Context, name, color string) (tags.Tag, error) {
	if f.byName == nil {
		f.byName = map[string]uuid.UUID{}
	}
	id, ok := f.byName[name]
	if !ok {
		id = uuid.New()
		f.byName[name] = id
	}
	return tags.Tag{ID: id, Name: name, Color: &color}, nil
}

func TestProcessLeadCreatesUnknownLead(t *testing.T) {
	store := &fakeLeadStore{}
	creator := &fakeLeadCreator{}
	svc := NewService(store, creator, &fakeTagStore{}, logger.New("test"))

	leadID, err := svc.ProcessLead(context.Background(), LeadPayload{
		ContactID: "ext-9",
		FirstName: "Ana Lopez",
		Tags:      []InboundTag{{Name: "Botox"}, {Name: "Random Club"}},
	})
	if err != nil {
		t.Fatalf("ProcessLead returned error: %v", err)
	}

	if creator.created == nil {
		t.Fatal("expected lead creation through the lifecycle service")
	}
	if leadID != creator.createdID {
		t.Errorf("returned id %s does not match created id %s", leadID, creator.createdID)
	}
	if got := *creator.created.ExternalID; got != "ext-9" {
		t.Errorf("external id = %q", got)
	}
	if got := *creator.created.FirstName; got != "Ana" {
		t.Errorf("first name = %q, want Ana", got)
	}
	if len(creator.created.TagIDs) != 1 {
		t.Errorf("expected 1 surviving tag, got %d", len(creator.created.TagIDs))
	}
}

func TestProcessLeadOverwritesDedupedLead(t *testing.T) {
	existing := uuid.New()
	store := &fakeLeadStore{existingID: existing, found: true}
	creator := &fakeLeadCreator{}
	svc := NewService(store, creator, &fakeTagStore{}, logger.New("test"))

	leadID, err := svc.ProcessLead(context.Background(), LeadPayload{
		ContactID: "ext-1",
		Email:     "jane@example.com",
		Tags:      []InboundTag{{Name: "Lip Filler"}},
	})
	if err != nil {
		t.Fatalf("ProcessLead returned error: %v", err)
	}

	if creator.created != nil {
		t.Error("deduped lead must not be re-created")
	}
	if leadID != existing {
		t.Errorf("returned id %s, want existing %s", leadID, existing)
	}
	if store.overwrittenID != existing {
		t.Errorf("overwrite targeted %s, want %s", store.overwrittenID, existing)
	}
	if len(store.overwrittenTags) != 1 {
		t.Errorf("expected full tag replacement with 1 tag, got %d", len(store.overwrittenTags))
	}
}
