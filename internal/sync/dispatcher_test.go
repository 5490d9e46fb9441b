package sync

import (
	"context"
	"testing"

	"medspa_crm_backend/internal/events"
	"medspa_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeEnqueuer struct {
	contacts []ContactPayload
	stages   []StageUpdatePayload
	tagAdds  []TagPayload
	tagDrops []TagPayload
}

func (f *fakeEnqueuer) EnqueueContactSync(_ context.Context, p ContactPayload) error {
	f.contacts = append(f.contacts, p)
	return nil
}

func (f *fakeEnqueuer) EnqueueStageUpdate(_ context.Context, p StageUpdatePayload) error {
	f.stages = append(f.stages, p)
	return nil
}

func (f *fakeEnqueuer) EnqueueTagAdd(_ context.Context, p TagPayload) error {
	f.tagAdds = append(f.tagAdds, p)
	return nil
}

func (f *fakeEnqueuer) EnqueueTagRemove(_ context.Context, p TagPayload) error {
	f.tagDrops = append(f.tagDrops, p)
	return nil
}

func TestDispatcherEnqueuesContactOnLeadCreated(t *testing.T) {
	queue := &fakeEnqueuer{}
	d := NewDispatcher(queue, logger.New("test"))

	err := d.Handle(context.Background(), events.LeadCreated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     uuid.New(),
		ExternalID: "ext-1",
		FirstName:  "Dana",
		Email:      "dana@example.com",
		Phone:      "+12125550175",
		Source:     "ghl",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(queue.contacts) != 1 {
		t.Fatalf("contact jobs = %d, want 1", len(queue.contacts))
	}
	if queue.contacts[0].ExternalID != "ext-1" || queue.contacts[0].Email != "dana@example.com" {
		t.Fatalf("unexpected payload: %+v", queue.contacts[0])
	}
}

func TestDispatcherSkipsStageUpdateWithoutExternalID(t *testing.T) {
	queue := &fakeEnqueuer{}
	d := NewDispatcher(queue, logger.New("test"))

	err := d.Handle(context.Background(), events.LeadStageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    uuid.New(),
		FromStage: "New",
		ToStage:   "Contacted",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(queue.stages) != 0 {
		t.Fatalf("stage jobs = %d, want 0", len(queue.stages))
	}
}

func TestDispatcherFansOutTagChanges(t *testing.T) {
	queue := &fakeEnqueuer{}
	d := NewDispatcher(queue, logger.New("test"))

	err := d.Handle(context.Background(), events.LeadTagsUpdated{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     uuid.New(),
		ExternalID: "ext-1",
		Added:      []string{"botox", "filler"},
		Removed:    []string{"laser"},
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(queue.tagAdds) != 2 || len(queue.tagDrops) != 1 {
		t.Fatalf("tag jobs = %d adds / %d removes, want 2/1", len(queue.tagAdds), len(queue.tagDrops))
	}
	if queue.tagAdds[0].TagName != "botox" || queue.tagDrops[0].TagName != "laser" {
		t.Fatalf("unexpected tag payloads: %+v %+v", queue.tagAdds, queue.tagDrops)
	}
}

func TestDispatcherSubscribesToLeadEvents(t *testing.T) {
	queue := &fakeEnqueuer{}
	bus := events.NewInMemoryBus(logger.New("test"))
	NewDispatcher(queue, logger.New("test")).RegisterHandlers(bus)

	err := bus.PublishSync(context.Background(), events.LeadStageChanged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     uuid.New(),
		ExternalID: "ext-1",
		FromStage:  "New",
		ToStage:    "Won",
	})
	if err != nil {
		t.Fatalf("PublishSync: %v", err)
	}

	if len(queue.stages) != 1 {
		t.Fatalf("stage jobs = %d, want 1", len(queue.stages))
	}
	if queue.stages[0].StageName != "Won" {
		t.Fatalf("stage = %q, want Won", queue.stages[0].StageName)
	}
}
