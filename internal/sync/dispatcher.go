package sync

import (
	"context"

	"medspa_crm_backend/internal/events"
	"medspa_crm_backend/platform/logger"
)

// Enqueuer is the queue surface the dispatcher needs. *Client implements it.
type Enqueuer interface {
	EnqueueContactSync(ctx context.Context, payload ContactPayload) error
	EnqueueStageUpdate(ctx context.Context, payload StageUpdatePayload) error
	EnqueueTagAdd(ctx context.Context, payload TagPayload) error
	EnqueueTagRemove(ctx context.Context, payload TagPayload) error
}

var _ Enqueuer = (*Client)(nil)

// Dispatcher turns lead domain events into CRM sync jobs. It runs inside the
// API process; the jobs are consumed by the worker process.
type Dispatcher struct {
	queue Enqueuer
	log   *logger.Logger
}

func NewDispatcher(queue Enqueuer, log *logger.Logger) *Dispatcher {
	return &Dispatcher{queue: queue, log: log}
}

// RegisterHandlers subscribes the dispatcher to the lead events that must be
// mirrored to the CRM.
func (d *Dispatcher) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), d)
	bus.Subscribe(events.LeadStageChanged{}.EventName(), d)
	bus.Subscribe(events.LeadTagsUpdated{}.EventName(), d)

	d.log.Info("crm sync dispatcher registered event handlers")
}

// Handle routes events to the appropriate enqueue call.
func (d *Dispatcher) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadCreated:
		return d.handleLeadCreated(ctx, e)
	case events.LeadStageChanged:
		return d.handleLeadStageChanged(ctx, e)
	case events.LeadTagsUpdated:
		return d.handleLeadTagsUpdated(ctx, e)
	default:
		return nil
	}
}

func (d *Dispatcher) handleLeadCreated(ctx context.Context, e events.LeadCreated) error {
	return d.queue.EnqueueContactSync(ctx, ContactPayload{
		ExternalID: e.ExternalID,
		FirstName:  e.FirstName,
		Email:      e.Email,
		Phone:      e.Phone,
		Source:     e.Source,
	})
}

func (d *Dispatcher) handleLeadStageChanged(ctx context.Context, e events.LeadStageChanged) error {
	if e.ExternalID == "" {
		return nil
	}
	return d.queue.EnqueueStageUpdate(ctx, StageUpdatePayload{
		ContactID: e.ExternalID,
		StageName: e.ToStage,
	})
}

func (d *Dispatcher) handleLeadTagsUpdated(ctx context.Context, e events.LeadTagsUpdated) error {
	if e.ExternalID == "" {
		return nil
	}

	for _, name := range e.Added {
		if err := d.queue.EnqueueTagAdd(ctx, TagPayload{ContactID: e.ExternalID, TagName: name}); err != nil {
			return err
		}
	}
	for _, name := range e.Removed {
		if err := d.queue.EnqueueTagRemove(ctx, TagPayload{ContactID: e.ExternalID, TagName: name}); err != nil {
			return err
		}
	}
	return nil
}
