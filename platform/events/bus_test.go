package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"medspa_crm_backend/platform/logger"
)

type testEvent struct {
	BaseEvent
	name string
}

func (e testEvent) EventName() string { return e.name }

func TestPublishSyncRunsHandlersInOrder(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	var calls []string
	bus.Subscribe("lead.created", HandlerFunc(func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return nil
	}))
	bus.Subscribe("lead.created", HandlerFunc(func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	}))

	if err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "lead.created"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Fatalf("expected ordered calls [first second], got %v", calls)
	}
}

func TestPublishSyncCollectsErrors(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	wantErr := errors.New("handler failed")
	bus.Subscribe("lead.created", HandlerFunc(func(ctx context.Context, e Event) error {
		return wantErr
	}))

	err := bus.PublishSync(context.Background(), testEvent{NewBaseEvent(), "lead.created"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped handler error, got %v", err)
	}
}

func TestPublishIgnoresUnsubscribedEvents(t *testing.T) {
	bus := NewInMemoryBus(logger.New("development"))

	done := make(chan struct{})
	bus.Subscribe("lead.created", HandlerFunc(func(ctx context.Context, e Event) error {
		close(done)
		return nil
	}))

	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "lead.deleted"})
	bus.Publish(context.Background(), testEvent{NewBaseEvent(), "lead.created"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscribed handler was never invoked")
	}
}
