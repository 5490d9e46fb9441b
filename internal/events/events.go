// Package events defines the domain events exchanged between modules and
// re-exports the platform event bus for convenience.
package events

import (
	platformevents "medspa_crm_backend/platform/events"
	"medspa_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-exported platform types so modules import a single events package.
type (
	Event       = platformevents.Event
	BaseEvent   = platformevents.BaseEvent
	Bus         = platformevents.Bus
	Handler     = platformevents.Handler
	HandlerFunc = platformevents.HandlerFunc
)

// InMemoryBus is a type alias to the platform InMemoryBus.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// NewBaseEvent creates a base event stamped with the current time.
func NewBaseEvent() BaseEvent {
	return platformevents.NewBaseEvent()
}

// LeadCreated fires after a lead is persisted with its initial stage.
type LeadCreated struct {
	BaseEvent
	LeadID     uuid.UUID
	ExternalID string
	FirstName  string
	Email      string
	Phone      string
	Source     string
}

// EventName identifies the lead-created event.
func (LeadCreated) EventName() string { return "lead.created" }

// LeadStageChanged fires after a lead moves to a new pipeline stage.
type LeadStageChanged struct {
	BaseEvent
	LeadID     uuid.UUID
	ExternalID string
	FromStage  string
	ToStage    string
}

// EventName identifies the stage-changed event.
func (LeadStageChanged) EventName() string { return "lead.stage_changed" }

// LeadTagsUpdated fires after a lead's tag set is replaced. Added and
// Removed carry tag names, which is what the external CRM keys tags by.
type LeadTagsUpdated struct {
	BaseEvent
	LeadID     uuid.UUID
	ExternalID string
	Added      []string
	Removed    []string
}

// EventName identifies the tags-updated event.
func (LeadTagsUpdated) EventName() string { return "lead.tags_updated" }
