package automations

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"medspa_crm_backend/platform/apperr"
	"medspa_crm_backend/platform/logger"
)

// TriggerTimeBased marks rules the periodic scan picks up.
const TriggerTimeBased = "time_based"

// Condition gates a rule on a lead field.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Action is one intended automation step. Execution only logs the intent;
// no messages are actually sent.
type Action struct {
	Type     string `json:"type"`
	Template string `json:"template"`
	Delay    string `json:"delay"`
}

// Rule is a registered automation.
type Rule struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Trigger     string      `json:"trigger"`
	Conditions  []Condition `json:"conditions"`
	Actions     []Action    `json:"actions"`
	Enabled     bool        `json:"enabled"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// RuleUpdate holds partial updates to a rule. Nil fields are left as-is;
// Conditions and Actions replace wholesale when present.
type RuleUpdate struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=500"`
	Trigger     *string      `json:"trigger,omitempty" validate:"omitempty,min=1,max=50"`
	Conditions  *[]Condition `json:"conditions,omitempty"`
	Actions     *[]Action    `json:"actions,omitempty"`
	Enabled     *bool        `json:"enabled,omitempty"`
}

// ExecResult reports what an execution would have done.
type ExecResult struct {
	Success         bool `json:"success"`
	ActionsExecuted int  `json:"actionsExecuted"`
}

// Registry is the in-memory automation store. Rules do not survive a
// restart; the stock rules are re-seeded on boot.
type Registry struct {
	mu    sync.RWMutex
	rules map[uuid.UUID]Rule
	order []uuid.UUID
	log   *logger.Logger
}

// NewRegistry creates a registry seeded with the stock rules.
func NewRegistry(log *logger.Logger) *Registry {
	r := &Registry{
		rules: make(map[uuid.UUID]Rule),
		log:   log,
	}
	for _, rule := range stockRules() {
		r.insert(rule)
	}
	return r
}

func stockRules() []Rule {
	now := time.Now().UTC()
	return []Rule{
		{
			ID:          uuid.New(),
			Name:        "New Lead Welcome",
			Description: "Send welcome message to new leads",
			Trigger:     "lead_created",
			Conditions:  []Condition{},
			Actions:     []Action{{Type: "send_email", Template: "welcome", Delay: "0"}},
			Enabled:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			Name:        "Follow-up After 24h",
			Description: "Follow up with leads who haven't been contacted",
			Trigger:     TriggerTimeBased,
			Conditions: []Condition{
				{Field: "stage", Operator: "equals", Value: "New"},
				{Field: "created_at", Operator: "older_than", Value: "24h"},
			},
			Actions:   []Action{{Type: "send_sms", Template: "follow_up", Delay: "0"}},
			Enabled:   true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          uuid.New(),
			Name:        "Consult Reminder",
			Description: "Send reminder 1 hour before consultation",
			Trigger:     "consult_booked",
			Conditions:  []Condition{},
			Actions:     []Action{{Type: "send_sms", Template: "consult_reminder", Delay: "1h_before"}},
			Enabled:     true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New(),
			Name:        "Post-Consult Follow-up",
			Description: "Follow up after consultation if not converted",
			Trigger:     "consult_completed",
			Conditions: []Condition{
				{Field: "stage", Operator: "not_equals", Value: "Won"},
			},
			Actions:   []Action{{Type: "send_email", Template: "post_consult", Delay: "24h"}},
			Enabled:   true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

func (r *Registry) insert(rule Rule) {
	r.rules[rule.ID] = rule
	r.order = append(r.order, rule.ID)
}

// List returns all rules in registration order.
func (r *Registry) List() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.rules[id])
	}
	return result
}

// Get returns a rule by id.
func (r *Registry) Get(id uuid.UUID) (Rule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rule, ok := r.rules[id]
	if !ok {
		return Rule{}, apperr.NotFound("automation not found")
	}
	return rule, nil
}

// Create registers a new rule.
func (r *Registry) Create(name, description, trigger string, conditions []Condition, actions []Action, enabled bool) Rule {
	now := time.Now().UTC()
	rule := Rule{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Trigger:     trigger,
		Conditions:  conditions,
		Actions:     actions,
		Enabled:     enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if rule.Conditions == nil {
		rule.Conditions = []Condition{}
	}
	if rule.Actions == nil {
		rule.Actions = []Action{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(rule)

	return rule
}

// Update applies partial updates to a rule.
func (r *Registry) Update(id uuid.UUID, update RuleUpdate) (Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return Rule{}, apperr.NotFound("automation not found")
	}

	if update.Name != nil {
		rule.Name = *update.Name
	}
	if update.Description != nil {
		rule.Description = *update.Description
	}
	if update.Trigger != nil {
		rule.Trigger = *update.Trigger
	}
	if update.Conditions != nil {
		rule.Conditions = *update.Conditions
	}
	if update.Actions != nil {
		rule.Actions = *update.Actions
	}
	if update.Enabled != nil {
		rule.Enabled = *update.Enabled
	}
	rule.UpdatedAt = time.Now().UTC()

	r.rules[id] = rule
	return rule, nil
}

// Delete removes a rule.
func (r *Registry) Delete(id uuid.UUID) (Rule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules[id]
	if !ok {
		return Rule{}, apperr.NotFound("automation not found")
	}

	delete(r.rules, id)
	for i, ordered := range r.order {
		if ordered == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return rule, nil
}

// Execute logs the rule's intended actions. Disabled rules are no-ops.
func (r *Registry) Execute(ctx context.Context, id uuid.UUID, execContext map[string]interface{}) (ExecResult, error) {
	rule, err := r.Get(id)
	if err != nil {
		return ExecResult{}, err
	}

	if !rule.Enabled {
		return ExecResult{Success: false, ActionsExecuted: 0}, nil
	}

	r.log.Info("executing automation", "name", rule.Name, "context", execContext)
	for _, action := range rule.Actions {
		r.log.Info("automation action",
			"type", action.Type,
			"template", action.Template,
			"delay", action.Delay,
		)
	}

	return ExecResult{Success: true, ActionsExecuted: len(rule.Actions)}, nil
}

// TimeBasedCount returns how many time-based rules are registered. Used by
// the periodic scan.
func (r *Registry) TimeBasedCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, rule := range r.rules {
		if rule.Trigger == TriggerTimeBased {
			count++
		}
	}
	return count
}
