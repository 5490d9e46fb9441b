package automations

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"medspa_crm_backend/platform/apperr"
	"medspa_crm_backend/platform/logger"
)

func newTestRegistry() *Registry {
	return NewRegistry(logger.New("test"))
}

func TestRegistrySeedsStockRules(t *testing.T) {
	r := newTestRegistry()

	rules := r.List()
	if len(rules) != 4 {
		t.Fatalf("expected 4 stock rules, got %d", len(rules))
	}

	names := []string{"New Lead Welcome", "Follow-up After 24h", "Consult Reminder", "Post-Consult Follow-up"}
	for i, want := range names {
		if rules[i].Name != want {
			t.Errorf("rule %d = %q, want %q", i, rules[i].Name, want)
		}
		if !rules[i].Enabled {
			t.Errorf("stock rule %q should start enabled", want)
		}
	}
}

func TestRegistryCRUD(t *testing.T) {
	r := newTestRegistry()

	rule := r.Create("Birthday Offer", "Discount on lead birthdays", TriggerTimeBased, nil, []Action{
		{Type: "send_email", Template: "birthday", Delay: "0"},
	}, true)

	got, err := r.Get(rule.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Birthday Offer" {
		t.Errorf("unexpected rule: %+v", got)
	}

	disabled := false
	updated, err := r.Update(rule.ID, RuleUpdate{Enabled: &disabled})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Enabled {
		t.Error("rule should be disabled after update")
	}

	if _, err := r.Delete(rule.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := r.Get(rule.ID); apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("expected not-found after delete, got %v", err)
	}
}

func TestRegistryUpdateUnknownRule(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Update(uuid.New(), RuleUpdate{})
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Errorf("expected not-found, got %v", err)
	}
}

func TestExecuteCountsActions(t *testing.T) {
	r := newTestRegistry()
	rules := r.List()

	result, err := r.Execute(context.Background(), rules[0].ID, map[string]interface{}{"leadId": "x"})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if !result.Success || result.ActionsExecuted != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestExecuteDisabledRuleIsNoOp(t *testing.T) {
	r := newTestRegistry()
	rules := r.List()

	disabled := false
	if _, err := r.Update(rules[0].ID, RuleUpdate{Enabled: &disabled}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	result, err := r.Execute(context.Background(), rules[0].ID, nil)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if result.Success || result.ActionsExecuted != 0 {
		t.Errorf("disabled rule must not execute, got %+v", result)
	}
}

func TestTimeBasedCount(t *testing.T) {
	r := newTestRegistry()

	// One stock rule is time-based.
	if got := r.TimeBasedCount(); got != 1 {
		t.Errorf("TimeBasedCount = %d, want 1", got)
	}

	r.Create("Stale Lead Sweep", "", TriggerTimeBased, nil, nil, true)
	if got := r.TimeBasedCount(); got != 2 {
		t.Errorf("TimeBasedCount = %d, want 2", got)
	}
}
