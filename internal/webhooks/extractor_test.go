package webhooks

import (
	"encoding/json"
	"testing"
)

func TestIsProcedureTag(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Botox Touch-up", true},
		{"botox", true},
		{"Lip Filler Consult", true},
		{"RHINOPLASTY", true},
		{"btx-3-areas", true},
		{"Random Club", false},
		{"VIP member", false},
		{"diabetic", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsProcedureTag(tt.name); got != tt.want {
			t.Errorf("IsProcedureTag(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestTagColorPalette(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Botox Touch-up", "#FF6B6B"},
		{"Lip Filler", "#4ECDC4"},
		{"surgery follow-up", "#45B7D1"},
		{"Laser Session", "#96CEB4"},
		{"Rhino Consult", "#FFEAA7"},
		{"tummy tuck", "#DDA0DD"},
	}

	for _, tt := range tests {
		if got := TagColor(tt.name); got != tt.want {
			t.Errorf("TagColor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractFiltersNonProcedureTags(t *testing.T) {
	ex := Extract(LeadPayload{
		ContactID: "abc-123",
		FirstName: "Jane Doe Rhinoplasty Consult",
		Email:     "Jane@Example.com",
		Tags: []InboundTag{
			{Name: "Botox Touch-up"},
			{Name: "Random Club"},
			{Name: "Lip Filler"},
		},
	})

	if ex.FirstName != "Jane" {
		t.Errorf("first name should keep only the first token, got %q", ex.FirstName)
	}
	if ex.Email != "jane@example.com" {
		t.Errorf("email not normalized: %q", ex.Email)
	}
	if ex.Source != "ghl" {
		t.Errorf("source should default to ghl, got %q", ex.Source)
	}
	if len(ex.Tags) != 2 || ex.Tags[0] != "Botox Touch-up" || ex.Tags[1] != "Lip Filler" {
		t.Errorf("unexpected surviving tags: %v", ex.Tags)
	}
}

func TestExtractFallsBackToIDAndName(t *testing.T) {
	ex := Extract(LeadPayload{
		ID:   "fallback-id",
		Name: "Maria Garcia",
	})

	if ex.ExternalID != "fallback-id" {
		t.Errorf("external id should fall back to id, got %q", ex.ExternalID)
	}
	if ex.FirstName != "Maria" {
		t.Errorf("first name should come from name, got %q", ex.FirstName)
	}
}

func TestInboundTagAcceptsBothEncodings(t *testing.T) {
	var payload LeadPayload
	raw := `{"tags": ["botox", {"name": "Lip Filler"}]}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(payload.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(payload.Tags))
	}
	if payload.Tags[0].Name != "botox" || payload.Tags[1].Name != "Lip Filler" {
		t.Errorf("unexpected tags: %+v", payload.Tags)
	}
}
