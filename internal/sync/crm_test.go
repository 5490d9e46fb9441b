package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"medspa_crm_backend/platform/logger"
)

type crmTestConfig struct {
	baseURL string
	apiKey  string
}

func (c crmTestConfig) GetCRMBaseURL() string  { return c.baseURL }
func (c crmTestConfig) GetCRMAPIKey() string   { return c.apiKey }
func (c crmTestConfig) IsCRMSyncEnabled() bool { return c.apiKey != "" }

func newTestCRMClient(t *testing.T, handler http.HandlerFunc) (*CRMClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewCRMClient(crmTestConfig{baseURL: srv.URL, apiKey: "secret"}, logger.New("test"))
	if client == nil {
		t.Fatal("expected client to be constructed")
	}
	return client, srv
}

func TestCreateOrUpdateContactSendsSafeFields(t *testing.T) {
	var captured map[string]any
	var auth string

	client, _ := newTestCRMClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/contacts/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"contact": map[string]any{"id": "crm-123"}})
	})

	contactID, err := client.CreateOrUpdateContact(context.Background(), ContactPayload{
		ExternalID: "ext-1",
		FirstName:  "Dana",
		Email:      "dana@example.com",
		Phone:      "+12125550175",
		Source:     "ghl",
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateContact: %v", err)
	}
	if contactID != "crm-123" {
		t.Fatalf("contactID = %q, want crm-123", contactID)
	}
	if auth != "Bearer secret" {
		t.Fatalf("Authorization = %q", auth)
	}
	if captured["firstName"] != "Dana" || captured["source"] != "ghl" {
		t.Fatalf("unexpected body: %v", captured)
	}
	custom, _ := captured["customFields"].(map[string]any)
	if custom["externalId"] != "ext-1" {
		t.Fatalf("customFields = %v", custom)
	}
	for _, field := range []string{"lastName", "tags", "notes"} {
		if _, ok := captured[field]; ok {
			t.Fatalf("field %q must not be sent upstream", field)
		}
	}
}

func TestUpdatePipelineStageMapsStageNames(t *testing.T) {
	cases := []struct {
		stage  string
		mapped string
	}{
		{"New", "new"},
		{"Contacted", "contacted"},
		{"Consult Booked", "qualified"},
		{"Won", "won"},
		{"Lost", "lost"},
		{"Some Custom Stage", "new"},
	}

	for _, tc := range cases {
		var captured crmStageRequest
		client, _ := newTestCRMClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPut || r.URL.Path != "/contacts/crm-123" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			_ = json.NewDecoder(r.Body).Decode(&captured)
			w.WriteHeader(http.StatusOK)
		})

		if err := client.UpdatePipelineStage(context.Background(), "crm-123", tc.stage); err != nil {
			t.Fatalf("UpdatePipelineStage(%q): %v", tc.stage, err)
		}
		if captured.PipelineStage != tc.mapped {
			t.Fatalf("stage %q mapped to %q, want %q", tc.stage, captured.PipelineStage, tc.mapped)
		}
	}
}

func TestTagEndpoints(t *testing.T) {
	var gotMethod, gotPath string
	var captured crmTagRequest

	client, _ := newTestCRMClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.WriteHeader(http.StatusOK)
	})

	if err := client.AddTag(context.Background(), "crm-123", "botox"); err != nil {
		t.Fatalf("AddTag: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/contacts/crm-123/tags" {
		t.Fatalf("AddTag sent %s %s", gotMethod, gotPath)
	}
	if captured.Tag != "botox" {
		t.Fatalf("tag body = %q", captured.Tag)
	}

	if err := client.RemoveTag(context.Background(), "crm-123", "filler"); err != nil {
		t.Fatalf("RemoveTag: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/contacts/crm-123/tags/filler" {
		t.Fatalf("RemoveTag sent %s %s", gotMethod, gotPath)
	}
}

func TestCRMErrorsAreGeneric(t *testing.T) {
	client, _ := newTestCRMClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid token for location abc"}`, http.StatusUnauthorized)
	})

	_, err := client.CreateOrUpdateContact(context.Background(), ContactPayload{FirstName: "Dana"})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "crm contact sync failed" {
		t.Fatalf("error leaked upstream detail: %v", err)
	}
}

func TestNewCRMClientRequiresAPIKey(t *testing.T) {
	if client := NewCRMClient(crmTestConfig{baseURL: "https://example.com"}, logger.New("test")); client != nil {
		t.Fatal("expected nil client without api key")
	}
}
