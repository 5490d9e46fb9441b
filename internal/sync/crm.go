package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"medspa_crm_backend/platform/config"
	"medspa_crm_backend/platform/logger"
)

// stageMap translates internal pipeline stage names to the CRM's
// pipeline stage identifiers. Unknown stages fall back to "new".
var stageMap = map[string]string{
	"New":            "new",
	"Contacted":      "contacted",
	"Consult Booked": "qualified",
	"Won":            "won",
	"Lost":           "lost",
}

// CRMClient pushes contact data to the upstream CRM over HTTP.
type CRMClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

type crmContactRequest struct {
	FirstName    string            `json:"firstName,omitempty"`
	Email        string            `json:"email,omitempty"`
	Phone        string            `json:"phone,omitempty"`
	Source       string            `json:"source,omitempty"`
	CustomFields map[string]string `json:"customFields,omitempty"`
}

type crmContactResponse struct {
	Contact struct {
		ID string `json:"id"`
	} `json:"contact"`
	ID string `json:"id"`
}

type crmStageRequest struct {
	PipelineStage string `json:"pipelineStage"`
}

type crmTagRequest struct {
	Tag string `json:"tag"`
}

func NewCRMClient(cfg config.CRMConfig, log *logger.Logger) *CRMClient {
	if cfg.GetCRMAPIKey() == "" {
		return nil
	}

	return &CRMClient{
		baseURL: strings.TrimRight(cfg.GetCRMBaseURL(), "/"),
		apiKey:  cfg.GetCRMAPIKey(),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// CreateOrUpdateContact upserts a contact in the CRM and returns the CRM
// contact id. Only non-clinical contact fields are ever sent upstream.
func (c *CRMClient) CreateOrUpdateContact(ctx context.Context, payload ContactPayload) (string, error) {
	body := crmContactRequest{
		FirstName: payload.FirstName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Source:    payload.Source,
	}
	if payload.ExternalID != "" {
		body.CustomFields = map[string]string{"externalId": payload.ExternalID}
	}

	var result crmContactResponse
	if err := c.do(ctx, http.MethodPost, "/contacts/", body, &result); err != nil {
		c.log.SyncError(TaskSyncContact, err)
		return "", fmt.Errorf("crm contact sync failed")
	}

	contactID := result.Contact.ID
	if contactID == "" {
		contactID = result.ID
	}
	return contactID, nil
}

// UpdatePipelineStage moves the CRM contact to the stage mapped from the
// internal stage name.
func (c *CRMClient) UpdatePipelineStage(ctx context.Context, contactID, stageName string) error {
	mapped, ok := stageMap[stageName]
	if !ok {
		mapped = "new"
	}

	path := "/contacts/" + url.PathEscape(contactID)
	if err := c.do(ctx, http.MethodPut, path, crmStageRequest{PipelineStage: mapped}, nil); err != nil {
		c.log.SyncError(TaskSyncStageUpdate, err)
		return fmt.Errorf("crm stage sync failed")
	}
	return nil
}

func (c *CRMClient) AddTag(ctx context.Context, contactID, tagName string) error {
	path := "/contacts/" + url.PathEscape(contactID) + "/tags"
	if err := c.do(ctx, http.MethodPost, path, crmTagRequest{Tag: tagName}, nil); err != nil {
		c.log.SyncError(TaskSyncTagAdd, err)
		return fmt.Errorf("crm tag sync failed")
	}
	return nil
}

func (c *CRMClient) RemoveTag(ctx context.Context, contactID, tagName string) error {
	path := "/contacts/" + url.PathEscape(contactID) + "/tags/" + url.PathEscape(tagName)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		c.log.SyncError(TaskSyncTagRemove, err)
		return fmt.Errorf("crm tag sync failed")
	}
	return nil
}

func (c *CRMClient) do(ctx context.Context, method, path string, payload any, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal crm payload: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("crm request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("crm returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode crm response: %w", err)
		}
	}
	return nil
}
