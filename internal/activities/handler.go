package activities

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medspa_crm_backend/platform/httpkit"
	"medspa_crm_backend/platform/validator"
)

const msgInvalidRequest = "invalid request"

type CreateActivityRequest struct {
	LeadID  uuid.UUID       `json:"leadId" validate:"required"`
	Type    string          `json:"type" validate:"required,min=1,max=50"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ActivityResponse struct {
	ID        uuid.UUID   `json:"id"`
	LeadID    uuid.UUID   `json:"leadId"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	CreatedAt string      `json:"createdAt"`
}

func toActivityResponse(a Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:        a.ID,
		LeadID:    a.LeadID,
		Type:      a.Type,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
	if len(a.Payload) > 0 {
		var payload interface{}
		if err := json.Unmarshal(a.Payload, &payload); err == nil {
			resp.Payload = payload
		}
	}
	return resp
}

// Handler exposes the lead activity log.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

// NewHandler creates a new activities handler.
func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

func (h *Handler) ListByLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.repo.ListByLead(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]ActivityResponse, 0, len(result))
	for _, a := range result {
		responses = append(responses, toActivityResponse(a))
	}

	httpkit.OK(c, responses)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	a, err := h.repo.Create(c.Request.Context(), req.LeadID, req.Type, req.Payload)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toActivityResponse(a))
}
