package campaigns

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medspa_crm_backend/platform/httpkit"
	"medspa_crm_backend/platform/validator"
)

const msgInvalidRequest = "invalid request"

type CreateCampaignRequest struct {
	Name              string  `json:"name" validate:"required,min=1,max=200"`
	Platform          *string `json:"platform,omitempty" validate:"omitempty,max=50"`
	MonthlySpendCents int64   `json:"monthlySpendCents" validate:"min=0"`
}

type UpdateCampaignRequest struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Platform          *string `json:"platform,omitempty" validate:"omitempty,max=50"`
	MonthlySpendCents *int64  `json:"monthlySpendCents,omitempty" validate:"omitempty,min=0"`
}

type CampaignResponse struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Platform          *string   `json:"platform,omitempty"`
	MonthlySpendCents int64     `json:"monthlySpendCents"`
	MonthlySpend      float64   `json:"monthlySpend"`
	LeadCount         int       `json:"leadCount"`
	CreatedAt         string    `json:"createdAt"`
}

func toCampaignResponse(cmp Campaign) CampaignResponse {
	return CampaignResponse{
		ID:                cmp.ID,
		Name:              cmp.Name,
		Platform:          cmp.Platform,
		MonthlySpendCents: cmp.MonthlySpendCents,
		MonthlySpend:      float64(cmp.MonthlySpendCents) / 100,
		LeadCount:         cmp.LeadCount,
		CreatedAt:         cmp.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Handler exposes campaign CRUD.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

// NewHandler creates a new campaigns handler.
func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

func (h *Handler) List(c *gin.Context) {
	result, err := h.repo.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]CampaignResponse, 0, len(result))
	for _, cmp := range result {
		responses = append(responses, toCampaignResponse(cmp))
	}

	httpkit.OK(c, responses)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	cmp, err := h.repo.Create(c.Request.Context(), req.Name, req.Platform, req.MonthlySpendCents)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toCampaignResponse(cmp))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	cmp, err := h.repo.Update(c.Request.Context(), id, req.Name, req.Platform, req.MonthlySpendCents)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toCampaignResponse(cmp))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "campaign deleted"})
}
