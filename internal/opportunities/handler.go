package opportunities

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medspa_crm_backend/platform/apperr"
	"medspa_crm_backend/platform/httpkit"
	"medspa_crm_backend/platform/validator"
)

const (
	msgInvalidRequest = "invalid request"
	dateLayout        = "2006-01-02"
)

type CreateOpportunityRequest struct {
	LeadID             uuid.UUID `json:"leadId" validate:"required"`
	ExpectedValueCents int64     `json:"expectedValueCents" validate:"min=0"`
	ProcedureCode      *string   `json:"procedureCode,omitempty" validate:"omitempty,max=50"`
	ExpectedDate       *string   `json:"expectedDate,omitempty"`
}

type UpdateOpportunityRequest struct {
	ExpectedValueCents *int64  `json:"expectedValueCents,omitempty" validate:"omitempty,min=0"`
	ProcedureCode      *string `json:"procedureCode,omitempty" validate:"omitempty,max=50"`
	ExpectedDate       *string `json:"expectedDate,omitempty"`
}

type OpportunityResponse struct {
	ID                 uuid.UUID `json:"id"`
	LeadID             uuid.UUID `json:"leadId"`
	ExpectedValueCents int64     `json:"expectedValueCents"`
	ExpectedValue      float64   `json:"expectedValue"`
	ProcedureCode      *string   `json:"procedureCode,omitempty"`
	ExpectedDate       *string   `json:"expectedDate,omitempty"`
	CreatedAt          string    `json:"createdAt"`
}

func toOpportunityResponse(o Opportunity) OpportunityResponse {
	resp := OpportunityResponse{
		ID:                 o.ID,
		LeadID:             o.LeadID,
		ExpectedValueCents: o.ExpectedValueCents,
		ExpectedValue:      float64(o.ExpectedValueCents) / 100,
		ProcedureCode:      o.ProcedureCode,
		CreatedAt:          o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.ExpectedDate != nil {
		date := o.ExpectedDate.UTC().Format(dateLayout)
		resp.ExpectedDate = &date
	}
	return resp
}

func parseExpectedDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, *raw, time.UTC)
	if err != nil {
		return nil, apperr.BadRequest("expectedDate must be YYYY-MM-DD")
	}
	return &parsed, nil
}

// Handler exposes opportunity management.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

// NewHandler creates a new opportunities handler.
func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	expectedDate, err := parseExpectedDate(req.ExpectedDate)
	if httpkit.HandleError(c, err) {
		return
	}

	o, err := h.repo.Create(c.Request.Context(), req.LeadID, req.ExpectedValueCents, req.ProcedureCode, expectedDate)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toOpportunityResponse(o))
}

func (h *Handler) GetByLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	o, err := h.repo.GetByLeadID(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toOpportunityResponse(o))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	expectedDate, err := parseExpectedDate(req.ExpectedDate)
	if httpkit.HandleError(c, err) {
		return
	}

	o, err := h.repo.Update(c.Request.Context(), id, req.ExpectedValueCents, req.ProcedureCode, expectedDate)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toOpportunityResponse(o))
}
