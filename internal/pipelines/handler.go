package pipelines

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medspa_crm_backend/platform/httpkit"
	"medspa_crm_backend/platform/validator"
)

const msgInvalidRequest = "invalid request"

type CreateStageRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=100"`
	SortOrder *int    `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
	Color     *string `json:"color,omitempty" validate:"omitempty,max=20"`
}

type UpdateStageRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	SortOrder *int    `json:"sortOrder,omitempty" validate:"omitempty,min=0"`
	Color     *string `json:"color,omitempty" validate:"omitempty,max=20"`
}

type ReorderRequest struct {
	StageIDs []uuid.UUID `json:"stageIds" validate:"required,min=1"`
}

type StageResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SortOrder int       `json:"sortOrder"`
	Color     *string   `json:"color,omitempty"`
	LeadCount int       `json:"leadCount"`
	CreatedAt string    `json:"createdAt"`
}

func toStageResponse(st Stage) StageResponse {
	return StageResponse{
		ID:        st.ID,
		Name:      st.Name,
		SortOrder: st.SortOrder,
		Color:     st.Color,
		LeadCount: st.LeadCount,
		CreatedAt: st.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Handler exposes pipeline stage CRUD and board reordering.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

// NewHandler creates a new pipelines handler.
func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

func (h *Handler) List(c *gin.Context) {
	stages, err := h.repo.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	result := make([]StageResponse, 0, len(stages))
	for _, st := range stages {
		result = append(result, toStageResponse(st))
	}

	httpkit.OK(c, result)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	st, err := h.repo.Create(c.Request.Context(), req.Name, req.SortOrder, req.Color)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toStageResponse(st))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	st, err := h.repo.Update(c.Request.Context(), id, req.Name, req.SortOrder, req.Color)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toStageResponse(st))
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

	httpkit.OK(c, gin.H{"message": "stage deleted"})
}

func (h *Handler) Reorder(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.repo.Reorder(c.Request.Context(), req.StageIDs); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "stages reordered"})
}
