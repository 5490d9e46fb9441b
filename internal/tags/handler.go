package tags

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medspa_crm_backend/platform/httpkit"
	"medspa_crm_backend/platform/validator"
)

const msgInvalidRequest = "invalid request"

type CreateTagRequest struct {
	Name  string  `json:"name" validate:"required,min=1,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,max=20"`
}

type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Color *string `json:"color,omitempty" validate:"omitempty,max=20"`
}

type TagResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color,omitempty"`
	CreatedAt string    `json:"createdAt"`
}

func toTagResponse(t Tag) TagResponse {
	return TagResponse{
		ID:        t.ID,
		Name:      t.Name,
		Color:     t.Color,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Handler exposes tag CRUD.
type Handler struct {
	repo *Repository
	val  *validator.Validator
}

// NewHandler creates a new tags handler.
func NewHandler(repo *Repository, val *validator.Validator) *Handler {
	return &Handler{repo: repo, val: val}
}

func (h *Handler) List(c *gin.Context) {
	result, err := h.repo.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	responses := make([]TagResponse, 0, len(result))
	for _, t := range result {
		responses = append(responses, toTagResponse(t))
	}

	httpkit.OK(c, responses)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	tag, err := h.repo.Create(c.Request.Context(), req.Name, req.Color)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toTagResponse(tag))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	tag, err := h.repo.Update(c.Request.Context(), id, req.Name, req.Color)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toTagResponse(tag))
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

	httpkit.OK(c, gin.H{"message": "tag deleted"})
}
