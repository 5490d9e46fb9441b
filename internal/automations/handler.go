package automations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medspa_crm_backend/platform/httpkit"
	"medspa_crm_backend/platform/validator"
)

const msgInvalidRequest = "invalid request"

type CreateRuleRequest struct {
	Name        string      `json:"name" validate:"required,min=1,max=200"`
	Description string      `json:"description" validate:"max=500"`
	Trigger     string      `json:"trigger" validate:"required,min=1,max=50"`
	Conditions  []Condition `json:"conditions,omitempty"`
	Actions     []Action    `json:"actions,omitempty"`
	Enabled     *bool       `json:"enabled,omitempty"`
}

type ExecuteRequest map[string]interface{}

// Handler exposes the automation registry.
type Handler struct {
	registry *Registry
	val      *validator.Validator
}

// NewHandler creates a new automations handler.
func NewHandler(registry *Registry, val *validator.Validator) *Handler {
	return &Handler{registry: registry, val: val}
}

func (h *Handler) List(c *gin.Context) {
	httpkit.OK(c, h.registry.List())
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	rule, err := h.registry.Get(id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, rule)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule := h.registry.Create(req.Name, req.Description, req.Trigger, req.Conditions, req.Actions, enabled)
	httpkit.Created(c, rule)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req RuleUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	rule, err := h.registry.Update(id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, rule)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	rule, err := h.registry.Delete(id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, rule)
}

func (h *Handler) Execute(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	// The execution context is free-form and only logged.
	var execContext ExecuteRequest
	if err := c.ShouldBindJSON(&execContext); err != nil && err.Error() != "EOF" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.registry.Execute(c.Request.Context(), id, execContext)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
