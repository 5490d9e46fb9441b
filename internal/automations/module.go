// Package automations holds the in-memory automation rule registry and its
// periodic scan. Rules describe intended follow-up actions; execution only
// logs the intent.
package automations

import (
	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/platform/validator"
)

// Module is the automations module implementing http.Module.
type Module struct {
	handler  *Handler
	registry *Registry
}

// NewModule creates and initializes the automations module.
func NewModule(registry *Registry, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(registry, val), registry: registry}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "automations"
}

// Registry exposes the rule registry for the scheduler.
func (m *Module) Registry() *Registry {
	return m.registry
}

// RegisterRoutes mounts automation routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/automations", m.handler.List)
	ctx.V1.GET("/automations/:id", m.handler.Get)

	protected := ctx.Protected.Group("/automations")
	protected.POST("", m.handler.Create)
	protected.PATCH("/:id", m.handler.Update)
	protected.DELETE("/:id", m.handler.Delete)
	protected.POST("/:id/execute", m.handler.Execute)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
