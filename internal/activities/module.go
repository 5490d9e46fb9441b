// Package activities exposes the append-only audit log kept per lead.
package activities

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/platform/validator"
)

// Module is the activities module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the activities module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(NewRepository(pool), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "activities"
}

// RegisterRoutes mounts activity routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/leads/:id/activities", m.handler.ListByLead)
	ctx.Protected.POST("/activities", m.handler.Create)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
