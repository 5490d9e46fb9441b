// Package opportunities tracks expected revenue per lead.
package opportunities

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/platform/validator"
)

// Module is the opportunities module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the opportunities module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(NewRepository(pool), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "opportunities"
}

// RegisterRoutes mounts opportunity routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/leads/:id/opportunity", m.handler.GetByLead)

	protected := ctx.Protected.Group("/opportunities")
	protected.POST("", m.handler.Create)
	protected.PATCH("/:id", m.handler.Update)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
