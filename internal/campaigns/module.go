// Package campaigns provides ad campaign management and spend tracking.
package campaigns

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/platform/validator"
)

// Module is the campaigns module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the campaigns module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	return &Module{handler: NewHandler(NewRepository(pool), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "campaigns"
}

// RegisterRoutes mounts campaign routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/campaigns", m.handler.List)

	protected := ctx.Protected.Group("/campaigns")
	protected.POST("", m.handler.Create)
	protected.PATCH("/:id", m.handler.Update)
	protected.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
