// Package pipelines provides pipeline stage management for the lead board.
package pipelines

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/platform/validator"
)

// Module is the pipelines module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the pipelines module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{handler: NewHandler(repo, val), repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipelines"
}

// RegisterRoutes mounts pipeline routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/pipelines", m.handler.List)

	protected := ctx.Protected.Group("/pipelines")
	protected.POST("", m.handler.Create)
	protected.PATCH("/reorder", m.handler.Reorder)
	protected.PATCH("/:id", m.handler.Update)
	protected.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
