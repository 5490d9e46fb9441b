// Package tags provides tag management for lead segmentation.
package tags

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/platform/validator"
)

// Module is the tags module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the tags module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	return &Module{handler: NewHandler(repo, val), repo: repo}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tags"
}

// Repository exposes the tags repository for the webhook ingestion path,
// which finds or creates tags by name.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts tag routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/tags", m.handler.List)

	protected := ctx.Protected.Group("/tags")
	protected.POST("", m.handler.Create)
	protected.PATCH("/:id", m.handler.Update)
	protected.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
