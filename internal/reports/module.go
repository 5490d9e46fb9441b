// Package reports provides the revenue reporting endpoints over the KPI
// fact table.
package reports

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "medspa_crm_backend/internal/http"
)

// Module is the reports module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the reports module.
func NewModule(pool *pgxpool.Pool) *Module {
	return &Module{handler: NewHandler(NewRepository(pool))}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes mounts report routes. All reports require the API key.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	reports := ctx.Protected.Group("/reports")
	reports.GET("/revenue", m.handler.Revenue)
	reports.GET("/conversions", m.handler.Conversions)
	reports.GET("/by-campaign", m.handler.ByCampaign)
	reports.GET("/revenue/daily", m.handler.RevenueDaily)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
