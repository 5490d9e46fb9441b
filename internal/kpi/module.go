// Package kpi provides the marketing dashboard aggregator and the KPI
// event intake.
package kpi

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/internal/kpi/handler"
	"medspa_crm_backend/internal/kpi/repository"
	"medspa_crm_backend/internal/kpi/service"
	"medspa_crm_backend/platform/logger"
	"medspa_crm_backend/platform/validator"
)

// Module is the KPI module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the KPI module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log, val)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "kpi"
}

// RegisterRoutes mounts the dashboard routes on the router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/dashboard/kpi", m.handler.Dashboard)
	ctx.Protected.POST("/dashboard/kpi/events", m.handler.RecordEvent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
