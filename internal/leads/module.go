// Package leads provides the lead management bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"medspa_crm_backend/internal/events"
	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/internal/leads/handler"
	"medspa_crm_backend/internal/leads/repository"
	"medspa_crm_backend/internal/leads/service"
	"medspa_crm_backend/platform/logger"
	"medspa_crm_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log, val, eventBus)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the leads service for use by other modules, most notably
// the webhook ingestion path.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts leads routes: reads are public, mutations require
// the API key.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/leads"), ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
