// Package webhooks ingests inbound CRM lead webhooks, keeping only the
// minimal non-clinical contact data.
package webhooks

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	apphttp "medspa_crm_backend/internal/http"
	leadservice "medspa_crm_backend/internal/leads/service"
	"medspa_crm_backend/internal/tags"
	"medspa_crm_backend/platform/httpkit"
	"medspa_crm_backend/platform/logger"
)

// Webhook senders burst; the limiter absorbs short spikes per source IP.
const (
	rateLimitPerSecond = 5
	rateLimitBurst     = 10
)

// Module is the webhooks module implementing http.Module.
type Module struct {
	handler *Handler
	limiter *httpkit.IPRateLimiter
	log     *logger.Logger
}

// NewModule creates and initializes the webhooks module.
func NewModule(pool *pgxpool.Pool, leadSvc *leadservice.Service, tagRepo *tags.Repository, log *logger.Logger) *Module {
	svc := NewService(NewRepository(pool), leadSvc, tagRepo, log)
	return &Module{
		handler: NewHandler(svc, log),
		limiter: httpkit.NewIPRateLimiter(rate.Limit(rateLimitPerSecond), rateLimitBurst),
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhooks"
}

// RegisterRoutes mounts the webhook route: API-key-guarded plus a per-IP
// rate limit.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/webhooks")
	group.Use(m.limiter.Middleware(m.log))
	group.POST("/crm/lead", m.handler.HandleLead)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
