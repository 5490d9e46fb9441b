package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medspa_crm_backend/internal/activities"
	"medspa_crm_backend/internal/automations"
	"medspa_crm_backend/internal/campaigns"
	"medspa_crm_backend/internal/events"
	apphttp "medspa_crm_backend/internal/http"
	"medspa_crm_backend/internal/http/router"
	"medspa_crm_backend/internal/kpi"
	"medspa_crm_backend/internal/leads"
	"medspa_crm_backend/internal/opportunities"
	"medspa_crm_backend/internal/pipelines"
	"medspa_crm_backend/internal/reports"
	"medspa_crm_backend/internal/sync"
	"medspa_crm_backend/internal/tags"
	"medspa_crm_backend/internal/webhooks"
	"medspa_crm_backend/platform/config"
	"medspa_crm_backend/platform/db"
	"medspa_crm_backend/platform/logger"
	"medspa_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, eventBus, val, log)
	pipelinesModule := pipelines.NewModule(pool, val)
	tagsModule := tags.NewModule(pool, val)
	campaignsModule := campaigns.NewModule(pool, val)
	opportunitiesModule := opportunities.NewModule(pool, val)
	activitiesModule := activities.NewModule(pool, val)
	kpiModule := kpi.NewModule(pool, val, log)
	reportsModule := reports.NewModule(pool)
	webhooksModule := webhooks.NewModule(pool, leadsModule.Service(), tagsModule.Repository(), log)
	automationsModule := automations.NewModule(automations.NewRegistry(log), val)

	// Outbound CRM sync dispatches lead events onto the job queue. Disabled
	// when the CRM key or Redis are not configured.
	if cfg.IsCRMSyncEnabled() {
		syncClient, err := sync.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize sync queue client", "error", err)
			panic("failed to initialize sync queue client: " + err.Error())
		}
		defer func() {
			_ = syncClient.Close()
		}()

		sync.NewDispatcher(syncClient, log).RegisterHandlers(eventBus)
	} else {
		log.Warn("CRM sync disabled; CRM_API_KEY or REDIS_URL not configured")
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			leadsModule,
			pipelinesModule,
			tagsModule,
			campaignsModule,
			opportunitiesModule,
			activitiesModule,
			kpiModule,
			reportsModule,
			webhooksModule,
			automationsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
