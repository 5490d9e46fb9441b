package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"medspa_crm_backend/internal/automations"
	"medspa_crm_backend/internal/sync"
	"medspa_crm_backend/platform/config"
	"medspa_crm_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Automation rule scans run inside the worker process regardless of CRM
	// sync configuration.
	scheduler := automations.NewScheduler(automations.NewRegistry(log), log)
	go scheduler.Run(ctx)

	if !cfg.IsCRMSyncEnabled() {
		log.Warn("CRM sync disabled; CRM_API_KEY or REDIS_URL not configured")
		<-ctx.Done()
		return
	}

	crm := sync.NewCRMClient(cfg, log)
	worker, err := sync.NewWorker(cfg, crm, log)
	if err != nil {
		log.Error("failed to initialize sync worker", "error", err)
		panic("failed to initialize sync worker: " + err.Error())
	}

	worker.Run(ctx)
}
