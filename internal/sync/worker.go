package sync

import (
	"context"
	"fmt"

	"medspa_crm_backend/platform/config"
	"medspa_crm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes CRM sync jobs and replays them against the CRM API.
// Handler errors propagate to asynq so failed jobs are retried.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	crm    *CRMClient
	log    *logger.Logger
}

func NewWorker(cfg config.SyncConfig, crm *CRMClient, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	if crm == nil {
		return nil, fmt.Errorf("crm client not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		crm:    crm,
		log:    log,
	}

	mux.HandleFunc(TaskSyncContact, w.handleContactSync)
	mux.HandleFunc(TaskSyncStageUpdate, w.handleStageUpdate)
	mux.HandleFunc(TaskSyncTagAdd, w.handleTagAdd)
	mux.HandleFunc(TaskSyncTagRemove, w.handleTagRemove)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("sync worker stopped", "error", err)
	}
}

func (w *Worker) handleContactSync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseContactPayload(task)
	if err != nil {
		return err
	}

	contactID, err := w.crm.CreateOrUpdateContact(ctx, payload)
	if err != nil {
		return err
	}

	w.log.Info("crm contact synced", "contact_id", contactID, "external_id", payload.ExternalID)
	return nil
}

func (w *Worker) handleStageUpdate(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseStageUpdatePayload(task)
	if err != nil {
		return err
	}

	// Leads that never came from the CRM have no contact to update.
	if payload.ContactID == "" {
		return nil
	}

	if err := w.crm.UpdatePipelineStage(ctx, payload.ContactID, payload.StageName); err != nil {
		return err
	}

	w.log.Info("crm stage synced", "contact_id", payload.ContactID, "stage", payload.StageName)
	return nil
}

func (w *Worker) handleTagAdd(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTagPayload(task)
	if err != nil {
		return err
	}
	if payload.ContactID == "" {
		return nil
	}

	if err := w.crm.AddTag(ctx, payload.ContactID, payload.TagName); err != nil {
		return err
	}

	w.log.Info("crm tag added", "contact_id", payload.ContactID, "tag", payload.TagName)
	return nil
}

func (w *Worker) handleTagRemove(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTagPayload(task)
	if err != nil {
		return err
	}
	if payload.ContactID == "" {
		return nil
	}

	if err := w.crm.RemoveTag(ctx, payload.ContactID, payload.TagName); err != nil {
		return err
	}

	w.log.Info("crm tag removed", "contact_id", payload.ContactID, "tag", payload.TagName)
	return nil
}
