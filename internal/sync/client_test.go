package sync

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type syncTestConfig struct {
	redisURL    string
	queueName   string
	concurrency int
}

func (c syncTestConfig) GetRedisURL() string       { return c.redisURL }
func (c syncTestConfig) GetRedisTLSInsecure() bool { return false }
func (c syncTestConfig) GetAsynqQueueName() string { return c.queueName }
func (c syncTestConfig) GetAsynqConcurrency() int  { return c.concurrency }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(syncTestConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

func TestClientEnqueuesOnConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(syncTestConfig{redisURL: "redis://" + mr.Addr(), queueName: "sync"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	err = client.EnqueueContactSync(context.Background(), ContactPayload{
		ExternalID: "ext-1",
		FirstName:  "Dana",
		Source:     "ghl",
	})
	if err != nil {
		t.Fatalf("EnqueueContactSync: %v", err)
	}

	if err := client.EnqueueStageUpdate(context.Background(), StageUpdatePayload{ContactID: "ext-1", StageName: "Won"}); err != nil {
		t.Fatalf("EnqueueStageUpdate: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() {
		_ = inspector.Close()
	}()

	pending, err := inspector.ListPendingTasks("sync")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending tasks = %d, want 2", len(pending))
	}
	if pending[0].Type != TaskSyncContact {
		t.Fatalf("first task type = %q, want %q", pending[0].Type, TaskSyncContact)
	}

	var payload ContactPayload
	if err := json.Unmarshal(pending[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.ExternalID != "ext-1" || payload.FirstName != "Dana" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestNilClientEnqueueIsNoOp(t *testing.T) {
	var client *Client
	if err := client.EnqueueTagAdd(context.Background(), TagPayload{ContactID: "x", TagName: "botox"}); err != nil {
		t.Fatalf("nil client enqueue: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("nil client close: %v", err)
	}
}
