package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/roofdash/internal/config"
	"github.com/roofdash/internal/constants"
)

func TestDisabledClientRejectsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueReconcileRun(ReconcileRunPayload{Trigger: ReconcileTriggerManual}); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("want ErrQueueDisabled got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestReconcileRunTaskRoundTrip(t *testing.T) {
	requestedAt := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	task, err := NewReconcileRunTask(ReconcileRunPayload{Trigger: ReconcileTriggerSchedule, RequestedBy: "ops", RequestedAt: requestedAt})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != constants.TaskReconcileRun {
		t.Fatalf("task type want %s got %s", constants.TaskReconcileRun, task.Type())
	}
	payload, err := ParseReconcileRunPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.Trigger != ReconcileTriggerSchedule || payload.RequestedBy != "ops" || !payload.RequestedAt.Equal(requestedAt) {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("addr want 127.0.0.1:6379 got %s", opt.Addr)
	}
	if cfg.Concurrency != 10 {
		t.Fatalf("concurrency want 10 got %d", cfg.Concurrency)
	}
	if cfg.Queues[constants.QueueCritical] == 0 {
		t.Fatalf("critical queue should be served by default")
	}
}
