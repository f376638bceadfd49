package worker

import (
	"context"
	"errors"

	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/provider"
	"github.com/roofdash/internal/queue"
	"github.com/roofdash/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskReconcileRun, c.handleReconcileRun)
}

func (c *Consumer) handleReconcileRun(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_reconcile_run_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseReconcileRunPayload(task)
	if err != nil {
		logger.Warnw("worker_reconcile_run_unmarshal_failed", "error", err)
		return err
	}
	return c.runReconcile(ctx, payload)
}

func (c *Consumer) runReconcile(ctx context.Context, payload queue.ReconcileRunPayload) error {
	if c.Container == nil || c.ReconcileService == nil {
		logger.Warnw("worker_reconcile_run_skip_service_nil", "trigger", payload.Trigger)
		return nil
	}
	report, err := c.ReconcileService.Refresh(ctx)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReconcileInProgress):
			logger.Debugw("worker_reconcile_run_skip_in_progress", "trigger", payload.Trigger)
			return nil
		case errors.Is(err, service.ErrLedgerSourceMissing):
			logger.Warnw("worker_reconcile_run_skip_source_missing", "trigger", payload.Trigger)
			return nil
		default:
			logger.Warnw("worker_reconcile_run_failed",
				"trigger", payload.Trigger,
				"requested_by", payload.RequestedBy,
				"error", err,
			)
			return err
		}
	}
	logger.Infow("worker_reconcile_run_done",
		"trigger", payload.Trigger,
		"run_id", report.RunID,
		"degraded_users", len(report.DegradedUsers),
	)
	return nil
}
