package worker

import (
	"context"
	"errors"
	"time"

	"github.com/roofdash/internal/config"
	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
	interval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer, interval time.Duration) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
		interval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.interval > 0 && s.consumer != nil {
		go runReconcileLoop(ctx, s.consumer, s.interval)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runReconcileLoop 定时对账，启动时先执行一次
func runReconcileLoop(ctx context.Context, consumer *Consumer, interval time.Duration) {
	if consumer == nil || interval <= 0 {
		return
	}
	runOnce := func() {
		payload := queue.ReconcileRunPayload{
			Trigger:     queue.ReconcileTriggerSchedule,
			RequestedAt: time.Now(),
		}
		if err := consumer.runReconcile(ctx, payload); err != nil {
			logger.Warnw("worker_reconcile_schedule_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
