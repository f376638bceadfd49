package app

import (
	"context"
	"errors"

	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/service"
)

// ReconcileOnceService 执行一次强制对账后退出（供外部定时任务调用）
type ReconcileOnceService struct {
	reconcile *service.ReconcileService
}

// NewReconcileOnceService 创建单次对账服务
func NewReconcileOnceService(reconcile *service.ReconcileService) *ReconcileOnceService {
	return &ReconcileOnceService{reconcile: reconcile}
}

// Name 服务名称
func (s *ReconcileOnceService) Name() string {
	return "reconcile_once"
}

// Start 执行对账，返回即代表服务结束
func (s *ReconcileOnceService) Start(ctx context.Context) error {
	if s == nil || s.reconcile == nil {
		return errors.New("reconcile service not initialized")
	}
	report, err := s.reconcile.Refresh(ctx)
	if err != nil {
		return err
	}
	logger.Infow("app_reconcile_once_done",
		"run_id", report.RunID,
		"users", len(report.Users),
		"degraded_users", len(report.DegradedUsers),
		"orphan_records", len(report.OrphanRecords),
		"duration_ms", report.DurationMS,
	)
	return nil
}

// Stop 单次对账无需额外清理
func (s *ReconcileOnceService) Stop(ctx context.Context) error {
	return nil
}
