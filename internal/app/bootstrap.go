package app

import (
	"errors"

	"github.com/roofdash/internal/config"
	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/provider"
	"github.com/roofdash/internal/router"
	"github.com/roofdash/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)
	services, err := buildServices(cfg, mode, container)
	if err != nil {
		container.Close()
		return nil, err
	}

	runner := NewRunner(services...)
	runner.OnShutdown(container.Close)
	return runner, nil
}

func buildServices(cfg *config.Config, mode string, container *provider.Container) ([]Service, error) {
	var services []Service

	// 单次对账：执行完即退出，不启动 HTTP 与队列
	if mode == ModeOnce {
		return []Service{NewReconcileOnceService(container.ReconcileService)}, nil
	}

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化 Worker 服务
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer, cfg.Reconcile.Interval())
		if err != nil {
			if mode == ModeWorker {
				return nil, err
			}
			// all 模式下队列关闭时仅提供 HTTP
			logger.Warnw("app_worker_disabled", "error", err)
		} else {
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return services, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start",
		"addr", addr,
		"mode", opts.Mode,
		"ledger_source", opts.Config.Ledger.Source,
	)
	return RunWithOptions(runner, opts)
}
