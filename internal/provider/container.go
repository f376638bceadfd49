package provider

import (
	"github.com/roofdash/internal/cache"
	"github.com/roofdash/internal/config"
	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/crm"
	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/metrics"
	"github.com/roofdash/internal/models"
	"github.com/roofdash/internal/queue"
	"github.com/roofdash/internal/repository"
	"github.com/roofdash/internal/service"
)

// Container 依赖容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Metrics     *metrics.Reconcile

	LedgerRepo repository.LedgerRepository
	CRMClient  *crm.Client

	LedgerSource     service.LedgerSource
	Calculator       service.PotentialCommissionCalculator
	ReconcileService *service.ReconcileService
}

// NewContainer 创建依赖容器
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewReconcile()
	}

	// 初始化仓库与远端客户端
	c.initRepositories()
	c.initCRMClient()

	// 初始化服务
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	if models.DB == nil {
		return
	}
	c.LedgerRepo = repository.NewLedgerRepository(models.DB)
}

func (c *Container) initCRMClient() {
	if c.Config.CRM.BaseURL == "" {
		return
	}
	client, err := crm.NewClient(crm.Config{
		BaseURL: c.Config.CRM.BaseURL,
		APIKey:  c.Config.CRM.APIKey,
		Timeout: c.Config.CRM.Timeout(),
	})
	if err != nil {
		logger.Errorw("provider_init_crm_client_failed", "error", err)
		return
	}
	c.CRMClient = client
}

func (c *Container) initServices() {
	c.LedgerSource, c.Calculator = c.selectLedgerSource()

	c.ReconcileService = service.NewReconcileService(c.LedgerSource, c.Calculator, service.ReconcileOptions{
		TopPerformers: c.Config.Reconcile.TopPerformers,
		CacheTTL:      c.Config.Reconcile.CacheTTL(),
		RunTimeout:    c.Config.Reconcile.RunTimeout(),
		Aggregator: service.AggregatorOptions{
			Fanout:      c.Config.Reconcile.Fanout,
			CallTimeout: c.Config.Reconcile.CallTimeout(),
		},
	}, c.Metrics)
}

// selectLedgerSource 按配置选择账本来源；潜在佣金计算始终依赖远端 CRM
func (c *Container) selectLedgerSource() (service.LedgerSource, service.PotentialCommissionCalculator) {
	var calculator service.PotentialCommissionCalculator
	if c.CRMClient != nil {
		calculator = c.CRMClient
	} else {
		logger.Warnw("provider_potential_calculator_missing", "hint", "crm.base_url is empty")
	}

	switch c.Config.Ledger.Source {
	case constants.LedgerSourceRemote:
		if c.CRMClient == nil {
			logger.Errorw("provider_ledger_source_unavailable", "source", constants.LedgerSourceRemote)
			return nil, calculator
		}
		return c.CRMClient, calculator
	default:
		if c.LedgerRepo == nil {
			logger.Errorw("provider_ledger_source_unavailable", "source", constants.LedgerSourceDatabase)
			return nil, calculator
		}
		return c.LedgerRepo, calculator
	}
}

// Close 释放队列与缓存连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
