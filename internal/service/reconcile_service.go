package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/roofdash/internal/cache"
	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/metrics"
	"github.com/roofdash/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	reconcileReportCacheKey   = "reconcile:report"
	reconcileFlightCached     = "cached"
	reconcileFlightForced     = "forced"
	defaultTopPerformersLimit = 5
	maxTopPerformersLimit     = 100
	runStateTTL               = 7 * 24 * time.Hour
)

// ReconcileOptions 对账服务参数
type ReconcileOptions struct {
	TopPerformers int
	CacheTTL      time.Duration
	RunTimeout    time.Duration
	Aggregator    AggregatorOptions
}

// ReconcileService 佣金与余额对账服务
// 说明：每次对账基于一份只读快照完成，服务本身不在两次调用之间保留状态（缓存除外）。
type ReconcileService struct {
	source     LedgerSource
	aggregator *CommissionAggregator
	options    ReconcileOptions
	metrics    *metrics.Reconcile
	now        func() time.Time

	// 同一进程内并发的未命中请求合并为一次对账
	flight singleflight.Group
}

// NewReconcileService 创建对账服务
func NewReconcileService(source LedgerSource, calculator PotentialCommissionCalculator, options ReconcileOptions, m *metrics.Reconcile) *ReconcileService {
	if options.TopPerformers <= 0 {
		options.TopPerformers = defaultTopPerformersLimit
	}
	return &ReconcileService{
		source:     source,
		aggregator: NewCommissionAggregator(calculator, options.Aggregator, m),
		options:    options,
		metrics:    m,
		now:        time.Now,
	}
}

// ReconcileInput 对账输入
type ReconcileInput struct {
	ForceRefresh bool
}

// ReconcileReport 对账报告
type ReconcileReport struct {
	RunID         string              `json:"run_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	DurationMS    int64               `json:"duration_ms"`
	Users         []UserBalance       `json:"users"`
	Company       CompanyBalance      `json:"company"`
	TopPerformers []UserBalance       `json:"top_performers"`
	Metrics       []PerformanceMetric `json:"metrics"`
	Teams         []TeamSummary       `json:"teams"`
	DegradedUsers []DegradedUser      `json:"degraded_users"`
	OrphanRecords []OrphanRecord      `json:"orphan_records"`
}

// TeamSummary 团队名单、名单差异与余额汇总
type TeamSummary struct {
	TeamID              uint           `json:"team_id"`
	TeamName            string         `json:"team_name"`
	TeamType            string         `json:"team_type"`
	ManagerID           *uint          `json:"manager_id,omitempty"`
	Roster              TeamRoster     `json:"roster"`
	DerivedRoster       StaticRoster   `json:"derived_roster"`
	Drift               RosterDrift    `json:"drift"`
	Balance             CompanyBalance `json:"balance"`
	EventLogUnavailable bool           `json:"event_log_unavailable"`
}

// Run 执行一次对账（默认读取缓存）
func (s *ReconcileService) Run(ctx context.Context, input ReconcileInput) (*ReconcileReport, error) {
	if !input.ForceRefresh {
		var cached ReconcileReport
		hit, cacheErr := cache.GetJSON(ctx, reconcileReportCacheKey, &cached)
		if cacheErr == nil && hit {
			s.metrics.ObserveRun(metrics.RunResultCached, 0, len(cached.DegradedUsers))
			return &cached, nil
		}
	}

	key := reconcileFlightCached
	if input.ForceRefresh {
		key = reconcileFlightForced
	}
	ch := s.flight.DoChan(key, func() (interface{}, error) {
		// 共享的对账不随单个调用方取消，RunTimeout 仍然生效
		return s.computeAndCache(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ReconcileReport), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *ReconcileService) computeAndCache(ctx context.Context) (*ReconcileReport, error) {
	report, err := s.Compute(ctx)
	if err != nil {
		return nil, err
	}
	if s.options.CacheTTL > 0 {
		if cacheErr := cache.SetJSON(ctx, reconcileReportCacheKey, report, s.options.CacheTTL); cacheErr != nil {
			logger.Run(report.RunID).Warnw("reconcile_report_cache_write_failed", "error", cacheErr)
		}
	}
	return report, nil
}

// Compute 不经过缓存直接对账
func (s *ReconcileService) Compute(ctx context.Context) (*ReconcileReport, error) {
	startedAt := s.now()
	runID := uuid.NewString()
	log := logger.Run(runID)

	if s.options.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.options.RunTimeout)
		defer cancel()
	}

	snapshot, err := LoadLedgerSnapshot(ctx, s.source, log)
	if err != nil {
		elapsed := s.now().Sub(startedAt)
		log.Errorw("reconcile_snapshot_load_failed", "error", err)
		s.metrics.ObserveRun(metrics.RunResultFailed, elapsed, 0)
		s.saveRunState(ctx, &cache.RunState{
			RunID:       runID,
			Result:      metrics.RunResultFailed,
			GeneratedAt: startedAt,
			DurationMS:  elapsed.Milliseconds(),
			Error:       err.Error(),
		})
		return nil, err
	}

	report := BuildReconcileReport(ctx, snapshot, s.aggregator, s.options.TopPerformers, log)
	report.RunID = runID
	report.GeneratedAt = startedAt
	elapsed := s.now().Sub(startedAt)
	report.DurationMS = elapsed.Milliseconds()

	result := metrics.RunResultSuccess
	if len(report.DegradedUsers) > 0 {
		result = metrics.RunResultDegraded
	}
	s.metrics.ObserveRun(result, elapsed, len(report.DegradedUsers))
	s.saveRunState(ctx, &cache.RunState{
		RunID:         runID,
		Result:        result,
		GeneratedAt:   startedAt,
		DurationMS:    report.DurationMS,
		DegradedUsers: len(report.DegradedUsers),
		OrphanRecords: len(report.OrphanRecords),
	})
	log.Infow("reconcile_run_completed",
		"users", len(report.Users),
		"jobs", len(snapshot.Jobs),
		"teams", len(report.Teams),
		"degraded_users", len(report.DegradedUsers),
		"orphan_records", len(report.OrphanRecords),
		"duration_ms", report.DurationMS,
	)
	return report, nil
}

// Refresh 加锁后强制重新对账并刷新缓存
func (s *ReconcileService) Refresh(ctx context.Context) (*ReconcileReport, error) {
	acquired, release, err := cache.AcquireRunLock(ctx, s.lockTTL())
	if err != nil {
		logger.Warnw("reconcile_run_lock_failed", "error", err)
	} else if !acquired {
		return nil, ErrReconcileInProgress
	}
	defer release()
	return s.Run(ctx, ReconcileInput{ForceRefresh: true})
}

// LastRun 最近一次对账摘要
func (s *ReconcileService) LastRun(ctx context.Context) (*cache.RunState, error) {
	state, _, err := cache.GetRunState(ctx)
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (s *ReconcileService) lockTTL() time.Duration {
	if s.options.RunTimeout > 0 {
		return s.options.RunTimeout + 5*time.Second
	}
	return time.Minute
}

func (s *ReconcileService) saveRunState(ctx context.Context, state *cache.RunState) {
	if err := cache.SetRunState(context.WithoutCancel(ctx), state, runStateTTL); err != nil {
		logger.Run(state.RunID).Warnw("reconcile_run_state_write_failed", "error", err)
	}
}

// BuildReconcileReport 基于快照生成对账报告（不含运行元数据）
func BuildReconcileReport(ctx context.Context, snapshot *LedgerSnapshot, aggregator *CommissionAggregator, topN int, log *zap.SugaredLogger) *ReconcileReport {
	report := &ReconcileReport{
		Users:         []UserBalance{},
		TopPerformers: []UserBalance{},
		Metrics:       []PerformanceMetric{},
		Teams:         []TeamSummary{},
		DegradedUsers: []DegradedUser{},
		OrphanRecords: []OrphanRecord{},
	}
	if snapshot == nil {
		report.Company = SumCompanyBalance(nil)
		return report
	}
	if aggregator == nil {
		aggregator = NewCommissionAggregator(nil, AggregatorOptions{}, nil)
	}
	users := snapshot.UserIndex()
	aggregated := aggregator.Aggregate(ctx, snapshot, log)
	paid, paymentOrphans := SumPaymentsByUser(snapshot.Payments, users)

	report.Users = BuildUserBalances(snapshot.Users, aggregated.Totals, paid)
	report.Company = SumCompanyBalance(report.Users)
	report.TopPerformers = RankTopPerformers(report.Users, topN)
	report.DegradedUsers = append(report.DegradedUsers, aggregated.Degraded...)
	report.OrphanRecords = append(report.OrphanRecords, aggregated.Orphans...)
	report.OrphanRecords = append(report.OrphanRecords, paymentOrphans...)

	for _, user := range snapshot.Users {
		report.Metrics = append(report.Metrics, SelectPerformanceMetric(user, snapshot.Jobs))
	}

	teams := append([]models.Team(nil), snapshot.Teams...)
	sort.SliceStable(teams, func(i, j int) bool { return teams[i].ID < teams[j].ID })
	for _, team := range teams {
		roster := ResolveTeamMembership(team.ID, snapshot.MembershipEvents[team.ID])
		report.Teams = append(report.Teams, TeamSummary{
			TeamID:              team.ID,
			TeamName:            team.TeamName,
			TeamType:            team.TeamType,
			ManagerID:           team.ManagerID,
			Roster:              roster,
			DerivedRoster:       DeriveStaticRoster(roster, users),
			Drift:               CheckRosterDrift(team, roster),
			Balance:             RollupTeamBalance(roster, report.Users),
			EventLogUnavailable: snapshot.EventLoadFailed[team.ID],
		})
	}
	return report
}

// GetUserBalance 获取单个用户余额
func (s *ReconcileService) GetUserBalance(ctx context.Context, userID uint, forceRefresh bool) (*UserBalance, error) {
	report, err := s.Run(ctx, ReconcileInput{ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}
	for i := range report.Users {
		if report.Users[i].UserID == userID {
			return &report.Users[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// GetCompanyBalance 获取公司汇总余额
func (s *ReconcileService) GetCompanyBalance(ctx context.Context, forceRefresh bool) (*CompanyBalance, error) {
	report, err := s.Run(ctx, ReconcileInput{ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}
	return &report.Company, nil
}

// GetTopPerformers 获取业绩排行，limit 为 0 时使用默认数量
func (s *ReconcileService) GetTopPerformers(ctx context.Context, limit int, forceRefresh bool) ([]UserBalance, error) {
	if limit < 0 || limit > maxTopPerformersLimit {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	if limit == 0 {
		limit = s.options.TopPerformers
	}
	report, err := s.Run(ctx, ReconcileInput{ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}
	return RankTopPerformers(report.Users, limit), nil
}

// GetUserMetric 获取单个用户业绩指标
func (s *ReconcileService) GetUserMetric(ctx context.Context, userID uint, forceRefresh bool) (*PerformanceMetric, error) {
	report, err := s.Run(ctx, ReconcileInput{ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}
	for i := range report.Metrics {
		if report.Metrics[i].UserID == userID {
			return &report.Metrics[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// GetTeamRoster 获取团队名单与汇总
func (s *ReconcileService) GetTeamRoster(ctx context.Context, teamID uint, forceRefresh bool) (*TeamSummary, error) {
	report, err := s.Run(ctx, ReconcileInput{ForceRefresh: forceRefresh})
	if err != nil {
		return nil, err
	}
	for i := range report.Teams {
		if report.Teams[i].TeamID == teamID {
			return &report.Teams[i], nil
		}
	}
	return nil, ErrTeamNotFound
}
