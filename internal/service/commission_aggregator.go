package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/metrics"
	"github.com/roofdash/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	defaultAggregatorFanout      = 8
	defaultAggregatorCallTimeout = 5 * time.Second
)

// AggregatorOptions 佣金聚合参数
type AggregatorOptions struct {
	Fanout      int
	CallTimeout time.Duration
}

func (o AggregatorOptions) normalized() AggregatorOptions {
	if o.Fanout <= 0 {
		o.Fanout = defaultAggregatorFanout
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = defaultAggregatorCallTimeout
	}
	return o
}

// CommissionTotals 用户佣金汇总
type CommissionTotals struct {
	Earned    models.Money `json:"earned"`
	Potential models.Money `json:"potential"`
}

// DegradedUser 潜在佣金降级为零的用户
type DegradedUser struct {
	UserID uint   `json:"user_id"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// OrphanRecord 引用了快照中不存在的用户或工单的记录
type OrphanRecord struct {
	Kind     string `json:"kind"`
	RecordID uint   `json:"record_id"`
	RefID    uint   `json:"ref_id"`
}

// AggregationResult 聚合结果
type AggregationResult struct {
	Totals   map[uint]CommissionTotals
	Degraded []DegradedUser
	Orphans  []OrphanRecord
}

// TotalsFor 获取用户汇总，缺失时返回零值
func (r AggregationResult) TotalsFor(userID uint) CommissionTotals {
	if totals, ok := r.Totals[userID]; ok {
		return totals
	}
	return CommissionTotals{Earned: models.ZeroMoney(), Potential: models.ZeroMoney()}
}

// CommissionAggregator 佣金聚合器
// 说明：已实现佣金只统计已完结工单；潜在佣金按用户并发调用外部能力，失败隔离。
type CommissionAggregator struct {
	calculator PotentialCommissionCalculator
	options    AggregatorOptions
	metrics    *metrics.Reconcile
	// 实际在途的外部调用，超时放弃的调用在真正返回前仍占用名额
	inflight *semaphore.Weighted
}

// NewCommissionAggregator 创建佣金聚合器
func NewCommissionAggregator(calculator PotentialCommissionCalculator, options AggregatorOptions, m *metrics.Reconcile) *CommissionAggregator {
	options = options.normalized()
	return &CommissionAggregator{
		calculator: calculator,
		options:    options,
		metrics:    m,
		inflight:   semaphore.NewWeighted(int64(options.Fanout)),
	}
}

// Aggregate 计算快照中每个用户的已实现与潜在佣金
func (a *CommissionAggregator) Aggregate(ctx context.Context, snapshot *LedgerSnapshot, log *zap.SugaredLogger) AggregationResult {
	if log == nil {
		log = logger.S()
	}
	result := AggregationResult{Totals: make(map[uint]CommissionTotals)}
	if snapshot == nil {
		return result
	}

	users := snapshot.UserIndex()
	earned, orphans := SumEarnedCommissions(snapshot.Jobs, snapshot.Commissions, users)
	potential, degraded := a.SumPotentialCommissions(ctx, snapshot.Jobs, users, log)

	for _, user := range snapshot.Users {
		totals := CommissionTotals{Earned: models.ZeroMoney(), Potential: models.ZeroMoney()}
		if amount, ok := earned[user.ID]; ok {
			totals.Earned = amount
		}
		if amount, ok := potential[user.ID]; ok {
			totals.Potential = amount
		}
		result.Totals[user.ID] = totals
	}
	result.Orphans = orphans
	result.Degraded = degraded
	return result
}

// SumEarnedCommissions 汇总已完结工单的已实现佣金
// 工单缺失或未完结的记录贡献为零；引用未知用户的记录计入孤立记录。
func SumEarnedCommissions(jobs []models.Job, commissions []models.RealizedCommission, users map[uint]models.User) (map[uint]models.Money, []OrphanRecord) {
	finalized := make(map[uint]bool, len(jobs))
	known := make(map[uint]bool, len(jobs))
	for _, job := range jobs {
		known[job.ID] = true
		if IsJobFinalized(job) {
			finalized[job.ID] = true
		}
	}

	earned := make(map[uint]models.Money)
	orphans := make([]OrphanRecord, 0)
	for _, row := range commissions {
		if users != nil {
			if _, ok := users[row.UserID]; !ok {
				orphans = append(orphans, OrphanRecord{
					Kind:     constants.OrphanKindCommissionUser,
					RecordID: row.ID,
					RefID:    row.UserID,
				})
				continue
			}
		}
		if !known[row.CustomerID] {
			orphans = append(orphans, OrphanRecord{
				Kind:     constants.OrphanKindCommissionJob,
				RecordID: row.ID,
				RefID:    row.CustomerID,
			})
			continue
		}
		if !finalized[row.CustomerID] {
			continue
		}
		earned[row.UserID] = earned[row.UserID].Plus(row.CommissionAmount)
	}
	return earned, orphans
}

type potentialCallResult struct {
	userID uint
	items  []models.PotentialCommission
	err    error
	reason string
}

// SumPotentialCommissions 汇总进行中工单的潜在佣金
// 每个用户调用一次外部能力（共享全部进行中工单 ID），结果按 (工单, 用户) 索引；
// 仅累加严格为正的金额。users 非空时跳过快照中不存在的用户。
func (a *CommissionAggregator) SumPotentialCommissions(ctx context.Context, jobs []models.Job, users map[uint]models.User, log *zap.SugaredLogger) (map[uint]models.Money, []DegradedUser) {
	if log == nil {
		log = logger.S()
	}
	jobIDs, holders := collectActiveHolders(jobs)
	if users != nil {
		for userID := range holders {
			if _, ok := users[userID]; !ok {
				delete(holders, userID)
			}
		}
	}
	potential := make(map[uint]models.Money, len(holders))
	degraded := make([]DegradedUser, 0)
	if len(holders) == 0 {
		return potential, degraded
	}

	userIDs := make([]uint, 0, len(holders))
	for userID := range holders {
		userIDs = append(userIDs, userID)
		potential[userID] = models.ZeroMoney()
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	if a == nil || a.calculator == nil {
		log.Warnw("reconcile_potential_calculator_missing", "users", len(userIDs))
		for _, userID := range userIDs {
			degraded = append(degraded, DegradedUser{UserID: userID, Reason: constants.DegradeReasonCalculatorMissing})
		}
		return potential, degraded
	}

	results := make([]potentialCallResult, len(userIDs))
	var group errgroup.Group
	group.SetLimit(a.options.Fanout)
	for i, userID := range userIDs {
		group.Go(func() error {
			results[i] = a.callCalculator(ctx, jobIDs, userID)
			return nil
		})
	}
	_ = group.Wait()

	index := make(map[potentialKey]models.Money)
	for _, res := range results {
		if res.err != nil {
			log.Warnw("reconcile_potential_call_failed",
				"user_id", res.userID,
				"reason", res.reason,
				"job_count", len(jobIDs),
				"error", res.err,
			)
			degraded = append(degraded, DegradedUser{UserID: res.userID, Reason: res.reason, Error: res.err.Error()})
			continue
		}
		for _, item := range res.items {
			key := potentialKey{jobID: item.JobID, userID: res.userID}
			if _, exists := index[key]; exists {
				continue
			}
			index[key] = item.Amount
		}
	}

	for _, userID := range userIDs {
		sum := models.ZeroMoney()
		for _, jobID := range holders[userID] {
			amount, ok := index[potentialKey{jobID: jobID, userID: userID}]
			if !ok || !amount.IsPositive() {
				continue
			}
			sum = sum.Plus(amount)
		}
		potential[userID] = sum
	}
	return potential, degraded
}

type potentialKey struct {
	jobID  uint
	userID uint
}

// callCalculator 单次调用，超时后不再等待结果
// 等待在途名额的时间计入本次调用超时。
func (a *CommissionAggregator) callCalculator(ctx context.Context, jobIDs []uint, userID uint) potentialCallResult {
	callCtx, cancel := context.WithTimeout(ctx, a.options.CallTimeout)
	defer cancel()

	var res potentialCallResult
	if err := a.inflight.Acquire(callCtx, 1); err != nil {
		res = potentialCallResult{userID: userID, err: err}
	} else {
		done := make(chan potentialCallResult, 1)
		go func() {
			defer a.inflight.Release(1)
			defer func() {
				if r := recover(); r != nil {
					done <- potentialCallResult{userID: userID, err: fmt.Errorf("calculator panic: %v", r)}
				}
			}()
			items, err := a.calculator.CalculatePotentialCommissions(callCtx, jobIDs, userID)
			done <- potentialCallResult{userID: userID, items: items, err: err}
		}()

		select {
		case res = <-done:
		case <-callCtx.Done():
			res = potentialCallResult{userID: userID, err: callCtx.Err()}
		}
	}

	switch {
	case res.err == nil:
		a.metrics.IncPotentialCall(metrics.CallResultOK)
	case errors.Is(res.err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
		res.reason = constants.DegradeReasonCallTimeout
		a.metrics.IncPotentialCall(metrics.CallResultTimeout)
	default:
		res.reason = constants.DegradeReasonCallFailed
		a.metrics.IncPotentialCall(metrics.CallResultFailed)
	}
	return res
}

// collectActiveHolders 收集进行中工单 ID（保持输入顺序）以及每个用户担任角色的工单
// 同一用户在同一工单上的多个角色只记一次。
func collectActiveHolders(jobs []models.Job) ([]uint, map[uint][]uint) {
	jobIDs := make([]uint, 0)
	seenJobs := make(map[uint]bool)
	holders := make(map[uint][]uint)
	for _, job := range jobs {
		if !IsJobActive(job) || seenJobs[job.ID] {
			continue
		}
		seenJobs[job.ID] = true
		jobIDs = append(jobIDs, job.ID)

		seenUsers := make(map[uint]bool, 5)
		for _, assignment := range job.RoleAssignments() {
			if assignment.UserID == nil || *assignment.UserID == 0 {
				continue
			}
			userID := *assignment.UserID
			if seenUsers[userID] {
				continue
			}
			seenUsers[userID] = true
			holders[userID] = append(holders[userID], job.ID)
		}
	}
	return jobIDs, holders
}
