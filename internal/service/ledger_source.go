package service

import (
	"context"
	"fmt"

	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/models"

	"go.uber.org/zap"
)

// LedgerSource 账本只读数据来源
type LedgerSource interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	ListRealizedCommissions(ctx context.Context) ([]models.RealizedCommission, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListMembershipEvents(ctx context.Context, teamID uint) ([]models.MembershipEvent, error)
}

// PotentialCommissionCalculator 外部潜在佣金计算能力
// 说明：按用户批量计算，每个工单返回一条金额，金额可能 <= 0。
type PotentialCommissionCalculator interface {
	CalculatePotentialCommissions(ctx context.Context, jobIDs []uint, userID uint) ([]models.PotentialCommission, error)
}

// LedgerSnapshot 一次对账使用的只读快照
type LedgerSnapshot struct {
	Users            []models.User
	Jobs             []models.Job
	Commissions      []models.RealizedCommission
	Payments         []models.Payment
	Teams            []models.Team
	MembershipEvents map[uint][]models.MembershipEvent
	// 成员事件加载失败的团队
	EventLoadFailed map[uint]bool
}

// UserIndex 按 ID 索引用户
func (s *LedgerSnapshot) UserIndex() map[uint]models.User {
	index := make(map[uint]models.User, len(s.Users))
	for _, user := range s.Users {
		index[user.ID] = user
	}
	return index
}

// LoadLedgerSnapshot 从数据来源加载快照
// 核心集合加载失败时返回错误；单个团队成员事件加载失败仅记录并降级为空日志。
func LoadLedgerSnapshot(ctx context.Context, source LedgerSource, log *zap.SugaredLogger) (*LedgerSnapshot, error) {
	if source == nil {
		return nil, ErrLedgerSourceMissing
	}
	if log == nil {
		log = logger.S()
	}
	snapshot := &LedgerSnapshot{
		MembershipEvents: make(map[uint][]models.MembershipEvent),
		EventLoadFailed:  make(map[uint]bool),
	}

	var err error
	if snapshot.Users, err = source.ListUsers(ctx); err != nil {
		return nil, fmt.Errorf("%w: users: %v", ErrLedgerLoadFailed, err)
	}
	if snapshot.Jobs, err = source.ListJobs(ctx); err != nil {
		return nil, fmt.Errorf("%w: jobs: %v", ErrLedgerLoadFailed, err)
	}
	if snapshot.Commissions, err = source.ListRealizedCommissions(ctx); err != nil {
		return nil, fmt.Errorf("%w: realized commissions: %v", ErrLedgerLoadFailed, err)
	}
	if snapshot.Payments, err = source.ListPayments(ctx); err != nil {
		return nil, fmt.Errorf("%w: payments: %v", ErrLedgerLoadFailed, err)
	}
	if snapshot.Teams, err = source.ListTeams(ctx); err != nil {
		return nil, fmt.Errorf("%w: teams: %v", ErrLedgerLoadFailed, err)
	}

	for _, team := range snapshot.Teams {
		events, eventErr := source.ListMembershipEvents(ctx, team.ID)
		if eventErr != nil {
			log.Warnw("reconcile_membership_events_load_failed",
				"team_id", team.ID,
				"error", eventErr,
			)
			snapshot.EventLoadFailed[team.ID] = true
			continue
		}
		snapshot.MembershipEvents[team.ID] = events
	}
	return snapshot, nil
}
