package repository

import (
	"context"

	"github.com/roofdash/internal/models"

	"gorm.io/gorm"
)

// LedgerRepository 账本镜像数据访问接口
type LedgerRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListJobs(ctx context.Context) ([]models.Job, error)
	ListRealizedCommissions(ctx context.Context) ([]models.RealizedCommission, error)
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListMembershipEvents(ctx context.Context, teamID uint) ([]models.MembershipEvent, error)
	ListMembershipEventsPage(ctx context.Context, filter MembershipEventListFilter) ([]models.MembershipEvent, int64, error)
}

// GormLedgerRepository GORM 实现
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建账本仓库
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// ListUsers 获取全部用户
func (r *GormLedgerRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ListJobs 获取全部工单
func (r *GormLedgerRepository) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job
	if err := r.db.WithContext(ctx).Order("id asc").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// ListRealizedCommissions 获取全部已实现佣金
func (r *GormLedgerRepository) ListRealizedCommissions(ctx context.Context) ([]models.RealizedCommission, error) {
	var rows []models.RealizedCommission
	if err := r.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPayments 获取全部佣金发放记录
func (r *GormLedgerRepository) ListPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).Order("id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// ListTeams 获取全部团队
func (r *GormLedgerRepository) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.WithContext(ctx).Order("id asc").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// ListMembershipEvents 获取团队全部成员事件（不保证时间顺序）
func (r *GormLedgerRepository) ListMembershipEvents(ctx context.Context, teamID uint) ([]models.MembershipEvent, error) {
	var events []models.MembershipEvent
	if err := r.db.WithContext(ctx).Where("team_id = ?", teamID).Order("id asc").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListMembershipEventsPage 分页查询成员事件，用于审计展示
func (r *GormLedgerRepository) ListMembershipEventsPage(ctx context.Context, filter MembershipEventListFilter) ([]models.MembershipEvent, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MembershipEvent{})
	if filter.TeamID > 0 {
		query = query.Where("team_id = ?", filter.TeamID)
	}
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OnlyOpen {
		query = query.Where("left_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	var events []models.MembershipEvent
	if err := query.Order("joined_at desc").Order("id desc").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
