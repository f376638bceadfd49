package service

import (
	"strings"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PerformanceMetric 用户业绩指标
type PerformanceMetric struct {
	UserID        uint            `json:"user_id"`
	Role          string          `json:"role"`
	Kind          string          `json:"kind"`
	Value         decimal.Decimal `json:"value"`
	Unit          string          `json:"unit"`
	Revenue       models.Money    `json:"revenue"`
	FinalizedJobs int             `json:"finalized_jobs"`
	LostJobs      int             `json:"lost_jobs"`
	GoalProgress  decimal.Decimal `json:"goal_progress"`
}

// SelectPerformanceMetric 按用户角色选择业绩指标
// 增补角色：平均增补利润 = Σ(总价 - 初始报价) / 完结数，单位 currency；
// 其余角色：转化率 = 完结 / (完结 + 流失) * 100，单位 percent。分母为零时取 0。
func SelectPerformanceMetric(user models.User, jobs []models.Job) PerformanceMetric {
	filtered := FilterJobsForUser(user, jobs)

	margin := decimal.Zero
	revenue := models.ZeroMoney()
	finalized, lost := 0, 0
	for _, job := range filtered {
		switch ClassifyJob(job) {
		case constants.JobLifecycleFinalized:
			finalized++
			margin = margin.Add(job.TotalJobPrice.Sub(job.InitialScopePrice.Decimal))
			revenue = revenue.Plus(job.TotalJobPrice)
		case constants.JobLifecycleLost:
			lost++
		}
	}

	metric := PerformanceMetric{
		UserID:        user.ID,
		Role:          user.Role,
		Revenue:       revenue,
		FinalizedJobs: finalized,
		LostJobs:      lost,
		GoalProgress:  goalProgress(revenue, user.YearlyGoal),
	}
	if isSupplementRole(user.Role) {
		metric.Kind = constants.MetricKindAverageMargin
		metric.Unit = constants.MetricUnitCurrency
		metric.Value = decimal.Zero
		if finalized > 0 {
			metric.Value = margin.Div(decimal.NewFromInt(int64(finalized))).Round(2)
		}
		return metric
	}

	metric.Kind = constants.MetricKindConversionRate
	metric.Unit = constants.MetricUnitPercent
	metric.Value = conversionRate(finalized, lost)
	return metric
}

func isSupplementRole(role string) bool {
	switch strings.TrimSpace(role) {
	case constants.UserRoleSupplementer, constants.UserRoleSupplementManager:
		return true
	default:
		return false
	}
}

func conversionRate(finalized, lost int) decimal.Decimal {
	total := finalized + lost
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(finalized)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(2)
}

func goalProgress(revenue, goal models.Money) decimal.Decimal {
	if !goal.IsPositive() {
		return decimal.Zero
	}
	return revenue.Mul(hundred).Div(goal.Decimal).Round(2)
}
