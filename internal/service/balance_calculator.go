package service

import (
	"sort"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/models"
)

// UserBalance 用户余额
type UserBalance struct {
	UserID           uint         `json:"user_id"`
	Name             string       `json:"name"`
	Role             string       `json:"role"`
	Earned           models.Money `json:"earned"`
	Potential        models.Money `json:"potential"`
	Paid             models.Money `json:"paid"`
	CurrentBalance   models.Money `json:"current_balance"`
	ProjectedBalance models.Money `json:"projected_balance"`
}

// CompanyBalance 公司汇总余额（各用户余额之和）
type CompanyBalance struct {
	UserCount        int          `json:"user_count"`
	TotalEarned      models.Money `json:"total_earned"`
	TotalPaid        models.Money `json:"total_paid"`
	PotentialEarned  models.Money `json:"potential_earned"`
	CurrentBalance   models.Money `json:"current_balance"`
	ProjectedBalance models.Money `json:"projected_balance"`
}

// SumPaymentsByUser 汇总每个用户的已发放金额，引用未知用户的记录计入孤立记录
func SumPaymentsByUser(payments []models.Payment, users map[uint]models.User) (map[uint]models.Money, []OrphanRecord) {
	paid := make(map[uint]models.Money)
	orphans := make([]OrphanRecord, 0)
	for _, payment := range payments {
		if users != nil {
			if _, ok := users[payment.UserID]; !ok {
				orphans = append(orphans, OrphanRecord{
					Kind:     constants.OrphanKindPaymentUser,
					RecordID: payment.ID,
					RefID:    payment.UserID,
				})
				continue
			}
		}
		paid[payment.UserID] = paid[payment.UserID].Plus(payment.Amount)
	}
	return paid, orphans
}

// BuildUserBalances 按用户输入顺序生成余额
// current = earned - paid（允许为负）；projected = current + potential
func BuildUserBalances(users []models.User, totals map[uint]CommissionTotals, paid map[uint]models.Money) []UserBalance {
	balances := make([]UserBalance, 0, len(users))
	for _, user := range users {
		item := UserBalance{
			UserID:    user.ID,
			Name:      user.Name,
			Role:      user.Role,
			Earned:    models.ZeroMoney(),
			Potential: models.ZeroMoney(),
			Paid:      models.ZeroMoney(),
		}
		if t, ok := totals[user.ID]; ok {
			item.Earned = t.Earned
			item.Potential = t.Potential
		}
		if amount, ok := paid[user.ID]; ok {
			item.Paid = amount
		}
		item.CurrentBalance = item.Earned.Minus(item.Paid)
		item.ProjectedBalance = item.CurrentBalance.Plus(item.Potential)
		balances = append(balances, item)
	}
	return balances
}

// SumCompanyBalance 汇总公司余额，不从工单重新推导
func SumCompanyBalance(balances []UserBalance) CompanyBalance {
	company := CompanyBalance{
		TotalEarned:      models.ZeroMoney(),
		TotalPaid:        models.ZeroMoney(),
		PotentialEarned:  models.ZeroMoney(),
		CurrentBalance:   models.ZeroMoney(),
		ProjectedBalance: models.ZeroMoney(),
	}
	for _, item := range balances {
		company.UserCount++
		company.TotalEarned = company.TotalEarned.Plus(item.Earned)
		company.TotalPaid = company.TotalPaid.Plus(item.Paid)
		company.PotentialEarned = company.PotentialEarned.Plus(item.Potential)
		company.CurrentBalance = company.CurrentBalance.Plus(item.CurrentBalance)
		company.ProjectedBalance = company.ProjectedBalance.Plus(item.ProjectedBalance)
	}
	return company
}

// RankTopPerformers 按已实现佣金降序取前 N 名，同额保持输入顺序
func RankTopPerformers(balances []UserBalance, n int) []UserBalance {
	if n <= 0 || len(balances) == 0 {
		return []UserBalance{}
	}
	ranked := make([]UserBalance, len(balances))
	copy(ranked, balances)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Earned.GreaterThan(ranked[j].Earned.Decimal)
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}
