package models

import (
	"time"

	"gorm.io/gorm"
)

// RealizedCommission 已实现佣金记录（只读账本）
// 说明：管理员修正过的记录以 AdminModified 标记，对账时不做重新推导。
type RealizedCommission struct {
	ID               uint       `gorm:"primarykey" json:"id"`                                           // 主键
	UserID           uint       `gorm:"not null;index" json:"user_id"`                                  // 用户ID
	CustomerID       uint       `gorm:"not null;index" json:"customer_id"`                              // 工单ID
	CommissionAmount Money      `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"` // 佣金金额
	IsPaid           bool       `gorm:"not null;default:false" json:"is_paid"`                          // 是否已支付
	AdminModified    bool       `gorm:"not null;default:false" json:"admin_modified"`                   // 是否经管理员修正
	BuildDate        *time.Time `gorm:"index" json:"build_date,omitempty"`                              // 施工日期
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`                                        // 创建时间
}

// TableName 指定表名
func (RealizedCommission) TableName() string {
	return "realized_commissions"
}

// AfterFind 金额列无法解析时记录告警
func (r *RealizedCommission) AfterFind(tx *gorm.DB) error {
	warnMalformedAmounts(r.TableName(), r.ID, moneyColumn{name: "commission_amount", value: r.CommissionAmount})
	return nil
}
