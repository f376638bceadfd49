package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment 佣金发放记录（只读账本）
type Payment struct {
	ID          uint       `gorm:"primarykey" json:"id"`                      // 主键
	UserID      uint       `gorm:"not null;index" json:"user_id"`             // 用户ID
	Amount      Money      `gorm:"type:decimal(20,2);not null" json:"amount"` // 发放金额
	PaymentType string     `gorm:"type:varchar(32)" json:"payment_type"`      // 发放方式
	PaymentDate *time.Time `gorm:"index" json:"payment_date,omitempty"`       // 发放日期
	Notes       string     `gorm:"type:text" json:"notes"`                    // 备注
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                   // 创建时间
}

// TableName 指定表名
func (Payment) TableName() string {
	return "commission_payments"
}

// AfterFind 金额列无法解析时记录告警
func (p *Payment) AfterFind(tx *gorm.DB) error {
	warnMalformedAmounts(p.TableName(), p.ID, moneyColumn{name: "amount", value: p.Amount})
	return nil
}
