package models

import (
	"time"

	"gorm.io/gorm"
)

// User 销售团队用户表（只读镜像）
type User struct {
	ID         uint      `gorm:"primarykey" json:"id"`                            // 主键
	Name       string    `gorm:"type:varchar(128);not null" json:"name"`          // 姓名
	Email      string    `gorm:"type:varchar(255);index" json:"email"`            // 邮箱
	Role       string    `gorm:"type:varchar(32);not null;index" json:"role"`     // 角色
	YearlyGoal Money     `gorm:"type:decimal(20,2);default:0" json:"yearly_goal"` // 年度业绩目标
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                         // 创建时间
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`                         // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// AfterFind 金额列无法解析时记录告警
func (u *User) AfterFind(tx *gorm.DB) error {
	warnMalformedAmounts(u.TableName(), u.ID, moneyColumn{name: "yearly_goal", value: u.YearlyGoal})
	return nil
}
