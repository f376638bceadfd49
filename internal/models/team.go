package models

import (
	"time"
)

// Team 团队表
// 说明：SalesmanIDs/SupplementerIDs 为静态名单快照，成员事件日志为权威来源。
type Team struct {
	ID              uint      `gorm:"primarykey" json:"team_id"`                        // 主键
	TeamName        string    `gorm:"type:varchar(128);not null" json:"team_name"`      // 团队名称
	TeamType        string    `gorm:"type:varchar(32);not null;index" json:"team_type"` // 团队类型
	ManagerID       *uint     `gorm:"index" json:"manager_id,omitempty"`                // 团队经理
	SalesmanIDs     UintList  `gorm:"type:json" json:"salesman_ids"`                    // 销售成员
	SupplementerIDs UintList  `gorm:"type:json" json:"supplementer_ids"`                // 增补成员
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt       time.Time `gorm:"index" json:"updated_at"`                          // 更新时间
}

// TableName 指定表名
func (Team) TableName() string {
	return "teams"
}

// StaticMemberIDs 返回静态名单中的全部成员（不含经理）
func (t Team) StaticMemberIDs() UintList {
	merged := make(UintList, 0, len(t.SalesmanIDs)+len(t.SupplementerIDs))
	merged = append(merged, t.SalesmanIDs...)
	merged = append(merged, t.SupplementerIDs...)
	return merged.Sorted()
}
