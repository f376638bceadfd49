package models

import (
	"time"
)

// MembershipEvent 团队成员加入/离开事件（追加写日志）
type MembershipEvent struct {
	ID        uint       `gorm:"primarykey" json:"id"`                                   // 主键
	UserID    uint       `gorm:"not null;index:idx_membership_team_user" json:"user_id"` // 用户ID
	TeamID    uint       `gorm:"not null;index:idx_membership_team_user" json:"team_id"` // 团队ID
	JoinedAt  time.Time  `gorm:"not null;index" json:"joined_at"`                        // 加入时间
	LeftAt    *time.Time `gorm:"index" json:"left_at,omitempty"`                         // 离开时间
	CreatedAt time.Time  `gorm:"index" json:"created_at"`                                // 创建时间
}

// TableName 指定表名
func (MembershipEvent) TableName() string {
	return "team_membership_events"
}
