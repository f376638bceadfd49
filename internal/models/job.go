package models

import (
	"time"

	"github.com/roofdash/internal/constants"

	"gorm.io/gorm"
)

// Job 客户工单表
// 说明：一个工单最多同时关联五个不同角色的用户。
type Job struct {
	ID                  uint      `gorm:"primarykey" json:"id"`                                    // 主键
	CustomerName        string    `gorm:"type:varchar(255);not null" json:"customer_name"`         // 客户名称
	Status              string    `gorm:"type:varchar(64);not null;index" json:"status"`           // 工单状态
	TotalJobPrice       Money     `gorm:"type:decimal(20,2);default:0" json:"total_job_price"`     // 工单总价
	InitialScopePrice   Money     `gorm:"type:decimal(20,2);default:0" json:"initial_scope_price"` // 初始报价
	SalesmanID          *uint     `gorm:"index" json:"salesman_id,omitempty"`                      // 销售
	ManagerID           *uint     `gorm:"index" json:"manager_id,omitempty"`                       // 销售经理
	SupplementerID      *uint     `gorm:"index" json:"supplementer_id,omitempty"`                  // 增补专员
	SupplementManagerID *uint     `gorm:"index" json:"supplement_manager_id,omitempty"`            // 增补经理
	ReferrerID          *uint     `gorm:"index" json:"referrer_id,omitempty"`                      // 推荐人
	CreatedAt           time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt           time.Time `gorm:"index" json:"updated_at"`                                 // 更新时间
}

// TableName 指定表名
func (Job) TableName() string {
	return "jobs"
}

// AfterFind 金额列无法解析时记录告警
func (j *Job) AfterFind(tx *gorm.DB) error {
	warnMalformedAmounts(j.TableName(), j.ID,
		moneyColumn{name: "total_job_price", value: j.TotalJobPrice},
		moneyColumn{name: "initial_scope_price", value: j.InitialScopePrice},
	)
	return nil
}

// RoleAssignment 工单角色关联
type RoleAssignment struct {
	Role   string
	UserID *uint
}

// RoleAssignments 以固定顺序返回工单的五个角色关联
func (j Job) RoleAssignments() []RoleAssignment {
	return []RoleAssignment{
		{Role: constants.UserRoleSalesman, UserID: j.SalesmanID},
		{Role: constants.UserRoleSalesManager, UserID: j.ManagerID},
		{Role: constants.UserRoleSupplementer, UserID: j.SupplementerID},
		{Role: constants.UserRoleSupplementManager, UserID: j.SupplementManagerID},
		{Role: constants.UserRoleAffiliate, UserID: j.ReferrerID},
	}
}

// AssigneeFor 获取指定角色的关联用户
func (j Job) AssigneeFor(role string) *uint {
	for _, item := range j.RoleAssignments() {
		if item.Role == role {
			return item.UserID
		}
	}
	return nil
}
