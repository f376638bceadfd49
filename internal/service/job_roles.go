package service

import (
	"strings"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/models"
)

// ResolveJobRoles 解析用户在工单上担任的角色
// 同一用户出现在多个外键时保留全部角色，不去重。
func ResolveJobRoles(job models.Job, userID uint) []string {
	if userID == 0 {
		return nil
	}
	var roles []string
	for _, assignment := range job.RoleAssignments() {
		if assignment.UserID != nil && *assignment.UserID == userID {
			roles = append(roles, assignment.Role)
		}
	}
	return roles
}

// HoldsAnyJobRole 用户是否在工单上担任任一角色
func HoldsAnyJobRole(job models.Job, userID uint) bool {
	return len(ResolveJobRoles(job, userID)) > 0
}

// HoldsJobRole 用户是否在工单上担任指定角色
func HoldsJobRole(job models.Job, userID uint, role string) bool {
	if userID == 0 {
		return false
	}
	assignee := job.AssigneeFor(role)
	return assignee != nil && *assignee == userID
}

// jobRoleForUserRole 用户角色对应的工单角色，Admin 与未知角色返回 false
func jobRoleForUserRole(userRole string) (string, bool) {
	switch strings.TrimSpace(userRole) {
	case constants.UserRoleSalesman:
		return constants.UserRoleSalesman, true
	case constants.UserRoleSalesManager:
		return constants.UserRoleSalesManager, true
	case constants.UserRoleSupplementer:
		return constants.UserRoleSupplementer, true
	case constants.UserRoleSupplementManager:
		return constants.UserRoleSupplementManager, true
	case constants.UserRoleAffiliate:
		return constants.UserRoleAffiliate, true
	default:
		return "", false
	}
}

// FilterJobsForUser 按用户角色筛选其负责的工单
// 管理员及未知角色按任一角色匹配。
func FilterJobsForUser(user models.User, jobs []models.Job) []models.Job {
	role, ok := jobRoleForUserRole(user.Role)
	result := make([]models.Job, 0)
	for _, job := range jobs {
		if ok {
			if HoldsJobRole(job, user.ID, role) {
				result = append(result, job)
			}
			continue
		}
		if HoldsAnyJobRole(job, user.ID) {
			result = append(result, job)
		}
	}
	return result
}
