package service

import (
	"sort"
	"strings"
	"time"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/models"
)

// MemberTenure 成员任期（以最近一次加入为准）
type MemberTenure struct {
	UserID   uint                     `json:"user_id"`
	EventID  uint                     `json:"event_id"`
	JoinedAt time.Time                `json:"joined_at"`
	LeftAt   *time.Time               `json:"left_at,omitempty"`
	History  []models.MembershipEvent `json:"history,omitempty"`
}

// TeamRoster 由成员事件日志推导出的团队名单
type TeamRoster struct {
	TeamID         uint           `json:"team_id"`
	CurrentMembers []MemberTenure `json:"current_members"`
	FormerMembers  []MemberTenure `json:"former_members"`
}

// CurrentMemberIDs 当前成员 ID（升序）
func (r TeamRoster) CurrentMemberIDs() models.UintList {
	ids := make(models.UintList, 0, len(r.CurrentMembers))
	for _, member := range r.CurrentMembers {
		ids = append(ids, member.UserID)
	}
	return ids.Sorted()
}

// IsCurrentMember 是否为当前成员
func (r TeamRoster) IsCurrentMember(userID uint) bool {
	for _, member := range r.CurrentMembers {
		if member.UserID == userID {
			return true
		}
	}
	return false
}

// ResolveTeamMembership 从无序事件日志解析团队当前/历史成员
// 每个用户取 joined_at 最大的事件；joined_at 相同时 ID 较大者优先，再相同时带 left_at 者优先。
// 该事件无 left_at 为当前成员，否则为历史成员；更早的事件保留为 history。
func ResolveTeamMembership(teamID uint, events []models.MembershipEvent) TeamRoster {
	roster := TeamRoster{
		TeamID:         teamID,
		CurrentMembers: []MemberTenure{},
		FormerMembers:  []MemberTenure{},
	}

	grouped := make(map[uint][]models.MembershipEvent)
	for _, event := range events {
		if event.UserID == 0 {
			continue
		}
		if teamID != 0 && event.TeamID != teamID {
			continue
		}
		grouped[event.UserID] = append(grouped[event.UserID], event)
	}

	userIDs := make([]uint, 0, len(grouped))
	for userID := range grouped {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	for _, userID := range userIDs {
		group := grouped[userID]
		sort.SliceStable(group, func(i, j int) bool {
			return membershipEventBefore(group[i], group[j])
		})
		latest := group[len(group)-1]
		tenure := MemberTenure{
			UserID:   userID,
			EventID:  latest.ID,
			JoinedAt: latest.JoinedAt,
			LeftAt:   latest.LeftAt,
		}
		if len(group) > 1 {
			tenure.History = append([]models.MembershipEvent(nil), group[:len(group)-1]...)
		}
		if latest.LeftAt == nil {
			roster.CurrentMembers = append(roster.CurrentMembers, tenure)
		} else {
			roster.FormerMembers = append(roster.FormerMembers, tenure)
		}
	}
	return roster
}

// membershipEventBefore 事件先后顺序，越靠后越权威
func membershipEventBefore(a, b models.MembershipEvent) bool {
	if !a.JoinedAt.Equal(b.JoinedAt) {
		return a.JoinedAt.Before(b.JoinedAt)
	}
	if a.ID != b.ID {
		return a.ID < b.ID
	}
	switch {
	case a.LeftAt == nil && b.LeftAt != nil:
		return true
	case a.LeftAt != nil && b.LeftAt == nil:
		return false
	case a.LeftAt != nil && b.LeftAt != nil:
		return a.LeftAt.Before(*b.LeftAt)
	default:
		return false
	}
}

// StaticRoster 由事件日志推导出的静态名单视图
type StaticRoster struct {
	TeamID          uint            `json:"team_id"`
	SalesmanIDs     models.UintList `json:"salesman_ids"`
	SupplementerIDs models.UintList `json:"supplementer_ids"`
	Unassigned      models.UintList `json:"unassigned"`
}

// DeriveStaticRoster 根据当前成员及其用户角色推导 salesman_ids / supplementer_ids
// 销售、销售经理、推荐人归入 salesman_ids；增补角色归入 supplementer_ids；其余归入 unassigned。
func DeriveStaticRoster(roster TeamRoster, users map[uint]models.User) StaticRoster {
	derived := StaticRoster{
		TeamID:          roster.TeamID,
		SalesmanIDs:     models.UintList{},
		SupplementerIDs: models.UintList{},
		Unassigned:      models.UintList{},
	}
	for _, userID := range roster.CurrentMemberIDs() {
		user, ok := users[userID]
		if !ok {
			derived.Unassigned = append(derived.Unassigned, userID)
			continue
		}
		switch strings.TrimSpace(user.Role) {
		case constants.UserRoleSalesman, constants.UserRoleSalesManager, constants.UserRoleAffiliate:
			derived.SalesmanIDs = append(derived.SalesmanIDs, userID)
		case constants.UserRoleSupplementer, constants.UserRoleSupplementManager:
			derived.SupplementerIDs = append(derived.SupplementerIDs, userID)
		default:
			derived.Unassigned = append(derived.Unassigned, userID)
		}
	}
	return derived
}

// RosterDrift 静态名单与事件日志的差异
type RosterDrift struct {
	TeamID            uint            `json:"team_id"`
	Consistent        bool            `json:"consistent"`
	MissingFromLog    models.UintList `json:"missing_from_log"`
	MissingFromStatic models.UintList `json:"missing_from_static"`
}

// CheckRosterDrift 对比团队静态名单与事件日志推导出的当前成员
// 只报告差异，不判断哪一方正确。
func CheckRosterDrift(team models.Team, roster TeamRoster) RosterDrift {
	static := team.StaticMemberIDs()
	current := roster.CurrentMemberIDs()
	drift := RosterDrift{
		TeamID:            team.ID,
		MissingFromLog:    models.UintList{},
		MissingFromStatic: models.UintList{},
	}
	for _, id := range static {
		if !current.Contains(id) {
			drift.MissingFromLog = append(drift.MissingFromLog, id)
		}
	}
	for _, id := range current {
		if !static.Contains(id) {
			drift.MissingFromStatic = append(drift.MissingFromStatic, id)
		}
	}
	drift.Consistent = len(drift.MissingFromLog) == 0 && len(drift.MissingFromStatic) == 0
	return drift
}

// RollupTeamBalance 汇总团队当前成员的余额
func RollupTeamBalance(roster TeamRoster, balances []UserBalance) CompanyBalance {
	members := make([]UserBalance, 0, len(roster.CurrentMembers))
	for _, item := range balances {
		if roster.IsCurrentMember(item.UserID) {
			members = append(members, item)
		}
	}
	return SumCompanyBalance(members)
}
