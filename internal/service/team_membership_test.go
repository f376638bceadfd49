package service

import (
	"testing"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/models"
)

func TestResolveTeamMembershipLatestJoinWins(t *testing.T) {
	events := []models.MembershipEvent{
		{ID: 3, UserID: 1, TeamID: 1, JoinedAt: date("2024-01-01")},
		{ID: 1, UserID: 1, TeamID: 1, JoinedAt: date("2023-01-01")},
		{ID: 2, UserID: 1, TeamID: 1, JoinedAt: date("2023-06-01"), LeftAt: datePtr("2023-12-01")},
	}
	roster := ResolveTeamMembership(1, events)
	if len(roster.CurrentMembers) != 1 || len(roster.FormerMembers) != 0 {
		t.Fatalf("want 1 current 0 former got %d/%d", len(roster.CurrentMembers), len(roster.FormerMembers))
	}
	member := roster.CurrentMembers[0]
	if member.UserID != 1 || !member.JoinedAt.Equal(date("2024-01-01")) {
		t.Fatalf("unexpected current member: %+v", member)
	}
	if len(member.History) != 2 || member.History[0].ID != 1 || member.History[1].ID != 2 {
		t.Fatalf("history want events [1 2] got %+v", member.History)
	}
}

func TestResolveTeamMembershipFormerMember(t *testing.T) {
	roster := ResolveTeamMembership(1, []models.MembershipEvent{
		{ID: 1, UserID: 2, TeamID: 1, JoinedAt: date("2023-01-01"), LeftAt: datePtr("2023-06-01")},
	})
	if len(roster.CurrentMembers) != 0 {
		t.Fatalf("want no current members got %d", len(roster.CurrentMembers))
	}
	if len(roster.FormerMembers) != 1 || roster.FormerMembers[0].UserID != 2 {
		t.Fatalf("want user 2 former got %+v", roster.FormerMembers)
	}
	if left := roster.FormerMembers[0].LeftAt; left == nil || !left.Equal(date("2023-06-01")) {
		t.Fatalf("left_at want 2023-06-01 got %v", left)
	}
}

func TestResolveTeamMembershipLaterLeaveOverridesOpenTenure(t *testing.T) {
	roster := ResolveTeamMembership(1, []models.MembershipEvent{
		{ID: 1, UserID: 5, TeamID: 1, JoinedAt: date("2022-01-01")},
		{ID: 2, UserID: 5, TeamID: 1, JoinedAt: date("2023-01-01"), LeftAt: datePtr("2023-03-01")},
	})
	if roster.IsCurrentMember(5) {
		t.Fatalf("user 5 should have left")
	}
}

func TestResolveTeamMembershipTieBreaks(t *testing.T) {
	roster := ResolveTeamMembership(1, []models.MembershipEvent{
		{ID: 4, UserID: 6, TeamID: 1, JoinedAt: date("2024-02-01")},
		{ID: 9, UserID: 6, TeamID: 1, JoinedAt: date("2024-02-01"), LeftAt: datePtr("2024-03-01")},
		{ID: 7, UserID: 8, TeamID: 1, JoinedAt: date("2024-02-01"), LeftAt: datePtr("2024-03-01")},
		{ID: 8, UserID: 8, TeamID: 1, JoinedAt: date("2024-02-01")},
	})
	if roster.IsCurrentMember(6) {
		t.Fatalf("user 6: higher event id with left_at should win")
	}
	if !roster.IsCurrentMember(8) {
		t.Fatalf("user 8: higher event id without left_at should win")
	}
}

func TestResolveTeamMembershipFiltersTeamAndSorts(t *testing.T) {
	roster := ResolveTeamMembership(2, []models.MembershipEvent{
		{ID: 1, UserID: 9, TeamID: 2, JoinedAt: date("2024-01-01")},
		{ID: 2, UserID: 3, TeamID: 2, JoinedAt: date("2024-01-01")},
		{ID: 3, UserID: 4, TeamID: 5, JoinedAt: date("2024-01-01")},
		{ID: 4, UserID: 0, TeamID: 2, JoinedAt: date("2024-01-01")},
	})
	ids := roster.CurrentMemberIDs()
	if len(ids) != 2 || ids[0] != 3 || ids[1] != 9 {
		t.Fatalf("current ids want [3 9] got %v", ids)
	}
	if roster.CurrentMembers[0].UserID != 3 {
		t.Fatalf("members should be sorted by user id")
	}
}

func TestDeriveStaticRosterGroupsByRole(t *testing.T) {
	roster := ResolveTeamMembership(1, []models.MembershipEvent{
		{ID: 1, UserID: 1, TeamID: 1, JoinedAt: date("2024-01-01")},
		{ID: 2, UserID: 2, TeamID: 1, JoinedAt: date("2024-01-01")},
		{ID: 3, UserID: 3, TeamID: 1, JoinedAt: date("2024-01-01")},
		{ID: 4, UserID: 4, TeamID: 1, JoinedAt: date("2024-01-01")},
	})
	users := map[uint]models.User{
		1: {ID: 1, Role: constants.UserRoleSalesman},
		2: {ID: 2, Role: constants.UserRoleSupplementer},
		3: {ID: 3, Role: constants.UserRoleAdmin},
	}
	derived := DeriveStaticRoster(roster, users)
	if len(derived.SalesmanIDs) != 1 || derived.SalesmanIDs[0] != 1 {
		t.Fatalf("salesman ids want [1] got %v", derived.SalesmanIDs)
	}
	if len(derived.SupplementerIDs) != 1 || derived.SupplementerIDs[0] != 2 {
		t.Fatalf("supplementer ids want [2] got %v", derived.SupplementerIDs)
	}
	if len(derived.Unassigned) != 2 || derived.Unassigned[0] != 3 || derived.Unassigned[1] != 4 {
		t.Fatalf("unassigned want [3 4] got %v", derived.Unassigned)
	}
}

func TestCheckRosterDrift(t *testing.T) {
	team := models.Team{ID: 1, SalesmanIDs: models.UintList{1, 2}, SupplementerIDs: models.UintList{3}}
	roster := ResolveTeamMembership(1, []models.MembershipEvent{
		{ID: 1, UserID: 1, TeamID: 1, JoinedAt: date("2024-01-01")},
		{ID: 2, UserID: 3, TeamID: 1, JoinedAt: date("2024-01-01")},
		{ID: 3, UserID: 4, TeamID: 1, JoinedAt: date("2024-01-01")},
		{ID: 4, UserID: 2, TeamID: 1, JoinedAt: date("2023-01-01"), LeftAt: datePtr("2023-05-01")},
	})
	drift := CheckRosterDrift(team, roster)
	if drift.Consistent {
		t.Fatalf("drift expected")
	}
	if len(drift.MissingFromLog) != 1 || drift.MissingFromLog[0] != 2 {
		t.Fatalf("missing_from_log want [2] got %v", drift.MissingFromLog)
	}
	if len(drift.MissingFromStatic) != 1 || drift.MissingFromStatic[0] != 4 {
		t.Fatalf("missing_from_static want [4] got %v", drift.MissingFromStatic)
	}

	aligned := models.Team{ID: 1, SalesmanIDs: models.UintList{1, 4}, SupplementerIDs: models.UintList{3}}
	if !CheckRosterDrift(aligned, roster).Consistent {
		t.Fatalf("aligned roster should be consistent")
	}
}

func TestRollupTeamBalanceUsesCurrentMembers(t *testing.T) {
	roster := ResolveTeamMembership(1, []models.MembershipEvent{
		{ID: 1, UserID: 1, TeamID: 1, JoinedAt: date("2024-01-01")},
		{ID: 2, UserID: 2, TeamID: 1, JoinedAt: date("2023-01-01"), LeftAt: datePtr("2023-05-01")},
	})
	balances := []UserBalance{
		{UserID: 1, Earned: money("100"), Paid: money("40"), CurrentBalance: money("60"), Potential: money("5"), ProjectedBalance: money("65")},
		{UserID: 2, Earned: money("900"), Paid: money("0"), CurrentBalance: money("900"), Potential: money("0"), ProjectedBalance: money("900")},
	}
	rollup := RollupTeamBalance(roster, balances)
	if rollup.UserCount != 1 {
		t.Fatalf("rollup user count want 1 got %d", rollup.UserCount)
	}
	mustEqualMoney(t, "team earned", rollup.TotalEarned, "100")
	mustEqualMoney(t, "team projected", rollup.ProjectedBalance, "65")
}
