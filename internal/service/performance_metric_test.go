package service

import (
	"testing"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/models"

	"github.com/shopspring/decimal"
)

func TestSelectPerformanceMetricAverageMargin(t *testing.T) {
	user := models.User{ID: 9, Role: constants.UserRoleSupplementer}
	jobs := []models.Job{
		{ID: 1, Status: constants.JobStatusFinalized, TotalJobPrice: money("10000"), InitialScopePrice: money("7000"), SupplementerID: uintPtr(9)},
		{ID: 2, Status: constants.JobStatusLostReclaimable, TotalJobPrice: money("5000"), InitialScopePrice: money("1000"), SupplementerID: uintPtr(9)},
		{ID: 3, Status: constants.JobStatusFinalized, TotalJobPrice: money("8000"), InitialScopePrice: money("1000"), SalesmanID: uintPtr(9)},
	}
	metric := SelectPerformanceMetric(user, jobs)
	if metric.Kind != constants.MetricKindAverageMargin || metric.Unit != constants.MetricUnitCurrency {
		t.Fatalf("want average margin currency got %s %s", metric.Kind, metric.Unit)
	}
	if !metric.Value.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("margin want 3000 got %s", metric.Value)
	}
	if metric.FinalizedJobs != 1 || metric.LostJobs != 1 {
		t.Fatalf("counts want 1/1 got %d/%d", metric.FinalizedJobs, metric.LostJobs)
	}
}

func TestSelectPerformanceMetricZeroFinalizedMargin(t *testing.T) {
	user := models.User{ID: 9, Role: constants.UserRoleSupplementManager}
	metric := SelectPerformanceMetric(user, nil)
	if !metric.Value.IsZero() {
		t.Fatalf("margin with no finalized jobs want 0 got %s", metric.Value)
	}
}

func TestSelectPerformanceMetricConversionRate(t *testing.T) {
	user := models.User{ID: 4, Role: constants.UserRoleSalesman, YearlyGoal: money("40000")}
	jobs := []models.Job{
		{ID: 1, Status: constants.JobStatusFinalized, TotalJobPrice: money("12000"), SalesmanID: uintPtr(4)},
		{ID: 2, Status: constants.JobStatusLostReclaimable, SalesmanID: uintPtr(4)},
		{ID: 3, Status: constants.JobStatusLostUnreclaimable, SalesmanID: uintPtr(4)},
		{ID: 4, Status: constants.JobStatusLead, SalesmanID: uintPtr(4)},
		{ID: 5, Status: constants.JobStatusFinalized, TotalJobPrice: money("9999"), ManagerID: uintPtr(4)},
	}
	metric := SelectPerformanceMetric(user, jobs)
	if metric.Kind != constants.MetricKindConversionRate || metric.Unit != constants.MetricUnitPercent {
		t.Fatalf("want conversion rate percent got %s %s", metric.Kind, metric.Unit)
	}
	if !metric.Value.Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("conversion want 33.33 got %s", metric.Value)
	}
	mustEqualMoney(t, "revenue", metric.Revenue, "12000")
	if !metric.GoalProgress.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("goal progress want 30 got %s", metric.GoalProgress)
	}
}

func TestSelectPerformanceMetricZeroDenominator(t *testing.T) {
	user := models.User{ID: 4, Role: constants.UserRoleAffiliate}
	jobs := []models.Job{{ID: 1, Status: constants.JobStatusLead, ReferrerID: uintPtr(4)}}
	metric := SelectPerformanceMetric(user, jobs)
	if !metric.Value.IsZero() {
		t.Fatalf("conversion with empty denominator want 0 got %s", metric.Value)
	}
	if !metric.GoalProgress.IsZero() {
		t.Fatalf("goal progress without goal want 0 got %s", metric.GoalProgress)
	}
}
