package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/models"
	"github.com/roofdash/internal/provider"
	"github.com/roofdash/internal/repository"
	"github.com/roofdash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fixedCalculator struct {
	amounts map[uint]map[uint]int64
}

func (f fixedCalculator) CalculatePotentialCommissions(ctx context.Context, jobIDs []uint, userID uint) ([]models.PotentialCommission, error) {
	result := make([]models.PotentialCommission, 0, len(jobIDs))
	for _, jobID := range jobIDs {
		amount := f.amounts[jobID][userID]
		result = append(result, models.PotentialCommission{JobID: jobID, Amount: models.NewMoneyFromInt(amount)})
	}
	return result, nil
}

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
	Pagination struct {
		Total int64 `json:"total"`
	} `json:"pagination"`
}

type handlerFixture struct {
	router   *gin.Engine
	salesman models.User
	team     models.Team
}

func setupHandlerTest(t *testing.T) *handlerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.AutoMigrateWith(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	salesman := models.User{Name: "Sam", Role: constants.UserRoleSalesman, YearlyGoal: models.NewMoneyFromInt(100000)}
	supplementer := models.User{Name: "Ivy", Role: constants.UserRoleSupplementer}
	for _, user := range []*models.User{&salesman, &supplementer} {
		if err := db.Create(user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	finalized := models.Job{CustomerName: "Elm", Status: constants.JobStatusFinalized, TotalJobPrice: models.NewMoneyFromInt(10000), SalesmanID: &salesman.ID}
	active := models.Job{CustomerName: "Pine", Status: constants.JobStatusInProduction, TotalJobPrice: models.NewMoneyFromInt(8000), SalesmanID: &salesman.ID, SupplementerID: &supplementer.ID}
	for _, job := range []*models.Job{&finalized, &active} {
		if err := db.Create(job).Error; err != nil {
			t.Fatalf("create job failed: %v", err)
		}
	}
	if err := db.Create(&models.RealizedCommission{UserID: salesman.ID, CustomerID: finalized.ID, CommissionAmount: models.NewMoneyFromInt(500)}).Error; err != nil {
		t.Fatalf("create commission failed: %v", err)
	}
	if err := db.Create(&models.Payment{UserID: salesman.ID, Amount: models.NewMoneyFromInt(200)}).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	team := models.Team{TeamName: "Closers", TeamType: constants.TeamTypeSales, SalesmanIDs: models.UintList{salesman.ID}}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("create team failed: %v", err)
	}
	joined := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	left := joined.AddDate(0, 2, 0)
	events := []models.MembershipEvent{
		{UserID: salesman.ID, TeamID: team.ID, JoinedAt: joined},
		{UserID: supplementer.ID, TeamID: team.ID, JoinedAt: joined, LeftAt: &left},
	}
	if err := db.Create(&events).Error; err != nil {
		t.Fatalf("create membership events failed: %v", err)
	}

	repo := repository.NewLedgerRepository(db)
	calculator := fixedCalculator{amounts: map[uint]map[uint]int64{
		active.ID: {salesman.ID: 300, supplementer.ID: -50},
	}}
	svc := service.NewReconcileService(repo, calculator, service.ReconcileOptions{}, nil)
	h := New(&provider.Container{LedgerRepo: repo, ReconcileService: svc})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Admin") != "" {
			c.Set("admin_id", uint(1))
			c.Set("username", "ops")
		}
		c.Next()
	})
	group := r.Group("/api/v1/admin/reconcile")
	group.GET("/report", h.GetReconcileReport)
	group.GET("/balances", h.GetUserBalances)
	group.GET("/balances/:user_id", h.GetUserBalance)
	group.GET("/company", h.GetCompanyBalance)
	group.GET("/top-performers", h.GetTopPerformers)
	group.GET("/metrics/:user_id", h.GetUserMetric)
	group.GET("/teams/:team_id/roster", h.GetTeamRoster)
	group.GET("/teams/:team_id/events", h.GetTeamMembershipEvents)
	group.POST("/refresh", h.RefreshReconcile)

	return &handlerFixture{router: r, salesman: salesman, team: team}
}

func (f *handlerFixture) do(t *testing.T, method, path string, admin bool) envelope {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if admin {
		req.Header.Set("X-Test-Admin", "1")
	}
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s http status want 200 got %d", method, path, w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return resp
}

func TestGetUserBalanceHandler(t *testing.T) {
	f := setupHandlerTest(t)

	resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/reconcile/balances/%d", f.salesman.ID), true)
	if resp.StatusCode != 0 {
		t.Fatalf("status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	var balance service.UserBalance
	if err := json.Unmarshal(resp.Data, &balance); err != nil {
		t.Fatalf("unmarshal balance failed: %v", err)
	}
	checks := map[string][2]string{
		"earned":    {balance.Earned.String(), "500.00"},
		"potential": {balance.Potential.String(), "300.00"},
		"paid":      {balance.Paid.String(), "200.00"},
		"current":   {balance.CurrentBalance.String(), "300.00"},
		"projected": {balance.ProjectedBalance.String(), "600.00"},
	}
	for name, pair := range checks {
		if pair[0] != pair[1] {
			t.Fatalf("%s want %s got %s", name, pair[1], pair[0])
		}
	}

	if resp := f.do(t, http.MethodGet, "/api/v1/admin/reconcile/balances/abc", true); resp.StatusCode != 400 {
		t.Fatalf("invalid user id want 400 got %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/api/v1/admin/reconcile/balances/999", true); resp.StatusCode != 404 {
		t.Fatalf("unknown user want 404 got %d", resp.StatusCode)
	}
}

func TestCompanyAndTopPerformersHandlers(t *testing.T) {
	f := setupHandlerTest(t)

	resp := f.do(t, http.MethodGet, "/api/v1/admin/reconcile/company", true)
	var company service.CompanyBalance
	if err := json.Unmarshal(resp.Data, &company); err != nil {
		t.Fatalf("unmarshal company failed: %v", err)
	}
	if company.UserCount != 2 {
		t.Fatalf("user count want 2 got %d", company.UserCount)
	}
	if company.PotentialEarned.String() != "300.00" {
		t.Fatalf("negative potential must not reduce totals, want 300.00 got %s", company.PotentialEarned.String())
	}

	resp = f.do(t, http.MethodGet, "/api/v1/admin/reconcile/top-performers?limit=1", true)
	var performers []service.UserBalance
	if err := json.Unmarshal(resp.Data, &performers); err != nil {
		t.Fatalf("unmarshal performers failed: %v", err)
	}
	if len(performers) != 1 || performers[0].UserID != f.salesman.ID {
		t.Fatalf("top performer want user %d got %+v", f.salesman.ID, performers)
	}

	if resp := f.do(t, http.MethodGet, "/api/v1/admin/reconcile/top-performers?limit=101", true); resp.StatusCode != 400 {
		t.Fatalf("limit 101 want 400 got %d", resp.StatusCode)
	}
	if resp := f.do(t, http.MethodGet, "/api/v1/admin/reconcile/top-performers?limit=x", true); resp.StatusCode != 400 {
		t.Fatalf("limit x want 400 got %d", resp.StatusCode)
	}
}

func TestUserMetricHandler(t *testing.T) {
	f := setupHandlerTest(t)

	resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/reconcile/metrics/%d", f.salesman.ID), true)
	var metric service.PerformanceMetric
	if err := json.Unmarshal(resp.Data, &metric); err != nil {
		t.Fatalf("unmarshal metric failed: %v", err)
	}
	if metric.Kind != constants.MetricKindConversionRate {
		t.Fatalf("salesman metric want conversion rate got %s", metric.Kind)
	}
	if metric.Value.String() != "100" {
		t.Fatalf("conversion rate want 100 got %s", metric.Value.String())
	}
	if metric.GoalProgress.String() != "10" {
		t.Fatalf("goal progress want 10 got %s", metric.GoalProgress.String())
	}
}

func TestTeamHandlers(t *testing.T) {
	f := setupHandlerTest(t)

	resp := f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/reconcile/teams/%d/roster", f.team.ID), true)
	var summary service.TeamSummary
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("unmarshal team summary failed: %v", err)
	}
	if len(summary.Roster.CurrentMembers) != 1 || summary.Roster.CurrentMembers[0].UserID != f.salesman.ID {
		t.Fatalf("current members want [%d] got %+v", f.salesman.ID, summary.Roster.CurrentMembers)
	}
	if len(summary.Roster.FormerMembers) != 1 {
		t.Fatalf("former members want 1 got %d", len(summary.Roster.FormerMembers))
	}
	if !summary.Drift.Consistent {
		t.Fatalf("roster should match static list, got %+v", summary.Drift)
	}

	if resp := f.do(t, http.MethodGet, "/api/v1/admin/reconcile/teams/77/roster", true); resp.StatusCode != 404 {
		t.Fatalf("unknown team want 404 got %d", resp.StatusCode)
	}

	resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/reconcile/teams/%d/events?page_size=1", f.team.ID), true)
	if resp.StatusCode != 0 {
		t.Fatalf("events status_code want 0 got %d", resp.StatusCode)
	}
	if resp.Pagination.Total != 2 {
		t.Fatalf("events total want 2 got %d", resp.Pagination.Total)
	}
	var events []models.MembershipEvent
	if err := json.Unmarshal(resp.Data, &events); err != nil {
		t.Fatalf("unmarshal events failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events page size want 1 got %d", len(events))
	}

	resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/admin/reconcile/teams/%d/events?only_open=true", f.team.ID), true)
	if resp.Pagination.Total != 1 {
		t.Fatalf("open events total want 1 got %d", resp.Pagination.Total)
	}
}

func TestRefreshReconcileHandler(t *testing.T) {
	f := setupHandlerTest(t)

	if resp := f.do(t, http.MethodPost, "/api/v1/admin/reconcile/refresh", false); resp.StatusCode != 401 {
		t.Fatalf("missing admin want 401 got %d", resp.StatusCode)
	}

	resp := f.do(t, http.MethodPost, "/api/v1/admin/reconcile/refresh", true)
	if resp.StatusCode != 0 {
		t.Fatalf("refresh status_code want 0 got %d (%s)", resp.StatusCode, resp.Msg)
	}
	var report service.ReconcileReport
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		t.Fatalf("unmarshal report failed: %v", err)
	}
	if report.RunID == "" {
		t.Fatalf("run id should not be empty")
	}
	if len(report.Users) != 2 || len(report.Teams) != 1 {
		t.Fatalf("report want 2 users 1 team got %d/%d", len(report.Users), len(report.Teams))
	}

	if resp := f.do(t, http.MethodPost, "/api/v1/admin/reconcile/refresh?async=1", true); resp.StatusCode != 503 {
		t.Fatalf("async refresh without queue want 503 got %d", resp.StatusCode)
	}
}
