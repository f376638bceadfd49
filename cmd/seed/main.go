package main

import (
	"flag"
	"time"

	"github.com/roofdash/internal/config"
	"github.com/roofdash/internal/constants"
	"github.com/roofdash/internal/logger"
	"github.com/roofdash/internal/models"
	"github.com/roofdash/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	var reset bool
	var tokenTTL time.Duration
	flag.BoolVar(&reset, "reset", false, "清空账本镜像表后重新写入演示数据")
	flag.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "演示管理员 token 有效期")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if reset {
		if err := resetLedger(models.DB); err != nil {
			stdLog.Fatalf("Failed to reset ledger: %v", err)
		}
		stdLog.Printf("Ledger tables cleared")
	}

	var userCount int64
	if err := models.DB.Model(&models.User{}).Count(&userCount).Error; err != nil {
		stdLog.Fatalf("Failed to count users: %v", err)
	}
	if userCount > 0 {
		stdLog.Printf("Ledger already seeded (%d users), use -reset to rebuild", userCount)
	} else if err := models.DB.Transaction(seedLedger); err != nil {
		stdLog.Fatalf("Failed to seed ledger: %v", err)
	} else {
		stdLog.Printf("Demo ledger seeded")
	}

	token, expiresAt, err := service.GenerateAdminJWT(cfg.JWT.SecretKey, cfg.JWT.Issuer, 1, "demo-admin", tokenTTL)
	if err != nil {
		stdLog.Printf("Skip demo admin token: %v", err)
		return
	}
	stdLog.Printf("Demo admin token (expires %s):\n%s", expiresAt.Format(time.RFC3339), token)
}

func resetLedger(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{
			&models.MembershipEvent{},
			&models.Team{},
			&models.Payment{},
			&models.RealizedCommission{},
			&models.Job{},
			&models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func seedLedger(tx *gorm.DB) error {
	users := []models.User{
		{Name: "Sarah Mitchell", Email: "sarah@roofdash.dev", Role: constants.UserRoleSalesman, YearlyGoal: money("250000")},
		{Name: "Derek Owens", Email: "derek@roofdash.dev", Role: constants.UserRoleSalesman, YearlyGoal: money("180000")},
		{Name: "Monica Reyes", Email: "monica@roofdash.dev", Role: constants.UserRoleSalesManager, YearlyGoal: money("600000")},
		{Name: "Tom Becker", Email: "tom@roofdash.dev", Role: constants.UserRoleSupplementer},
		{Name: "Priya Shah", Email: "priya@roofdash.dev", Role: constants.UserRoleSupplementManager},
		{Name: "Leo Grant", Email: "leo@roofdash.dev", Role: constants.UserRoleAffiliate},
		{Name: "Office Admin", Email: "admin@roofdash.dev", Role: constants.UserRoleAdmin},
	}
	if err := tx.Create(&users).Error; err != nil {
		return err
	}
	sarah, derek, monica := &users[0].ID, &users[1].ID, &users[2].ID
	tom, priya, leo := &users[3].ID, &users[4].ID, &users[5].ID

	jobs := []models.Job{
		{CustomerName: "Hawthorne Residence", Status: constants.JobStatusFinalized, TotalJobPrice: money("18450.00"), InitialScopePrice: money("14200.00"), SalesmanID: sarah, ManagerID: monica, SupplementerID: tom, SupplementManagerID: priya},
		{CustomerName: "Lakeview Duplex", Status: constants.JobStatusFinalized, TotalJobPrice: money("26900.00"), InitialScopePrice: money("21000.00"), SalesmanID: derek, ManagerID: monica, SupplementerID: tom, ReferrerID: leo},
		{CustomerName: "Birch Lane", Status: constants.JobStatusInProduction, TotalJobPrice: money("15300.00"), InitialScopePrice: money("12800.00"), SalesmanID: sarah, ManagerID: monica, SupplementerID: tom},
		{CustomerName: "Cedar Point", Status: constants.JobStatusSupplementing, TotalJobPrice: money("21750.00"), InitialScopePrice: money("17300.00"), SalesmanID: derek, SupplementerID: tom, SupplementManagerID: priya},
		{CustomerName: "Maple Court", Status: constants.JobStatusClaimFiled, TotalJobPrice: money("9800.00"), InitialScopePrice: money("9800.00"), SalesmanID: sarah, ReferrerID: leo},
		{CustomerName: "Willow Bend", Status: constants.JobStatusLostReclaimable, TotalJobPrice: money("12000.00"), InitialScopePrice: money("12000.00"), SalesmanID: derek},
		{CustomerName: "Aspen Ridge", Status: constants.JobStatusLostUnreclaimable, TotalJobPrice: money("7600.00"), InitialScopePrice: money("7600.00"), SalesmanID: sarah, ManagerID: monica},
	}
	if err := tx.Create(&jobs).Error; err != nil {
		return err
	}

	buildDate := time.Now().AddDate(0, -2, 0)
	commissions := []models.RealizedCommission{
		{UserID: *sarah, CustomerID: jobs[0].ID, CommissionAmount: money("1845.00"), IsPaid: true, BuildDate: &buildDate},
		{UserID: *monica, CustomerID: jobs[0].ID, CommissionAmount: money("461.25"), BuildDate: &buildDate},
		{UserID: *tom, CustomerID: jobs[0].ID, CommissionAmount: money("425.00"), BuildDate: &buildDate},
		{UserID: *priya, CustomerID: jobs[0].ID, CommissionAmount: money("212.50"), BuildDate: &buildDate},
		{UserID: *derek, CustomerID: jobs[1].ID, CommissionAmount: money("2690.00"), BuildDate: &buildDate},
		{UserID: *monica, CustomerID: jobs[1].ID, CommissionAmount: money("672.50"), BuildDate: &buildDate},
		{UserID: *tom, CustomerID: jobs[1].ID, CommissionAmount: money("590.00"), AdminModified: true, BuildDate: &buildDate},
		{UserID: *leo, CustomerID: jobs[1].ID, CommissionAmount: money("500.00"), BuildDate: &buildDate},
	}
	if err := tx.Create(&commissions).Error; err != nil {
		return err
	}

	paidAt := time.Now().AddDate(0, -1, 0)
	payments := []models.Payment{
		{UserID: *sarah, Amount: money("1845.00"), PaymentType: "direct_deposit", PaymentDate: &paidAt, Notes: "Hawthorne commission"},
		{UserID: *derek, Amount: money("1000.00"), PaymentType: "check", PaymentDate: &paidAt, Notes: "Lakeview advance"},
		{UserID: *tom, Amount: money("300.00"), PaymentType: "direct_deposit", PaymentDate: &paidAt},
	}
	if err := tx.Create(&payments).Error; err != nil {
		return err
	}

	teams := []models.Team{
		{TeamName: "North Sales", TeamType: constants.TeamTypeSales, ManagerID: monica, SalesmanIDs: models.UintList{*sarah, *derek}},
		{TeamName: "Supplement Desk", TeamType: constants.TeamTypeSupplement, ManagerID: priya, SupplementerIDs: models.UintList{*tom}},
	}
	if err := tx.Create(&teams).Error; err != nil {
		return err
	}

	joined := time.Now().AddDate(-1, 0, 0)
	transferOut := joined.AddDate(0, 3, 0)
	events := []models.MembershipEvent{
		{UserID: *sarah, TeamID: teams[0].ID, JoinedAt: joined},
		{UserID: *derek, TeamID: teams[0].ID, JoinedAt: joined},
		{UserID: *tom, TeamID: teams[0].ID, JoinedAt: joined, LeftAt: &transferOut},
		{UserID: *tom, TeamID: teams[1].ID, JoinedAt: transferOut},
	}
	return tx.Create(&events).Error
}

func money(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}
