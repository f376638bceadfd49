package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roofdash/internal/models"

	"github.com/shopspring/decimal"
)

type ledgerSourceStub struct {
	users       []models.User
	jobs        []models.Job
	commissions []models.RealizedCommission
	payments    []models.Payment
	teams       []models.Team
	events      map[uint][]models.MembershipEvent
	eventErr    map[uint]error
	usersErr    error
	calls       atomic.Int32
}

func (s *ledgerSourceStub) ListUsers(ctx context.Context) ([]models.User, error) {
	s.calls.Add(1)
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	return s.users, nil
}

func (s *ledgerSourceStub) ListJobs(ctx context.Context) ([]models.Job, error) {
	return s.jobs, nil
}

func (s *ledgerSourceStub) ListRealizedCommissions(ctx context.Context) ([]models.RealizedCommission, error) {
	return s.commissions, nil
}

func (s *ledgerSourceStub) ListPayments(ctx context.Context) ([]models.Payment, error) {
	return s.payments, nil
}

func (s *ledgerSourceStub) ListTeams(ctx context.Context) ([]models.Team, error) {
	return s.teams, nil
}

func (s *ledgerSourceStub) ListMembershipEvents(ctx context.Context, teamID uint) ([]models.MembershipEvent, error) {
	if err := s.eventErr[teamID]; err != nil {
		return nil, err
	}
	return s.events[teamID], nil
}

type calculatorCall struct {
	jobIDs []uint
	userID uint
}

// calculatorStub 按 (工单, 用户) 返回预设金额
type calculatorStub struct {
	mu       sync.Mutex
	amounts  map[uint]map[uint]string
	errs     map[uint]error
	delay    map[uint]time.Duration
	calls    []calculatorCall
	inFlight atomic.Int32
	peak     atomic.Int32

	// 为 true 时忽略 ctx 取消，模拟不响应超时的远端
	ignoreCtx bool
}

func (c *calculatorStub) CalculatePotentialCommissions(ctx context.Context, jobIDs []uint, userID uint) ([]models.PotentialCommission, error) {
	current := c.inFlight.Add(1)
	defer c.inFlight.Add(-1)
	for {
		peak := c.peak.Load()
		if current <= peak || c.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	c.mu.Lock()
	c.calls = append(c.calls, calculatorCall{jobIDs: append([]uint(nil), jobIDs...), userID: userID})
	delay := c.delay[userID]
	err := c.errs[userID]
	c.mu.Unlock()

	if delay > 0 && c.ignoreCtx {
		time.Sleep(delay)
	} else if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	items := make([]models.PotentialCommission, 0, len(jobIDs))
	for _, jobID := range jobIDs {
		amount := "0"
		if perUser, ok := c.amounts[jobID]; ok {
			if value, ok := perUser[userID]; ok {
				amount = value
			}
		}
		items = append(items, models.PotentialCommission{JobID: jobID, Amount: money(amount)})
	}
	return items, nil
}

func (c *calculatorStub) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func money(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}

func uintPtr(v uint) *uint {
	return &v
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(value string) *time.Time {
	t := date(value)
	return &t
}

func mustEqualMoney(t *testing.T, label string, got models.Money, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("%s want %s got %s", label, want, got.String())
	}
}
