package models

import (
	"testing"

	"github.com/roofdash/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMoneyScanRoundsNumericValues(t *testing.T) {
	cases := []struct {
		value interface{}
		want  string
	}{
		{value: nil, want: "0"},
		{value: "12.345", want: "12.35"},
		{value: []byte("99.5"), want: "99.5"},
		{value: int64(40), want: "40"},
		{value: float64(-3.2), want: "-3.2"},
	}
	for _, tc := range cases {
		var m Money
		if err := m.Scan(tc.value); err != nil {
			t.Fatalf("scan %v failed: %v", tc.value, err)
		}
		if !m.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("scan %v want %s got %s", tc.value, tc.want, m.String())
		}
		if _, bad := m.Malformed(); bad {
			t.Fatalf("scan %v should not be malformed", tc.value)
		}
	}
}

func TestMoneyScanNonNumericBecomesZero(t *testing.T) {
	m := NewMoneyFromInt(7)
	if err := m.Scan("n/a"); err != nil {
		t.Fatalf("non-numeric scan should not fail: %v", err)
	}
	if !m.IsZero() {
		t.Fatalf("non-numeric amount want 0 got %s", m.String())
	}
	raw, bad := m.Malformed()
	if !bad || raw != "n/a" {
		t.Fatalf("malformed want n/a got %q %v", raw, bad)
	}

	if err := m.Scan([]byte("12")); err != nil {
		t.Fatalf("rescan failed: %v", err)
	}
	if _, bad := m.Malformed(); bad {
		t.Fatalf("rescan should clear malformed flag")
	}
}

func TestAfterFindWarnsMalformedColumn(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	previous := logger.L
	logger.L = zap.New(core)
	t.Cleanup(func() {
		logger.L = previous
	})

	payment := Payment{ID: 9}
	if err := payment.Amount.Scan("abc"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if err := payment.AfterFind(nil); err != nil {
		t.Fatalf("after find failed: %v", err)
	}

	entries := logs.FilterMessage("ledger_amount_malformed").All()
	if len(entries) != 1 {
		t.Fatalf("warn entries want 1 got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["table"] != "commission_payments" || fields["column"] != "amount" || fields["raw_value"] != "abc" {
		t.Fatalf("unexpected warn fields: %+v", fields)
	}
}
