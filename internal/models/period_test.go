package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/types"
)

func TestPeriodStart(t *testing.T) {
	ref := time.Date(2026, 8, 20, 17, 45, 12, 0, time.UTC)

	tests := []struct {
		period types.Period
		want   time.Time
	}{
		{types.PeriodDaily, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)},
		{types.PeriodMonthly, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		{types.PeriodAnnual, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		if got := PeriodStart(tt.period, ref); !got.Equal(tt.want) {
			t.Errorf("PeriodStart(%s): expected %v, got %v", tt.period, tt.want, got)
		}
	}
}

func TestPeriodStartNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	// 02:00 on Aug 21 in UTC+9 is still Aug 20 in UTC.
	ref := time.Date(2026, 8, 21, 2, 0, 0, 0, loc)

	want := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	if got := PeriodStart(types.PeriodDaily, ref); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPeriodDatumIsEmpty(t *testing.T) {
	var nilDatum *PeriodDatum
	if !nilDatum.IsEmpty() {
		t.Error("nil datum must be empty")
	}
	if !(&PeriodDatum{}).IsEmpty() {
		t.Error("datum with no total and no categories must be empty")
	}

	zero := decimal.Zero
	if (&PeriodDatum{Total: &zero}).IsEmpty() {
		t.Error("a zero total is data, not emptiness")
	}
	if (&PeriodDatum{ByCategory: map[string]decimal.Decimal{"fees": decimal.NewFromInt(1)}}).IsEmpty() {
		t.Error("categories alone count as data")
	}
}

func TestBalanceDelta(t *testing.T) {
	amount := decimal.NewFromInt(5)

	in := &Transaction{Direction: types.DirectionIn, Amount: amount}
	if !in.BalanceDelta().Equal(amount) {
		t.Errorf("incoming delta: expected %s, got %s", amount, in.BalanceDelta())
	}

	out := &Transaction{Direction: types.DirectionOut, Amount: amount}
	if !out.BalanceDelta().Equal(amount.Neg()) {
		t.Errorf("outgoing delta: expected %s, got %s", amount.Neg(), out.BalanceDelta())
	}

	internal := &Transaction{Direction: types.DirectionInternal, Amount: amount}
	if !internal.BalanceDelta().IsZero() {
		t.Errorf("internal delta must be zero, got %s", internal.BalanceDelta())
	}
}
