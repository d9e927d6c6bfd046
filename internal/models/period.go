package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wallet-ledger/internal/types"
)

// PeriodDatum is an aggregate financial figure for one period (day, month
// or year), broken down by category. A nil datum or one with neither a
// total nor categories means "no data"; a present datum with a zero total
// means genuinely zero activity. The two must never be conflated: the
// dashboard renders them differently.
type PeriodDatum struct {
	Total      *decimal.Decimal           `json:"total,omitempty"`
	ByCategory map[string]decimal.Decimal `json:"byCategory,omitempty"`
}

// IsEmpty reports whether the datum carries no data at all.
func (d *PeriodDatum) IsEmpty() bool {
	return d == nil || (d.Total == nil && len(d.ByCategory) == 0)
}

// PeriodStart normalizes a date to the first day of its containing period,
// the canonical key for period data.
func PeriodStart(p types.Period, t time.Time) time.Time {
	t = t.UTC()
	switch p {
	case types.PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	case types.PeriodAnnual:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
}

// DashboardSummary is the aggregate embedded in the general dashboard
// payload. Its period datums cover the current day/month/year only.
type DashboardSummary struct {
	Daily          *PeriodDatum    `json:"daily,omitempty"`
	Monthly        *PeriodDatum    `json:"monthly,omitempty"`
	Annual         *PeriodDatum    `json:"annual,omitempty"`
	TotalValuation decimal.Decimal `json:"totalValuation"`
	LastUpdated    time.Time       `json:"lastUpdated"`
}
