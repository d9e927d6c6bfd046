package service

import "github.com/wallet-ledger/internal/models"

// PeriodSources holds the candidate data for one period, in precedence
// order. Each member may be nil (the source had nothing) or non-nil but
// empty (the source answered with no usable figures).
type PeriodSources struct {
	Fresh     *models.PeriodDatum
	Dashboard *models.PeriodDatum
	Cached    *models.PeriodDatum
}

// Resolve picks the first non-empty candidate, preferring fresh data
// over the dashboard-embedded figure over the cached fallback. It returns
// nil when every source is empty: no data is a distinct answer from a
// zero total, and callers must not collapse the two.
func Resolve(src PeriodSources) *models.PeriodDatum {
	for _, candidate := range []*models.PeriodDatum{src.Fresh, src.Dashboard, src.Cached} {
		if candidate != nil && !candidate.IsEmpty() {
			return candidate
		}
	}
	return nil
}
