package service

import (
	"context"
	"time"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

// PeriodStore is the fresh (highest-priority) period source. Ingested
// figures land here, so reads and writes share one backend.
type PeriodStore interface {
	FetchPeriod(ctx context.Context, p types.Period, date time.Time) (*models.PeriodDatum, error)
	UpsertPeriod(ctx context.Context, p types.Period, date time.Time, datum *models.PeriodDatum) error
}

// PeriodCacheStore serves the two lower-priority sources: the dashboard
// summary embedded figure and the stale per-period fallback.
type PeriodCacheStore interface {
	GetPeriod(ctx context.Context, p types.Period, date time.Time) (*models.PeriodDatum, error)
	SetPeriod(ctx context.Context, p types.Period, date time.Time, datum *models.PeriodDatum) error
	GetDashboard(ctx context.Context) (*models.DashboardSummary, error)
	InvalidateDashboard(ctx context.Context) error
}

// PeriodService answers period queries by consulting all three sources
// and resolving them by precedence.
type PeriodService struct {
	store  PeriodStore
	cache  PeriodCacheStore
	logger *logging.Logger
	// now is swappable in tests; the dashboard figure is only trusted
	// for the period containing the current instant.
	now func() time.Time
}

// NewPeriodService creates a period service.
func NewPeriodService(store PeriodStore, cache PeriodCacheStore, logger *logging.Logger) *PeriodService {
	return &PeriodService{store: store, cache: cache, logger: logger, now: time.Now}
}

// PeriodReport holds the resolved figure for every period granularity at
// one reference date. A nil entry means no source had data for that
// period, which is not the same as a zero total.
type PeriodReport struct {
	Date    time.Time                            `json:"date"`
	Periods map[types.Period]*models.PeriodDatum `json:"periods"`
}

// Report resolves daily, monthly, and annual figures for the given date.
// A failing source degrades to empty rather than failing the report, so
// one unavailable backend never hides data the others still have.
func (s *PeriodService) Report(ctx context.Context, date time.Time) (*PeriodReport, error) {
	report := &PeriodReport{
		Date:    date,
		Periods: make(map[types.Period]*models.PeriodDatum, len(types.Periods())),
	}

	dashboard := s.dashboard(ctx)

	for _, p := range types.Periods() {
		sources := PeriodSources{
			Fresh:     s.fresh(ctx, p, date),
			Dashboard: s.dashboardDatum(dashboard, p, date),
			Cached:    s.cached(ctx, p, date),
		}

		resolved := Resolve(sources)
		report.Periods[p] = resolved

		// Keep the fallback cache warm with whatever fresh data we saw.
		if sources.Fresh != nil && !sources.Fresh.IsEmpty() {
			if err := s.cache.SetPeriod(ctx, p, date, sources.Fresh); err != nil {
				s.logger.WithError(err).WithField("period", string(p)).Warn("failed to cache period datum")
			}
		}
	}

	return report, nil
}

// Ingest persists an authoritative figure for one period. The datum
// becomes the fresh source for its period and date, so it wins resolution
// immediately; the fallback cache is warmed with it and the cached
// dashboard summary is dropped, since the figures it embeds may now be
// superseded.
func (s *PeriodService) Ingest(ctx context.Context, p types.Period, date time.Time, datum *models.PeriodDatum) error {
	if !validPeriod(p) {
		return apperrors.NewValidationError("period", "unknown period: "+string(p))
	}
	if datum.IsEmpty() {
		return apperrors.NewValidationError("datum", "must carry a total or a category breakdown")
	}

	if err := s.store.UpsertPeriod(ctx, p, date, datum); err != nil {
		return err
	}

	if err := s.cache.SetPeriod(ctx, p, date, datum); err != nil {
		s.logger.WithError(err).WithField("period", string(p)).Warn("failed to warm period cache after ingest")
	}
	if err := s.cache.InvalidateDashboard(ctx); err != nil {
		s.logger.WithError(err).Warn("failed to invalidate dashboard summary after ingest")
	}

	return nil
}

func validPeriod(p types.Period) bool {
	for _, known := range types.Periods() {
		if known == p {
			return true
		}
	}
	return false
}

func (s *PeriodService) fresh(ctx context.Context, p types.Period, date time.Time) *models.PeriodDatum {
	datum, err := s.store.FetchPeriod(ctx, p, date)
	if err != nil {
		s.logger.WithError(err).WithField("period", string(p)).Warn("fresh period source unavailable")
		return nil
	}
	return datum
}

func (s *PeriodService) cached(ctx context.Context, p types.Period, date time.Time) *models.PeriodDatum {
	datum, err := s.cache.GetPeriod(ctx, p, date)
	if err != nil {
		s.logger.WithError(err).WithField("period", string(p)).Warn("cached period source unavailable")
		return nil
	}
	return datum
}

func (s *PeriodService) dashboard(ctx context.Context) *models.DashboardSummary {
	summary, err := s.cache.GetDashboard(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("dashboard period source unavailable")
		return nil
	}
	return summary
}

// dashboardDatum extracts the summary's figure for one period, but only
// when the requested date falls in the period the dashboard currently
// describes. A daily figure from yesterday's summary says nothing about
// today.
func (s *PeriodService) dashboardDatum(summary *models.DashboardSummary, p types.Period, date time.Time) *models.PeriodDatum {
	if summary == nil {
		return nil
	}
	if !models.PeriodStart(p, date).Equal(models.PeriodStart(p, s.now())) {
		return nil
	}

	switch p {
	case types.PeriodDaily:
		return summary.Daily
	case types.PeriodMonthly:
		return summary.Monthly
	case types.PeriodAnnual:
		return summary.Annual
	default:
		return nil
	}
}
