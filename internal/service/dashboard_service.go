package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

// BalanceProvider exposes the upstream provider's live balance view.
type BalanceProvider interface {
	GetCurrentBalance(ctx context.Context, walletID string) (*models.WalletBalance, error)
}

// WalletLister yields the wallets the dashboard aggregates over.
type WalletLister interface {
	ListActive(ctx context.Context) ([]*models.Wallet, error)
}

// DashboardWriter persists the refreshed summary for the resolver.
type DashboardWriter interface {
	SetDashboard(ctx context.Context, summary *models.DashboardSummary) error
	GetDashboard(ctx context.Context) (*models.DashboardSummary, error)
}

// DashboardService builds the aggregate dashboard summary from the
// provider's live per-wallet balances and keeps it cached.
type DashboardService struct {
	wallets  WalletLister
	provider BalanceProvider
	periods  PeriodStore
	cache    DashboardWriter
	logger   *logging.Logger
	now      func() time.Time
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(wallets WalletLister, provider BalanceProvider, periods PeriodStore, cache DashboardWriter, logger *logging.Logger) *DashboardService {
	return &DashboardService{
		wallets:  wallets,
		provider: provider,
		periods:  periods,
		cache:    cache,
		logger:   logger,
		now:      time.Now,
	}
}

// Refresh rebuilds the dashboard summary: it totals the provider's current
// valuation across all active wallets, attaches the current day/month/year
// figures, and caches the result. Per-wallet provider failures are logged
// and skipped so one dead wallet does not blank the whole dashboard.
func (s *DashboardService) Refresh(ctx context.Context) (*models.DashboardSummary, error) {
	wallets, err := s.wallets.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	reached := 0
	for _, w := range wallets {
		balance, err := s.provider.GetCurrentBalance(ctx, w.ID)
		if err != nil {
			s.logger.WithError(err).WithField("walletId", w.ID).Warn("skipping wallet in dashboard refresh")
			continue
		}
		total = total.Add(balance.TotalValuation)
		reached++
	}

	now := s.now().UTC()
	summary := &models.DashboardSummary{
		Daily:          s.currentDatum(ctx, types.PeriodDaily, now),
		Monthly:        s.currentDatum(ctx, types.PeriodMonthly, now),
		Annual:         s.currentDatum(ctx, types.PeriodAnnual, now),
		TotalValuation: total,
		LastUpdated:    now,
	}

	if err := s.cache.SetDashboard(ctx, summary); err != nil {
		s.logger.WithError(err).Warn("failed to cache dashboard summary")
	}

	s.logger.WithFields(map[string]interface{}{
		"wallets": len(wallets),
		"reached": reached,
	}).Info("dashboard summary refreshed")

	return summary, nil
}

// Summary returns the cached dashboard, refreshing when the cache is cold.
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	summary, err := s.cache.GetDashboard(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("dashboard cache unavailable")
	}
	if summary != nil {
		return summary, nil
	}
	return s.Refresh(ctx)
}

func (s *DashboardService) currentDatum(ctx context.Context, p types.Period, now time.Time) *models.PeriodDatum {
	datum, err := s.periods.FetchPeriod(ctx, p, now)
	if err != nil {
		s.logger.WithError(err).WithField("period", string(p)).Warn("period figure unavailable for dashboard")
		return nil
	}
	return datum
}
