package storage

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

// PeriodCache keeps the resolver's lower-priority sources in Redis: the
// dashboard summary (source 2) and previously fetched period datums
// (source 3, the stale fallback).
type PeriodCache struct {
	cache *RedisCache
	ttl   time.Duration
}

// NewPeriodCache creates a period cache with the given entry TTL.
func NewPeriodCache(cache *RedisCache, ttl time.Duration) *PeriodCache {
	return &PeriodCache{cache: cache, ttl: ttl}
}

func periodKey(p types.Period, date time.Time) string {
	return fmt.Sprintf("period:%s:%s", p, models.PeriodStart(p, date).Format("2006-01-02"))
}

const dashboardKey = "dashboard:summary"

// GetPeriod returns a previously cached period datum, or nil on a miss.
func (c *PeriodCache) GetPeriod(ctx context.Context, p types.Period, date time.Time) (*models.PeriodDatum, error) {
	var datum models.PeriodDatum
	found, err := c.cache.GetJSON(ctx, periodKey(p, date), &datum)
	if err != nil {
		return nil, apperrors.NewCacheError("get period", err)
	}
	if !found {
		return nil, nil
	}
	return &datum, nil
}

// SetPeriod caches a period datum for later fallback use.
func (c *PeriodCache) SetPeriod(ctx context.Context, p types.Period, date time.Time, datum *models.PeriodDatum) error {
	if datum.IsEmpty() {
		// An empty datum carries no information worth falling back to.
		return nil
	}
	if err := c.cache.SetJSON(ctx, periodKey(p, date), datum, c.ttl); err != nil {
		return apperrors.NewCacheError("set period", err)
	}
	return nil
}

// GetDashboard returns the cached dashboard summary, or nil on a miss.
func (c *PeriodCache) GetDashboard(ctx context.Context) (*models.DashboardSummary, error) {
	var summary models.DashboardSummary
	found, err := c.cache.GetJSON(ctx, dashboardKey, &summary)
	if err != nil {
		return nil, apperrors.NewCacheError("get dashboard summary", err)
	}
	if !found {
		return nil, nil
	}
	return &summary, nil
}

// SetDashboard caches the dashboard summary.
func (c *PeriodCache) SetDashboard(ctx context.Context, summary *models.DashboardSummary) error {
	if err := c.cache.SetJSON(ctx, dashboardKey, summary, c.ttl); err != nil {
		return apperrors.NewCacheError("set dashboard summary", err)
	}
	return nil
}

// InvalidateDashboard drops the cached summary so the next read rebuilds
// it. Called when freshly ingested figures supersede the ones it embeds.
func (c *PeriodCache) InvalidateDashboard(ctx context.Context) error {
	if err := c.cache.Del(ctx, dashboardKey); err != nil {
		return apperrors.NewCacheError("invalidate dashboard summary", err)
	}
	return nil
}
