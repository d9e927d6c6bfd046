package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/wallet-ledger/internal/logging"
)

// UnitPriceSource is the part of the price client the cache decorates.
type UnitPriceSource interface {
	UnitPrice(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, bool, error)
}

// PriceCache memoizes daily unit prices in Redis. Historical prices never
// change, so cached entries are safe for a long TTL; known-absent quotes
// are cached too, to spare the price service repeated misses during a
// multi-year reconstruction.
type PriceCache struct {
	cache *RedisCache
	src   UnitPriceSource
	ttl   time.Duration
}

// NewPriceCache wraps a price source with Redis memoization.
func NewPriceCache(cache *RedisCache, src UnitPriceSource, ttl time.Duration) *PriceCache {
	return &PriceCache{cache: cache, src: src, ttl: ttl}
}

// priceAbsent marks a day the price service has no quote for, so repeated
// misses never reach it twice.
const priceAbsent = "absent"

func priceKey(symbol string, asOf time.Time) string {
	return fmt.Sprintf("price:%s:%s", symbol, asOf.UTC().Format("2006-01-02"))
}

// UnitPrice returns the cached price when present, otherwise consults the
// underlying source and caches the answer. Entries are plain decimal
// strings. Cache failures degrade to a direct lookup rather than failing
// the valuation.
func (c *PriceCache) UnitPrice(ctx context.Context, symbol string, asOf time.Time) (decimal.Decimal, bool, error) {
	key := priceKey(symbol, asOf)

	raw, err := c.cache.Get(ctx, key)
	switch {
	case err == redis.Nil:
		// Miss, fall through to the source.
	case err != nil:
		logging.FromContext(ctx).WithError(err).Warn("price cache read failed, falling through")
	case raw == priceAbsent:
		return decimal.Zero, false, nil
	default:
		price, perr := decimal.NewFromString(raw)
		if perr == nil {
			return price, true, nil
		}
	}

	price, ok, err := c.src.UnitPrice(ctx, symbol, asOf)
	if err != nil {
		return decimal.Zero, false, err
	}

	entry := priceAbsent
	if ok {
		entry = price.String()
	}
	if cerr := c.cache.Set(ctx, key, entry, c.ttl); cerr != nil {
		logging.FromContext(ctx).WithError(cerr).Warn("price cache write failed")
	}

	return price, ok, nil
}

// Valuate converts an amount via the (cached) unit price.
func (c *PriceCache) Valuate(ctx context.Context, symbol string, amount decimal.Decimal, asOf time.Time) (decimal.Decimal, bool, error) {
	price, ok, err := c.UnitPrice(ctx, symbol, asOf)
	if err != nil || !ok {
		return decimal.Zero, ok, err
	}
	return amount.Mul(price), true, nil
}
