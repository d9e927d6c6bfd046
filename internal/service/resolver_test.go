package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/wallet-ledger/internal/models"
)

func datum(total int64) *models.PeriodDatum {
	d := decimal.NewFromInt(total)
	return &models.PeriodDatum{Total: &d}
}

func TestResolvePrefersFreshSource(t *testing.T) {
	resolved := Resolve(PeriodSources{
		Fresh:     datum(100),
		Dashboard: datum(50),
		Cached:    datum(10),
	})

	assert.NotNil(t, resolved)
	assert.True(t, resolved.Total.Equal(decimal.NewFromInt(100)))
}

func TestResolveFallsThroughEmptyFresh(t *testing.T) {
	resolved := Resolve(PeriodSources{
		Fresh:     &models.PeriodDatum{}, // present but empty
		Dashboard: datum(50),
		Cached:    datum(10),
	})

	assert.NotNil(t, resolved)
	assert.True(t, resolved.Total.Equal(decimal.NewFromInt(50)))
}

func TestResolveFallsBackToCache(t *testing.T) {
	resolved := Resolve(PeriodSources{
		Fresh:  nil,
		Cached: datum(10),
	})

	assert.NotNil(t, resolved)
	assert.True(t, resolved.Total.Equal(decimal.NewFromInt(10)))
}

func TestResolveAllEmptyMeansNoData(t *testing.T) {
	resolved := Resolve(PeriodSources{
		Fresh:     nil,
		Dashboard: &models.PeriodDatum{},
		Cached:    nil,
	})

	assert.Nil(t, resolved, "no data is a distinct answer, not a zero")
}

func TestResolveZeroTotalIsNotEmpty(t *testing.T) {
	// A period with genuinely zero activity wins over a populated cache:
	// zero is data.
	resolved := Resolve(PeriodSources{
		Fresh:  datum(0),
		Cached: datum(10),
	})

	assert.NotNil(t, resolved)
	assert.True(t, resolved.Total.IsZero())
}

func TestResolveCategoriesAloneCountAsData(t *testing.T) {
	resolved := Resolve(PeriodSources{
		Fresh: &models.PeriodDatum{ByCategory: map[string]decimal.Decimal{"fees": decimal.NewFromInt(3)}},
	})

	assert.NotNil(t, resolved)
	assert.Nil(t, resolved.Total)
}
