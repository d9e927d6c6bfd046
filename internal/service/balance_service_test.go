package service

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

type mockTxSource struct {
	txs []*models.Transaction
}

func (m *mockTxSource) ListConfirmedByWallet(ctx context.Context, walletID string) ([]*models.Transaction, error) {
	return m.txs, nil
}

// mockPriceSource quotes a fixed unit price per symbol; symbols missing
// from the map have no quote.
type mockPriceSource struct {
	prices map[string]decimal.Decimal
	err    error
}

func (m *mockPriceSource) Valuate(ctx context.Context, symbol string, amount decimal.Decimal, asOf time.Time) (decimal.Decimal, bool, error) {
	if m.err != nil {
		return decimal.Zero, false, m.err
	}
	price, ok := m.prices[symbol]
	if !ok {
		return decimal.Zero, false, nil
	}
	return amount.Mul(price), true, nil
}

func quietLogger() *logging.Logger {
	logger := logging.New(logging.LevelFatal, logging.FormatText)
	logger.SetOutput(io.Discard)
	return logger
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func confirmedTx(at time.Time, dir types.Direction, symbol string, amount int64) *models.Transaction {
	return &models.Transaction{
		Hash:        fmt.Sprintf("0x%s-%s-%d-%d", dir, symbol, amount, at.Unix()),
		BlockTime:   at,
		Direction:   dir,
		TokenSymbol: symbol,
		Amount:      decimal.NewFromInt(amount),
		Status:      types.StatusConfirmed,
	}
}

func balanceTestWallet() *models.Wallet {
	return &models.Wallet{
		ID:        "w1",
		Address:   "0x52908400098527886E0F7030069857D2E4169EE7",
		Network:   types.NetworkEthereum,
		CreatedAt: day("2026-01-01"),
	}
}

func TestHistoricalBalancesRunningBalance(t *testing.T) {
	txs := []*models.Transaction{
		confirmedTx(day("2026-01-01").Add(10*time.Hour), types.DirectionIn, "ETH", 5),
		confirmedTx(day("2026-01-02").Add(3*time.Hour), types.DirectionOut, "ETH", 2),
		confirmedTx(day("2026-01-04").Add(1*time.Hour), types.DirectionIn, "ETH", 1),
	}
	svc := NewBalanceService(&mockTxSource{txs: txs}, &mockPriceSource{prices: map[string]decimal.Decimal{"ETH": decimal.NewFromInt(100)}}, quietLogger())

	snaps, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-01-01"), day("2026-01-04"))
	require.NoError(t, err)
	require.Len(t, snaps, 4)

	wantETH := []int64{5, 3, 3, 4}
	for i, want := range wantETH {
		pos := snaps[i].Tokens["ETH"]
		assert.True(t, pos.Amount.Equal(decimal.NewFromInt(want)), "day %d: expected %d ETH, got %s", i, want, pos.Amount)
		assert.True(t, pos.Valued)
		assert.True(t, snaps[i].TotalValuation.Equal(decimal.NewFromInt(want*100)))
	}
}

func TestHistoricalBalancesExcludesInternalTransfers(t *testing.T) {
	txs := []*models.Transaction{
		confirmedTx(day("2026-01-01"), types.DirectionIn, "BTC", 3),
		confirmedTx(day("2026-01-02"), types.DirectionInternal, "BTC", 2),
	}
	svc := NewBalanceService(&mockTxSource{txs: txs}, &mockPriceSource{}, quietLogger())

	snaps, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-01-01"), day("2026-01-02"))
	require.NoError(t, err)

	// The internal move on day 2 must not change the external balance.
	assert.True(t, snaps[1].Tokens["BTC"].Amount.Equal(decimal.NewFromInt(3)))
}

func TestHistoricalBalancesDeductsFees(t *testing.T) {
	out := confirmedTx(day("2026-01-02"), types.DirectionOut, "USDC", 50)
	out.FeeAmount = decimal.RequireFromString("0.5")
	out.FeeToken = "ETH"
	txs := []*models.Transaction{
		confirmedTx(day("2026-01-01"), types.DirectionIn, "ETH", 2),
		confirmedTx(day("2026-01-01"), types.DirectionIn, "USDC", 100),
		out,
	}
	svc := NewBalanceService(&mockTxSource{txs: txs}, &mockPriceSource{}, quietLogger())

	snaps, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-01-01"), day("2026-01-02"))
	require.NoError(t, err)

	last := snaps[len(snaps)-1]
	assert.True(t, last.Tokens["USDC"].Amount.Equal(decimal.NewFromInt(50)))
	assert.True(t, last.Tokens["ETH"].Amount.Equal(decimal.RequireFromString("1.5")), "fee must come out of the fee token")
}

func TestHistoricalBalancesFeeDefaultsToNativeAsset(t *testing.T) {
	out := confirmedTx(day("2026-01-02"), types.DirectionOut, "USDC", 50)
	out.FeeAmount = decimal.RequireFromString("0.25")
	// No fee token reported: an ethereum wallet pays gas in ETH.
	txs := []*models.Transaction{
		confirmedTx(day("2026-01-01"), types.DirectionIn, "ETH", 2),
		confirmedTx(day("2026-01-01"), types.DirectionIn, "USDC", 100),
		out,
	}
	svc := NewBalanceService(&mockTxSource{txs: txs}, &mockPriceSource{}, quietLogger())

	snaps, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-01-01"), day("2026-01-02"))
	require.NoError(t, err)

	last := snaps[len(snaps)-1]
	assert.True(t, last.Tokens["ETH"].Amount.Equal(decimal.RequireFromString("1.75")), "an unlabelled fee must come out of the native asset")
}

func TestHistoricalBalancesMissingPriceIsAbsentNotError(t *testing.T) {
	txs := []*models.Transaction{
		confirmedTx(day("2026-01-01"), types.DirectionIn, "OBSCURE", 7),
	}
	svc := NewBalanceService(&mockTxSource{txs: txs}, &mockPriceSource{prices: map[string]decimal.Decimal{}}, quietLogger())

	snaps, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-01-01"), day("2026-01-01"))
	require.NoError(t, err, "a missing price must not fail the reconstruction")

	pos := snaps[0].Tokens["OBSCURE"]
	assert.True(t, pos.Amount.Equal(decimal.NewFromInt(7)), "the amount is still reported")
	assert.False(t, pos.Valued)
	assert.True(t, pos.Valuation.IsZero())
}

func TestHistoricalBalancesPriceErrorDegradesToAbsent(t *testing.T) {
	txs := []*models.Transaction{
		confirmedTx(day("2026-01-01"), types.DirectionIn, "ETH", 1),
	}
	src := &mockPriceSource{err: apperrors.NewTransportError("get price", fmt.Errorf("dial timeout"))}
	svc := NewBalanceService(&mockTxSource{txs: txs}, src, quietLogger())

	snaps, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-01-01"), day("2026-01-01"))
	require.NoError(t, err)
	assert.False(t, snaps[0].Tokens["ETH"].Valued)
}

func TestHistoricalBalancesRejectsInvertedRange(t *testing.T) {
	svc := NewBalanceService(&mockTxSource{}, &mockPriceSource{}, quietLogger())

	_, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-02-01"), day("2026-01-01"))
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestHistoricalBalancesDefaultRangeStartsAtCreation(t *testing.T) {
	svc := NewBalanceService(&mockTxSource{}, &mockPriceSource{}, quietLogger())

	snaps, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), time.Time{}, day("2026-01-03"))
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, day("2026-01-01"), snaps[0].Date)
}

func TestHistoricalBalancesIdempotent(t *testing.T) {
	txs := []*models.Transaction{
		confirmedTx(day("2026-01-01"), types.DirectionIn, "ETH", 5),
		confirmedTx(day("2026-01-02"), types.DirectionOut, "ETH", 2),
	}
	svc := NewBalanceService(&mockTxSource{txs: txs}, &mockPriceSource{prices: map[string]decimal.Decimal{"ETH": decimal.NewFromInt(10)}}, quietLogger())

	first, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-01-01"), day("2026-01-03"))
	require.NoError(t, err)
	second, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), day("2026-01-01"), day("2026-01-03"))
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, first[i].TotalValuation.Equal(second[i].TotalValuation))
		for symbol, pos := range first[i].Tokens {
			assert.True(t, pos.Amount.Equal(second[i].Tokens[symbol].Amount))
		}
	}
}

func TestHistoricalBalancesInOnlyMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("running balance never decreases when every transfer is incoming", prop.ForAll(
		func(amounts []int64) bool {
			base := day("2026-01-01")
			txs := make([]*models.Transaction, 0, len(amounts))
			for i, a := range amounts {
				txs = append(txs, confirmedTx(base.Add(time.Duration(i)*time.Hour), types.DirectionIn, "ETH", a))
			}
			svc := NewBalanceService(&mockTxSource{txs: txs}, &mockPriceSource{}, quietLogger())

			snaps, err := svc.HistoricalBalances(context.Background(), balanceTestWallet(), base, base.AddDate(0, 0, 5))
			if err != nil {
				return false
			}

			prev := decimal.Zero
			for _, snap := range snaps {
				cur := snap.Tokens["ETH"].Amount
				if cur.LessThan(prev) {
					return false
				}
				prev = cur
			}
			return true
		},
		gen.SliceOf(gen.Int64Range(1, 1000)),
	))

	properties.TestingRun(t)
}
