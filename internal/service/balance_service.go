// Package service implements the derived views over the transaction
// mirror: historical balance reconstruction, the multi-source period
// resolver, and the dashboard summary.
package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/logging"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/network"
	"github.com/wallet-ledger/internal/types"
)

// TransactionSource provides the confirmed transactions the builder sums,
// sorted by block time ascending.
type TransactionSource interface {
	ListConfirmedByWallet(ctx context.Context, walletID string) ([]*models.Transaction, error)
}

// PriceSource converts token amounts to the reference currency as of a
// date. ok=false means no quote exists for that day.
type PriceSource interface {
	Valuate(ctx context.Context, symbol string, amount decimal.Decimal, asOf time.Time) (decimal.Decimal, bool, error)
}

// BalanceService reconstructs per-day balance snapshots from the
// append-only transaction mirror. It holds no state of its own, so
// identical inputs always produce identical output.
type BalanceService struct {
	txs    TransactionSource
	prices PriceSource
	logger *logging.Logger
}

// NewBalanceService creates a balance service.
func NewBalanceService(txs TransactionSource, prices PriceSource, logger *logging.Logger) *BalanceService {
	return &BalanceService{txs: txs, prices: prices, logger: logger}
}

// HistoricalBalances computes one snapshot per calendar day in
// [start, end] (inclusive), defaulting to [wallet creation date, today].
// Each snapshot holds the running balance per token as of 23:59:59 UTC of
// its day: a single forward pass over the pre-sorted transaction list
// applies deltas and emits a snapshot at each day boundary, O(days *
// tokens) rather than a per-day re-summation.
func (s *BalanceService) HistoricalBalances(ctx context.Context, wallet *models.Wallet, start, end time.Time) ([]*models.BalanceSnapshot, error) {
	startDay, endDay, err := normalizeRange(wallet, start, end)
	if err != nil {
		return nil, err
	}

	txs, err := s.txs.ListConfirmedByWallet(ctx, wallet.ID)
	if err != nil {
		return nil, err
	}
	// The store returns them ordered, but the sweep silently corrupts if
	// that ever stops holding, so assert the order cheaply here.
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].BlockTime.Before(txs[j].BlockTime) })

	balances := make(map[string]decimal.Decimal)
	feeAsset := network.NativeAsset(wallet.Network)
	idx := 0

	days := int(endDay.Sub(startDay).Hours()/24) + 1
	snapshots := make([]*models.BalanceSnapshot, 0, days)

	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		endOfDay := day.AddDate(0, 0, 1).Add(-time.Second)

		for idx < len(txs) && !txs[idx].BlockTime.After(endOfDay) {
			apply(balances, feeAsset, txs[idx])
			idx++
		}

		snapshot, err := s.snapshotFor(ctx, wallet.ID, day, balances)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, nil
}

// apply folds one confirmed transaction into the running balances.
// Internal moves net to zero against the external balance; outgoing
// transactions additionally pay their fee in the fee token, or in the
// network's native asset when the provider reports no fee token.
func apply(balances map[string]decimal.Decimal, nativeAsset string, tx *models.Transaction) {
	delta := tx.BalanceDelta()
	if !delta.IsZero() {
		balances[tx.TokenSymbol] = balances[tx.TokenSymbol].Add(delta)
	}

	if tx.Direction == types.DirectionOut && !tx.FeeAmount.IsZero() {
		feeToken := tx.FeeToken
		if feeToken == "" {
			feeToken = nativeAsset
		}
		if feeToken != "" {
			balances[feeToken] = balances[feeToken].Sub(tx.FeeAmount)
		}
	}
}

// snapshotFor values the current running balances as of one day. A token
// without a quote for that day gets a zero valuation, never an
// interpolated one, and a failing price lookup degrades the same way: one
// unavailable price must not fail the whole reconstruction.
func (s *BalanceService) snapshotFor(ctx context.Context, walletID string, day time.Time, balances map[string]decimal.Decimal) (*models.BalanceSnapshot, error) {
	tokens := make(map[string]models.TokenPosition, len(balances))
	total := decimal.Zero

	for symbol, amount := range balances {
		valuation, ok, err := s.prices.Valuate(ctx, symbol, amount, day)
		if err != nil {
			s.logger.WithFields(map[string]interface{}{
				"token": symbol,
				"date":  day.Format("2006-01-02"),
				"error": err.Error(),
			}).Warn("price lookup failed, reporting valuation as absent")
			valuation, ok = decimal.Zero, false
		}

		tokens[symbol] = models.TokenPosition{Amount: amount, Valuation: valuation, Valued: ok}
		total = total.Add(valuation)
	}

	return &models.BalanceSnapshot{
		WalletID:       walletID,
		Date:           day,
		Tokens:         tokens,
		TotalValuation: total,
	}, nil
}

// normalizeRange applies defaults and validates the requested date range
// before any data is loaded.
func normalizeRange(wallet *models.Wallet, start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() {
		start = wallet.CreatedAt
	}
	if end.IsZero() {
		end = time.Now().UTC()
	}

	startDay := truncateToDay(start)
	endDay := truncateToDay(end)

	if endDay.Before(startDay) {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("dateRange", "end date precedes start date")
	}

	return startDay, endDay, nil
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
