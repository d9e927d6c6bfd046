// Package export renders wallet data as CSV for download.
package export

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"github.com/wallet-ledger/internal/models"
)

// WriteBalancesCSV writes one row per day and token: date, token, amount,
// valuation, valued. Tokens within a day are sorted for stable output.
func WriteBalancesCSV(w io.Writer, snapshots []*models.BalanceSnapshot) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "token", "amount", "valuation", "valued"}); err != nil {
		return err
	}

	for _, snap := range snapshots {
		symbols := make([]string, 0, len(snap.Tokens))
		for symbol := range snap.Tokens {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)

		for _, symbol := range symbols {
			pos := snap.Tokens[symbol]
			row := []string{
				snap.Date.Format("2006-01-02"),
				symbol,
				pos.Amount.String(),
				pos.Valuation.String(),
				strconv.FormatBool(pos.Valued),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTransactionsCSV writes one row per transaction.
func WriteTransactionsCSV(w io.Writer, txs []*models.Transaction) error {
	cw := csv.NewWriter(w)

	header := []string{"hash", "blockTime", "blockHeight", "direction", "token", "amount", "feeAmount", "feeToken", "status"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, tx := range txs {
		row := []string{
			tx.Hash,
			tx.BlockTime.UTC().Format("2006-01-02T15:04:05Z"),
			strconv.FormatUint(tx.BlockHeight, 10),
			string(tx.Direction),
			tx.TokenSymbol,
			tx.Amount.String(),
			tx.FeeAmount.String(),
			tx.FeeToken,
			string(tx.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
