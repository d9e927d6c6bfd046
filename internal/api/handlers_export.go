package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/export"
	"github.com/wallet-ledger/internal/logging"
)

// handleExport streams a wallet's data as CSV. ?kind=balances (default)
// exports per-day snapshots over the optional start/end range;
// ?kind=transactions exports the confirmed transaction history.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	wallet, err := s.wallets.GetByID(r.Context(), id)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = "balances"
	}

	switch kind {
	case "balances":
		start, err := queryDate(r, "start")
		if err != nil {
			respondCategorized(w, err)
			return
		}
		end, err := queryDate(r, "end")
		if err != nil {
			respondCategorized(w, err)
			return
		}

		snapshots, err := s.balances.HistoricalBalances(r.Context(), wallet, start, end)
		if err != nil {
			respondCategorized(w, err)
			return
		}

		writeCSVHeaders(w, fmt.Sprintf("balances-%s.csv", wallet.ID))
		if err := export.WriteBalancesCSV(w, snapshots); err != nil {
			logging.Global().WithError(err).Error("balance CSV export failed mid-stream")
		}

	case "transactions":
		txs, err := s.transactions.ListConfirmedByWallet(r.Context(), wallet.ID)
		if err != nil {
			respondCategorized(w, err)
			return
		}

		writeCSVHeaders(w, fmt.Sprintf("transactions-%s.csv", wallet.ID))
		if err := export.WriteTransactionsCSV(w, txs); err != nil {
			logging.Global().WithError(err).Error("transaction CSV export failed mid-stream")
		}

	default:
		respondCategorized(w, apperrors.NewValidationError("kind", "must be balances or transactions"))
	}
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}
