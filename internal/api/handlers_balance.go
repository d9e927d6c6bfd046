package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	apperrors "github.com/wallet-ledger/internal/errors"
)

const dateLayout = "2006-01-02"

// handleGetBalances returns per-day balance snapshots for a wallet over
// ?start=YYYY-MM-DD&end=YYYY-MM-DD, defaulting to the wallet's full
// lifetime.
func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	wallet, err := s.wallets.GetByID(r.Context(), id)
	if err != nil {
		respondCategorized(w, err)
		return
	}

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

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"walletId":  wallet.ID,
		"snapshots": snapshots,
		"days":      len(snapshots),
	})
}

// queryDate reads a YYYY-MM-DD query parameter. Absence yields the zero
// time, which downstream code treats as "use the default".
func queryDate(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(key, "must be formatted YYYY-MM-DD")
	}
	return t.UTC(), nil
}
