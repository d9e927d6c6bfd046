package api

import (
	"net/http"

	"github.com/gorilla/mux"

	apperrors "github.com/wallet-ledger/internal/errors"
)

// handleSyncWallet triggers a full history re-sync for one wallet.
// ?force=true bypasses the freshness cooldown. Every sync walks the whole
// history from page one; there is no incremental mode.
func (s *Server) handleSyncWallet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	force := r.URL.Query().Get("force") == "true"

	result, err := s.syncService.SyncWallet(r.Context(), id, force)
	if err != nil {
		// A partial sync still carries a result worth returning: the
		// committed pages are real data.
		if apperrors.IsPartialSync(err) && result != nil {
			catErr := apperrors.Categorize(err)
			respondJSON(w, catErr.StatusCode, map[string]interface{}{
				"result": result,
				"error":  catErr.ToServiceError(),
			})
			return
		}
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleSyncStatus returns the current sync state for one wallet. A wallet
// that has never synced reports idle.
func (s *Server) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := s.wallets.GetByID(r.Context(), id); err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, s.syncStatus.Status(id))
}

// handleSyncAll triggers a sequential sync of every active wallet. One
// wallet's failure never blocks the rest; the response reports every
// outcome.
func (s *Server) handleSyncAll(w http.ResponseWriter, r *http.Request) {
	results, err := s.syncService.SyncAll(r.Context())
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
