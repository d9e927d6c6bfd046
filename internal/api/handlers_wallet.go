package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/network"
	"github.com/wallet-ledger/internal/types"
)

// CreateWalletRequest is the request body for registering a wallet.
type CreateWalletRequest struct {
	Address string `json:"address"`
	Network string `json:"network"`
	Name    string `json:"name"`
}

// handleCreateWallet registers a new wallet for tracking.
func (s *Server) handleCreateWallet(w http.ResponseWriter, r *http.Request) {
	var req CreateWalletRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error(), nil)
		return
	}

	if req.Address == "" {
		respondCategorized(w, apperrors.NewValidationError("address", "must not be empty"))
		return
	}
	// Reject malformed registrations here; the sync path re-checks before
	// any provider call.
	if !network.Supported(types.Network(req.Network)) {
		respondCategorized(w, apperrors.NewValidationError("network", "unsupported network: "+req.Network))
		return
	}
	if err := network.Validate(types.Network(req.Network), req.Address); err != nil {
		respondCategorized(w, err)
		return
	}

	wallet := &models.Wallet{
		Address: req.Address,
		Network: types.Network(req.Network),
		Name:    req.Name,
		Active:  true,
	}

	if err := s.wallets.Create(r.Context(), wallet); err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, wallet)
}

// handleListWallets returns all active wallets.
func (s *Server) handleListWallets(w http.ResponseWriter, r *http.Request) {
	wallets, err := s.wallets.ListActive(r.Context())
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"wallets": wallets,
		"count":   len(wallets),
	})
}

// handleGetWallet returns one wallet by ID.
func (s *Server) handleGetWallet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	wallet, err := s.wallets.GetByID(r.Context(), id)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wallet)
}

// UpdateWalletRequest is the request body for updating a wallet. Either
// field may be omitted to leave it unchanged.
type UpdateWalletRequest struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// handleUpdateWallet renames a wallet or toggles its active flag.
func (s *Server) handleUpdateWallet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateWalletRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body: "+err.Error(), nil)
		return
	}

	if req.Name == nil && req.Active == nil {
		respondCategorized(w, apperrors.NewValidationError("body", "nothing to update"))
		return
	}

	if req.Name != nil {
		if err := s.wallets.Rename(r.Context(), id, *req.Name); err != nil {
			respondCategorized(w, err)
			return
		}
	}
	if req.Active != nil {
		if err := s.wallets.SetActive(r.Context(), id, *req.Active); err != nil {
			respondCategorized(w, err)
			return
		}
	}

	wallet, err := s.wallets.GetByID(r.Context(), id)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, wallet)
}

// handleGetTransactions returns a wallet's mirrored transactions, newest
// first, with limit/offset paging.
func (s *Server) handleGetTransactions(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	// The wallet must exist before we answer with an empty list.
	if _, err := s.wallets.GetByID(r.Context(), id); err != nil {
		respondCategorized(w, err)
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	if limit < 1 || limit > 500 {
		respondCategorized(w, apperrors.NewValidationError("limit", "must be between 1 and 500"))
		return
	}
	if offset < 0 {
		respondCategorized(w, apperrors.NewValidationError("offset", "must not be negative"))
		return
	}

	txs, err := s.transactions.ListByWallet(r.Context(), id, limit, offset)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	total, err := s.transactions.CountByWallet(r.Context(), id)
	if err != nil {
		respondCategorized(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"total":        total,
		"limit":        limit,
		"offset":       offset,
	})
}

// queryInt reads an integer query parameter, falling back on absence or
// garbage.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
