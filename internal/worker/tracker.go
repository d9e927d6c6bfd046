// Package worker implements the wallet sync engine: the per-wallet sync
// state tracker, the full-history accumulator that exhausts the provider's
// pagination, the orchestrator that sequences wallet syncs, and the
// periodic daemon loop.
package worker

import (
	"sync"
	"time"

	"github.com/wallet-ledger/internal/models"
	"github.com/wallet-ledger/internal/types"
)

// Tracker is the per-wallet sync state machine:
//
//	idle --begin--> syncing --ok--> success
//	                syncing --fail--> error
//	success|error --begin--> syncing
//
// The set of wallets currently syncing is the sole concurrency guard; it
// is a membership check, not a database lock, because sync is a
// best-effort refresh. The tracker is an explicit, injected object so the
// engine stays testable and safe under multiple UI instances.
type Tracker struct {
	mu      sync.Mutex
	syncing map[string]struct{}
	states  map[string]*models.SyncState
}

// NewTracker creates an empty tracker; every wallet starts idle.
func NewTracker() *Tracker {
	return &Tracker{
		syncing: make(map[string]struct{}),
		states:  make(map[string]*models.SyncState),
	}
}

// Begin claims the syncing slot for a wallet. It returns false, without
// raising, when the wallet is already syncing; the caller must treat that
// as a no-op.
func (t *Tracker) Begin(walletID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.syncing[walletID]; busy {
		return false
	}

	t.syncing[walletID] = struct{}{}
	state := &models.SyncState{
		WalletID: walletID,
		Phase:    types.SyncRunning,
	}
	// Carry the last successful sync metadata through the running phase.
	if prev := t.states[walletID]; prev != nil {
		state.LastSyncAt = prev.LastSyncAt
		state.TxCount = prev.TxCount
	}
	t.states[walletID] = state
	return true
}

// Succeed records a completed sync and releases the slot.
func (t *Tracker) Succeed(walletID string, txCount int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.syncing, walletID)
	now := time.Now().UTC()
	t.states[walletID] = &models.SyncState{
		WalletID:   walletID,
		Phase:      types.SyncSuccess,
		LastSyncAt: &now,
		TxCount:    txCount,
	}
}

// Fail records a failed sync and releases the slot. Previously synced data
// stays intact; only the visible state and detail string change.
func (t *Tracker) Fail(walletID string, detail string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.syncing, walletID)

	prev := t.states[walletID]
	state := &models.SyncState{
		WalletID:    walletID,
		Phase:       types.SyncError,
		ErrorDetail: detail,
	}
	// Keep the last successful sync metadata visible alongside the error.
	if prev != nil {
		state.LastSyncAt = prev.LastSyncAt
		state.TxCount = prev.TxCount
	}
	t.states[walletID] = state
}

// Status returns the wallet's current sync state, idle if never synced.
func (t *Tracker) Status(walletID string) models.SyncState {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.states[walletID]; ok {
		return *s
	}
	return models.SyncState{WalletID: walletID, Phase: types.SyncIdle}
}
