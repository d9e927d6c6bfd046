package models

import (
	"time"

	"github.com/wallet-ledger/internal/types"
)

// SyncState is the transient per-wallet sync status surfaced to the UI.
// It lives in the tracker, not the database: sync is a best-effort refresh
// and the state machine resets to idle on process restart.
type SyncState struct {
	WalletID    string          `json:"walletId"`
	Phase       types.SyncPhase `json:"phase"`
	LastSyncAt  *time.Time      `json:"lastSyncAt,omitempty"`
	TxCount     int             `json:"txCount"`
	ErrorDetail string          `json:"errorDetail,omitempty"`
}

// SyncOutcome labels the result of one sync attempt.
type SyncOutcome string

const (
	// OutcomeSynced means the full pagination walk completed
	OutcomeSynced SyncOutcome = "synced"
	// OutcomeSkipped means the attempt was a no-op (already syncing, or
	// fresh enough and force was not requested)
	OutcomeSkipped SyncOutcome = "skipped"
	// OutcomeError means the attempt failed; previously synced data is
	// left intact and any pages committed before the failure are kept
	OutcomeError SyncOutcome = "error"
)

// SyncResult reports one sync attempt for one wallet.
type SyncResult struct {
	ID          string      `json:"id"`
	WalletID    string      `json:"walletId"`
	Outcome     SyncOutcome `json:"outcome"`
	Pages       int         `json:"pages"`
	Fetched     int         `json:"fetched"`
	Inserted    int         `json:"inserted"`
	Detail      string      `json:"detail,omitempty"`
	StartedAt   time.Time   `json:"startedAt"`
	CompletedAt time.Time   `json:"completedAt"`
}
