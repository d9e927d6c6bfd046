package models

import (
	"time"

	"github.com/wallet-ledger/internal/types"
)

// Wallet represents a tracked blockchain address plus display metadata.
// Wallets are registered by an external flow; the sync subsystem only reads
// them and updates the last-sync fields, it never deletes them.
type Wallet struct {
	ID              string        `json:"id" db:"id"`
	Address         string        `json:"address" db:"address"`
	Name            string        `json:"name" db:"name"`
	Network         types.Network `json:"network" db:"network"`
	Active          bool          `json:"active" db:"active"`
	CreatedAt       time.Time     `json:"createdAt" db:"created_at"`
	LastSyncAt      *time.Time    `json:"lastSyncAt,omitempty" db:"last_sync_at"`
	LastSyncTxCount int           `json:"lastSyncTxCount" db:"last_sync_tx_count"`
}
