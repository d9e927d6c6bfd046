// Package types provides common type definitions shared across the wallet
// ledger synchronization service.
package types

// Network represents a supported blockchain network
type Network string

const (
	// NetworkEthereum represents the Ethereum mainnet
	NetworkEthereum Network = "ethereum"
	// NetworkPolygon represents the Polygon network
	NetworkPolygon Network = "polygon"
	// NetworkBitcoin represents the Bitcoin mainnet
	NetworkBitcoin Network = "bitcoin"
)

// Networks lists every supported network tag.
func Networks() []Network {
	return []Network{NetworkEthereum, NetworkPolygon, NetworkBitcoin}
}

// Direction represents the effect of a transaction on the tracked wallet
type Direction string

const (
	// DirectionIn represents an incoming transfer (wallet is recipient)
	DirectionIn Direction = "in"
	// DirectionOut represents an outgoing transfer (wallet is sender)
	DirectionOut Direction = "out"
	// DirectionInternal represents a transfer between addresses controlled
	// by the same owner; it nets to zero against the external balance
	DirectionInternal Direction = "internal"
)

// TxStatus represents transaction confirmation status
type TxStatus string

const (
	// StatusConfirmed represents a confirmed transaction
	StatusConfirmed TxStatus = "confirmed"
	// StatusPending represents a transaction not yet confirmed
	StatusPending TxStatus = "pending"
	// StatusFailed represents a failed transaction
	StatusFailed TxStatus = "failed"
)

// SyncPhase represents the per-wallet sync state machine phase
type SyncPhase string

const (
	// SyncIdle means the wallet has never been synced in this process
	SyncIdle SyncPhase = "idle"
	// SyncRunning means a sync attempt is currently in flight
	SyncRunning SyncPhase = "syncing"
	// SyncSuccess means the last sync attempt completed fully
	SyncSuccess SyncPhase = "success"
	// SyncError means the last sync attempt failed (possibly partially)
	SyncError SyncPhase = "error"
)

// Period represents an aggregation granularity for financial figures
type Period string

const (
	// PeriodDaily aggregates over a calendar day
	PeriodDaily Period = "daily"
	// PeriodMonthly aggregates over a calendar month
	PeriodMonthly Period = "monthly"
	// PeriodAnnual aggregates over a calendar year
	PeriodAnnual Period = "annual"
)

// Periods lists the granularities the dashboard renders.
func Periods() []Period {
	return []Period{PeriodDaily, PeriodMonthly, PeriodAnnual}
}

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
