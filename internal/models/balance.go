package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenPosition is one token's holding within a balance snapshot.
// Valued is false when the price collaborator had no quote for the snapshot
// date; the valuation is then reported as zero, never interpolated.
type TokenPosition struct {
	Amount    decimal.Decimal `json:"amount"`
	Valuation decimal.Decimal `json:"valuation"`
	Valued    bool            `json:"valued"`
}

// BalanceSnapshot is a derived, read-only record of a wallet's per-token
// holdings at the end of one calendar day (23:59:59 UTC). It is recomputed
// on demand from the transaction mirror and never persisted.
type BalanceSnapshot struct {
	WalletID       string                   `json:"walletId"`
	Date           time.Time                `json:"date"`
	Tokens         map[string]TokenPosition `json:"tokens"`
	TotalValuation decimal.Decimal          `json:"totalValuation"`
}

// WalletBalance is the provider's view of a wallet's current holdings,
// used by the dashboard summary (resolver source 2).
type WalletBalance struct {
	WalletID       string                   `json:"walletId"`
	Tokens         map[string]TokenPosition `json:"tokens"`
	TotalValuation decimal.Decimal          `json:"totalValuation"`
	LastUpdated    time.Time                `json:"lastUpdated"`
}
