package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wallet-ledger/internal/types"
)

// Transaction represents a mirrored blockchain transaction. Records are
// append-only: once a (wallet, hash) pair is stored it is never edited, a
// re-sync may only insert previously unseen hashes.
type Transaction struct {
	ID            string          `json:"id" db:"id"`
	WalletID      string          `json:"walletId" db:"wallet_id"`
	Hash          string          `json:"hash" db:"hash"`
	BlockHeight   uint64          `json:"blockHeight" db:"block_height"`
	BlockTime     time.Time       `json:"blockTime" db:"block_time"`
	Direction     types.Direction `json:"direction" db:"direction"`
	TokenSymbol   string          `json:"tokenSymbol" db:"token_symbol"`
	TokenName     string          `json:"tokenName,omitempty" db:"token_name"`
	TokenContract string          `json:"tokenContract,omitempty" db:"token_contract"`
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	Decimals      int             `json:"decimals" db:"decimals"`
	FeeAmount     decimal.Decimal `json:"feeAmount" db:"fee_amount"`
	FeeToken      string          `json:"feeToken,omitempty" db:"fee_token"`
	Status        types.TxStatus  `json:"status" db:"status"`
	Confirmations int             `json:"confirmations" db:"confirmations"`
}

// Confirmed reports whether the transaction counts toward balances.
func (t *Transaction) Confirmed() bool {
	return t.Status == types.StatusConfirmed
}

// BalanceDelta returns the signed effect of the transaction on the wallet's
// external balance of its token: positive for incoming, negative for
// outgoing, zero for internal moves (value shuffled between addresses the
// same owner controls nets out).
func (t *Transaction) BalanceDelta() decimal.Decimal {
	switch t.Direction {
	case types.DirectionIn:
		return t.Amount
	case types.DirectionOut:
		return t.Amount.Neg()
	default:
		return decimal.Zero
	}
}
