// Package network provides per-network address validation. Each supported
// network tag maps to a validator, so adding a network is a single entry in
// the registry rather than conditionals scattered through the sync path.
package network

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"

	apperrors "github.com/wallet-ledger/internal/errors"
	"github.com/wallet-ledger/internal/types"
)

// Validator checks an address against one network's format rules.
type Validator func(address string) error

var validators = map[types.Network]Validator{
	types.NetworkEthereum: validateEVMAddress,
	types.NetworkPolygon:  validateEVMAddress,
	types.NetworkBitcoin:  validateBitcoinAddress,
}

// nativeAssets maps each network to its base-layer token symbol.
var nativeAssets = map[types.Network]string{
	types.NetworkEthereum: "ETH",
	types.NetworkPolygon:  "POL",
	types.NetworkBitcoin:  "BTC",
}

// Supported reports whether the network tag is known.
func Supported(n types.Network) bool {
	_, ok := validators[n]
	return ok
}

// Validate checks an address against its network's format. It returns a
// ValidationError so callers can reject bad input before any network call.
func Validate(n types.Network, address string) error {
	v, ok := validators[n]
	if !ok {
		return apperrors.NewValidationError("network", "unsupported network: "+string(n))
	}
	return v(address)
}

// NativeAsset returns the network's base-layer token symbol.
func NativeAsset(n types.Network) string {
	return nativeAssets[n]
}

func validateEVMAddress(address string) error {
	if !common.IsHexAddress(address) {
		return apperrors.NewValidationError("address", "must be 0x followed by 40 hexadecimal characters")
	}
	return nil
}

func validateBitcoinAddress(address string) error {
	if _, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams); err != nil {
		return apperrors.NewValidationError("address", "not a valid bitcoin mainnet address")
	}
	return nil
}
