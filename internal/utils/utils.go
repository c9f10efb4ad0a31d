package utils

import (
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// TokenDecimals is the number of decimals of every ledger token.
const TokenDecimals = 18

var tokenUnit = new(big.Float).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(TokenDecimals), nil))

// ToWholeTokens converts a base-unit amount into whole tokens. Precision is
// lost; the result is meant for gauges and logs only.
func ToWholeTokens(amount sdkmath.Int) float64 {
	if amount.IsNil() {
		return 0
	}
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(amount.BigInt()), tokenUnit).Float64()
	return f
}
