package testutil

import (
	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/ethereum/go-ethereum/common"
)

// RandomAddress generates a random non-zero account address.
func RandomAddress(f *gofakeit.Faker) common.Address {
	var addr common.Address
	for addr == (common.Address{}) {
		for i := range addr {
			addr[i] = f.Uint8()
		}
	}
	return addr
}

// RandomAmount generates a random amount of whole tokens between 1 and max,
// in 18-decimal base units.
func RandomAmount(f *gofakeit.Faker, max int) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(int64(f.IntRange(1, max)), 18)
}
