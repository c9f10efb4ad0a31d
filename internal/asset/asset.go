package asset

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Asset is the capability the ledger needs from a fungible token. caller is
// the account on whose behalf the call is made. Implementations are untrusted:
// callers must check both the success flag and the error.
type Asset interface {
	Address() common.Address
	BalanceOf(owner common.Address) sdkmath.Int
	Transfer(caller, to common.Address, amount sdkmath.Int) (bool, error)
	TransferFrom(caller, from, to common.Address, amount sdkmath.Int) (bool, error)
	Approve(caller, spender common.Address, amount sdkmath.Int) (bool, error)
}

// Resolver looks up assets by address, used when restoring persisted pools.
type Resolver interface {
	Asset(addr common.Address) (Asset, bool)
}
