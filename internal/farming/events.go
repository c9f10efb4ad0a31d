package farming

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/types"
)

// Event records one committed state change. Fields not relevant to Type are
// left zero.
type Event struct {
	Type              types.EventTypes
	PoolID            uint64
	User              common.Address
	Asset             common.Address
	Amount            sdkmath.Int
	AllocPoint        sdkmath.Int
	AccRewardPerShare sdkmath.Int
	Time              uint64
}
