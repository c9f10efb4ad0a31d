package api

import (
	"context"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/services"
)

// Ledger is the part of services.Service the api exposes.
type Ledger interface {
	Farm() (services.FarmView, error)
	Pools() ([]services.PoolView, error)
	Pool(pid uint64) (services.PoolView, error)
	Position(pid uint64, user common.Address) (services.PositionView, error)
	PendingTokens(pid uint64, user common.Address) (sdkmath.Int, error)
	Reservoir() (services.ReservoirView, error)
	Balance(symbol string, owner common.Address) (sdkmath.Int, error)
	Allowance(symbol string, owner, spender common.Address) (sdkmath.Int, error)
	UserEvents(ctx context.Context, user common.Address, limit int64) ([]model.LedgerEventDocument, error)

	AddPool(ctx context.Context, caller common.Address, symbol string, allocPoint sdkmath.Int) (uint64, error)
	SetAllocPoint(ctx context.Context, caller common.Address, pid uint64, allocPoint sdkmath.Int) error
	Checkpoint(ctx context.Context, pid uint64) error
	CheckpointAll(ctx context.Context) error
	BindReservoir(ctx context.Context, caller common.Address) error
	Deposit(ctx context.Context, caller common.Address, pid uint64, amount sdkmath.Int) error
	Withdraw(ctx context.Context, caller common.Address, pid uint64, amount sdkmath.Int) error
	EmergencyWithdraw(ctx context.Context, caller common.Address, pid uint64) error
	Mint(ctx context.Context, caller common.Address, symbol string, to common.Address, amount sdkmath.Int) error
	Transfer(ctx context.Context, caller common.Address, symbol string, to common.Address, amount sdkmath.Int) error
	Approve(ctx context.Context, caller common.Address, symbol string, spender common.Address, amount sdkmath.Int) error
}
