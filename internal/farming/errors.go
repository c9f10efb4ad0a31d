package farming

import "github.com/lp-farming/farming-core/internal/types"

var (
	ErrUnknownPool       = types.NewErrorWithMsg(types.ValidationError, "UNKNOWN_POOL", "farming: unknown pool")
	ErrInvalidAmount     = types.NewErrorWithMsg(types.ValidationError, "INVALID_AMOUNT", "farming: invalid amount")
	ErrInvalidAllocPoint = types.NewErrorWithMsg(types.ValidationError, "INVALID_ALLOC_POINT", "farming: invalid allocation point")
	ErrInvalidAsset      = types.NewErrorWithMsg(types.ValidationError, "INVALID_ASSET", "farming: invalid collateral asset")
	ErrPoolExists        = types.NewErrorWithMsg(types.ValidationError, "POOL_EXISTS", "farming: pool already registered for asset")
	ErrInvalidReservoir  = types.NewErrorWithMsg(types.ValidationError, "INVALID_RESERVOIR", "farming: invalid reservoir")

	ErrInsufficientStake = types.NewErrorWithMsg(types.StateError, "INSUFFICIENT_STAKE", "farming: withdraw amount exceeds stake")
	ErrAlreadyBound      = types.NewErrorWithMsg(types.StateError, "ALREADY_BOUND", "farming: reservoir already bound")
	ErrReservoirNotBound = types.NewErrorWithMsg(types.StateError, "NOT_BOUND", "farming: reservoir not bound")
	ErrReentrancy        = types.NewErrorWithMsg(types.StateError, "REENTRANCY", "farming: reentrant call")

	ErrTransferFailed = types.NewErrorWithMsg(types.FundsError, "TRANSFER_FAILED", "farming: collateral transfer failed")

	ErrUnauthorized = types.NewErrorWithMsg(types.AuthorizationError, "UNAUTHORIZED", "farming: caller is not the owner")
)
