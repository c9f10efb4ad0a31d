package services

import (
	"errors"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/types"
)

var (
	ErrUnknownAsset          = types.NewErrorWithMsg(types.ValidationError, "UNKNOWN_ASSET", "unknown asset")
	ErrUnauthorized          = types.NewErrorWithMsg(types.AuthorizationError, "UNAUTHORIZED", "caller not allowed")
	ErrInvalidAmount         = types.NewErrorWithMsg(types.ValidationError, "INVALID_AMOUNT", "invalid amount")
	ErrInvalidAddress        = types.NewErrorWithMsg(types.ValidationError, "INVALID_ADDRESS", "invalid address")
	ErrInsufficientBalance   = types.NewErrorWithMsg(types.FundsError, "INSUFFICIENT_BALANCE", "insufficient balance")
	ErrInsufficientAllowance = types.NewErrorWithMsg(types.FundsError, "INSUFFICIENT_ALLOWANCE", "insufficient allowance")
)

// tokenError classifies an error returned by a token call.
func tokenError(err error) error {
	var sentinel *types.Error
	switch {
	case errors.Is(err, asset.ErrInvalidAmount):
		sentinel = ErrInvalidAmount
	case errors.Is(err, asset.ErrZeroAddress):
		sentinel = ErrInvalidAddress
	case errors.Is(err, asset.ErrInsufficientBalance):
		sentinel = ErrInsufficientBalance
	case errors.Is(err, asset.ErrInsufficientAllowance):
		sentinel = ErrInsufficientAllowance
	default:
		return types.NewInternalError(err)
	}
	return types.NewError(sentinel.Kind, sentinel.Code, err)
}
