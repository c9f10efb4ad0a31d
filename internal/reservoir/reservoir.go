package reservoir

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/journal"
	"github.com/lp-farming/farming-core/internal/types"
)

var (
	ErrAlreadyBound        = types.NewErrorWithMsg(types.StateError, "ALREADY_BOUND", "reservoir: consumer already bound")
	ErrNotBound            = types.NewErrorWithMsg(types.StateError, "NOT_BOUND", "reservoir: no consumer bound")
	ErrUnauthorized        = types.NewErrorWithMsg(types.AuthorizationError, "UNAUTHORIZED", "reservoir: caller not allowed")
	ErrInsufficientReserve = types.NewErrorWithMsg(types.FundsError, "INSUFFICIENT_RESERVE", "reservoir: payout exceeds balance")
	ErrInvalidAmount       = types.NewErrorWithMsg(types.ValidationError, "INVALID_AMOUNT", "reservoir: invalid amount")
	ErrInvalidConsumer     = types.NewErrorWithMsg(types.ValidationError, "INVALID_ADDRESS", "reservoir: invalid consumer")
	ErrTransferFailed      = types.NewErrorWithMsg(types.FundsError, "TRANSFER_FAILED", "reservoir: reward transfer failed")
)

// Reservoir holds reward inventory at its own address and releases it only to
// the consumer bound once by the owner. A payout larger than the balance is
// rejected as a whole; it is never clamped.
type Reservoir struct {
	address  common.Address
	owner    common.Address
	reward   asset.Asset
	consumer common.Address
	journal  *journal.Journal
}

func New(address, owner common.Address, reward asset.Asset, j *journal.Journal) *Reservoir {
	return &Reservoir{
		address: address,
		owner:   owner,
		reward:  reward,
		journal: j,
	}
}

func (r *Reservoir) Address() common.Address {
	return r.address
}

func (r *Reservoir) Owner() common.Address {
	return r.owner
}

func (r *Reservoir) RewardAsset() asset.Asset {
	return r.reward
}

// Consumer returns the bound consumer and whether binding already happened.
func (r *Reservoir) Consumer() (common.Address, bool) {
	return r.consumer, r.consumer != (common.Address{})
}

// Balance is the reward inventory left to pay out.
func (r *Reservoir) Balance() sdkmath.Int {
	return r.reward.BalanceOf(r.address)
}

// Bind permanently assigns the consumer allowed to request payouts.
func (r *Reservoir) Bind(caller, consumer common.Address) error {
	if caller != r.owner {
		return ErrUnauthorized.WithMsg("bind by %s", caller.Hex())
	}
	if consumer == (common.Address{}) {
		return ErrInvalidConsumer
	}
	if _, bound := r.Consumer(); bound {
		return ErrAlreadyBound
	}

	r.consumer = consumer
	r.journal.Append(func() { r.consumer = common.Address{} })
	return nil
}

// RequestPayout transfers amount of the reward asset to recipient. Only the
// bound consumer may call it.
func (r *Reservoir) RequestPayout(caller, recipient common.Address, amount sdkmath.Int) error {
	consumer, bound := r.Consumer()
	if !bound {
		return ErrNotBound
	}
	if caller != consumer {
		return ErrUnauthorized.WithMsg("payout by %s", caller.Hex())
	}
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}

	before := r.Balance()
	if before.LT(amount) {
		return ErrInsufficientReserve.WithMsg("requested %s, available %s", amount, before)
	}

	ok, err := r.reward.Transfer(r.address, recipient, amount)
	if err != nil {
		return types.NewError(types.FundsError, ErrTransferFailed.Code, err)
	}
	if !ok {
		return ErrTransferFailed
	}
	// the reward asset is untrusted as well: it must have moved exactly amount
	if spent := before.Sub(r.Balance()); !spent.Equal(amount) {
		return ErrTransferFailed.WithMsg("balance moved by %s instead of %s", spent, amount)
	}
	return nil
}

// State is the persisted form of a Reservoir.
type State struct {
	Address     common.Address
	Owner       common.Address
	Consumer    common.Address
	RewardAsset common.Address
}

func (r *Reservoir) Export() State {
	return State{
		Address:     r.address,
		Owner:       r.owner,
		Consumer:    r.consumer,
		RewardAsset: r.reward.Address(),
	}
}

// Restore rebuilds a reservoir from its persisted state.
func Restore(st State, reward asset.Asset, j *journal.Journal) *Reservoir {
	r := New(st.Address, st.Owner, reward, j)
	r.consumer = st.Consumer
	return r
}
