package farming

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/types"
)

// reentrantToken calls back into the farm before moving funds and fails the
// transfer with whatever the farm answered.
type reentrantToken struct {
	*asset.Token
	farm    *Farm
	pid     uint64
	reenter func(f *Farm, pid uint64) error
	calls   int
}

func (r *reentrantToken) TransferFrom(caller, from, to common.Address, amount sdkmath.Int) (bool, error) {
	r.calls++
	if err := r.reenter(r.farm, r.pid); err != nil {
		return false, err
	}
	return r.Token.TransferFrom(caller, from, to, amount)
}

// feeToken burns a cut of every transfer into the farm.
type feeToken struct {
	*asset.Token
	sink common.Address
}

func (f feeToken) TransferFrom(caller, from, to common.Address, amount sdkmath.Int) (bool, error) {
	ok, err := f.Token.TransferFrom(caller, from, to, amount)
	if !ok || err != nil {
		return ok, err
	}
	return f.Token.Transfer(to, f.sink, amount.QuoRaw(100))
}

// silentToken reports success and moves nothing.
type silentToken struct {
	*asset.Token
}

func (silentToken) TransferFrom(common.Address, common.Address, common.Address, sdkmath.Int) (bool, error) {
	return true, nil
}

// refusingToken answers false without an error.
type refusingToken struct {
	*asset.Token
}

func (refusingToken) Transfer(common.Address, common.Address, sdkmath.Int) (bool, error) {
	return false, nil
}

func TestReentrantCollateralIsRejected(t *testing.T) {
	tests := []struct {
		name    string
		reenter func(f *Farm, pid uint64) error
	}{
		{
			name: "deposit",
			reenter: func(f *Farm, pid uint64) error {
				return f.Deposit(alice, pid, sdkmath.OneInt())
			},
		},
		{
			name: "withdraw",
			reenter: func(f *Farm, pid uint64) error {
				return f.Withdraw(alice, pid, sdkmath.OneInt())
			},
		},
		{
			name: "emergency withdraw",
			reenter: func(f *Farm, pid uint64) error {
				return f.EmergencyWithdraw(alice, pid)
			},
		},
		{
			name: "checkpoint",
			reenter: func(f *Farm, pid uint64) error {
				return f.Checkpoint(pid)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := newTestFarm(t, constantSchedule(t, ether(1)), ether(1000))
			tok := tf.collateral(t, "EVIL", ether(10), alice)
			hostile := &reentrantToken{Token: tok, farm: tf.Farm, reenter: tt.reenter}
			pid := tf.addPool(t, hostile, sdkmath.NewInt(1))
			hostile.pid = pid

			err := tf.Deposit(alice, pid, ether(1))
			require.ErrorIs(t, err, ErrReentrancy)
			require.ErrorIs(t, err, ErrTransferFailed)
			assert.Equal(t, 1, hostile.calls)

			info, err := tf.UserInfo(pid, alice)
			require.NoError(t, err)
			assertInt(t, sdkmath.ZeroInt(), info.Staked)
			pool, err := tf.PoolInfo(pid)
			require.NoError(t, err)
			assertInt(t, sdkmath.ZeroInt(), pool.TotalStaked)
			assertInt(t, ether(10), tok.BalanceOf(alice))
			require.NoError(t, tf.CheckInvariants())

			// the guard is released after the failed call
			hostile.reenter = func(*Farm, uint64) error { return nil }
			require.NoError(t, tf.Deposit(alice, pid, ether(1)))
		})
	}
}

func TestFeeOnTransferCollateralIsRejected(t *testing.T) {
	tf := newTestFarm(t, constantSchedule(t, ether(1)), ether(1000))
	tok := tf.collateral(t, "FEE", ether(10), alice)
	sink := common.HexToAddress("0xdead")
	pid := tf.addPool(t, feeToken{Token: tok, sink: sink}, sdkmath.NewInt(1))

	err := tf.Deposit(alice, pid, ether(1))
	require.ErrorIs(t, err, ErrTransferFailed)
	assert.Equal(t, types.FundsError, types.KindOf(err))

	assertInt(t, ether(10), tok.BalanceOf(alice))
	assertInt(t, sdkmath.ZeroInt(), tok.BalanceOf(sink))
	assertInt(t, ether(10), tok.Allowance(alice, tf.Address()))
}

func TestLyingCollateralIsRejected(t *testing.T) {
	tf := newTestFarm(t, constantSchedule(t, ether(1)), ether(1000))
	tok := tf.collateral(t, "LIAR", ether(10), alice)
	pid := tf.addPool(t, silentToken{Token: tok}, sdkmath.NewInt(1))

	require.ErrorIs(t, tf.Deposit(alice, pid, ether(1)), ErrTransferFailed)
	info, err := tf.UserInfo(pid, alice)
	require.NoError(t, err)
	assertInt(t, sdkmath.ZeroInt(), info.Staked)
}

func TestRefusedWithdrawalKeepsStake(t *testing.T) {
	tf := newTestFarm(t, constantSchedule(t, ether(1)), ether(1000))
	tok := tf.collateral(t, "STUCK", ether(10), alice)
	pid := tf.addPool(t, refusingToken{Token: tok}, sdkmath.NewInt(1))

	require.NoError(t, tf.Deposit(alice, pid, ether(4)))
	tf.clock.advance(30)

	require.ErrorIs(t, tf.Withdraw(alice, pid, ether(4)), ErrTransferFailed)
	require.ErrorIs(t, tf.EmergencyWithdraw(alice, pid), ErrTransferFailed)

	info, err := tf.UserInfo(pid, alice)
	require.NoError(t, err)
	assertInt(t, ether(4), info.Staked)
	// the reward paid out before the refused transfer is rolled back too
	assertInt(t, sdkmath.ZeroInt(), tf.reward.BalanceOf(alice))
	assertInt(t, ether(1000), tf.reservoir.Balance())
}

// panicToken aborts inside the transfer, as an arithmetic overflow would.
type panicToken struct {
	*asset.Token
}

func (panicToken) TransferFrom(common.Address, common.Address, common.Address, sdkmath.Int) (bool, error) {
	panic("overflow")
}

func TestPanicRevertsCall(t *testing.T) {
	tf := newTestFarm(t, constantSchedule(t, ether(1)), ether(1000))
	tok := tf.collateral(t, "BOOM", ether(10), alice)
	pid := tf.addPool(t, panicToken{Token: tok}, sdkmath.NewInt(1))

	err := tf.Deposit(alice, pid, ether(1))
	require.Error(t, err)
	assert.Equal(t, types.InternalError, types.KindOf(err))

	info, err := tf.UserInfo(pid, alice)
	require.NoError(t, err)
	assertInt(t, sdkmath.ZeroInt(), info.Staked)
	require.NoError(t, tf.Checkpoint(pid))
}
