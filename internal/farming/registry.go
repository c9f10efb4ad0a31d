package farming

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/types"
)

// Deposit settles the caller's pending reward in pool pid and stakes amount
// more collateral. A zero amount only harvests.
func (f *Farm) Deposit(caller common.Address, pid uint64, amount sdkmath.Int) error {
	return f.atomic("deposit", func() error {
		if !validAmount(amount) {
			return ErrInvalidAmount
		}
		p, err := f.pool(pid)
		if err != nil {
			return err
		}

		f.checkpoint(p, f.now())
		// nothing to harvest and nothing to stake
		if amount.IsZero() && f.userOf(pid, caller) == nil {
			return nil
		}
		u := f.ensureUser(pid, caller)
		reward := pendingOf(u.Staked, u.RewardDebt, p.AccRewardPerShare)

		f.saveUser(u)
		if amount.IsPositive() {
			f.savePool(p)
			u.Staked = u.Staked.Add(amount)
			p.TotalStaked = p.TotalStaked.Add(amount)
		}
		u.RewardDebt = accrued(u.Staked, p.AccRewardPerShare)

		if err := f.payout(pid, caller, reward); err != nil {
			return err
		}
		if amount.IsPositive() {
			if err := f.pull(p, caller, amount); err != nil {
				return err
			}
		}

		f.emit(Event{
			Type:   types.EventDeposited,
			PoolID: pid,
			User:   caller,
			Asset:  p.Asset,
			Amount: amount,
		})
		return nil
	})
}

// Withdraw settles the caller's pending reward in pool pid and returns amount
// of staked collateral. A zero amount only harvests.
func (f *Farm) Withdraw(caller common.Address, pid uint64, amount sdkmath.Int) error {
	return f.atomic("withdraw", func() error {
		if !validAmount(amount) {
			return ErrInvalidAmount
		}
		p, err := f.pool(pid)
		if err != nil {
			return err
		}
		u := f.userOf(pid, caller)
		staked := sdkmath.ZeroInt()
		if u != nil {
			staked = u.Staked
		}
		if amount.GT(staked) {
			return ErrInsufficientStake.WithMsg("staked %s, requested %s", staked, amount)
		}

		f.checkpoint(p, f.now())
		if u == nil {
			return nil
		}
		reward := pendingOf(u.Staked, u.RewardDebt, p.AccRewardPerShare)

		f.saveUser(u)
		if amount.IsPositive() {
			f.savePool(p)
			u.Staked = u.Staked.Sub(amount)
			p.TotalStaked = p.TotalStaked.Sub(amount)
		}
		u.RewardDebt = accrued(u.Staked, p.AccRewardPerShare)

		if err := f.payout(pid, caller, reward); err != nil {
			return err
		}
		if amount.IsPositive() {
			if err := f.push(p, caller, amount); err != nil {
				return err
			}
		}

		f.emit(Event{
			Type:   types.EventWithdrawn,
			PoolID: pid,
			User:   caller,
			Asset:  p.Asset,
			Amount: amount,
		})
		return nil
	})
}

// EmergencyWithdraw returns the caller's whole stake in pool pid and forfeits
// the pending reward. It never touches the emission or the reservoir, so it
// keeps working when either is broken.
func (f *Farm) EmergencyWithdraw(caller common.Address, pid uint64) error {
	return f.atomic("emergency withdraw", func() error {
		p, err := f.pool(pid)
		if err != nil {
			return err
		}
		u := f.userOf(pid, caller)
		if u == nil || u.Staked.IsZero() {
			return nil
		}

		amount := u.Staked
		f.saveUser(u)
		f.savePool(p)
		u.Staked = sdkmath.ZeroInt()
		u.RewardDebt = sdkmath.ZeroInt()
		p.TotalStaked = p.TotalStaked.Sub(amount)

		if err := f.push(p, caller, amount); err != nil {
			return err
		}

		f.emit(Event{
			Type:   types.EventEmergencyWithdrawn,
			PoolID: pid,
			User:   caller,
			Asset:  p.Asset,
			Amount: amount,
		})
		return nil
	})
}

func (f *Farm) payout(pid uint64, user common.Address, reward sdkmath.Int) error {
	if !reward.IsPositive() {
		return nil
	}
	if f.reservoir == nil {
		return ErrReservoirNotBound.WithMsg("%s owed to %s", reward, user.Hex())
	}
	if err := f.reservoir.RequestPayout(f.address, user, reward); err != nil {
		return err
	}
	f.emit(Event{
		Type:   types.EventRewardPaid,
		PoolID: pid,
		User:   user,
		Asset:  f.reward.Address(),
		Amount: reward,
	})
	return nil
}

// pull moves amount of collateral from user into the farm and checks the
// farm received exactly that much.
func (f *Farm) pull(p *pool, user common.Address, amount sdkmath.Int) error {
	before := p.asset.BalanceOf(f.address)
	ok, err := p.asset.TransferFrom(f.address, user, f.address, amount)
	if err != nil {
		return types.NewError(types.FundsError, ErrTransferFailed.Code, err)
	}
	if !ok {
		return ErrTransferFailed.WithMsg("deposit into pool %d refused", p.ID)
	}
	if received := p.asset.BalanceOf(f.address).Sub(before); !received.Equal(amount) {
		return ErrTransferFailed.WithMsg("pool %d received %s, expected %s", p.ID, received, amount)
	}
	return nil
}

// push returns amount of collateral from the farm to user.
func (f *Farm) push(p *pool, user common.Address, amount sdkmath.Int) error {
	before := p.asset.BalanceOf(f.address)
	ok, err := p.asset.Transfer(f.address, user, amount)
	if err != nil {
		return types.NewError(types.FundsError, ErrTransferFailed.Code, err)
	}
	if !ok {
		return ErrTransferFailed.WithMsg("withdraw from pool %d refused", p.ID)
	}
	if sent := before.Sub(p.asset.BalanceOf(f.address)); !sent.Equal(amount) {
		return ErrTransferFailed.WithMsg("pool %d sent %s, expected %s", p.ID, sent, amount)
	}
	return nil
}
