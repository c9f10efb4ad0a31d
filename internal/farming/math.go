package farming

import sdkmath "cosmossdk.io/math"

// Precision scales accRewardPerShare.
var Precision = sdkmath.NewIntWithDecimal(1, 12)

// accrued is the reward entitled to staked at accumulator value acc.
func accrued(staked, acc sdkmath.Int) sdkmath.Int {
	return staked.Mul(acc).Quo(Precision)
}

// pendingOf returns staked*acc/Precision - debt. A negative difference would
// mean a broken invariant; it is reported as nothing owed.
func pendingOf(staked, debt, acc sdkmath.Int) sdkmath.Int {
	pending := accrued(staked, acc).Sub(debt)
	if pending.IsNegative() {
		return sdkmath.ZeroInt()
	}
	return pending
}

func validAmount(amount sdkmath.Int) bool {
	return !amount.IsNil() && !amount.IsNegative()
}
