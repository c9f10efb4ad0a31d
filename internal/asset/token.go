package asset

import (
	"errors"
	"fmt"
	"maps"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/journal"
)

var (
	ErrInvalidAmount         = errors.New("asset: amount must not be negative")
	ErrInsufficientBalance   = errors.New("asset: transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("asset: transfer amount exceeds allowance")
	ErrZeroAddress           = errors.New("asset: zero address")
)

// Token is an in-process fungible token. Every balance and allowance change is
// recorded in the shared journal so that it rolls back together with the
// ledger state when a transaction reverts.
type Token struct {
	address     common.Address
	symbol      string
	journal     *journal.Journal
	totalSupply sdkmath.Int
	balances    map[common.Address]sdkmath.Int
	allowances  map[common.Address]map[common.Address]sdkmath.Int
}

func newToken(addr common.Address, symbol string, j *journal.Journal) *Token {
	return &Token{
		address:     addr,
		symbol:      symbol,
		journal:     j,
		totalSupply: sdkmath.ZeroInt(),
		balances:    make(map[common.Address]sdkmath.Int),
		allowances:  make(map[common.Address]map[common.Address]sdkmath.Int),
	}
}

func (t *Token) Address() common.Address {
	return t.address
}

func (t *Token) Symbol() string {
	return t.symbol
}

func (t *Token) TotalSupply() sdkmath.Int {
	return t.totalSupply
}

func (t *Token) BalanceOf(owner common.Address) sdkmath.Int {
	if b, ok := t.balances[owner]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (t *Token) Allowance(owner, spender common.Address) sdkmath.Int {
	if a, ok := t.allowances[owner][spender]; ok {
		return a
	}
	return sdkmath.ZeroInt()
}

// Mint credits amount to to. It is the faucet used to seed balances and to top
// up reservoirs.
func (t *Token) Mint(to common.Address, amount sdkmath.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	t.setBalance(to, t.BalanceOf(to).Add(amount))
	t.setTotalSupply(t.totalSupply.Add(amount))
	return nil
}

func (t *Token) Transfer(caller, to common.Address, amount sdkmath.Int) (bool, error) {
	if err := t.move(caller, to, amount); err != nil {
		return false, err
	}
	return true, nil
}

func (t *Token) TransferFrom(caller, from, to common.Address, amount sdkmath.Int) (bool, error) {
	if err := checkAmount(amount); err != nil {
		return false, err
	}
	allowance := t.Allowance(from, caller)
	if caller != from {
		if allowance.LT(amount) {
			return false, fmt.Errorf("%w: %s < %s", ErrInsufficientAllowance, allowance, amount)
		}
	}
	if err := t.move(from, to, amount); err != nil {
		return false, err
	}
	if caller != from {
		t.setAllowance(from, caller, allowance.Sub(amount))
	}
	return true, nil
}

func (t *Token) Approve(caller, spender common.Address, amount sdkmath.Int) (bool, error) {
	if err := checkAmount(amount); err != nil {
		return false, err
	}
	if spender == (common.Address{}) {
		return false, ErrZeroAddress
	}
	t.setAllowance(caller, spender, amount)
	return true, nil
}

func (t *Token) move(from, to common.Address, amount sdkmath.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	balance := t.BalanceOf(from)
	if balance.LT(amount) {
		return fmt.Errorf("%w: %s < %s", ErrInsufficientBalance, balance, amount)
	}
	if from == to {
		return nil
	}
	t.setBalance(from, balance.Sub(amount))
	t.setBalance(to, t.BalanceOf(to).Add(amount))
	return nil
}

// setBalance records value for owner. A zero balance is not stored.
func (t *Token) setBalance(owner common.Address, value sdkmath.Int) {
	prev, existed := t.balances[owner]
	if value.IsZero() {
		delete(t.balances, owner)
	} else {
		t.balances[owner] = value
	}
	t.journal.Append(func() {
		if existed {
			t.balances[owner] = prev
		} else {
			delete(t.balances, owner)
		}
	})
}

// setAllowance records value for (owner, spender). Zero allowances and owners
// left without spenders are not stored.
func (t *Token) setAllowance(owner, spender common.Address, value sdkmath.Int) {
	spenders, ok := t.allowances[owner]
	if !ok {
		if value.IsZero() {
			return
		}
		spenders = make(map[common.Address]sdkmath.Int)
		t.allowances[owner] = spenders
	}
	prev, existed := spenders[spender]
	if value.IsZero() {
		delete(spenders, spender)
		if len(spenders) == 0 {
			delete(t.allowances, owner)
		}
	} else {
		spenders[spender] = value
	}
	t.journal.Append(func() {
		if existed {
			spenders[spender] = prev
			t.allowances[owner] = spenders
		} else {
			delete(spenders, spender)
			if len(spenders) == 0 {
				delete(t.allowances, owner)
			}
		}
	})
}

func (t *Token) setTotalSupply(value sdkmath.Int) {
	prev := t.totalSupply
	t.totalSupply = value
	t.journal.Append(func() { t.totalSupply = prev })
}

// TokenState is the persisted form of a Token.
type TokenState struct {
	Address    common.Address
	Symbol     string
	Balances   map[common.Address]sdkmath.Int
	Allowances map[common.Address]map[common.Address]sdkmath.Int
}

func (t *Token) Export() TokenState {
	balances := maps.Clone(t.balances)
	maps.DeleteFunc(balances, func(_ common.Address, v sdkmath.Int) bool { return v.IsZero() })
	allowances := make(map[common.Address]map[common.Address]sdkmath.Int, len(t.allowances))
	for owner, spenders := range t.allowances {
		kept := maps.Clone(spenders)
		maps.DeleteFunc(kept, func(_ common.Address, v sdkmath.Int) bool { return v.IsZero() })
		if len(kept) > 0 {
			allowances[owner] = kept
		}
	}
	return TokenState{
		Address:    t.address,
		Symbol:     t.symbol,
		Balances:   balances,
		Allowances: allowances,
	}
}

func checkAmount(amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
