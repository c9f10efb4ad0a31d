package asset

import (
	"fmt"
	"slices"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/lp-farming/farming-core/internal/journal"
)

// Bank hosts the in-process tokens of a deployment and resolves them by
// address.
type Bank struct {
	journal *journal.Journal
	tokens  map[common.Address]*Token
}

func NewBank(j *journal.Journal) *Bank {
	return &Bank{
		journal: j,
		tokens:  make(map[common.Address]*Token),
	}
}

// TokenAddress derives the deterministic address of the token named symbol.
func TokenAddress(symbol string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("token:" + strings.ToUpper(symbol))))
}

// Register creates the token named symbol, or returns it when it already
// exists. Creation is journaled like any balance change.
func (b *Bank) Register(symbol string) *Token {
	addr := TokenAddress(symbol)
	if t, ok := b.tokens[addr]; ok {
		return t
	}
	t := newToken(addr, strings.ToUpper(symbol), b.journal)
	b.tokens[addr] = t
	b.journal.Append(func() { delete(b.tokens, addr) })
	return t
}

func (b *Bank) Token(addr common.Address) (*Token, bool) {
	t, ok := b.tokens[addr]
	return t, ok
}

func (b *Bank) Asset(addr common.Address) (Asset, bool) {
	t, ok := b.tokens[addr]
	if !ok {
		return nil, false
	}
	return t, true
}

// Tokens returns the registered tokens ordered by address.
func (b *Bank) Tokens() []*Token {
	out := make([]*Token, 0, len(b.tokens))
	for _, t := range b.tokens {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Token) int {
		return a.address.Cmp(b.address)
	})
	return out
}

func (b *Bank) Export() []TokenState {
	tokens := b.Tokens()
	states := make([]TokenState, 0, len(tokens))
	for _, t := range tokens {
		states = append(states, t.Export())
	}
	return states
}

// Restore replaces the bank content with the persisted token states.
func (b *Bank) Restore(states []TokenState) error {
	tokens := make(map[common.Address]*Token, len(states))
	for _, st := range states {
		if st.Address != TokenAddress(st.Symbol) {
			return fmt.Errorf("token %s does not match address %s", st.Symbol, st.Address.Hex())
		}
		t := newToken(st.Address, st.Symbol, b.journal)
		for owner, balance := range st.Balances {
			if balance.IsNil() || balance.IsNegative() {
				return fmt.Errorf("token %s: invalid balance for %s", st.Symbol, owner.Hex())
			}
			t.balances[owner] = balance
			t.totalSupply = t.totalSupply.Add(balance)
		}
		for owner, spenders := range st.Allowances {
			t.allowances[owner] = make(map[common.Address]sdkmath.Int, len(spenders))
			for spender, amount := range spenders {
				t.allowances[owner][spender] = amount
			}
		}
		tokens[st.Address] = t
	}
	b.tokens = tokens
	return nil
}
