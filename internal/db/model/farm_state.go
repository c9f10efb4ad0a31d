package model

import (
	"bytes"
	"fmt"
	"slices"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/farming"
	"github.com/lp-farming/farming-core/internal/reservoir"
)

// FarmStateID is the id of the single farm state document.
const FarmStateID = "farm"

// FarmStateDocument is the complete ledger state as of the transaction
// committed with Sequence. Amounts are stored as decimal strings.
type FarmStateDocument struct {
	ID        string            `bson:"_id"`
	Sequence  uint64            `bson:"sequence"`
	UpdatedAt int64             `bson:"updated_at"`
	Farm      FarmDocument      `bson:"farm"`
	Reservoir ReservoirDocument `bson:"reservoir"`
	Tokens    []TokenDocument   `bson:"tokens"`
}

type FarmDocument struct {
	Address         string             `bson:"address"`
	Owner           string             `bson:"owner"`
	RewardAsset     string             `bson:"reward_asset"`
	Reservoir       string             `bson:"reservoir,omitempty"`
	StartTime       uint64             `bson:"start_time"`
	TotalAllocPoint string             `bson:"total_alloc_point"`
	Pools           []PoolDocument     `bson:"pools"`
	Positions       []PositionDocument `bson:"positions"`
}

type PoolDocument struct {
	ID                 uint64 `bson:"id"`
	Asset              string `bson:"asset"`
	AllocPoint         string `bson:"alloc_point"`
	LastCheckpointTime uint64 `bson:"last_checkpoint_time"`
	AccRewardPerShare  string `bson:"acc_reward_per_share"`
	TotalStaked        string `bson:"total_staked"`
}

type PositionDocument struct {
	PoolID     uint64 `bson:"pool_id"`
	User       string `bson:"user"`
	Staked     string `bson:"staked"`
	RewardDebt string `bson:"reward_debt"`
}

type ReservoirDocument struct {
	Address     string `bson:"address"`
	Owner       string `bson:"owner"`
	Consumer    string `bson:"consumer,omitempty"`
	RewardAsset string `bson:"reward_asset"`
}

type TokenDocument struct {
	Address    string              `bson:"address"`
	Symbol     string              `bson:"symbol"`
	Balances   []BalanceDocument   `bson:"balances"`
	Allowances []AllowanceDocument `bson:"allowances"`
}

type BalanceDocument struct {
	Owner  string `bson:"owner"`
	Amount string `bson:"amount"`
}

type AllowanceDocument struct {
	Owner   string `bson:"owner"`
	Spender string `bson:"spender"`
	Amount  string `bson:"amount"`
}

func NewFarmStateDocument(
	sequence uint64, updatedAt int64,
	farm farming.Snapshot, res reservoir.State, tokens []asset.TokenState,
) *FarmStateDocument {
	doc := &FarmStateDocument{
		ID:        FarmStateID,
		Sequence:  sequence,
		UpdatedAt: updatedAt,
		Farm: FarmDocument{
			Address:         farm.Address.Hex(),
			Owner:           farm.Owner.Hex(),
			RewardAsset:     farm.RewardAsset.Hex(),
			StartTime:       farm.StartTime,
			TotalAllocPoint: farm.TotalAllocPoint.String(),
			Pools:           make([]PoolDocument, 0, len(farm.Pools)),
			Positions:       make([]PositionDocument, 0, len(farm.Positions)),
		},
		Reservoir: ReservoirDocument{
			Address:     res.Address.Hex(),
			Owner:       res.Owner.Hex(),
			RewardAsset: res.RewardAsset.Hex(),
		},
		Tokens: make([]TokenDocument, 0, len(tokens)),
	}
	if farm.Reservoir != (common.Address{}) {
		doc.Farm.Reservoir = farm.Reservoir.Hex()
	}
	if res.Consumer != (common.Address{}) {
		doc.Reservoir.Consumer = res.Consumer.Hex()
	}

	for _, p := range farm.Pools {
		doc.Farm.Pools = append(doc.Farm.Pools, PoolDocument{
			ID:                 p.ID,
			Asset:              p.Asset.Hex(),
			AllocPoint:         p.AllocPoint.String(),
			LastCheckpointTime: p.LastCheckpointTime,
			AccRewardPerShare:  p.AccRewardPerShare.String(),
			TotalStaked:        p.TotalStaked.String(),
		})
	}
	for _, pos := range farm.Positions {
		doc.Farm.Positions = append(doc.Farm.Positions, PositionDocument{
			PoolID:     pos.PoolID,
			User:       pos.User.Hex(),
			Staked:     pos.Staked.String(),
			RewardDebt: pos.RewardDebt.String(),
		})
	}

	for _, t := range tokens {
		td := TokenDocument{
			Address:    t.Address.Hex(),
			Symbol:     t.Symbol,
			Balances:   make([]BalanceDocument, 0, len(t.Balances)),
			Allowances: []AllowanceDocument{},
		}
		for _, owner := range sortedAddresses(t.Balances) {
			td.Balances = append(td.Balances, BalanceDocument{
				Owner:  owner.Hex(),
				Amount: t.Balances[owner].String(),
			})
		}
		for _, owner := range sortedAddresses(t.Allowances) {
			spenders := t.Allowances[owner]
			for _, spender := range sortedAddresses(spenders) {
				td.Allowances = append(td.Allowances, AllowanceDocument{
					Owner:   owner.Hex(),
					Spender: spender.Hex(),
					Amount:  spenders[spender].String(),
				})
			}
		}
		doc.Tokens = append(doc.Tokens, td)
	}

	return doc
}

func (d *FarmStateDocument) FarmSnapshot() (farming.Snapshot, error) {
	snap := farming.Snapshot{
		Address:     common.HexToAddress(d.Farm.Address),
		Owner:       common.HexToAddress(d.Farm.Owner),
		RewardAsset: common.HexToAddress(d.Farm.RewardAsset),
		StartTime:   d.Farm.StartTime,
	}
	if d.Farm.Reservoir != "" {
		snap.Reservoir = common.HexToAddress(d.Farm.Reservoir)
	}

	var err error
	if snap.TotalAllocPoint, err = parseInt("total alloc point", d.Farm.TotalAllocPoint); err != nil {
		return farming.Snapshot{}, err
	}

	for _, p := range d.Farm.Pools {
		info := farming.PoolInfo{
			ID:                 p.ID,
			Asset:              common.HexToAddress(p.Asset),
			LastCheckpointTime: p.LastCheckpointTime,
		}
		if info.AllocPoint, err = parseInt("alloc point", p.AllocPoint); err != nil {
			return farming.Snapshot{}, err
		}
		if info.AccRewardPerShare, err = parseInt("acc reward per share", p.AccRewardPerShare); err != nil {
			return farming.Snapshot{}, err
		}
		if info.TotalStaked, err = parseInt("total staked", p.TotalStaked); err != nil {
			return farming.Snapshot{}, err
		}
		snap.Pools = append(snap.Pools, info)
	}

	for _, pos := range d.Farm.Positions {
		position := farming.Position{
			PoolID: pos.PoolID,
			User:   common.HexToAddress(pos.User),
		}
		if position.Staked, err = parseInt("staked", pos.Staked); err != nil {
			return farming.Snapshot{}, err
		}
		if position.RewardDebt, err = parseInt("reward debt", pos.RewardDebt); err != nil {
			return farming.Snapshot{}, err
		}
		snap.Positions = append(snap.Positions, position)
	}

	return snap, nil
}

func (d *FarmStateDocument) ReservoirState() reservoir.State {
	st := reservoir.State{
		Address:     common.HexToAddress(d.Reservoir.Address),
		Owner:       common.HexToAddress(d.Reservoir.Owner),
		RewardAsset: common.HexToAddress(d.Reservoir.RewardAsset),
	}
	if d.Reservoir.Consumer != "" {
		st.Consumer = common.HexToAddress(d.Reservoir.Consumer)
	}
	return st
}

func (d *FarmStateDocument) TokenStates() ([]asset.TokenState, error) {
	states := make([]asset.TokenState, 0, len(d.Tokens))
	for _, td := range d.Tokens {
		st := asset.TokenState{
			Address:    common.HexToAddress(td.Address),
			Symbol:     td.Symbol,
			Balances:   make(map[common.Address]sdkmath.Int, len(td.Balances)),
			Allowances: make(map[common.Address]map[common.Address]sdkmath.Int),
		}
		for _, b := range td.Balances {
			amount, err := parseInt(td.Symbol+" balance", b.Amount)
			if err != nil {
				return nil, err
			}
			st.Balances[common.HexToAddress(b.Owner)] = amount
		}
		for _, a := range td.Allowances {
			amount, err := parseInt(td.Symbol+" allowance", a.Amount)
			if err != nil {
				return nil, err
			}
			owner := common.HexToAddress(a.Owner)
			if st.Allowances[owner] == nil {
				st.Allowances[owner] = make(map[common.Address]sdkmath.Int)
			}
			st.Allowances[owner][common.HexToAddress(a.Spender)] = amount
		}
		states = append(states, st)
	}
	return states, nil
}

func parseInt(field, value string) (sdkmath.Int, error) {
	v, ok := sdkmath.NewIntFromString(value)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid %s %q", field, value)
	}
	return v, nil
}

func sortedAddresses[V any](m map[common.Address]V) []common.Address {
	out := make([]common.Address, 0, len(m))
	for addr := range m {
		out = append(out, addr)
	}
	slices.SortFunc(out, func(a, b common.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return out
}
