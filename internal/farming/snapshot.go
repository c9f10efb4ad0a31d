package farming

import (
	"bytes"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/types"
)

type Position struct {
	PoolID     uint64
	User       common.Address
	Staked     sdkmath.Int
	RewardDebt sdkmath.Int
}

// Snapshot is the full accounting state of a farm.
type Snapshot struct {
	Address         common.Address
	Owner           common.Address
	RewardAsset     common.Address
	Reservoir       common.Address
	StartTime       uint64
	TotalAllocPoint sdkmath.Int
	Pools           []PoolInfo
	Positions       []Position
}

func (f *Farm) Export() Snapshot {
	snap := Snapshot{
		Address:         f.address,
		Owner:           f.owner,
		RewardAsset:     f.reward.Address(),
		StartTime:       f.start,
		TotalAllocPoint: f.totalAllocPoint,
		Pools:           f.Pools(),
	}
	if f.reservoir != nil {
		snap.Reservoir = f.reservoir.Address()
	}
	for pid, positions := range f.users {
		users := make([]common.Address, 0, len(positions))
		for user := range positions {
			users = append(users, user)
		}
		sort.Slice(users, func(i, j int) bool {
			return bytes.Compare(users[i][:], users[j][:]) < 0
		})
		for _, user := range users {
			u := positions[user]
			// an empty position reads the same as a missing one
			if u.Staked.IsZero() && u.RewardDebt.IsZero() {
				continue
			}
			snap.Positions = append(snap.Positions, Position{
				PoolID:     uint64(pid),
				User:       user,
				Staked:     u.Staked,
				RewardDebt: u.RewardDebt,
			})
		}
	}
	return snap
}

// Restore rebuilds a farm from snap. cfg supplies what a snapshot does not
// carry: the schedule, clock, journal and the reward asset itself. Collateral
// assets are looked up through assets and the payer, if any, must match the
// recorded reservoir address.
func Restore(cfg Config, snap Snapshot, assets asset.Resolver, payer Payer) (*Farm, error) {
	cfg.Address = snap.Address
	cfg.Owner = snap.Owner
	cfg.StartTime = snap.StartTime
	f, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if f.reward.Address() != snap.RewardAsset {
		return nil, ErrInvalidAsset.WithMsg("snapshot pays %s, configured %s", snap.RewardAsset.Hex(), f.reward.Address().Hex())
	}

	total := sdkmath.ZeroInt()
	for i, info := range snap.Pools {
		if info.ID != uint64(i) {
			return nil, corrupt("pool %d stored at index %d", info.ID, i)
		}
		a, ok := assets.Asset(info.Asset)
		if !ok {
			return nil, ErrInvalidAsset.WithMsg("pool %d asset %s unknown", info.ID, info.Asset.Hex())
		}
		f.pools = append(f.pools, &pool{PoolInfo: info, asset: a})
		f.users = append(f.users, make(map[common.Address]*UserInfo))
		total = total.Add(info.AllocPoint)
	}
	if !total.Equal(snap.TotalAllocPoint) {
		return nil, corrupt("total alloc point %s, pools sum to %s", snap.TotalAllocPoint, total)
	}
	f.totalAllocPoint = snap.TotalAllocPoint

	for _, pos := range snap.Positions {
		if pos.PoolID >= uint64(len(f.users)) {
			return nil, corrupt("position of %s in unknown pool %d", pos.User.Hex(), pos.PoolID)
		}
		f.users[pos.PoolID][pos.User] = &UserInfo{Staked: pos.Staked, RewardDebt: pos.RewardDebt}
	}

	switch {
	case snap.Reservoir == (common.Address{}):
	case payer == nil || payer.Address() != snap.Reservoir:
		return nil, ErrInvalidReservoir.WithMsg("snapshot bound to %s", snap.Reservoir.Hex())
	default:
		f.reservoir = payer
	}

	if err := f.CheckInvariants(); err != nil {
		return nil, err
	}
	return f, nil
}

// CheckInvariants verifies the accounting identities of the farm: allocation
// points and stakes sum to their pool totals and every pool's collateral is
// actually held by the farm.
func (f *Farm) CheckInvariants() error {
	total := sdkmath.ZeroInt()
	for pid, p := range f.pools {
		total = total.Add(p.AllocPoint)

		staked := sdkmath.ZeroInt()
		for _, u := range f.users[pid] {
			staked = staked.Add(u.Staked)
		}
		if !staked.Equal(p.TotalStaked) {
			return corrupt("pool %d total staked %s, positions sum to %s", pid, p.TotalStaked, staked)
		}
		if held := p.asset.BalanceOf(f.address); held.LT(p.TotalStaked) {
			return corrupt("pool %d holds %s of %s staked", pid, held, p.TotalStaked)
		}
	}
	if !total.Equal(f.totalAllocPoint) {
		return corrupt("total alloc point %s, pools sum to %s", f.totalAllocPoint, total)
	}
	return nil
}

func corrupt(format string, args ...any) error {
	return types.NewInternalError(fmt.Errorf("farming: inconsistent state: "+format, args...))
}
