package farming

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/types"
)

// accAt returns the accumulator pool p would hold after a checkpoint at now.
func (f *Farm) accAt(p *pool, now uint64) sdkmath.Int {
	if now <= p.LastCheckpointTime || p.TotalStaked.IsZero() || f.totalAllocPoint.IsZero() {
		return p.AccRewardPerShare
	}
	emitted := f.schedule.Integrate(p.LastCheckpointTime-f.start, now-f.start)
	share := emitted.Mul(p.AllocPoint).Quo(f.totalAllocPoint)
	return p.AccRewardPerShare.Add(share.Mul(Precision).Quo(p.TotalStaked))
}

// checkpoint folds the emission accrued since the last checkpoint into the
// accumulator. With nothing staked the interval is skipped, not banked.
func (f *Farm) checkpoint(p *pool, now uint64) {
	if now <= p.LastCheckpointTime {
		return
	}
	acc := f.accAt(p, now)
	f.savePool(p)
	grew := acc.GT(p.AccRewardPerShare)
	p.AccRewardPerShare = acc
	p.LastCheckpointTime = now
	if grew {
		f.emit(Event{
			Type:              types.EventCheckpointed,
			PoolID:            p.ID,
			Asset:             p.asset.Address(),
			AccRewardPerShare: acc,
		})
	}
}

func (f *Farm) checkpointAll(now uint64) {
	for _, p := range f.pools {
		f.checkpoint(p, now)
	}
}

func (f *Farm) onlyOwner(caller common.Address, op string) error {
	if caller != f.owner {
		return ErrUnauthorized.WithMsg("%s by %s", op, caller.Hex())
	}
	return nil
}

// AddPool registers a pool for collateral a with the given allocation. All
// pools are checkpointed first so past emission is split by the old weights.
func (f *Farm) AddPool(caller common.Address, a asset.Asset, allocPoint sdkmath.Int) (uint64, error) {
	var pid uint64
	err := f.atomic("add pool", func() error {
		if err := f.onlyOwner(caller, "add pool"); err != nil {
			return err
		}
		if a == nil || a.Address() == (common.Address{}) {
			return ErrInvalidAsset
		}
		if !validAmount(allocPoint) {
			return ErrInvalidAllocPoint
		}
		for _, p := range f.pools {
			if p.Asset == a.Address() {
				return ErrPoolExists.WithMsg("%s is pool %d", a.Address().Hex(), p.ID)
			}
		}

		now := f.now()
		f.checkpointAll(now)

		last := now
		if last < f.start {
			last = f.start
		}
		pid = uint64(len(f.pools))
		f.pools = append(f.pools, &pool{
			PoolInfo: PoolInfo{
				ID:                 pid,
				Asset:              a.Address(),
				AllocPoint:         allocPoint,
				LastCheckpointTime: last,
				AccRewardPerShare:  sdkmath.ZeroInt(),
				TotalStaked:        sdkmath.ZeroInt(),
			},
			asset: a,
		})
		f.users = append(f.users, make(map[common.Address]*UserInfo))
		f.journal.Append(func() {
			f.pools = f.pools[:pid]
			f.users = f.users[:pid]
		})
		f.setTotalAllocPoint(f.totalAllocPoint.Add(allocPoint))

		f.emit(Event{
			Type:       types.EventPoolAdded,
			PoolID:     pid,
			Asset:      a.Address(),
			AllocPoint: allocPoint,
		})
		return nil
	})
	return pid, err
}

// SetAllocPoint changes the weight of pool pid after checkpointing every
// pool under the old weights.
func (f *Farm) SetAllocPoint(caller common.Address, pid uint64, allocPoint sdkmath.Int) error {
	return f.atomic("set alloc point", func() error {
		if err := f.onlyOwner(caller, "set alloc point"); err != nil {
			return err
		}
		p, err := f.pool(pid)
		if err != nil {
			return err
		}
		if !validAmount(allocPoint) {
			return ErrInvalidAllocPoint
		}

		f.checkpointAll(f.now())

		f.setTotalAllocPoint(f.totalAllocPoint.Sub(p.AllocPoint).Add(allocPoint))
		f.savePool(p)
		p.AllocPoint = allocPoint

		f.emit(Event{
			Type:       types.EventAllocPointSet,
			PoolID:     pid,
			Asset:      p.Asset,
			AllocPoint: allocPoint,
		})
		return nil
	})
}

// Checkpoint brings pool pid up to date. Anyone may call it; calling it twice
// at the same time changes nothing.
func (f *Farm) Checkpoint(pid uint64) error {
	return f.atomic("checkpoint", func() error {
		p, err := f.pool(pid)
		if err != nil {
			return err
		}
		f.checkpoint(p, f.now())
		return nil
	})
}

func (f *Farm) CheckpointAll() error {
	return f.atomic("checkpoint all", func() error {
		f.checkpointAll(f.now())
		return nil
	})
}

// BindReservoir sets the payer of rewards. It can be done once.
func (f *Farm) BindReservoir(caller common.Address, r Payer) error {
	return f.atomic("bind reservoir", func() error {
		if err := f.onlyOwner(caller, "bind reservoir"); err != nil {
			return err
		}
		if r == nil || r.Address() == (common.Address{}) {
			return ErrInvalidReservoir
		}
		if r.RewardAsset() == nil || r.RewardAsset().Address() != f.reward.Address() {
			return ErrInvalidReservoir.WithMsg("reservoir pays a different asset")
		}
		if f.reservoir != nil {
			return ErrAlreadyBound
		}

		f.reservoir = r
		f.journal.Append(func() { f.reservoir = nil })

		f.emit(Event{
			Type:  types.EventReservoirBound,
			User:  r.Address(),
			Asset: f.reward.Address(),
		})
		return nil
	})
}
