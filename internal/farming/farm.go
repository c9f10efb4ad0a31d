package farming

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/emission"
	"github.com/lp-farming/farming-core/internal/journal"
	"github.com/lp-farming/farming-core/internal/types"
)

// Payer releases reward inventory on behalf of the farm.
type Payer interface {
	Address() common.Address
	RewardAsset() asset.Asset
	RequestPayout(caller, recipient common.Address, amount sdkmath.Int) error
}

// Clock returns the current time in unix seconds.
type Clock interface {
	Now() uint64
}

type ClockFunc func() uint64

func (f ClockFunc) Now() uint64 {
	return f()
}

var SystemClock Clock = ClockFunc(func() uint64 {
	return uint64(time.Now().Unix())
})

type Config struct {
	// Address is the account holding staked collateral.
	Address     common.Address
	Owner       common.Address
	RewardAsset asset.Asset
	Schedule    *emission.Schedule
	// StartTime is the unix time emission begins. Schedule offsets are
	// relative to it.
	StartTime uint64
	Clock     Clock
	Journal   *journal.Journal
}

// PoolInfo is the accounting record of one pool.
type PoolInfo struct {
	ID                 uint64
	Asset              common.Address
	AllocPoint         sdkmath.Int
	LastCheckpointTime uint64
	AccRewardPerShare  sdkmath.Int
	TotalStaked        sdkmath.Int
}

// UserInfo is a user's position in one pool.
type UserInfo struct {
	Staked     sdkmath.Int
	RewardDebt sdkmath.Int
}

type pool struct {
	PoolInfo
	asset asset.Asset
}

// Farm is the reward ledger and stake registry. Every mutating call either
// fully applies or leaves no trace, including on the collateral and reward
// assets sharing its journal.
//
// A Farm is not safe for concurrent use; callers serialize access.
type Farm struct {
	address  common.Address
	owner    common.Address
	reward   asset.Asset
	schedule *emission.Schedule
	start    uint64
	clock    Clock
	journal  *journal.Journal

	pools           []*pool
	users           []map[common.Address]*UserInfo
	totalAllocPoint sdkmath.Int
	reservoir       Payer

	entered bool
	events  []Event
}

func New(cfg Config) (*Farm, error) {
	if cfg.RewardAsset == nil {
		return nil, ErrInvalidAsset.WithMsg("reward asset is required")
	}
	if cfg.Schedule == nil {
		return nil, types.NewErrorWithMsg(types.ValidationError, "INVALID_SCHEDULE", "farming: emission schedule is required")
	}
	if cfg.Owner == (common.Address{}) || cfg.Address == (common.Address{}) {
		return nil, types.NewErrorWithMsg(types.ValidationError, "INVALID_ADDRESS", "farming: owner and farm address are required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock
	}
	j := cfg.Journal
	if j == nil {
		j = journal.New()
	}

	return &Farm{
		address:         cfg.Address,
		owner:           cfg.Owner,
		reward:          cfg.RewardAsset,
		schedule:        cfg.Schedule,
		start:           cfg.StartTime,
		clock:           clock,
		journal:         j,
		totalAllocPoint: sdkmath.ZeroInt(),
	}, nil
}

// atomic runs fn as a single all-or-nothing call. Reentrant calls are
// rejected, panics (such as arithmetic overflow) become internal errors, and
// any failure rewinds the journal and drops the events fn produced.
func (f *Farm) atomic(op string, fn func() error) (err error) {
	if f.entered {
		return ErrReentrancy.WithMsg("%s", op)
	}
	f.entered = true
	revision := f.journal.Begin()
	emitted := len(f.events)

	defer func() {
		if r := recover(); r != nil {
			err = aborted(op, r)
		}
		if err != nil {
			f.journal.Rollback(revision)
			clear(f.events[emitted:])
			f.events = f.events[:emitted]
		} else {
			f.journal.Commit()
		}
		f.entered = false
	}()

	return fn()
}

func aborted(op string, r any) error {
	return types.NewInternalError(fmt.Errorf("farming: %s aborted: %v", op, r))
}

// recoverQuery turns a panic in a read-only call into an internal error.
func recoverQuery(op string, err *error) {
	if r := recover(); r != nil {
		*err = aborted(op, r)
	}
}

func (f *Farm) now() uint64 {
	return f.clock.Now()
}

func (f *Farm) pool(pid uint64) (*pool, error) {
	if pid >= uint64(len(f.pools)) {
		return nil, ErrUnknownPool.WithMsg("pool %d", pid)
	}
	return f.pools[pid], nil
}

func (f *Farm) savePool(p *pool) {
	prev := p.PoolInfo
	f.journal.Append(func() { p.PoolInfo = prev })
}

func (f *Farm) saveUser(u *UserInfo) {
	prev := *u
	f.journal.Append(func() { *u = prev })
}

func (f *Farm) setTotalAllocPoint(v sdkmath.Int) {
	prev := f.totalAllocPoint
	f.totalAllocPoint = v
	f.journal.Append(func() { f.totalAllocPoint = prev })
}

// userOf returns the position of user in pool pid, nil if none exists.
func (f *Farm) userOf(pid uint64, user common.Address) *UserInfo {
	return f.users[pid][user]
}

// ensureUser returns the position of user in pool pid, creating it.
func (f *Farm) ensureUser(pid uint64, user common.Address) *UserInfo {
	if u, ok := f.users[pid][user]; ok {
		return u
	}
	u := &UserInfo{Staked: sdkmath.ZeroInt(), RewardDebt: sdkmath.ZeroInt()}
	positions := f.users[pid]
	positions[user] = u
	f.journal.Append(func() { delete(positions, user) })
	return u
}

func (f *Farm) emit(e Event) {
	e.Time = f.now()
	f.events = append(f.events, e)
}

// DrainEvents hands over the events of committed calls and forgets them.
func (f *Farm) DrainEvents() []Event {
	events := f.events
	f.events = nil
	return events
}

func (f *Farm) Address() common.Address {
	return f.address
}

func (f *Farm) Owner() common.Address {
	return f.owner
}

func (f *Farm) RewardAsset() asset.Asset {
	return f.reward
}

func (f *Farm) StartTime() uint64 {
	return f.start
}

func (f *Farm) Schedule() *emission.Schedule {
	return f.schedule
}

func (f *Farm) TotalAllocPoint() sdkmath.Int {
	return f.totalAllocPoint
}

// Reservoir returns the bound payer, nil before binding.
func (f *Farm) Reservoir() Payer {
	return f.reservoir
}

func (f *Farm) PoolCount() uint64 {
	return uint64(len(f.pools))
}

func (f *Farm) PoolInfo(pid uint64) (PoolInfo, error) {
	p, err := f.pool(pid)
	if err != nil {
		return PoolInfo{}, err
	}
	return p.PoolInfo, nil
}

func (f *Farm) Pools() []PoolInfo {
	infos := make([]PoolInfo, 0, len(f.pools))
	for _, p := range f.pools {
		infos = append(infos, p.PoolInfo)
	}
	return infos
}

// PoolAsset returns the collateral asset of pool pid.
func (f *Farm) PoolAsset(pid uint64) (asset.Asset, error) {
	p, err := f.pool(pid)
	if err != nil {
		return nil, err
	}
	return p.asset, nil
}

// UserInfo returns the position of user in pool pid. Users who never
// deposited hold a zero position.
func (f *Farm) UserInfo(pid uint64, user common.Address) (UserInfo, error) {
	if _, err := f.pool(pid); err != nil {
		return UserInfo{}, err
	}
	if u := f.userOf(pid, user); u != nil {
		return *u, nil
	}
	return UserInfo{Staked: sdkmath.ZeroInt(), RewardDebt: sdkmath.ZeroInt()}, nil
}

// PendingTokens is the reward user would receive if pool pid were
// checkpointed now. It does not mutate state.
func (f *Farm) PendingTokens(pid uint64, user common.Address) (pending sdkmath.Int, err error) {
	defer recoverQuery("pending tokens", &err)
	p, err := f.pool(pid)
	if err != nil {
		return sdkmath.Int{}, err
	}
	u := f.userOf(pid, user)
	if u == nil {
		return sdkmath.ZeroInt(), nil
	}
	return pendingOf(u.Staked, u.RewardDebt, f.accAt(p, f.now())), nil
}
