package services

import (
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lp-farming/farming-core/internal/config"
	"github.com/lp-farming/farming-core/internal/db"
	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/farming"
	"github.com/lp-farming/farming-core/internal/reservoir"
	"github.com/lp-farming/farming-core/internal/types"
	"github.com/lp-farming/farming-core/pkg"
	"github.com/lp-farming/farming-core/testutil"
	"github.com/lp-farming/farming-core/testutil/mocks"
)

const start = 1_700_000_000

var (
	owner = common.HexToAddress("0x000000000000000000000000000000000000aaaa")
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func ether(n int64) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(n, 18)
}

func assertInt(t *testing.T, expected, actual sdkmath.Int, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, expected.String(), actual.String(), msgAndArgs...)
}

type manualClock struct {
	now uint64
}

func (c *manualClock) Now() uint64 {
	return c.now
}

func testConfig(bindReservoir bool) *config.Config {
	return &config.Config{
		Db: config.DbConfig{
			WriteRetryAttempts: 2,
			WriteRetryInterval: time.Millisecond,
		},
		Poller: config.PollerConfig{
			OutboxBatchSize: 10,
		},
		Farm: config.FarmConfig{
			Owner:         owner.Hex(),
			RewardSymbol:  "RWD",
			StartTime:     start,
			BindReservoir: bindReservoir,
			Pools: []config.PoolConfig{
				{Symbol: "LPA", AllocPoint: "3"},
				{Symbol: "LPB", AllocPoint: "1"},
			},
		},
		// one token per second
		Emission: config.EmissionConfig{
			InitialRate: "1000000000000000000",
		},
	}
}

// harness is a bootstrapped service whose db accepts every write and keeps
// the last persisted state.
type harness struct {
	*Service
	t      *testing.T
	db     *mocks.DbInterface
	clock  *manualClock
	state  *model.FarmStateDocument
	events map[uint64][]*model.LedgerEventDocument
}

func newHarness(t *testing.T, cfg *config.Config) *harness {
	h := &harness{
		t:      t,
		db:     mocks.NewDbInterface(t),
		clock:  &manualClock{now: start},
		events: make(map[uint64][]*model.LedgerEventDocument),
	}
	h.db.On("GetFarmState", mock.Anything).
		Return(nil, &db.NotFoundError{Key: model.FarmStateID, Message: "farm state not found"}).
		Once()
	h.acceptWrites()

	h.Service = NewService(cfg, h.db, nil, h.clock)
	require.NoError(t, h.Bootstrap(t.Context()))
	return h
}

func (h *harness) acceptWrites() {
	h.db.On("SaveLedgerEvents", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			h.events[args.Get(1).(uint64)] = args.Get(2).([]*model.LedgerEventDocument)
		}).
		Return(nil).
		Maybe()
	h.db.On("SaveFarmState", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			h.state = args.Get(1).(*model.FarmStateDocument)
		}).
		Return(nil).
		Maybe()
}

func (h *harness) eventTypes(sequence uint64) []string {
	var out []string
	for _, e := range h.events[sequence] {
		out = append(out, e.Type)
	}
	return out
}

// stake funds the reservoir, gives user collateral of pool pid and stakes it.
func (h *harness) stake(user common.Address, pid uint64, amount sdkmath.Int) {
	ctx := h.t.Context()
	pool, err := h.Pool(pid)
	require.NoError(h.t, err)
	require.NoError(h.t, h.Mint(ctx, owner, pool.Symbol, user, amount))
	require.NoError(h.t, h.Approve(ctx, user, pool.Symbol, pkg.ModuleAddress(farmModule), amount))
	require.NoError(h.t, h.Deposit(ctx, user, pid, amount))
}

func TestBootstrapCreatesConfiguredFarm(t *testing.T) {
	h := newHarness(t, testConfig(true))

	assert.Equal(t, uint64(1), h.Sequence())
	assert.Equal(t, []string{
		types.EventPoolAdded.String(),
		types.EventPoolAdded.String(),
		types.EventReservoirBound.String(),
	}, h.eventTypes(1))

	pools, err := h.Pools()
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Equal(t, "LPA", pools[0].Symbol)
	assertInt(t, sdkmath.NewInt(3), pools[0].AllocPoint)
	assert.Equal(t, "LPB", pools[1].Symbol)
	assert.Equal(t, uint64(start), pools[1].LastCheckpointTime)

	farm, err := h.Farm()
	require.NoError(t, err)
	assert.Equal(t, owner, farm.Owner)
	assert.Equal(t, "RWD", farm.RewardSymbol)
	assertInt(t, sdkmath.NewInt(4), farm.TotalAllocPoint)
	assertInt(t, ether(1), farm.RewardRate)

	res, err := h.Reservoir()
	require.NoError(t, err)
	assert.True(t, res.Bound)
	assert.Equal(t, farm.Address, res.Consumer)
	assertInt(t, sdkmath.ZeroInt(), res.Balance)

	require.NotNil(t, h.state)
	assert.Equal(t, uint64(1), h.state.Sequence)
	assert.Equal(t, res.Address.Hex(), h.state.Farm.Reservoir)
	require.NoError(t, h.CheckInvariants(t.Context()))
}

func TestStakeAndHarvest(t *testing.T) {
	h := newHarness(t, testConfig(true))
	ctx := t.Context()

	res, err := h.Reservoir()
	require.NoError(t, err)
	require.NoError(t, h.Mint(ctx, owner, "RWD", res.Address, ether(1000)))

	h.stake(alice, 0, ether(4))
	h.clock.now += 100

	pos, err := h.Position(0, alice)
	require.NoError(t, err)
	assertInt(t, ether(4), pos.Staked)
	// pool 0 holds three quarters of the allocation
	assertInt(t, ether(75), pos.Pending)

	require.NoError(t, h.Withdraw(ctx, alice, 0, ether(4)))
	sequence := h.Sequence()
	assert.Equal(t, []string{
		types.EventCheckpointed.String(),
		types.EventRewardPaid.String(),
		types.EventWithdrawn.String(),
	}, h.eventTypes(sequence))
	assert.Equal(t, sequence, h.state.Sequence)

	reward, err := h.Balance("RWD", alice)
	require.NoError(t, err)
	assertInt(t, ether(75), reward)
	collateral, err := h.Balance("LPA", alice)
	require.NoError(t, err)
	assertInt(t, ether(4), collateral)

	res, err = h.Reservoir()
	require.NoError(t, err)
	assertInt(t, ether(925), res.Balance)
	require.NoError(t, h.CheckInvariants(ctx))
}

func TestRejectedTransactionIsNotPersisted(t *testing.T) {
	h := newHarness(t, testConfig(true))
	ctx := t.Context()
	h.stake(alice, 1, ether(2))
	sequence := h.Sequence()
	state := h.state

	err := h.Withdraw(ctx, alice, 1, ether(3))
	require.ErrorIs(t, err, farming.ErrInsufficientStake)

	err = h.Mint(ctx, alice, "LPA", alice, ether(1))
	require.ErrorIs(t, err, ErrUnauthorized)

	err = h.Approve(ctx, alice, "NOPE", bob, ether(1))
	require.ErrorIs(t, err, ErrUnknownAsset)
	assert.Equal(t, types.ValidationError, types.KindOf(err))

	err = h.Transfer(ctx, bob, "LPB", alice, ether(1))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, types.FundsError, types.KindOf(err))

	_, err = h.AddPool(ctx, alice, "LPC", sdkmath.NewInt(1))
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = h.Balance("LPC", alice)
	require.ErrorIs(t, err, ErrUnknownAsset)

	assert.Equal(t, sequence, h.Sequence())
	assert.Same(t, state, h.state)
	assert.NotContains(t, h.events, sequence+1)
}

func TestModuleAccountsCannotCall(t *testing.T) {
	h := newHarness(t, testConfig(true))
	ctx := t.Context()
	h.stake(alice, 0, ether(5))
	sequence := h.Sequence()
	state := h.state

	farmAddr := pkg.ModuleAddress(farmModule)
	reservoirAddr := pkg.ModuleAddress(reservoirModule)
	tests := []struct {
		name string
		call func(caller common.Address) error
	}{
		{"transfer", func(caller common.Address) error {
			return h.Transfer(ctx, caller, "LPA", bob, ether(5))
		}},
		{"approve", func(caller common.Address) error {
			return h.Approve(ctx, caller, "RWD", bob, ether(5))
		}},
		{"deposit", func(caller common.Address) error {
			return h.Deposit(ctx, caller, 0, sdkmath.ZeroInt())
		}},
		{"withdraw", func(caller common.Address) error {
			return h.Withdraw(ctx, caller, 0, sdkmath.ZeroInt())
		}},
		{"emergency withdraw", func(caller common.Address) error {
			return h.EmergencyWithdraw(ctx, caller, 0)
		}},
	}
	for _, tt := range tests {
		for _, caller := range []common.Address{farmAddr, reservoirAddr} {
			t.Run(tt.name+" as "+caller.Hex(), func(t *testing.T) {
				err := tt.call(caller)
				require.ErrorIs(t, err, ErrUnauthorized)
				assert.Equal(t, types.AuthorizationError, types.KindOf(err))
			})
		}
	}

	assert.Equal(t, sequence, h.Sequence())
	assert.Same(t, state, h.state)
	held, err := h.Balance("LPA", farmAddr)
	require.NoError(t, err)
	assertInt(t, ether(5), held)

	require.NoError(t, h.EmergencyWithdraw(ctx, alice, 0))
	collateral, err := h.Balance("LPA", alice)
	require.NoError(t, err)
	assertInt(t, ether(5), collateral)
	require.NoError(t, h.CheckInvariants(ctx))
}

func TestEmptyCallsDoNotGrowState(t *testing.T) {
	h := newHarness(t, testConfig(true))
	ctx := t.Context()
	h.stake(alice, 0, ether(1))
	f := gofakeit.New(11)

	for range 50 {
		user := testutil.RandomAddress(f)
		require.NoError(t, h.Deposit(ctx, user, 0, sdkmath.ZeroInt()))
		require.NoError(t, h.Approve(ctx, user, "RWD", bob, sdkmath.ZeroInt()))
		require.NoError(t, h.Transfer(ctx, user, "LPB", bob, sdkmath.ZeroInt()))
	}
	require.NoError(t, h.Withdraw(ctx, alice, 0, ether(1)))

	assert.Empty(t, h.state.Farm.Positions)
	for _, token := range h.state.Tokens {
		assert.Empty(t, token.Allowances, token.Symbol)
		for _, b := range token.Balances {
			assert.NotEqual(t, "0", b.Amount, token.Symbol)
		}
	}
}

func TestPersistFailureRollsBack(t *testing.T) {
	h := newHarness(t, testConfig(true))
	ctx := t.Context()
	require.NoError(t, h.Mint(ctx, owner, "LPA", alice, ether(5)))
	require.NoError(t, h.Approve(ctx, alice, "LPA", pkg.ModuleAddress(farmModule), ether(5)))
	sequence := h.Sequence()

	h.db.ExpectedCalls = nil
	h.db.On("SaveLedgerEvents", mock.Anything, sequence+1, mock.Anything).Return(nil).Times(2)
	h.db.On("SaveFarmState", mock.Anything, mock.Anything).Return(errors.New("db down")).Times(2)

	err := h.Deposit(ctx, alice, 0, ether(5))
	require.Error(t, err)
	assert.Equal(t, types.InternalError, types.KindOf(err))
	assert.Equal(t, sequence, h.Sequence())

	pos, err := h.Position(0, alice)
	require.NoError(t, err)
	assertInt(t, sdkmath.ZeroInt(), pos.Staked)
	balance, err := h.Balance("LPA", alice)
	require.NoError(t, err)
	assertInt(t, ether(5), balance)
	allowance, err := h.Allowance("LPA", alice, pkg.ModuleAddress(farmModule))
	require.NoError(t, err)
	assertInt(t, ether(5), allowance)
	pool, err := h.Pool(0)
	require.NoError(t, err)
	assertInt(t, sdkmath.ZeroInt(), pool.TotalStaked)

	// the sequence is reused once the db is back
	h.db.ExpectedCalls = nil
	h.acceptWrites()
	require.NoError(t, h.Deposit(ctx, alice, 0, ether(5)))
	assert.Equal(t, sequence+1, h.Sequence())
	assert.Equal(t, []string{types.EventDeposited.String()}, h.eventTypes(sequence+1))
}

func TestRestoreFromPersistedState(t *testing.T) {
	cfg := testConfig(true)
	h := newHarness(t, cfg)
	ctx := t.Context()
	res, err := h.Reservoir()
	require.NoError(t, err)
	require.NoError(t, h.Mint(ctx, owner, "RWD", res.Address, ether(1000)))
	h.stake(alice, 0, ether(1))
	h.stake(bob, 0, ether(3))
	h.stake(bob, 1, ether(2))
	h.clock.now += 40

	dbClient := mocks.NewDbInterface(t)
	dbClient.On("GetFarmState", mock.Anything).Return(h.state, nil).Once()
	restored := NewService(cfg, dbClient, nil, h.clock)
	require.NoError(t, restored.Bootstrap(ctx))

	assert.Equal(t, h.Sequence(), restored.Sequence())
	for _, pid := range []uint64{0, 1} {
		for _, user := range []common.Address{alice, bob} {
			want, err := h.Position(pid, user)
			require.NoError(t, err)
			got, err := restored.Position(pid, user)
			require.NoError(t, err)
			assert.Equal(t, want.Staked.String(), got.Staked.String())
			assert.Equal(t, want.Pending.String(), got.Pending.String())
		}
	}
	res, err = restored.Reservoir()
	require.NoError(t, err)
	assert.True(t, res.Bound)
	assertInt(t, ether(1000), res.Balance)
	require.NoError(t, restored.CheckInvariants(ctx))
}

func TestReservoirBinding(t *testing.T) {
	h := newHarness(t, testConfig(false))
	ctx := t.Context()
	assert.Equal(t, []string{
		types.EventPoolAdded.String(),
		types.EventPoolAdded.String(),
	}, h.eventTypes(1))

	h.stake(alice, 0, ether(1))
	h.clock.now += 10
	err := h.Withdraw(ctx, alice, 0, ether(1))
	require.ErrorIs(t, err, farming.ErrReservoirNotBound)
	// the stake itself is never locked
	require.NoError(t, h.EmergencyWithdraw(ctx, alice, 0))

	err = h.BindReservoir(ctx, alice)
	require.ErrorIs(t, err, reservoir.ErrUnauthorized)
	require.NoError(t, h.BindReservoir(ctx, owner))
	err = h.BindReservoir(ctx, owner)
	require.ErrorIs(t, err, farming.ErrAlreadyBound)
	assert.Equal(t, types.StateError, types.KindOf(err))

	res, err := h.Reservoir()
	require.NoError(t, err)
	assert.True(t, res.Bound)
	require.NoError(t, h.CheckInvariants(ctx))
}

func TestPoolAdministration(t *testing.T) {
	h := newHarness(t, testConfig(true))
	ctx := t.Context()

	pid, err := h.AddPool(ctx, owner, "lpc", sdkmath.NewInt(4))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), pid)
	_, err = h.AddPool(ctx, owner, "LPC", sdkmath.NewInt(4))
	require.ErrorIs(t, err, farming.ErrPoolExists)

	require.NoError(t, h.SetAllocPoint(ctx, owner, 0, sdkmath.NewInt(1)))
	err = h.SetAllocPoint(ctx, bob, 0, sdkmath.NewInt(2))
	require.ErrorIs(t, err, farming.ErrUnauthorized)
	err = h.SetAllocPoint(ctx, owner, 9, sdkmath.NewInt(2))
	require.ErrorIs(t, err, farming.ErrUnknownPool)

	farm, err := h.Farm()
	require.NoError(t, err)
	assertInt(t, sdkmath.NewInt(6), farm.TotalAllocPoint)
	assert.Equal(t, uint64(3), farm.PoolCount)

	require.NoError(t, h.Checkpoint(ctx, 2))
	require.NoError(t, h.CheckpointAll(ctx))
	require.ErrorIs(t, h.Checkpoint(ctx, 3), farming.ErrUnknownPool)
}

func TestNotBootstrapped(t *testing.T) {
	srv := NewService(testConfig(true), mocks.NewDbInterface(t), nil, &manualClock{now: start})

	require.ErrorIs(t, srv.Deposit(t.Context(), alice, 0, ether(1)), ErrNotBootstrapped)
	_, err := srv.Pools()
	require.ErrorIs(t, err, ErrNotBootstrapped)
	require.ErrorIs(t, srv.CheckInvariants(t.Context()), ErrNotBootstrapped)
}

func TestBootstrapLoadError(t *testing.T) {
	dbClient := mocks.NewDbInterface(t)
	dbClient.On("GetFarmState", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	srv := NewService(testConfig(true), dbClient, nil, &manualClock{now: start})
	require.Error(t, srv.Bootstrap(t.Context()))
	_, err := srv.Farm()
	require.ErrorIs(t, err, ErrNotBootstrapped)
}
