//go:build integration

package db_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/db"
	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/farming"
	"github.com/lp-farming/farming-core/internal/reservoir"
)

func TestFarmState(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("not found", func(t *testing.T) {
		doc, err := testDB.GetFarmState(ctx)
		assert.True(t, db.IsNotFoundError(err))
		assert.Nil(t, doc)
	})

	t.Run("ok", func(t *testing.T) {
		farmAddr := common.HexToAddress("0x00000000000000000000000000000000000000fa")
		lp := asset.TokenAddress("LP")
		snap := farming.Snapshot{
			Address:         farmAddr,
			Owner:           alice,
			RewardAsset:     asset.TokenAddress("RWD"),
			StartTime:       1_700_000_000,
			TotalAllocPoint: sdkmath.NewInt(10),
			Pools: []farming.PoolInfo{{
				ID:                 0,
				Asset:              lp,
				AllocPoint:         sdkmath.NewInt(10),
				LastCheckpointTime: 1_700_000_100,
				AccRewardPerShare:  sdkmath.NewInt(123_456_789),
				TotalStaked:        sdkmath.NewInt(5),
			}},
			Positions: []farming.Position{{
				PoolID:     0,
				User:       bob,
				Staked:     sdkmath.NewInt(5),
				RewardDebt: sdkmath.NewInt(42),
			}},
		}
		tokens := []asset.TokenState{{
			Address:  lp,
			Symbol:   "LP",
			Balances: map[common.Address]sdkmath.Int{farmAddr: sdkmath.NewInt(5)},
			Allowances: map[common.Address]map[common.Address]sdkmath.Int{
				bob: {farmAddr: sdkmath.NewInt(95)},
			},
		}}

		for _, sequence := range []uint64{1, 2} {
			doc := model.NewFarmStateDocument(sequence, 1_700_000_200, snap, reservoir.State{}, tokens)
			require.NoError(t, testDB.SaveFarmState(ctx, doc))

			found, err := testDB.GetFarmState(ctx)
			require.NoError(t, err)
			assert.Equal(t, doc, found)
		}

		found, err := testDB.GetFarmState(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), found.Sequence)

		restored, err := found.FarmSnapshot()
		require.NoError(t, err)
		assert.Equal(t, snap, restored)

		restoredTokens, err := found.TokenStates()
		require.NoError(t, err)
		assert.Equal(t, tokens, restoredTokens)
	})
}
