package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/db"
	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/farming"
	"github.com/lp-farming/farming-core/internal/journal"
	"github.com/lp-farming/farming-core/internal/reservoir"
	"github.com/lp-farming/farming-core/pkg"
)

const (
	farmModule      = "farm"
	reservoirModule = "reservoir"
)

// Bootstrap loads the persisted ledger, or creates the farm described by the
// config when nothing was persisted yet. The emission schedule always comes
// from the config.
func (s *Service) Bootstrap(ctx context.Context) error {
	state, err := s.db.GetFarmState(ctx)
	switch {
	case err == nil:
		s.mu.Lock()
		err = s.restore(state)
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("failed to restore ledger: %w", err)
		}
		log.Ctx(ctx).Info().
			Uint64("sequence", state.Sequence).
			Int("pools", len(state.Farm.Pools)).
			Msg("ledger restored")
	case db.IsNotFoundError(err):
		if err := s.create(ctx); err != nil {
			return fmt.Errorf("failed to create ledger: %w", err)
		}
		log.Ctx(ctx).Info().
			Uint64("start_time", s.cfg.Farm.StartTime).
			Int("pools", len(s.cfg.Farm.Pools)).
			Msg("ledger created")
	default:
		return fmt.Errorf("failed to load ledger: %w", err)
	}
	return nil
}

func (s *Service) farmConfig(j *journal.Journal, reward asset.Asset) (farming.Config, error) {
	schedule, err := s.cfg.Emission.Schedule()
	if err != nil {
		return farming.Config{}, err
	}
	return farming.Config{
		Address:     pkg.ModuleAddress(farmModule),
		Owner:       s.cfg.Farm.OwnerAddress(),
		RewardAsset: reward,
		Schedule:    schedule,
		StartTime:   s.cfg.Farm.StartTime,
		Clock:       s.clock,
		Journal:     j,
	}, nil
}

func (s *Service) restore(state *model.FarmStateDocument) error {
	j := journal.New()
	bank := asset.NewBank(j)

	tokens, err := state.TokenStates()
	if err != nil {
		return err
	}
	if err := bank.Restore(tokens); err != nil {
		return err
	}

	snap, err := state.FarmSnapshot()
	if err != nil {
		return err
	}
	reward, ok := bank.Asset(snap.RewardAsset)
	if !ok {
		return fmt.Errorf("reward asset %s not found", snap.RewardAsset.Hex())
	}

	rs := state.ReservoirState()
	if rs.RewardAsset != snap.RewardAsset {
		return fmt.Errorf("reservoir pays %s, farm pays %s", rs.RewardAsset.Hex(), snap.RewardAsset.Hex())
	}
	res := reservoir.Restore(rs, reward, j)

	cfg, err := s.farmConfig(j, reward)
	if err != nil {
		return err
	}
	farm, err := farming.Restore(cfg, snap, bank, res)
	if err != nil {
		return err
	}

	s.journal = j
	s.bank = bank
	s.reservoir = res
	s.farm = farm
	s.sequence = state.Sequence
	return nil
}

func (s *Service) create(ctx context.Context) error {
	j := journal.New()
	bank := asset.NewBank(j)
	reward := bank.Register(s.cfg.Farm.RewardSymbol)
	owner := s.cfg.Farm.OwnerAddress()

	cfg, err := s.farmConfig(j, reward)
	if err != nil {
		return err
	}
	farm, err := farming.New(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.journal = j
	s.bank = bank
	s.reservoir = reservoir.New(pkg.ModuleAddress(reservoirModule), owner, reward, j)
	s.farm = farm
	s.sequence = 0
	s.mu.Unlock()

	// the initial pools and the binding are committed as the first transaction
	return s.execute(ctx, "Bootstrap", func() error {
		for _, p := range s.cfg.Farm.Pools {
			alloc, err := p.Alloc()
			if err != nil {
				return err
			}
			if _, err := s.farm.AddPool(owner, bank.Register(p.Symbol), alloc); err != nil {
				return fmt.Errorf("pool %s: %w", p.Symbol, err)
			}
		}
		if s.cfg.Farm.BindReservoir {
			return s.bindReservoir(owner)
		}
		return nil
	})
}
