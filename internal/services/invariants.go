package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/lp-farming/farming-core/internal/observability/metrics"
	"github.com/lp-farming/farming-core/internal/types"
	"github.com/lp-farming/farming-core/internal/utils"
)

// CheckInvariants verifies the ledger accounting and refreshes the balance
// gauges. A violation means the in-memory state is corrupt.
func (s *Service) CheckInvariants(ctx context.Context) error {
	return s.view(func() error {
		if err := s.farm.CheckInvariants(); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("ledger invariant violated")
			return err
		}
		if payer := s.farm.Reservoir(); payer != nil {
			consumer, _ := s.reservoir.Consumer()
			if payer.Address() != s.reservoir.Address() || consumer != s.farm.Address() {
				err := types.NewInternalError(errors.New("farm and reservoir are not bound to each other"))
				log.Ctx(ctx).Error().Err(err).Msg("ledger invariant violated")
				return err
			}
		}

		metrics.RecordReservoirBalance(utils.ToWholeTokens(s.reservoir.Balance()))
		for _, p := range s.farm.Pools() {
			metrics.RecordPoolTotalStaked(p.ID, s.symbol(p.Asset), utils.ToWholeTokens(p.TotalStaked))
		}
		return nil
	})
}
