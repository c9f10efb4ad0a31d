package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/farming"
	"github.com/lp-farming/farming-core/internal/observability/metrics"
	"github.com/lp-farming/farming-core/internal/types"
)

var ErrNotBootstrapped = types.NewErrorWithMsg(types.StateError, "NOT_BOOTSTRAPPED", "ledger is not loaded yet")

// execute runs fn as one ledger transaction. Everything fn changes, across
// the farm, the reservoir and the tokens, is rolled back when fn fails or
// when its outcome cannot be persisted.
func (s *Service) execute(ctx context.Context, op string, fn func() error) (err error) {
	startTime := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		kind := ""
		if err != nil {
			kind = types.KindOf(err).String()
		}
		metrics.RecordLedgerTx(time.Since(startTime), op, kind)
	}()

	if s.farm == nil {
		return ErrNotBootstrapped
	}

	revision := s.journal.Begin()
	if err = s.run(op, fn); err != nil {
		s.journal.Rollback(revision)
		// events of inner calls that committed before the failure
		s.farm.DrainEvents()
		log.Ctx(ctx).Info().
			Str("operation", op).
			Str("kind", types.KindOf(err).String()).
			Err(err).
			Msg("ledger transaction reverted")
		return err
	}

	sequence := s.sequence + 1
	events := s.farm.DrainEvents()
	if err = s.persist(ctx, sequence, events); err != nil {
		s.journal.Rollback(revision)
		log.Ctx(ctx).Error().
			Str("operation", op).
			Uint64("sequence", sequence).
			Err(err).
			Msg("failed to persist ledger transaction, rolled back")
		return types.NewInternalError(fmt.Errorf("failed to persist transaction %d: %w", sequence, err))
	}

	s.journal.Commit()
	s.sequence = sequence
	metrics.RecordCommittedSequence(sequence)
	log.Ctx(ctx).Info().
		Str("operation", op).
		Uint64("sequence", sequence).
		Int("events", len(events)).
		Msg("ledger transaction committed")
	return nil
}

// executeAs is execute for a call made on behalf of caller. Module accounts
// hold the pooled collateral and rewards and never act as callers.
func (s *Service) executeAs(ctx context.Context, op string, caller common.Address, fn func() error) error {
	return s.execute(ctx, op, func() error {
		if s.isModuleAccount(caller) {
			return ErrUnauthorized.WithMsg("%s by module account %s", op, caller.Hex())
		}
		return fn()
	})
}

func (s *Service) isModuleAccount(addr common.Address) bool {
	return addr == s.farm.Address() || (s.reservoir != nil && addr == s.reservoir.Address())
}

func (s *Service) run(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewInternalError(fmt.Errorf("%s aborted: %v", op, r))
		}
	}()
	return fn()
}

// persist stores the events of the transaction and the state it leads to.
// A transaction without events still stores the state: token balances can
// change without the farm being involved.
func (s *Service) persist(ctx context.Context, sequence uint64, events []farming.Event) error {
	docs := make([]*model.LedgerEventDocument, 0, len(events))
	for i, e := range events {
		docs = append(docs, model.NewLedgerEventDocument(sequence, i, e))
	}
	state := model.NewFarmStateDocument(
		sequence,
		int64(s.clock.Now()),
		s.farm.Export(),
		s.reservoir.Export(),
		s.bank.Export(),
	)

	// zero attempts would mean retrying forever
	attempts := max(s.cfg.Db.WriteRetryAttempts, 1)
	return retry.Do(func() error {
		if err := s.db.SaveLedgerEvents(ctx, sequence, docs); err != nil {
			return err
		}
		return s.db.SaveFarmState(ctx, state)
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(s.cfg.Db.WriteRetryInterval),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Uint("attempt", n+1).
				Uint("max_attempts", attempts).
				Uint64("sequence", sequence).
				Err(err).
				Msg("failed to persist ledger transaction, retrying")
		}),
	)
}
