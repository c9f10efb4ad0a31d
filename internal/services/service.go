package services

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/lp-farming/farming-core/internal/asset"
	"github.com/lp-farming/farming-core/internal/config"
	"github.com/lp-farming/farming-core/internal/db"
	"github.com/lp-farming/farming-core/internal/farming"
	"github.com/lp-farming/farming-core/internal/journal"
	"github.com/lp-farming/farming-core/internal/observability/metrics"
	"github.com/lp-farming/farming-core/internal/queue"
	"github.com/lp-farming/farming-core/internal/reservoir"
	"github.com/lp-farming/farming-core/internal/utils/poller"
)

//go:generate mockery --name=EventPublisher --output=../../testutil/mocks --outpkg=mocks --filename=mock_event_publisher.go
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, msg queue.LedgerEventMessage) error
}

// Service sequences every ledger transaction: calls run one at a time, and
// a transaction is only committed in memory once its events and the
// resulting state are stored.
type Service struct {
	cfg       *config.Config
	db        db.DbInterface
	publisher EventPublisher
	clock     farming.Clock

	mu        sync.Mutex
	journal   *journal.Journal
	bank      *asset.Bank
	reservoir *reservoir.Reservoir
	farm      *farming.Farm
	sequence  uint64
}

// NewService creates a service; Bootstrap must run before any other call.
// publisher may be nil, in which case events are only stored.
func NewService(cfg *config.Config, db db.DbInterface, publisher EventPublisher, clock farming.Clock) *Service {
	if clock == nil {
		clock = farming.SystemClock
	}
	return &Service{
		cfg:       cfg,
		db:        db,
		publisher: publisher,
		clock:     clock,
	}
}

// StartPollers runs the background jobs until ctx is cancelled.
func (s *Service) StartPollers(ctx context.Context) {
	pollers := []*poller.Poller{
		poller.NewPoller(
			"invariants",
			s.cfg.Poller.InvariantCheckInterval,
			metrics.RecordPollerDuration("invariants", s.CheckInvariants),
		),
	}
	if s.publisher != nil {
		pollers = append(pollers, poller.NewPoller(
			"outbox",
			s.cfg.Poller.OutboxPollingInterval,
			metrics.RecordPollerDuration("outbox", s.PublishPendingEvents),
		))
	}

	var wg conc.WaitGroup
	for _, p := range pollers {
		wg.Go(func() {
			p.Start(ctx)
		})
	}
	wg.Wait()
}

// Sequence returns the sequence number of the last committed transaction.
func (s *Service) Sequence() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}
