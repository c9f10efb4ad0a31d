package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/queue"
)

func NewLedgerEventMessage(doc model.LedgerEventDocument) queue.LedgerEventMessage {
	return queue.LedgerEventMessage{
		ID:                doc.ID,
		Sequence:          doc.Sequence,
		Index:             doc.Index,
		Type:              doc.Type,
		PoolID:            doc.PoolID,
		User:              doc.User,
		Asset:             doc.Asset,
		Amount:            doc.Amount,
		AllocPoint:        doc.AllocPoint,
		AccRewardPerShare: doc.AccRewardPerShare,
		Time:              doc.Time,
	}
}

// PublishPendingEvents pushes stored events of committed transactions to the
// queue in commit order. Events are marked only after the broker confirmed
// them, so a crash in between publishes them again.
func (s *Service) PublishPendingEvents(ctx context.Context) error {
	if s.publisher == nil {
		return nil
	}

	committed := s.Sequence()
	docs, err := s.db.FindUnpublishedEvents(ctx, committed, s.cfg.Poller.OutboxBatchSize)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	published := make([]string, 0, len(docs))
	var publishErr error
	for _, doc := range docs {
		if err := s.publisher.PublishLedgerEvent(ctx, NewLedgerEventMessage(doc)); err != nil {
			// later events wait so that consumers see them in order
			publishErr = err
			break
		}
		published = append(published, doc.ID)
	}

	if err := s.db.MarkEventsPublished(ctx, published); err != nil {
		return errors.Join(publishErr, err)
	}
	log.Ctx(ctx).Debug().
		Int("published", len(published)).
		Int("pending", len(docs)-len(published)).
		Msg("ledger events published")
	return publishErr
}
