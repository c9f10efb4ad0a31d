package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/queue"
	"github.com/lp-farming/farming-core/internal/types"
	"github.com/lp-farming/farming-core/testutil/mocks"
)

func pendingEvents(ids ...string) []model.LedgerEventDocument {
	docs := make([]model.LedgerEventDocument, 0, len(ids))
	for i, id := range ids {
		docs = append(docs, model.LedgerEventDocument{
			ID:       id,
			Sequence: uint64(i + 1),
			Type:     types.EventDeposited.String(),
			User:     alice.Hex(),
			Amount:   "1",
		})
	}
	return docs
}

func TestPublishPendingEvents(t *testing.T) {
	t.Run("publishes in order and marks confirmed events", func(t *testing.T) {
		dbClient := mocks.NewDbInterface(t)
		publisher := mocks.NewEventPublisher(t)
		srv := NewService(testConfig(true), dbClient, publisher, nil)
		srv.sequence = 3

		docs := pendingEvents("1-0", "2-0", "3-0")
		dbClient.On("FindUnpublishedEvents", mock.Anything, uint64(3), int64(10)).Return(docs, nil).Once()
		publisher.On("PublishLedgerEvent", mock.Anything, NewLedgerEventMessage(docs[0])).Return(nil).Once()
		publisher.On("PublishLedgerEvent", mock.Anything, NewLedgerEventMessage(docs[1])).Return(nil).Once()
		publisher.On("PublishLedgerEvent", mock.Anything, NewLedgerEventMessage(docs[2])).Return(errors.New("nack")).Once()
		dbClient.On("MarkEventsPublished", mock.Anything, []string{"1-0", "2-0"}).Return(nil).Once()

		err := srv.PublishPendingEvents(t.Context())
		require.EqualError(t, err, "nack")
	})

	t.Run("nothing pending", func(t *testing.T) {
		dbClient := mocks.NewDbInterface(t)
		publisher := mocks.NewEventPublisher(t)
		srv := NewService(testConfig(true), dbClient, publisher, nil)

		dbClient.On("FindUnpublishedEvents", mock.Anything, uint64(0), int64(10)).Return(nil, nil).Once()
		require.NoError(t, srv.PublishPendingEvents(t.Context()))
	})

	t.Run("without a queue events are only stored", func(t *testing.T) {
		srv := NewService(testConfig(true), mocks.NewDbInterface(t), nil, nil)
		require.NoError(t, srv.PublishPendingEvents(t.Context()))
	})

	t.Run("committed events flow to the queue", func(t *testing.T) {
		h := newHarness(t, testConfig(true))
		publisher := mocks.NewEventPublisher(t)
		h.publisher = publisher

		var stored []model.LedgerEventDocument
		for _, e := range h.events[1] {
			stored = append(stored, *e)
		}
		h.db.On("FindUnpublishedEvents", mock.Anything, uint64(1), int64(10)).Return(stored, nil).Once()
		var sent []queue.LedgerEventMessage
		publisher.On("PublishLedgerEvent", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				sent = append(sent, args.Get(1).(queue.LedgerEventMessage))
			}).
			Return(nil).
			Times(3)
		h.db.On("MarkEventsPublished", mock.Anything, []string{"1-0", "1-1", "1-2"}).Return(nil).Once()

		require.NoError(t, h.PublishPendingEvents(t.Context()))
		require.Len(t, sent, 3)
		assert.Equal(t, types.EventReservoirBound.String(), sent[2].Type)
		assert.Equal(t, uint64(1), sent[2].Sequence)
	})
}
