package db

import (
	"context"

	"github.com/lp-farming/farming-core/internal/db/model"
)

//go:generate mockery --name=DbInterface --output=../../testutil/mocks --outpkg=mocks --filename=mock_db_client.go
type DbInterface interface {
	Ping(ctx context.Context) error
	/**
	 * SaveLedgerEvents stores the events of the transaction committed with
	 * sequence. Events left behind by an earlier attempt at the same or a
	 * later sequence are replaced.
	 * @param ctx The context
	 * @param sequence The transaction sequence
	 * @param events The events, in emission order
	 * @return An error if the operation failed
	 */
	SaveLedgerEvents(ctx context.Context, sequence uint64, events []*model.LedgerEventDocument) error
	/**
	 * FindUnpublishedEvents returns events not yet pushed to the queue, oldest
	 * first, ignoring events of transactions after maxSequence.
	 * @param ctx The context
	 * @param maxSequence The last committed sequence
	 * @param limit The maximum number of events to return
	 * @return The events or an error
	 */
	FindUnpublishedEvents(ctx context.Context, maxSequence uint64, limit int64) ([]model.LedgerEventDocument, error)
	/**
	 * MarkEventsPublished flags the given events as pushed to the queue.
	 * @param ctx The context
	 * @param ids The event ids
	 * @return An error if the operation failed
	 */
	MarkEventsPublished(ctx context.Context, ids []string) error
	/**
	 * FindUserEvents returns the latest events of a user, newest first.
	 * @param ctx The context
	 * @param user The checksummed user address
	 * @param limit The maximum number of events to return
	 * @return The events or an error
	 */
	FindUserEvents(ctx context.Context, user string, limit int64) ([]model.LedgerEventDocument, error)
	/**
	 * SaveFarmState replaces the persisted ledger state.
	 * @param ctx The context
	 * @param state The state document
	 * @return An error if the operation failed
	 */
	SaveFarmState(ctx context.Context, state *model.FarmStateDocument) error
	/**
	 * GetFarmState returns the persisted ledger state.
	 * @param ctx The context
	 * @return The state or a NotFoundError if nothing was persisted yet
	 */
	GetFarmState(ctx context.Context) (*model.FarmStateDocument, error)
}
