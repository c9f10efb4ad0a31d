package db

import (
	"context"
	"time"

	"github.com/lp-farming/farming-core/internal/db/model"
	"github.com/lp-farming/farming-core/internal/observability/metrics"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveLedgerEvents(ctx context.Context, sequence uint64, events []*model.LedgerEventDocument) error {
	return d.run("SaveLedgerEvents", func() error {
		return d.db.SaveLedgerEvents(ctx, sequence, events)
	})
}

func (d *DbWithMetrics) FindUnpublishedEvents(ctx context.Context, maxSequence uint64, limit int64) (result []model.LedgerEventDocument, err error) {
	//nolint:errcheck
	d.run("FindUnpublishedEvents", func() error {
		result, err = d.db.FindUnpublishedEvents(ctx, maxSequence, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) MarkEventsPublished(ctx context.Context, ids []string) error {
	return d.run("MarkEventsPublished", func() error {
		return d.db.MarkEventsPublished(ctx, ids)
	})
}

func (d *DbWithMetrics) FindUserEvents(ctx context.Context, user string, limit int64) (result []model.LedgerEventDocument, err error) {
	//nolint:errcheck
	d.run("FindUserEvents", func() error {
		result, err = d.db.FindUserEvents(ctx, user, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveFarmState(ctx context.Context, state *model.FarmStateDocument) error {
	return d.run("SaveFarmState", func() error {
		return d.db.SaveFarmState(ctx, state)
	})
}

func (d *DbWithMetrics) GetFarmState(ctx context.Context) (result *model.FarmStateDocument, err error) {
	//nolint:errcheck
	d.run("GetFarmState", func() error {
		result, err = d.db.GetFarmState(ctx)
		return err
	})
	return
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and failure status
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	// not found is an expected answer, not a failed call
	failure := err != nil && !IsNotFoundError(err)
	metrics.RecordDbLatency(duration, method, failure)
	return err
}
