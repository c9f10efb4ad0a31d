package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lp-farming/farming-core/internal/db/model"
)

func (db *Database) SaveLedgerEvents(ctx context.Context, sequence uint64, events []*model.LedgerEventDocument) error {
	client := db.collection(model.LedgerEventCollection)

	// a transaction rolled back after its events were written leaves them
	// behind under a sequence that is about to be reused
	_, err := client.DeleteMany(ctx, bson.M{"sequence": bson.M{"$gte": sequence}})
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	docs := make([]any, 0, len(events))
	for _, e := range events {
		docs = append(docs, e)
	}
	_, err = client.InsertMany(ctx, docs)
	if err != nil {
		var writeErr mongo.BulkWriteException
		if errors.As(err, &writeErr) {
			for _, e := range writeErr.WriteErrors {
				if mongo.IsDuplicateKeyError(e) {
					return &DuplicateKeyError{
						Key:     model.LedgerEventID(sequence, e.Index),
						Message: "ledger event already exists",
					}
				}
			}
		}
		return err
	}
	return nil
}

func (db *Database) FindUnpublishedEvents(ctx context.Context, maxSequence uint64, limit int64) ([]model.LedgerEventDocument, error) {
	filter := bson.M{
		"published": false,
		"sequence":  bson.M{"$lte": maxSequence},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "sequence", Value: 1}, {Key: "index", Value: 1}}).
		SetLimit(limit)

	return db.findEvents(ctx, filter, opts)
}

func (db *Database) MarkEventsPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	update := bson.M{"$set": bson.M{"published": true}}
	_, err := db.collection(model.LedgerEventCollection).UpdateMany(ctx, filter, update)
	return err
}

func (db *Database) FindUserEvents(ctx context.Context, user string, limit int64) ([]model.LedgerEventDocument, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "sequence", Value: -1}, {Key: "index", Value: -1}}).
		SetLimit(limit)

	return db.findEvents(ctx, bson.M{"user": user}, opts)
}

func (db *Database) findEvents(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.LedgerEventDocument, error) {
	cursor, err := db.collection(model.LedgerEventCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []model.LedgerEventDocument
	if err = cursor.All(ctx, &events); err != nil {
		return nil, err
	}

	return events, nil
}
