package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lp-farming/farming-core/internal/db/model"
)

func (db *Database) SaveFarmState(ctx context.Context, state *model.FarmStateDocument) error {
	opts := options.Replace().SetUpsert(true)
	_, err := db.collection(model.FarmStateCollection).
		ReplaceOne(ctx, bson.M{"_id": state.ID}, state, opts)
	return err
}

func (db *Database) GetFarmState(ctx context.Context) (*model.FarmStateDocument, error) {
	var state model.FarmStateDocument
	err := db.collection(model.FarmStateCollection).
		FindOne(ctx, bson.M{"_id": model.FarmStateID}).
		Decode(&state)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     model.FarmStateID,
				Message: "farm state not found",
			}
		}
		return nil, err
	}

	return &state, nil
}
