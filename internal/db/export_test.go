//go:build integration

package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/lp-farming/farming-core/internal/db/model"
)

// Reset removes every document but keeps collections and indexes.
func (db *Database) Reset(ctx context.Context) error {
	for _, name := range []string{model.LedgerEventCollection, model.FarmStateCollection} {
		if _, err := db.collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			return err
		}
	}
	return nil
}
