package model

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lp-farming/farming-core/internal/config"
)

const (
	LedgerEventCollection = "ledger_events"
	FarmStateCollection   = "farm_state"
)

type index struct {
	Keys   bson.D
	Unique bool
}

var collections = map[string][]index{
	LedgerEventCollection: {
		{Keys: bson.D{{Key: "sequence", Value: 1}, {Key: "index", Value: 1}}, Unique: true},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "sequence", Value: -1}}},
		{Keys: bson.D{{Key: "pool_id", Value: 1}, {Key: "sequence", Value: -1}}},
		{Keys: bson.D{{Key: "published", Value: 1}, {Key: "sequence", Value: 1}}},
	},
	FarmStateCollection: {},
}

// Setup creates the collections and indexes used by the service.
func Setup(ctx context.Context, cfg *config.DbConfig) error {
	credential := options.Credential{
		Username: cfg.Username,
		Password: cfg.Password,
	}
	clientOps := options.Client().ApplyURI(cfg.Address).SetAuth(credential)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("failed to disconnect setup client")
		}
	}()

	database := client.Database(cfg.DbName)

	setupCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for name, indexes := range collections {
		if err := createCollection(setupCtx, database, name); err != nil {
			return err
		}
		for _, idx := range indexes {
			if err := createIndex(setupCtx, database, name, idx); err != nil {
				return err
			}
		}
	}

	log.Ctx(ctx).Info().Msg("collections and indexes created")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, name string) error {
	existing, err := database.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	if err := database.CreateCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}
	return nil
}

func createIndex(ctx context.Context, database *mongo.Database, collection string, idx index) error {
	model := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: options.Index().SetUnique(idx.Unique),
	}
	if _, err := database.Collection(collection).Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", collection, err)
	}
	return nil
}
