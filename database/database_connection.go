package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/thoughtslabs/thoughts-backend/config"
)

const (
	UsersCollection             = "users"
	BlacklistedTokensCollection = "blacklisted_tokens"
)

// DB wraps the Mongo client and the application database. It is built once
// in main and injected into the stores.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB, pings the primary and returns a handle.
func Connect(ctx context.Context, cfg *config.Config) (*DB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &DB{client: client, db: client.Database(cfg.DatabaseName)}, nil
}

func (d *DB) Collection(name string) *mongo.Collection {
	return d.db.Collection(name)
}

func (d *DB) Disconnect(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique indexes backing the data-model
// invariants: users.email, users.username and blacklisted_tokens.token.
// The blacklist also gets a TTL index so entries disappear once the token
// they revoke would have expired on its own; tokenTTL is the access-token
// lifetime.
func (d *DB) EnsureIndexes(ctx context.Context, tokenTTL time.Duration) error {
	users := d.Collection(UsersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	blacklist := d.Collection(BlacklistedTokensCollection)
	_, err = blacklist.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(tokenTTL.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("create blacklist indexes: %w", err)
	}

	return nil
}
