package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/thoughtslabs/thoughts-backend/models"
)

// TokenBlacklist is the revocation-ledger contract. Insert is idempotent:
// recording an already-revoked token is not an error.
type TokenBlacklist interface {
	Contains(ctx context.Context, token string) (bool, error)
	Insert(ctx context.Context, token string) error
}

// MongoBlacklist keeps revoked tokens in a collection with a unique index
// on the token string. A TTL index on createdAt (see database.EnsureIndexes)
// prunes entries once the token would have expired anyway.
type MongoBlacklist struct {
	col *mongo.Collection
}

func NewMongoBlacklist(col *mongo.Collection) *MongoBlacklist {
	return &MongoBlacklist{col: col}
}

func (b *MongoBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.col.CountDocuments(ctx, bson.M{"token": token})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *MongoBlacklist) Insert(ctx context.Context, token string) error {
	_, err := b.col.InsertOne(ctx, models.BlacklistedToken{
		Token:     token,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil && !IsDuplicateKey(err) {
		return err
	}
	return nil
}

// RedisBlacklist keeps revoked tokens as keys with a TTL matching the
// access-token lifetime, so the ledger never outgrows the set of tokens
// that are still within their expiry window.
type RedisBlacklist struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisBlacklist(rdb *redis.Client, ttl time.Duration) *RedisBlacklist {
	return &RedisBlacklist{rdb: rdb, ttl: ttl}
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.rdb.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *RedisBlacklist) Insert(ctx context.Context, token string) error {
	return b.rdb.Set(ctx, blacklistKey(token), 1, b.ttl).Err()
}
