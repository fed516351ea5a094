package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BlacklistedToken is a revoked access token. The token string carries a
// unique index; inserting a duplicate is treated as success by the ledger.
type BlacklistedToken struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Token     string        `bson:"token" json:"token"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
}
