package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Indexes lists the indexes each collection needs
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "subscription.stripe_customer_id", Value: 1}}, Options: options.Index().SetName("stripe_customer").SetSparse(true)},
			{Keys: bson.D{{Key: "subscription.expires_at", Value: 1}}, Options: options.Index().SetName("subscription_expiry").SetSparse(true)},
		},
		AccountsCollection: {
			{Keys: bson.D{{Key: "provider", Value: 1}, {Key: "provider_account_id", Value: 1}}, Options: options.Index().SetName("provider_account_unique").SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetName("account_user")},
		},
		LessonPlansCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("owner_created")},
			{Keys: bson.D{{Key: "shared_with.user_id", Value: 1}}, Options: options.Index().SetName("shared_with_user")},
			{Keys: bson.D{{Key: "is_public", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("public_created")},
		},
		UsagesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("user_created")},
		},
	}
}

// EnsureIndexes creates any missing indexes and returns how many were requested
func EnsureIndexes(ctx context.Context, db *DB) (int, error) {
	total := 0
	for name, models := range Indexes() {
		created, err := db.Collection(name).Indexes().CreateMany(ctx, models)
		if err != nil {
			return total, fmt.Errorf("create indexes on %s: %w", name, err)
		}
		total += len(created)
	}
	return total, nil
}
