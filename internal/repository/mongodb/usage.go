package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/quota"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
)

// UsageRepository implements quota.UsageRepository
type UsageRepository struct {
	db     *DB
	usages *mongo.Collection
}

// NewUsageRepository creates a new AI usage log repository
func NewUsageRepository(db *DB) quota.UsageRepository {
	return &UsageRepository{db: db, usages: db.Collection(UsagesCollection)}
}

// Append inserts a record and sets its ID
func (r *UsageRepository) Append(ctx context.Context, rec *quota.UsageRecord) error {
	oid, err := objectID(rec.UserID, "User")
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	ctx, done := r.db.op(ctx, "insert", UsagesCollection)
	defer done()

	res, err := r.usages.InsertOne(ctx, usageDoc{
		UserID:      oid,
		Feature:     rec.Feature,
		CreditsUsed: rec.CreditsUsed,
		Metadata:    rec.Metadata,
		CreatedAt:   rec.CreatedAt,
	})
	if err != nil {
		return mapError(err, "Usage record", "Failed to record AI usage")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = id.Hex()
	}
	return nil
}

// ListByUser returns a user's most recent records, newest first
func (r *UsageRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*quota.UsageRecord, error) {
	oid, err := objectID(userID, "User")
	if err != nil {
		return nil, err
	}

	ctx, done := r.db.op(ctx, "find", UsagesCollection)
	defer done()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.usages.Find(ctx, bson.M{"user_id": oid}, opts)
	if err != nil {
		return nil, mapError(err, "Usage record", "Failed to list AI usage")
	}
	defer cur.Close(ctx)

	records := make([]*quota.UsageRecord, 0, limit)
	for cur.Next(ctx) {
		var doc usageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.DatabaseError("Failed to decode usage record", err)
		}
		records = append(records, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, mapError(err, "Usage record", "Failed to iterate AI usage")
	}
	return records, nil
}
