package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/lessonplan"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
)

// LessonPlanRepository implements lessonplan.Repository
type LessonPlanRepository struct {
	db    *DB
	plans *mongo.Collection
}

// NewLessonPlanRepository creates a new lesson plan repository
func NewLessonPlanRepository(db *DB) lessonplan.Repository {
	return &LessonPlanRepository{db: db, plans: db.Collection(LessonPlansCollection)}
}

// Create inserts a plan and sets its ID
func (r *LessonPlanRepository) Create(ctx context.Context, p *lessonplan.LessonPlan) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	doc, err := toLessonPlanDoc(p)
	if err != nil {
		return err
	}

	ctx, done := r.db.op(ctx, "insert", LessonPlansCollection)
	defer done()

	res, err := r.plans.InsertOne(ctx, doc)
	if err != nil {
		return mapError(err, "Lesson plan", "Failed to create lesson plan")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	return nil
}

// GetByID retrieves a plan by ID
func (r *LessonPlanRepository) GetByID(ctx context.Context, id string) (*lessonplan.LessonPlan, error) {
	oid, err := objectID(id, "Lesson plan")
	if err != nil {
		return nil, err
	}

	ctx, done := r.db.op(ctx, "find_one", LessonPlansCollection)
	defer done()

	var doc lessonPlanDoc
	if err := r.plans.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapError(err, "Lesson plan", "Failed to get lesson plan")
	}
	return doc.toDomain(), nil
}

// Update applies only the set fields of upd and returns the stored plan
func (r *LessonPlanRepository) Update(ctx context.Context, id string, upd lessonplan.Update) (*lessonplan.LessonPlan, error) {
	oid, err := objectID(id, "Lesson plan")
	if err != nil {
		return nil, err
	}
	update, err := lessonPlanUpdate(upd, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	ctx, done := r.db.op(ctx, "find_one_and_update", LessonPlansCollection)
	defer done()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc lessonPlanDoc
	if err := r.plans.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mapError(err, "Lesson plan", "Failed to update lesson plan")
	}
	return doc.toDomain(), nil
}

// Delete removes a plan
func (r *LessonPlanRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, "Lesson plan")
	if err != nil {
		return err
	}

	ctx, done := r.db.op(ctx, "delete", LessonPlansCollection)
	defer done()

	res, err := r.plans.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return mapError(err, "Lesson plan", "Failed to delete lesson plan")
	}
	if res.DeletedCount == 0 {
		return errors.NotFound("Lesson plan")
	}
	return nil
}

// CountByOwner counts plans owned by ownerID
func (r *LessonPlanRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	oid, err := objectID(ownerID, "User")
	if err != nil {
		return 0, err
	}

	ctx, done := r.db.op(ctx, "count", LessonPlansCollection)
	defer done()

	n, err := r.plans.CountDocuments(ctx, bson.M{"user_id": oid})
	if err != nil {
		return 0, mapError(err, "Lesson plan", "Failed to count lesson plans")
	}
	return n, nil
}

// ListByOwner returns an owner's plans sorted by creation time, newest first
func (r *LessonPlanRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*lessonplan.LessonPlan, error) {
	oid, err := objectID(ownerID, "User")
	if err != nil {
		return nil, err
	}

	ctx, done := r.db.op(ctx, "find", LessonPlansCollection)
	defer done()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.plans.Find(ctx, bson.M{"user_id": oid}, opts)
	if err != nil {
		return nil, mapError(err, "Lesson plan", "Failed to list lesson plans")
	}
	defer cur.Close(ctx)

	plans := make([]*lessonplan.LessonPlan, 0, limit)
	for cur.Next(ctx) {
		var doc lessonPlanDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.DatabaseError("Failed to decode lesson plan", err)
		}
		plans = append(plans, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, mapError(err, "Lesson plan", "Failed to iterate lesson plans")
	}
	return plans, nil
}
