package mongodb

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
)

// UserRepository implements user.Repository
type UserRepository struct {
	db       *DB
	users    *mongo.Collection
	accounts *mongo.Collection
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) user.Repository {
	return &UserRepository{
		db:       db,
		users:    db.Collection(UsersCollection),
		accounts: db.Collection(AccountsCollection),
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	ctx, done := r.db.op(ctx, "insert", UsersCollection)
	defer done()

	now := time.Now().UTC()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.users.InsertOne(ctx, toUserDoc(u))
	if err != nil {
		return mapError(err, "User", "Failed to create user")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid.Hex()
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := objectID(id, "User")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByStripeCustomer retrieves the user linked to a billing customer
func (r *UserRepository) GetByStripeCustomer(ctx context.Context, customerID string) (*user.User, error) {
	if customerID == "" {
		return nil, errors.NotFound("User")
	}
	return r.findOne(ctx, bson.M{"subscription.stripe_customer_id": customerID})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*user.User, error) {
	ctx, done := r.db.op(ctx, "find_one", UsersCollection)
	defer done()

	var doc userDoc
	if err := r.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(err, "User", "Failed to get user")
	}
	return doc.toDomain(), nil
}

// UpdateProfile refreshes the display name and avatar
func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, image string) error {
	oid, err := objectID(id, "User")
	if err != nil {
		return err
	}

	ctx, done := r.db.op(ctx, "update", UsersCollection)
	defer done()

	res, err := r.users.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":       name,
		"image":      image,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return mapError(err, "User", "Failed to update user")
	}
	if res.MatchedCount == 0 {
		return errors.NotFound("User")
	}
	return nil
}

// SetRole persists a role
func (r *UserRepository) SetRole(ctx context.Context, id string, role user.Role) (*user.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{
		"role":       string(role),
		"updated_at": time.Now().UTC(),
	}})
}

// UpdateSubscription applies only the set fields of upd
func (r *UserRepository) UpdateSubscription(ctx context.Context, id string, upd user.SubscriptionUpdate) (*user.User, error) {
	return r.findAndUpdate(ctx, id, subscriptionUpdate(upd, time.Now().UTC()))
}

func (r *UserRepository) findAndUpdate(ctx context.Context, id string, update bson.M) (*user.User, error) {
	oid, err := objectID(id, "User")
	if err != nil {
		return nil, err
	}

	ctx, done := r.db.op(ctx, "find_one_and_update", UsersCollection)
	defer done()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	if err := r.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		return nil, mapError(err, "User", "Failed to update user")
	}
	return doc.toDomain(), nil
}

// DecrementCredit takes one credit with a single $inc guarded on a positive,
// finite balance, so concurrent spends never lose an update or go negative.
func (r *UserRepository) DecrementCredit(ctx context.Context, id string) (subscription.Limit, bool, error) {
	oid, err := objectID(id, "User")
	if err != nil {
		return subscription.Limit{}, false, err
	}

	filter := creditDecrementFilter(oid)
	update := creditDecrementUpdate(time.Now().UTC())

	opCtx, done := r.db.op(ctx, "decrement_credit", UsersCollection)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err = r.users.FindOneAndUpdate(opCtx, filter, update, opts).Decode(&doc)
	done()

	switch {
	case err == nil:
		return doc.Subscription.AICredits.limit(), true, nil
	case stderrors.Is(err, mongo.ErrNoDocuments):
		// Unbounded, exhausted or missing: report the current balance
		u, err := r.GetByID(ctx, id)
		if err != nil {
			return subscription.Limit{}, false, err
		}
		return u.Subscription.AICredits, false, nil
	default:
		return subscription.Limit{}, false, mapError(err, "User", "Failed to decrement credits")
	}
}

// ListExpired returns non-free users whose subscription expired before now
func (r *UserRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*user.User, error) {
	ctx, done := r.db.op(ctx, "find", UsersCollection)
	defer done()

	filter := expiredFilter(now)
	opts := options.Find().
		SetSort(bson.D{{Key: "subscription.expires_at", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.users.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapError(err, "User", "Failed to list expired users")
	}
	return decodeUsers(ctx, cur)
}

// DowngradeIfExpired re-checks the expiry in the update filter so a renewal
// landing after ListExpired is never overwritten
func (r *UserRepository) DowngradeIfExpired(ctx context.Context, id string, now time.Time, upd user.SubscriptionUpdate) (*user.User, bool, error) {
	oid, err := objectID(id, "User")
	if err != nil {
		return nil, false, err
	}

	ctx, done := r.db.op(ctx, "downgrade_expired", UsersCollection)
	defer done()

	filter := expiredFilter(now)
	filter["_id"] = oid

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err = r.users.FindOneAndUpdate(ctx, filter, subscriptionUpdate(upd, time.Now().UTC()), opts).Decode(&doc)
	switch {
	case err == nil:
		return doc.toDomain(), true, nil
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return nil, false, nil
	default:
		return nil, false, mapError(err, "User", "Failed to downgrade user")
	}
}

// List retrieves users with pagination
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	ctx, done := r.db.op(ctx, "find", UsersCollection)
	defer done()

	total, err := r.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, mapError(err, "User", "Failed to count users")
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, mapError(err, "User", "Failed to list users")
	}
	users, err := decodeUsers(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// LinkAccount records an OAuth identity for a user, ignoring duplicates
func (r *UserRepository) LinkAccount(ctx context.Context, a *user.Account) error {
	oid, err := objectID(a.UserID, "User")
	if err != nil {
		return err
	}

	ctx, done := r.db.op(ctx, "upsert", AccountsCollection)
	defer done()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	filter := bson.M{"provider": a.Provider, "provider_account_id": a.ProviderAccountID}
	update := bson.M{"$setOnInsert": accountDoc{
		UserID:            oid,
		Provider:          a.Provider,
		ProviderAccountID: a.ProviderAccountID,
		CreatedAt:         a.CreatedAt,
	}}

	_, err = r.accounts.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return mapError(err, "Account", "Failed to link account")
	}
	return nil
}

func decodeUsers(ctx context.Context, cur *mongo.Cursor) ([]*user.User, error) {
	defer cur.Close(ctx)

	users := make([]*user.User, 0)
	for cur.Next(ctx) {
		var doc userDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.DatabaseError("Failed to decode user", err)
		}
		users = append(users, doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, mapError(err, "User", "Failed to iterate users")
	}
	return users, nil
}
