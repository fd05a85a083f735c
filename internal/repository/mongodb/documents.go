package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/lessonplan"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/quota"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
)

type limitDoc struct {
	Value     int64 `bson:"value"`
	Unbounded bool  `bson:"unbounded"`
}

func toLimitDoc(l subscription.Limit) limitDoc {
	return limitDoc{Value: l.Value(), Unbounded: l.IsUnbounded()}
}

func (d limitDoc) limit() subscription.Limit {
	if d.Unbounded {
		return subscription.Unbounded()
	}
	return subscription.Finite(d.Value)
}

type subscriptionDoc struct {
	Tier                 string     `bson:"tier"`
	AICredits            limitDoc   `bson:"ai_credits"`
	Features             []string   `bson:"features"`
	ExpiresAt            *time.Time `bson:"expires_at,omitempty"`
	StripeCustomerID     string     `bson:"stripe_customer_id,omitempty"`
	StripeSubscriptionID string     `bson:"stripe_subscription_id,omitempty"`
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name,omitempty"`
	Image        string             `bson:"image,omitempty"`
	Role         string             `bson:"role"`
	Subscription subscriptionDoc    `bson:"subscription"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func toUserDoc(u *user.User) userDoc {
	features := u.Subscription.Features
	if features == nil {
		features = []string{}
	}
	return userDoc{
		Email: u.Email,
		Name:  u.Name,
		Image: u.Image,
		Role:  string(u.Role),
		Subscription: subscriptionDoc{
			Tier:                 string(u.Subscription.Tier),
			AICredits:            toLimitDoc(u.Subscription.AICredits),
			Features:             features,
			ExpiresAt:            u.Subscription.ExpiresAt,
			StripeCustomerID:     u.Subscription.StripeCustomerID,
			StripeSubscriptionID: u.Subscription.StripeSubscriptionID,
		},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d *userDoc) toDomain() *user.User {
	return &user.User{
		ID:    d.ID.Hex(),
		Email: d.Email,
		Name:  d.Name,
		Image: d.Image,
		Role:  user.Role(d.Role),
		Subscription: user.Subscription{
			Tier:                 subscription.Tier(d.Subscription.Tier),
			AICredits:            d.Subscription.AICredits.limit(),
			Features:             d.Subscription.Features,
			ExpiresAt:            d.Subscription.ExpiresAt,
			StripeCustomerID:     d.Subscription.StripeCustomerID,
			StripeSubscriptionID: d.Subscription.StripeSubscriptionID,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type accountDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	UserID            primitive.ObjectID `bson:"user_id"`
	Provider          string             `bson:"provider"`
	ProviderAccountID string             `bson:"provider_account_id"`
	CreatedAt         time.Time          `bson:"created_at"`
}

type shareDoc struct {
	UserID primitive.ObjectID `bson:"user_id"`
	Access string             `bson:"access"`
}

type lessonPlanDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	UserID     primitive.ObjectID `bson:"user_id"`
	Title      string             `bson:"title"`
	Subject    string             `bson:"subject"`
	Audience   string             `bson:"audience"`
	Time       string             `bson:"time"`
	Topic      string             `bson:"topic"`
	Objectives string             `bson:"objectives"`
	Content    string             `bson:"content"`
	IsPublic   bool               `bson:"is_public"`
	Tags       []string           `bson:"tags"`
	SharedWith []shareDoc         `bson:"shared_with"`
	Generated  bool               `bson:"generated"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

func toShareDocs(shares []lessonplan.Share) ([]shareDoc, error) {
	docs := make([]shareDoc, 0, len(shares))
	for _, s := range shares {
		oid, err := primitive.ObjectIDFromHex(s.UserID)
		if err != nil {
			return nil, errors.InvalidArgument("invalid share user id: " + s.UserID)
		}
		docs = append(docs, shareDoc{UserID: oid, Access: string(s.Access)})
	}
	return docs, nil
}

func toLessonPlanDoc(p *lessonplan.LessonPlan) (*lessonPlanDoc, error) {
	owner, err := primitive.ObjectIDFromHex(p.UserID)
	if err != nil {
		return nil, errors.InvalidArgument("invalid owner id")
	}
	shares, err := toShareDocs(p.SharedWith)
	if err != nil {
		return nil, err
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return &lessonPlanDoc{
		UserID:     owner,
		Title:      p.Title,
		Subject:    p.Subject,
		Audience:   p.Audience,
		Time:       p.Time,
		Topic:      p.Topic,
		Objectives: p.Objectives,
		Content:    p.Content,
		IsPublic:   p.IsPublic,
		Tags:       tags,
		SharedWith: shares,
		Generated:  p.Generated,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}, nil
}

func (d *lessonPlanDoc) toDomain() *lessonplan.LessonPlan {
	shares := make([]lessonplan.Share, 0, len(d.SharedWith))
	for _, s := range d.SharedWith {
		shares = append(shares, lessonplan.Share{UserID: s.UserID.Hex(), Access: lessonplan.Access(s.Access)})
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &lessonplan.LessonPlan{
		ID:         d.ID.Hex(),
		UserID:     d.UserID.Hex(),
		Title:      d.Title,
		Subject:    d.Subject,
		Audience:   d.Audience,
		Time:       d.Time,
		Topic:      d.Topic,
		Objectives: d.Objectives,
		Content:    d.Content,
		IsPublic:   d.IsPublic,
		Tags:       tags,
		SharedWith: shares,
		Generated:  d.Generated,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type usageDoc struct {
	ID          primitive.ObjectID     `bson:"_id,omitempty"`
	UserID      primitive.ObjectID     `bson:"user_id"`
	Feature     string                 `bson:"feature"`
	CreditsUsed int64                  `bson:"credits_used"`
	Metadata    map[string]interface{} `bson:"metadata,omitempty"`
	CreatedAt   time.Time              `bson:"created_at"`
}

func (d *usageDoc) toDomain() *quota.UsageRecord {
	return &quota.UsageRecord{
		ID:          d.ID.Hex(),
		UserID:      d.UserID.Hex(),
		Feature:     d.Feature,
		CreditsUsed: d.CreditsUsed,
		Metadata:    d.Metadata,
		CreatedAt:   d.CreatedAt,
	}
}
