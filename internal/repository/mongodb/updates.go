package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/lessonplan"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
)

// subscriptionUpdate renders only the set fields of upd as an update document
func subscriptionUpdate(upd user.SubscriptionUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	unset := bson.M{}

	if upd.Tier != nil {
		set["subscription.tier"] = string(*upd.Tier)
	}
	if upd.ExpiresAt != nil {
		set["subscription.expires_at"] = *upd.ExpiresAt
	} else if upd.ClearExpiry {
		unset["subscription.expires_at"] = ""
	}
	if upd.AICredits != nil {
		set["subscription.ai_credits"] = toLimitDoc(*upd.AICredits)
	}
	if upd.Features != nil {
		features := *upd.Features
		if features == nil {
			features = []string{}
		}
		set["subscription.features"] = features
	}
	if upd.StripeCustomerID != nil {
		set["subscription.stripe_customer_id"] = *upd.StripeCustomerID
	}
	if upd.StripeSubscriptionID != nil {
		set["subscription.stripe_subscription_id"] = *upd.StripeSubscriptionID
	}

	doc := bson.M{"$set": set}
	if len(unset) > 0 {
		doc["$unset"] = unset
	}
	return doc
}

// lessonPlanUpdate renders only the set fields of upd as an update document
func lessonPlanUpdate(upd lessonplan.Update, now time.Time) (bson.M, error) {
	set := bson.M{"updated_at": now}

	strs := []struct {
		key string
		val *string
	}{
		{"title", upd.Title},
		{"subject", upd.Subject},
		{"audience", upd.Audience},
		{"time", upd.Time},
		{"topic", upd.Topic},
		{"objectives", upd.Objectives},
		{"content", upd.Content},
	}
	for _, s := range strs {
		if s.val != nil {
			set[s.key] = *s.val
		}
	}

	if upd.IsPublic != nil {
		set["is_public"] = *upd.IsPublic
	}
	if upd.Tags != nil {
		tags := *upd.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if upd.SharedWith != nil {
		shares, err := toShareDocs(*upd.SharedWith)
		if err != nil {
			return nil, err
		}
		set["shared_with"] = shares
	}

	return bson.M{"$set": set}, nil
}

// expiredFilter matches paid subscriptions whose expiry is before now
func expiredFilter(now time.Time) bson.M {
	return bson.M{
		"subscription.tier":       bson.M{"$ne": string(subscription.TierFree)},
		"subscription.expires_at": bson.M{"$lt": now},
	}
}

// creditDecrementFilter matches the user only while the balance is finite and positive
func creditDecrementFilter(oid primitive.ObjectID) bson.M {
	return bson.M{
		"_id":                               oid,
		"subscription.ai_credits.unbounded": bson.M{"$ne": true},
		"subscription.ai_credits.value":     bson.M{"$gt": 0},
	}
}

func creditDecrementUpdate(now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"subscription.ai_credits.value": -1},
		"$set": bson.M{"updated_at": now},
	}
}
