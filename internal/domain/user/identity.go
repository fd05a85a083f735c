package user

import (
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

// Identity is a principal's effective role and entitlements
type Identity struct {
	UserID    string             `json:"userId,omitempty"`
	Email     string             `json:"email"`
	Role      Role               `json:"role"`
	Tier      subscription.Tier  `json:"tier"`
	Features  []string           `json:"features"`
	Credits   subscription.Limit `json:"aiCreditsRemaining"`
	Storage   subscription.Limit `json:"storageLimit"`
	Persisted bool               `json:"persisted"`
}

// IsAdmin reports whether the identity holds the admin role
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// EffectiveIdentity derives entitlements for email from its persisted record, which may be nil.
// An allowlisted email is admin regardless of the stored role, and admins
// get the full feature list with unbounded credits and storage whatever tier is stored.
func EffectiveIdentity(p *subscription.Policy, email string, u *User) *Identity {
	id := &Identity{
		Email: email,
		Role:  RoleUser,
		Tier:  subscription.TierFree,
	}

	var stored Subscription
	if u != nil {
		id.UserID = u.ID
		id.Persisted = true
		if r, ok := ParseRole(string(u.Role)); ok {
			id.Role = r
		}
		id.Tier = subscription.NormalizeTier(string(u.Subscription.Tier))
		stored = u.Subscription
	} else {
		stored = NewSubscription(p, subscription.TierFree)
	}

	if p.IsAdminEmail(email) {
		id.Role = RoleAdmin
	}

	if id.IsAdmin() {
		id.Features = p.Features(id.Tier, true)
		id.Credits = subscription.Unbounded()
		id.Storage = subscription.Unbounded()
		return id
	}

	id.Features = append([]string(nil), stored.Features...)
	id.Credits = stored.AICredits
	id.Storage = p.StorageLimit(id.Tier, false)
	return id
}
