package user

import (
	"testing"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
)

func TestEffectiveIdentity(t *testing.T) {
	p := subscription.DefaultPolicy("admin@example.com")

	stored := &User{
		ID:    "64b7f0c2a1b2c3d4e5f60718",
		Email: "teacher@example.com",
		Role:  RoleUser,
		Subscription: Subscription{
			Tier:      subscription.TierBasic,
			AICredits: subscription.Finite(12),
			Features:  []string{subscription.FeatureLessonPlans},
		},
	}

	tests := []struct {
		name         string
		email        string
		record       *User
		wantRole     Role
		wantTier     subscription.Tier
		wantStorage  subscription.Limit
		wantCredits  subscription.Limit
		wantPersists bool
	}{
		{
			name:         "allowlisted admin without a record",
			email:        "admin@example.com",
			record:       nil,
			wantRole:     RoleAdmin,
			wantTier:     subscription.TierFree,
			wantStorage:  subscription.Unbounded(),
			wantCredits:  subscription.Unbounded(),
			wantPersists: false,
		},
		{
			name:         "unknown email is a new free user",
			email:        "new@example.com",
			record:       nil,
			wantRole:     RoleUser,
			wantTier:     subscription.TierFree,
			wantStorage:  subscription.Finite(25),
			wantCredits:  subscription.Finite(5),
			wantPersists: false,
		},
		{
			name:         "stored basic user",
			email:        "teacher@example.com",
			record:       stored,
			wantRole:     RoleUser,
			wantTier:     subscription.TierBasic,
			wantStorage:  subscription.Finite(100),
			wantCredits:  subscription.Finite(12),
			wantPersists: true,
		},
		{
			name:  "stored admin role overrides tier",
			email: "root@example.com",
			record: &User{
				ID:           "64b7f0c2a1b2c3d4e5f60719",
				Role:         RoleAdmin,
				Subscription: Subscription{Tier: subscription.TierFree, AICredits: subscription.Finite(0)},
			},
			wantRole:     RoleAdmin,
			wantTier:     subscription.TierFree,
			wantStorage:  subscription.Unbounded(),
			wantCredits:  subscription.Unbounded(),
			wantPersists: true,
		},
		{
			name:  "unknown stored tier falls back to free",
			email: "odd@example.com",
			record: &User{
				ID:           "64b7f0c2a1b2c3d4e5f6071a",
				Role:         "superuser",
				Subscription: Subscription{Tier: "gold", AICredits: subscription.Finite(3)},
			},
			wantRole:     RoleUser,
			wantTier:     subscription.TierFree,
			wantStorage:  subscription.Finite(25),
			wantCredits:  subscription.Finite(3),
			wantPersists: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := EffectiveIdentity(p, tt.email, tt.record)

			if id.Role != tt.wantRole {
				t.Errorf("Role = %v, want %v", id.Role, tt.wantRole)
			}
			if id.Tier != tt.wantTier {
				t.Errorf("Tier = %v, want %v", id.Tier, tt.wantTier)
			}
			if !id.Storage.Equal(tt.wantStorage) {
				t.Errorf("Storage = %v, want %v", id.Storage, tt.wantStorage)
			}
			if !id.Credits.Equal(tt.wantCredits) {
				t.Errorf("Credits = %v, want %v", id.Credits, tt.wantCredits)
			}
			if id.Persisted != tt.wantPersists {
				t.Errorf("Persisted = %v, want %v", id.Persisted, tt.wantPersists)
			}
		})
	}
}

func TestSubscriptionUpdate_Apply(t *testing.T) {
	premium := subscription.TierPremium
	credits := subscription.Finite(7)
	s := Subscription{
		Tier:      subscription.TierFree,
		AICredits: subscription.Finite(5),
		Features:  []string{"custom"},
	}

	SubscriptionUpdate{Tier: &premium, AICredits: &credits}.Apply(&s)

	if s.Tier != premium {
		t.Errorf("Tier = %v, want %v", s.Tier, premium)
	}
	if !s.AICredits.Equal(credits) {
		t.Errorf("AICredits = %v, want %v", s.AICredits, credits)
	}
	if len(s.Features) != 1 || s.Features[0] != "custom" {
		t.Errorf("Features changed without being set: %v", s.Features)
	}
}

func TestParseRole(t *testing.T) {
	for _, in := range []string{"user", "premium", "ADMIN"} {
		if _, ok := ParseRole(in); !ok {
			t.Errorf("ParseRole(%q) rejected a valid role", in)
		}
	}
	for _, in := range []string{"", "owner", "root"} {
		if _, ok := ParseRole(in); ok {
			t.Errorf("ParseRole(%q) accepted an invalid role", in)
		}
	}
}
