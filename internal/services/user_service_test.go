package services

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/testutil"
)

const adminEmail = "admin@example.com"

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func seedUser(repo *testutil.MockUserRepository, email string, role user.Role, tier subscription.Tier) *user.User {
	p := subscription.DefaultPolicy(adminEmail)
	return repo.Seed(&user.User{
		Email:        email,
		Role:         role,
		Subscription: user.NewSubscription(p, tier),
	})
}

func TestUserService_Resolve(t *testing.T) {
	mockRepo := testutil.NewMockUserRepository()
	service := NewUserService(mockRepo, subscription.DefaultPolicy(adminEmail), newTestLogger())
	seedUser(mockRepo, "premium@example.com", user.RoleUser, subscription.TierPremium)

	tests := []struct {
		name        string
		email       string
		wantRole    user.Role
		wantTier    subscription.Tier
		wantStorage subscription.Limit
		wantCredits subscription.Limit
	}{
		{
			name:        "allowlisted admin without a record",
			email:       "Admin@Example.com",
			wantRole:    user.RoleAdmin,
			wantTier:    subscription.TierFree,
			wantStorage: subscription.Unbounded(),
			wantCredits: subscription.Unbounded(),
		},
		{
			name:        "unknown email resolves to a free user",
			email:       "new@example.com",
			wantRole:    user.RoleUser,
			wantTier:    subscription.TierFree,
			wantStorage: subscription.Finite(25),
			wantCredits: subscription.Finite(5),
		},
		{
			name:        "stored premium user",
			email:       "premium@example.com",
			wantRole:    user.RoleUser,
			wantTier:    subscription.TierPremium,
			wantStorage: subscription.Finite(500),
			wantCredits: subscription.Finite(150),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := service.Resolve(context.Background(), tt.email)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if id.Role != tt.wantRole || id.Tier != tt.wantTier {
				t.Errorf("Resolve() = %s/%s, want %s/%s", id.Role, id.Tier, tt.wantRole, tt.wantTier)
			}
			if !id.Storage.Equal(tt.wantStorage) || !id.Credits.Equal(tt.wantCredits) {
				t.Errorf("Resolve() storage/credits = %v/%v, want %v/%v", id.Storage, id.Credits, tt.wantStorage, tt.wantCredits)
			}
		})
	}
}

func TestUserService_Resolve_AdminWithNoStore(t *testing.T) {
	mockRepo := testutil.NewMockUserRepository()
	service := NewUserService(mockRepo, subscription.DefaultPolicy(adminEmail), newTestLogger())

	id, err := service.Resolve(context.Background(), adminEmail)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if !id.IsAdmin() || id.Persisted {
		t.Errorf("Resolve() = %+v, want unpersisted admin", id)
	}
}

func TestUserService_Resolve_FailsClosed(t *testing.T) {
	mockRepo := testutil.NewMockUserRepository()
	service := NewUserService(mockRepo, subscription.DefaultPolicy(adminEmail), newTestLogger())

	tests := []struct {
		name    string
		repoErr error
	}{
		{"timeout", errors.PersistenceUnavailable(stderrors.New("server selection timeout"))},
		{"unexpected driver error", errors.DatabaseError("Failed to get user", stderrors.New("boom"))},
		{"plain error", stderrors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo.GetError = tt.repoErr
			id, err := service.Resolve(context.Background(), "teacher@example.com")
			if id != nil {
				t.Errorf("Resolve() returned identity %+v during an outage", id)
			}
			if !errors.IsPersistenceUnavailable(err) {
				t.Errorf("Resolve() error = %v, want PERSISTENCE_UNAVAILABLE", err)
			}
		})
	}
}

func TestUserService_Resolve_EmptyEmail(t *testing.T) {
	service := NewUserService(testutil.NewMockUserRepository(), subscription.DefaultPolicy(), newTestLogger())

	_, err := service.Resolve(context.Background(), "  ")
	if !errors.HasCode(err, errors.ErrCodeUnauthorized) {
		t.Errorf("Resolve() error = %v, want UNAUTHORIZED", err)
	}
}

func TestUserService_SignIn(t *testing.T) {
	mockRepo := testutil.NewMockUserRepository()
	service := NewUserService(mockRepo, subscription.DefaultPolicy(adminEmail), newTestLogger())
	ctx := context.Background()

	profile := user.Profile{
		Provider:          "google",
		ProviderAccountID: "g-1",
		Email:             "Teacher@Example.com",
		Name:              "Ms Frizzle",
	}

	first, err := service.SignIn(ctx, profile)
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if first.Email != "teacher@example.com" {
		t.Errorf("Email = %q, want lowercased", first.Email)
	}
	if first.Role != user.RoleUser || first.Subscription.Tier != subscription.TierFree {
		t.Errorf("new user = %s/%s, want user/free", first.Role, first.Subscription.Tier)
	}
	if !first.Subscription.AICredits.Equal(subscription.Finite(5)) {
		t.Errorf("new user credits = %v, want 5", first.Subscription.AICredits)
	}

	profile.Name = "Valerie Frizzle"
	second, err := service.SignIn(ctx, profile)
	if err != nil {
		t.Fatalf("second SignIn() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second sign-in created a new user %s, want %s", second.ID, first.ID)
	}
	if second.Name != "Valerie Frizzle" {
		t.Errorf("Name = %q, want refreshed profile", second.Name)
	}
	if len(mockRepo.Accounts) != 1 {
		t.Errorf("Accounts = %d, want 1 linked account", len(mockRepo.Accounts))
	}

	if _, err := service.SignIn(ctx, user.Profile{Provider: "github"}); err == nil {
		t.Error("SignIn() without email should fail")
	}
}

func TestUserService_SetRole(t *testing.T) {
	mockRepo := testutil.NewMockUserRepository()
	service := NewUserService(mockRepo, subscription.DefaultPolicy(adminEmail), newTestLogger())
	target := seedUser(mockRepo, "teacher@example.com", user.RoleUser, subscription.TierFree)
	seedUser(mockRepo, "other@example.com", user.RoleUser, subscription.TierFree)

	tests := []struct {
		name     string
		caller   string
		userID   string
		role     user.Role
		wantCode string
		wantRole user.Role
	}{
		{"non-admin is forbidden", "other@example.com", target.ID, user.RoleAdmin, errors.ErrCodeForbidden, user.RoleUser},
		{"non-admin with bad role is still forbidden", "other@example.com", target.ID, "root", errors.ErrCodeForbidden, user.RoleUser},
		{"invalid role", adminEmail, target.ID, "root", errors.ErrCodeInvalidArgument, user.RoleUser},
		{"unknown user", adminEmail, testutil.NewID(), user.RolePremium, errors.ErrCodeNotFound, user.RoleUser},
		{"admin grants premium", adminEmail, target.ID, user.RolePremium, "", user.RolePremium},
		{"reapplying is idempotent", adminEmail, target.ID, user.RolePremium, "", user.RolePremium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writes := mockRepo.Writes
			_, err := service.SetRole(context.Background(), tt.caller, tt.userID, tt.role)

			if tt.wantCode != "" {
				if !errors.HasCode(err, tt.wantCode) {
					t.Fatalf("SetRole() error = %v, want %s", err, tt.wantCode)
				}
				if mockRepo.Writes != writes {
					t.Error("SetRole() mutated the store on failure")
				}
			} else if err != nil {
				t.Fatalf("SetRole() error = %v", err)
			}

			stored, _ := mockRepo.GetByID(context.Background(), target.ID)
			if stored.Role != tt.wantRole {
				t.Errorf("stored role = %s, want %s", stored.Role, tt.wantRole)
			}
		})
	}
}

func TestUserService_SetSubscription(t *testing.T) {
	mockRepo := testutil.NewMockUserRepository()
	policy := subscription.DefaultPolicy(adminEmail)
	service := NewUserService(mockRepo, policy, newTestLogger())
	ctx := context.Background()

	target := seedUser(mockRepo, "teacher@example.com", user.RoleUser, subscription.TierFree)
	custom := []string{"custom_feature"}
	if _, err := mockRepo.UpdateSubscription(ctx, target.ID, user.SubscriptionUpdate{Features: &custom}); err != nil {
		t.Fatalf("seed features: %v", err)
	}

	premium := subscription.TierPremium
	got, err := service.SetSubscription(ctx, adminEmail, target.ID, user.SubscriptionUpdate{Tier: &premium})
	if err != nil {
		t.Fatalf("SetSubscription() error = %v", err)
	}

	want := policy.Features(subscription.TierPremium, false)
	if len(got.Subscription.Features) != len(want) {
		t.Fatalf("Features = %v, want canonical premium list %v", got.Subscription.Features, want)
	}
	for i := range want {
		if got.Subscription.Features[i] != want[i] {
			t.Errorf("Features[%d] = %q, want %q", i, got.Subscription.Features[i], want[i])
		}
	}
	if !got.Subscription.AICredits.Equal(subscription.Finite(5)) {
		t.Errorf("credits changed to %v without being supplied", got.Subscription.AICredits)
	}

	again, err := service.SetSubscription(ctx, adminEmail, target.ID, user.SubscriptionUpdate{Tier: &premium})
	if err != nil {
		t.Fatalf("repeat SetSubscription() error = %v", err)
	}
	if again.Subscription.Tier != got.Subscription.Tier || len(again.Subscription.Features) != len(got.Subscription.Features) {
		t.Errorf("repeat SetSubscription() changed the subscription: %+v", again.Subscription)
	}

	basic := subscription.TierBasic
	explicit := []string{"lesson_plans"}
	credits := subscription.Unbounded()
	got, err = service.SetSubscription(ctx, adminEmail, target.ID, user.SubscriptionUpdate{Tier: &basic, Features: &explicit, AICredits: &credits})
	if err != nil {
		t.Fatalf("SetSubscription() error = %v", err)
	}
	if len(got.Subscription.Features) != 1 || got.Subscription.Features[0] != "lesson_plans" {
		t.Errorf("explicit features lost: %v", got.Subscription.Features)
	}
	if !got.Subscription.AICredits.IsUnbounded() {
		t.Errorf("AICredits = %v, want unlimited", got.Subscription.AICredits)
	}
}

func TestUserService_SetSubscription_Errors(t *testing.T) {
	mockRepo := testutil.NewMockUserRepository()
	service := NewUserService(mockRepo, subscription.DefaultPolicy(adminEmail), newTestLogger())
	target := seedUser(mockRepo, "teacher@example.com", user.RoleUser, subscription.TierFree)
	premium := subscription.TierPremium
	gold := subscription.Tier("gold")

	tests := []struct {
		name     string
		caller   string
		userID   string
		upd      user.SubscriptionUpdate
		wantCode string
	}{
		{"non-admin", "teacher@example.com", target.ID, user.SubscriptionUpdate{Tier: &premium}, errors.ErrCodeForbidden},
		{"unknown tier", adminEmail, target.ID, user.SubscriptionUpdate{Tier: &gold}, errors.ErrCodeInvalidArgument},
		{"unknown user", adminEmail, testutil.NewID(), user.SubscriptionUpdate{Tier: &premium}, errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.SetSubscription(context.Background(), tt.caller, tt.userID, tt.upd)
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("SetSubscription() error = %v, want %s", err, tt.wantCode)
			}
		})
	}

	stored, _ := mockRepo.GetByID(context.Background(), target.ID)
	if stored.Subscription.Tier != subscription.TierFree {
		t.Errorf("tier = %s after rejected updates, want free", stored.Subscription.Tier)
	}
}

func TestUserService_List(t *testing.T) {
	mockRepo := testutil.NewMockUserRepository()
	service := NewUserService(mockRepo, subscription.DefaultPolicy(adminEmail), newTestLogger())
	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		seedUser(mockRepo, email, user.RoleUser, subscription.TierFree)
	}

	users, total, err := service.List(context.Background(), adminEmail, 2, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(users) != 2 {
		t.Errorf("List() = %d users of %d, want 2 of 3", len(users), total)
	}

	if _, _, err := service.List(context.Background(), "a@example.com", 10, 0); !errors.HasCode(err, errors.ErrCodeForbidden) {
		t.Errorf("List() by non-admin error = %v, want FORBIDDEN", err)
	}
}
