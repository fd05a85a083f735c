package services

import (
	"context"
	"strings"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/metrics"
)

// UserService implements user.Service
type UserService struct {
	repo   user.Repository
	policy *subscription.Policy
	logger *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, policy *subscription.Policy, log *logger.Logger) user.Service {
	return &UserService{
		repo:   repo,
		policy: policy,
		logger: log,
	}
}

// Resolve maps an email to its effective identity. Any store failure other
// than a missing record is PERSISTENCE_UNAVAILABLE; it never degrades to a
// default identity.
func (s *UserService) Resolve(ctx context.Context, email string) (*user.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.Unauthorized("No authenticated identity")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.IsNotFound(err) {
			s.logger.WithFields(map[string]interface{}{
				"email": email,
				"error": err.Error(),
			}).Error("Identity resolution failed")
			if errors.IsPersistenceUnavailable(err) {
				return nil, err
			}
			return nil, errors.PersistenceUnavailable(err)
		}
		u = nil
	}

	return user.EffectiveIdentity(s.policy, email, u), nil
}

// SignIn upserts the user behind an OAuth profile
func (s *UserService) SignIn(ctx context.Context, profile user.Profile) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return nil, errors.BadRequest("Identity provider returned no email")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Name != profile.Name || u.Image != profile.Image {
			if err := s.repo.UpdateProfile(ctx, u.ID, profile.Name, profile.Image); err != nil {
				s.logger.ErrorWithErr(err, "Failed to refresh user profile")
			} else {
				u.Name, u.Image = profile.Name, profile.Image
			}
		}
	case errors.IsNotFound(err):
		u, err = s.create(ctx, email, profile)
		if err != nil {
			return nil, err
		}
	default:
		s.logger.ErrorWithErr(err, "Failed to load user for sign-in")
		return nil, err
	}

	if profile.Provider != "" && profile.ProviderAccountID != "" {
		if err := s.repo.LinkAccount(ctx, &user.Account{
			UserID:            u.ID,
			Provider:          profile.Provider,
			ProviderAccountID: profile.ProviderAccountID,
		}); err != nil {
			s.logger.ErrorWithErr(err, "Failed to link OAuth account")
		}
	}

	return u, nil
}

func (s *UserService) create(ctx context.Context, email string, profile user.Profile) (*user.User, error) {
	u := &user.User{
		Email:        email,
		Name:         profile.Name,
		Image:        profile.Image,
		Role:         user.RoleUser,
		Subscription: user.NewSubscription(s.policy, subscription.TierFree),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		// A concurrent first sign-in won the insert
		if errors.HasCode(err, errors.ErrCodeConflict) {
			return s.repo.GetByEmail(ctx, email)
		}
		s.logger.ErrorWithErr(err, "Failed to create user")
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"provider": profile.Provider,
	}).Info("User created")

	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// SetRole changes a user's role. Reapplying the current role succeeds unchanged.
func (s *UserService) SetRole(ctx context.Context, callerEmail, userID string, role user.Role) (*user.User, error) {
	if err := s.requireAdmin(ctx, callerEmail); err != nil {
		return nil, err
	}

	r, ok := user.ParseRole(string(role))
	if !ok {
		return nil, errors.InvalidArgument("role must be one of user, premium, admin")
	}

	u, err := s.repo.SetRole(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"role":    r,
		"by":      callerEmail,
	}).Info("User role updated")

	return u, nil
}

// SetSubscription applies a partial subscription change. Supplying a tier
// without features resets features to that tier's canonical list.
func (s *UserService) SetSubscription(ctx context.Context, callerEmail, userID string, upd user.SubscriptionUpdate) (*user.User, error) {
	if err := s.requireAdmin(ctx, callerEmail); err != nil {
		return nil, err
	}

	if upd.Tier != nil {
		t, ok := subscription.ParseTier(string(*upd.Tier))
		if !ok {
			return nil, errors.InvalidArgument("tier must be one of free, basic, premium")
		}
		upd.Tier = &t
		if upd.Features == nil {
			features := s.policy.Features(t, false)
			upd.Features = &features
		}
	}

	if upd.IsEmpty() {
		return s.repo.GetByID(ctx, userID)
	}

	u, err := s.repo.UpdateSubscription(ctx, userID, upd)
	if err != nil {
		return nil, err
	}

	if upd.Tier != nil {
		metrics.RecordSubscriptionChange(string(*upd.Tier), "admin")
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
		"tier":    u.Subscription.Tier,
		"by":      callerEmail,
	}).Info("User subscription updated")

	return u, nil
}

// List returns users for the admin surface
func (s *UserService) List(ctx context.Context, callerEmail string, limit, offset int) ([]*user.User, int64, error) {
	if err := s.requireAdmin(ctx, callerEmail); err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, limit, offset)
}

// requireAdmin runs before any validation so non-admins learn nothing about the target
func (s *UserService) requireAdmin(ctx context.Context, callerEmail string) error {
	id, err := s.Resolve(ctx, callerEmail)
	if err != nil {
		return err
	}
	if !id.IsAdmin() {
		s.logger.WithFields(map[string]interface{}{
			"email": callerEmail,
		}).Warn("Admin operation denied")
		return errors.Forbidden("Admin role required")
	}
	return nil
}
