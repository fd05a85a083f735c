package services

import (
	"context"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/quota"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/metrics"
)

const recentUsageLimit = 10

// QuotaService implements quota.Service
type QuotaService struct {
	users  user.Repository
	plans  quota.PlanCounter
	usage  quota.UsageRepository
	policy *subscription.Policy
	logger *logger.Logger
}

// NewQuotaService creates a new quota accountant
func NewQuotaService(users user.Repository, plans quota.PlanCounter, usage quota.UsageRepository, policy *subscription.Policy, log *logger.Logger) quota.Service {
	return &QuotaService{
		users:  users,
		plans:  plans,
		usage:  usage,
		policy: policy,
		logger: log,
	}
}

func (s *QuotaService) identity(ctx context.Context, userID string) (*user.Identity, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.EffectiveIdentity(s.policy, u.Email, u), nil
}

// CheckAndReserveStorage fails with QUOTA_EXCEEDED once used reaches a finite limit
func (s *QuotaService) CheckAndReserveStorage(ctx context.Context, userID string) (*quota.StorageUsage, error) {
	id, err := s.identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := s.plans.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	usage := &quota.StorageUsage{Used: used, Limit: id.Storage, Tier: id.Tier}
	if id.Storage.Exceeded(used) {
		metrics.RecordQuotaRejection(quota.ResourceStorage, string(id.Tier))
		s.logger.WithFields(map[string]interface{}{
			"user_id": userID,
			"used":    used,
			"limit":   id.Storage.Value(),
			"tier":    id.Tier,
		}).Info("Storage quota reached")
		return nil, errors.QuotaExceeded(quota.ResourceStorage, used, id.Storage.Display(), string(id.Tier))
	}

	return usage, nil
}

// SpendCredit takes one credit and appends exactly one usage record.
// Unbounded balances and exhausted balances are recorded with zero credits used.
func (s *QuotaService) SpendCredit(ctx context.Context, userID, feature string, metadata map[string]interface{}) (*quota.SpendResult, error) {
	id, err := s.identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &quota.SpendResult{Remaining: subscription.Unbounded()}
	if !id.IsAdmin() && !id.Credits.IsUnbounded() {
		remaining, spent, err := s.users.DecrementCredit(ctx, userID)
		if err != nil {
			s.logger.ErrorWithErr(err, "Failed to decrement AI credits")
			return nil, err
		}
		result.Remaining = remaining
		result.Spent = spent
	}

	rec := &quota.UsageRecord{
		UserID:   userID,
		Feature:  feature,
		Metadata: metadata,
	}
	if result.Spent {
		rec.CreditsUsed = 1
		metrics.RecordCreditSpent(feature)
	}
	if err := s.usage.Append(ctx, rec); err != nil {
		s.logger.ErrorWithErr(err, "Failed to append AI usage record")
		return nil, err
	}
	result.Record = rec

	s.logger.WithFields(map[string]interface{}{
		"user_id":   userID,
		"feature":   feature,
		"spent":     result.Spent,
		"remaining": result.Remaining.String(),
	}).Info("AI credit spent")

	return result, nil
}

// HasCredits fails with QUOTA_EXCEEDED when a finite balance is zero
func (s *QuotaService) HasCredits(ctx context.Context, userID string) error {
	id, err := s.identity(ctx, userID)
	if err != nil {
		return err
	}
	if id.Credits.Available() {
		return nil
	}

	allotment := s.policy.CreditLimit(id.Tier, false)
	metrics.RecordQuotaRejection(quota.ResourceCredits, string(id.Tier))
	return errors.QuotaExceeded(quota.ResourceCredits, allotment.Value(), allotment.Display(), string(id.Tier))
}

// Summary reports storage, credits and recent usage for a user
func (s *QuotaService) Summary(ctx context.Context, userID string) (*quota.Summary, error) {
	id, err := s.identity(ctx, userID)
	if err != nil {
		return nil, err
	}

	used, err := s.plans.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.usage.ListByUser(ctx, userID, recentUsageLimit)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []*quota.UsageRecord{}
	}

	return &quota.Summary{
		UserID:      userID,
		Role:        string(id.Role),
		Tier:        id.Tier,
		Storage:     quota.StorageUsage{Used: used, Limit: id.Storage, Tier: id.Tier},
		Credits:     id.Credits,
		CreditLimit: s.policy.CreditLimit(id.Tier, id.IsAdmin()),
		Features:    id.Features,
		RecentUsage: recent,
	}, nil
}
