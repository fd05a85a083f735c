package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/metrics"
)

// ExpirySweeper downgrades paid subscriptions whose expiry has passed
type ExpirySweeper struct {
	users     user.Repository
	policy    *subscription.Policy
	schedule  string
	batchSize int
	logger    *logger.Logger
	now       func() time.Time

	mu        sync.Mutex
	scheduler *cron.Cron
}

// NewExpirySweeper creates a new expiry sweeper
func NewExpirySweeper(users user.Repository, policy *subscription.Policy, schedule string, batchSize int, log *logger.Logger) *ExpirySweeper {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &ExpirySweeper{
		users:     users,
		policy:    policy,
		schedule:  schedule,
		batchSize: batchSize,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep and runs it once immediately
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler != nil {
		return fmt.Errorf("expiry sweeper already running")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("invalid expiry schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.scheduler = c

	s.logger.WithFields(map[string]interface{}{
		"schedule": s.schedule,
		"batch":    s.batchSize,
	}).Info("Expiry sweeper started")

	go s.run(ctx)
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish
func (s *ExpirySweeper) Stop() {
	s.mu.Lock()
	c := s.scheduler
	s.scheduler = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
	s.logger.Info("Expiry sweeper stopped")
}

func (s *ExpirySweeper) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := s.Sweep(ctx)
	if err != nil {
		s.logger.ErrorWithErr(err, "Expiry sweep failed")
		return
	}
	if n > 0 {
		s.logger.WithFields(map[string]interface{}{
			"downgraded": n,
		}).Info("Expiry sweep completed")
	}
}

// Sweep downgrades every expired subscription to free and returns how many
// users changed. Users renewed after listing are skipped. A batch in which
// nothing was downgraded or skipped ends the sweep.
func (s *ExpirySweeper) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	total := 0

	for {
		expired, err := s.users.ListExpired(ctx, now, s.batchSize)
		if err != nil {
			return total, err
		}

		done, skipped := 0, 0
		for _, u := range expired {
			upd := user.TierUpdate(s.policy, subscription.TierFree)
			upd.ClearExpiry = true
			_, changed, err := s.users.DowngradeIfExpired(ctx, u.ID, now, upd)
			if err != nil {
				s.logger.WithFields(map[string]interface{}{
					"user_id": u.ID,
					"error":   err.Error(),
				}).Error("Failed to downgrade expired subscription")
				continue
			}
			if !changed {
				skipped++
				s.logger.WithFields(map[string]interface{}{
					"user_id": u.ID,
				}).Debug("Subscription renewed before downgrade, skipping")
				continue
			}
			done++
			metrics.RecordSubscriptionChange(string(subscription.TierFree), "expiry")
			s.logger.WithFields(map[string]interface{}{
				"user_id":    u.ID,
				"from_tier":  u.Subscription.Tier,
				"expired_at": u.Subscription.ExpiresAt,
			}).Info("Subscription expired, downgraded to free")
		}
		total += done

		if len(expired) < s.batchSize || done+skipped == 0 {
			return total, nil
		}
	}
}
