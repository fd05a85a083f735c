package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/lessonplan"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/quota"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/metrics"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
)

// LessonPlanService implements lessonplan.Service
type LessonPlanService struct {
	repo   lessonplan.Repository
	quota  quota.Service
	logger *logger.Logger
}

// NewLessonPlanService creates a new lesson plan service
func NewLessonPlanService(repo lessonplan.Repository, quotaSvc quota.Service, log *logger.Logger) lessonplan.Service {
	return &LessonPlanService{
		repo:   repo,
		quota:  quotaSvc,
		logger: log,
	}
}

// Create checks the storage quota and saves the plan. The check and the
// insert are not atomic, so concurrent creates can overshoot the limit.
func (s *LessonPlanService) Create(ctx context.Context, userID string, plan *lessonplan.LessonPlan) error {
	if userID == "" {
		return errors.Unauthorized("User not authenticated")
	}

	if _, err := s.quota.CheckAndReserveStorage(ctx, userID); err != nil {
		return err
	}

	plan.UserID = userID
	plan.Tags = normalizeTags(plan.Tags)
	if plan.SharedWith == nil {
		plan.SharedWith = []lessonplan.Share{}
	}
	if err := validateShares(userID, plan.SharedWith); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, plan); err != nil {
		logger.FromContext(ctx, s.logger).ErrorWithErr(err, "Failed to create lesson plan")
		return err
	}
	metrics.RecordLessonPlanCreated(plan.Generated)

	logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
		"user_id":        userID,
		"lesson_plan_id": plan.ID,
		"generated":      plan.Generated,
	}).Info("Lesson plan created")

	if plan.Generated {
		_, err := s.quota.SpendCredit(ctx, userID, quota.FeatureLessonPlan, map[string]interface{}{
			"lessonPlanId": plan.ID,
			"subject":      plan.Subject,
			"topic":        plan.Topic,
		})
		if err != nil {
			logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
				"user_id":        userID,
				"lesson_plan_id": plan.ID,
				"error":          err.Error(),
			}).Error("Failed to spend AI credit for saved plan")
		}
	}

	return nil
}

// ListByOwner returns one page of the caller's plans. The total is the same
// count the storage quota check uses.
func (s *LessonPlanService) ListByOwner(ctx context.Context, userID string, page, pageSize int) (*lessonplan.Page, error) {
	if userID == "" {
		return nil, errors.Unauthorized("User not authenticated")
	}
	params := utils.NewPaginationParams(page, pageSize)

	total, err := s.repo.CountByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.ListByOwner(ctx, userID, params.PageSize, params.Offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*lessonplan.LessonPlan{}
	}

	return &lessonplan.Page{
		Items:      items,
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: utils.TotalPages(total, params.PageSize),
	}, nil
}

// Get returns a plan the caller owns, shares or that is public
func (s *LessonPlanService) Get(ctx context.Context, userID, id string) (*lessonplan.LessonPlan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanRead(userID) {
		return nil, errors.Forbidden("You do not have access to this lesson plan")
	}
	return p, nil
}

// Update changes a plan the caller may edit. Only the owner may change
// visibility or sharing.
func (s *LessonPlanService) Update(ctx context.Context, userID, id string, upd lessonplan.Update) (*lessonplan.LessonPlan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanEdit(userID) {
		return nil, errors.Forbidden("You do not have edit access to this lesson plan")
	}
	if upd.ChangesAccess() && !p.IsOwner(userID) {
		return nil, errors.Forbidden("Only the owner can change sharing")
	}
	if upd.IsEmpty() {
		return p, nil
	}

	if upd.Tags != nil {
		tags := normalizeTags(*upd.Tags)
		upd.Tags = &tags
	}
	if upd.SharedWith != nil {
		if err := validateShares(p.UserID, *upd.SharedWith); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, upd)
	if err != nil {
		logger.FromContext(ctx, s.logger).ErrorWithErr(err, "Failed to update lesson plan")
		return nil, err
	}

	logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
		"user_id":        userID,
		"lesson_plan_id": id,
	}).Info("Lesson plan updated")

	return updated, nil
}

// Delete removes a plan the caller owns
func (s *LessonPlanService) Delete(ctx context.Context, userID, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsOwner(userID) {
		return errors.Forbidden("Only the owner can delete this lesson plan")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		logger.FromContext(ctx, s.logger).ErrorWithErr(err, "Failed to delete lesson plan")
		return err
	}

	logger.FromContext(ctx, s.logger).WithFields(map[string]interface{}{
		"user_id":        userID,
		"lesson_plan_id": id,
	}).Info("Lesson plan deleted")

	return nil
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping first-seen order
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func validateShares(ownerID string, shares []lessonplan.Share) error {
	seen := make(map[string]struct{}, len(shares))
	for _, sh := range shares {
		if sh.UserID == "" {
			return errors.InvalidArgument("share entry is missing a user id")
		}
		if sh.UserID == ownerID {
			return errors.InvalidArgument("a plan cannot be shared with its owner")
		}
		if sh.Access != lessonplan.AccessRead && sh.Access != lessonplan.AccessEdit {
			return errors.InvalidArgument(fmt.Sprintf("share access must be read or edit, got %q", sh.Access))
		}
		if _, ok := seen[sh.UserID]; ok {
			return errors.InvalidArgument("a user may appear only once in sharedWith")
		}
		seen[sh.UserID] = struct{}{}
	}
	return nil
}
