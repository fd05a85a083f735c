package lessonplan

import "context"

// Service defines the interface for lesson plan business logic.
// userID is always the authenticated caller.
type Service interface {
	// Create enforces the storage quota, then saves plan owned by userID.
	// A generated plan spends one AI credit after it is saved.
	Create(ctx context.Context, userID string, plan *LessonPlan) error

	// ListByOwner returns one page of the caller's plans
	ListByOwner(ctx context.Context, userID string, page, pageSize int) (*Page, error)

	// Get returns a plan the caller may read
	Get(ctx context.Context, userID, id string) (*LessonPlan, error)

	// Update changes a plan the caller may edit
	Update(ctx context.Context, userID, id string, upd Update) (*LessonPlan, error)

	// Delete removes a plan the caller owns
	Delete(ctx context.Context, userID, id string) error
}
