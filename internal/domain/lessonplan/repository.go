package lessonplan

import "context"

// Repository defines the interface for lesson plan data access
type Repository interface {
	// Create inserts a plan and sets its ID
	Create(ctx context.Context, plan *LessonPlan) error

	// GetByID retrieves a plan by ID
	GetByID(ctx context.Context, id string) (*LessonPlan, error)

	// Update applies only the set fields of upd and returns the stored plan
	Update(ctx context.Context, id string, upd Update) (*LessonPlan, error)

	// Delete removes a plan
	Delete(ctx context.Context, id string) error

	// CountByOwner counts plans owned by ownerID. Storage quota and
	// listing totals both read this count.
	CountByOwner(ctx context.Context, ownerID string) (int64, error)

	// ListByOwner returns an owner's plans sorted by creation time, newest first
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*LessonPlan, error)
}
