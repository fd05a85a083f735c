package quota

import "context"

// UsageRepository defines the interface for the AI usage log
type UsageRepository interface {
	// Append inserts a record and sets its ID
	Append(ctx context.Context, record *UsageRecord) error

	// ListByUser returns a user's most recent records, newest first
	ListByUser(ctx context.Context, userID string, limit int) ([]*UsageRecord, error)
}

// PlanCounter counts the lesson plans a user owns
type PlanCounter interface {
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}
