package mongodb

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
)

// mapError turns a driver error into an AppError. Anything that means the
// store could not be reached becomes PERSISTENCE_UNAVAILABLE.
func mapError(err error, resource, message string) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, mongo.ErrNoDocuments):
		return errors.NotFound(resource)
	case mongo.IsDuplicateKeyError(err):
		return errors.Conflict(resource + " already exists")
	case unavailable(err):
		return errors.PersistenceUnavailable(err)
	default:
		return errors.DatabaseError(message, err)
	}
}

func unavailable(err error) bool {
	return mongo.IsTimeout(err) ||
		mongo.IsNetworkError(err) ||
		stderrors.Is(err, context.DeadlineExceeded) ||
		stderrors.Is(err, mongo.ErrClientDisconnected)
}

// objectID parses hex; malformed ids cannot exist, so they read as not found
func objectID(hex, resource string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, errors.NotFound(resource)
	}
	return oid, nil
}
