package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/pratik-mahalle/lessonplanner/internal/api/middleware"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/validator"
)

// maxBodyBytes bounds JSON request bodies; lesson plan content is the largest field
const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and validates it, writing
// the error response itself when it returns false
func decodeAndValidate(w http.ResponseWriter, r *http.Request, val *validator.Validator, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			utils.WriteError(w, errors.BadRequest("Request body too large"))
		case stderrors.Is(err, io.EOF):
			utils.WriteError(w, errors.BadRequest("Request body is required"))
		default:
			utils.WriteError(w, errors.BadRequest("Invalid request body"))
		}
		return false
	}

	if errs := val.Validate(dst); len(errs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", errs))
		return false
	}
	return true
}

// requireUser returns the authenticated user id or writes 401
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return "", false
	}
	return userID, true
}

// requireEmail returns the authenticated email or writes 401
func requireEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	email, ok := middleware.GetUserEmail(r)
	if !ok || email == "" {
		utils.WriteError(w, errors.Unauthorized("User not authenticated"))
		return "", false
	}
	return email, true
}
