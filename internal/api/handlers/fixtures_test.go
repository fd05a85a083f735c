package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/lessonplanner/internal/api/middleware"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/validator"
	"github.com/pratik-mahalle/lessonplanner/internal/testutil"
)

const adminEmail = "admin@example.com"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func newTestLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "json"})
}

func newTestDeps() (*subscription.Policy, *logger.Logger, *validator.Validator) {
	return subscription.DefaultPolicy(adminEmail), newTestLogger(), validator.New()
}

func seedUser(repo *testutil.MockUserRepository, email string, role user.Role, tier subscription.Tier) *user.User {
	return repo.Seed(&user.User{
		Email:        email,
		Role:         role,
		Subscription: user.NewSubscription(subscription.DefaultPolicy(adminEmail), tier),
	})
}

// newRequest builds a request as the auth middleware would leave it
func newRequest(method, target string, body interface{}, u *user.User) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		ctx := context.WithValue(req.Context(), middleware.UserIDKey, u.ID)
		ctx = context.WithValue(ctx, middleware.UserEmailKey, u.Email)
		req = req.WithContext(ctx)
	}
	return req
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return env
}
