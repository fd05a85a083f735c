package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/auth"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
)

const testSecret = "test-secret"

func mint(t *testing.T, userID, email string) auth.TokenPair {
	t.Helper()
	pair, err := auth.MintTokens(userID, email, testSecret, time.Hour, 24*time.Hour)
	if err != nil {
		t.Fatalf("MintTokens() error = %v", err)
	}
	return pair
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	id, _ := GetUserID(r)
	w.Write([]byte(id))
}

func TestAuthMiddleware(t *testing.T) {
	pair := mint(t, "user-1", "teacher@example.com")
	handler := AuthMiddleware(testSecret)(http.HandlerFunc(echoUser))

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"bearer token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+pair.AccessToken) }, http.StatusOK, "user-1"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: pair.AccessToken}) }, http.StatusOK, "user-1"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"refresh token rejected", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+pair.RefreshToken) }, http.StatusUnauthorized, ""},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", pair.AccessToken) }, http.StatusUnauthorized, ""},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	handler := OptionalAuthMiddleware(testSecret)(http.HandlerFunc(echoUser))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.Len() != 0 {
		t.Errorf("anonymous: status %d body %q", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+mint(t, "user-2", "x@example.com").AccessToken)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Body.String() != "user-2" {
		t.Errorf("authenticated body = %q, want user-2", w.Body.String())
	}
}

type stubResolver struct {
	identity *user.Identity
	err      error
}

func (s stubResolver) Resolve(ctx context.Context, email string) (*user.Identity, error) {
	return s.identity, s.err
}

func TestRequireAdmin(t *testing.T) {
	pair := mint(t, "user-1", "admin@example.com")

	tests := []struct {
		name       string
		resolver   stubResolver
		wantStatus int
	}{
		{"admin", stubResolver{identity: &user.Identity{Role: user.RoleAdmin, Tier: subscription.TierFree}}, http.StatusOK},
		{"regular user", stubResolver{identity: &user.Identity{Role: user.RoleUser}}, http.StatusForbidden},
		{"store down", stubResolver{err: errors.PersistenceUnavailable(context.DeadlineExceeded)}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := AuthMiddleware(testSecret)(RequireAdmin(tt.resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if _, ok := GetIdentity(r); !ok {
					t.Error("identity missing from context")
				}
			})))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(1, 2)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}
	if got := last.Header().Get("Retry-After"); got != "1" {
		t.Errorf("Retry-After = %q, want 1", got)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", w.Code)
	}
}

func TestRecoveryAndRequestID(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	handler := RequestID()(Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("secret detail")
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if got := w.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
	if body := w.Body.String(); strings.Contains(body, "secret detail") {
		t.Errorf("panic value leaked: %s", body)
	}
}

func TestRequestID_RejectsUnsafeIDs(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reused bool
	}{
		{"safe id", "abc-123_x.y", true},
		{"empty", "", false},
		{"newline injection", "abc\r\nSet-Cookie: x", false},
		{"too long", strings.Repeat("a", 65), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header[RequestIDHeader] = []string{tt.header}
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if (seen == tt.header) != tt.reused {
				t.Errorf("request id = %q, reused = %v, want %v", seen, seen == tt.header, tt.reused)
			}
			if seen == "" || w.Header().Get(RequestIDHeader) != seen {
				t.Errorf("header = %q, context = %q", w.Header().Get(RequestIDHeader), seen)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	tests := []struct {
		name     string
		frontend string
		extra    []string
		want     []string
	}{
		{"production frontend", "https://plans.example.com/", nil, []string{"https://plans.example.com"}},
		{"extra origins deduplicated", "https://plans.example.com", []string{"https://admin.example.com", "https://plans.example.com/"},
			[]string{"https://plans.example.com", "https://admin.example.com"}},
		{"local frontend adds dev ports", "http://localhost:3000", nil,
			[]string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AllowedOrigins(tt.frontend, tt.extra)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("AllowedOrigins() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogger_StoresRequestLogger(t *testing.T) {
	base := logger.Nop()
	var got *logger.Logger
	handler := RequestID()(Logger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = logger.FromContext(r.Context(), nil)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if got == nil {
		t.Fatal("expected a request-scoped logger in the context")
	}
	if got == base {
		t.Error("expected a derived logger carrying the request id")
	}
}
