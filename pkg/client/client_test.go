package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Token: "tok"})
}

func TestClient_UnwrapsEnvelope(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/lessonplans" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("page_size") != "5" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"items":[{"id":"p1","title":"Fractions"}],"page":1,"pageSize":5,"total":1,"totalPages":1}}`))
	})

	page, err := c.LessonPlans().List(context.Background(), &ListOptions{PageSize: 5})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].Title != "Fractions" || page.Total != 1 {
		t.Errorf("page = %+v", page)
	}
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  string
		wantQuota bool
	}{
		{
			name:      "quota exceeded",
			status:    http.StatusForbidden,
			body:      `{"success":false,"error":{"code":"QUOTA_EXCEEDED","message":"storage limit reached for the free tier","details":{"resource":"storage","used":25,"limit":25,"tier":"free"}}}`,
			wantCode:  "QUOTA_EXCEEDED",
			wantQuota: true,
		},
		{
			name:     "not found",
			status:   http.StatusNotFound,
			body:     `{"success":false,"error":{"code":"NOT_FOUND","message":"Lesson plan not found"}}`,
			wantCode: "NOT_FOUND",
		},
		{
			name:   "non-json gateway error",
			status: http.StatusBadGateway,
			body:   `upstream unavailable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.LessonPlans().Get(context.Background(), "p1")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Code != tt.wantCode {
				t.Errorf("APIError = %+v", apiErr)
			}
			q, ok := apiErr.Quota()
			if ok != tt.wantQuota {
				t.Fatalf("Quota() ok = %v, want %v", ok, tt.wantQuota)
			}
			if ok && (q.Used != 25 || q.Limit.Value != 25 || q.Tier != "free") {
				t.Errorf("quota = %+v", q)
			}
		})
	}
}

func TestLimit_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want Limit
	}{
		{`5`, Limit{Value: 5}},
		{`"unlimited"`, Limit{Unlimited: true}},
		{`"12"`, Limit{Value: 12}},
	}

	for _, tt := range tests {
		var got Limit
		if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
			t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Unmarshal(%s) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	var bad Limit
	if err := json.Unmarshal([]byte(`"lots"`), &bad); err == nil {
		t.Error("Unmarshal(lots) should fail")
	}
}

func TestAdminService_SetSubscription(t *testing.T) {
	var body map[string]interface{}
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/v1/admin/users/u1/subscription" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&body)
		w.Write([]byte(`{"success":true,"data":{"id":"u1","role":"user","subscription":{"tier":"premium","aiCreditsRemaining":"unlimited","features":[]}}}`))
	})

	tier := "premium"
	u, err := c.Admin().SetSubscription(context.Background(), "u1", SubscriptionUpdate{
		Tier:      &tier,
		AICredits: &Limit{Unlimited: true},
	})
	if err != nil {
		t.Fatalf("SetSubscription() error = %v", err)
	}
	if body["tier"] != "premium" || body["aiCreditsRemaining"] != "unlimited" {
		t.Errorf("request body = %v", body)
	}
	if _, sent := body["features"]; sent {
		t.Error("unset features were sent")
	}
	if !u.Subscription.AICredits.Unlimited {
		t.Errorf("credits = %+v, want unlimited", u.Subscription.AICredits)
	}
}

func TestClient_WaitReady(t *testing.T) {
	calls := 0
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"success":false,"error":{"code":"SERVICE_UNAVAILABLE","message":"Database connection failed"}}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":{"status":"ready","database":"connected","features":{"billing":true}}}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	health, err := c.WaitReady(ctx, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	if health.Status != "ready" || !health.Features["billing"] || calls != 3 {
		t.Errorf("health = %+v after %d calls", health, calls)
	}
}
