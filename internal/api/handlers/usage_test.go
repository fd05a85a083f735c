package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/quota"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/services"
	"github.com/pratik-mahalle/lessonplanner/internal/testutil"
)

func TestUsageHandler_Summary(t *testing.T) {
	policy, log, _ := newTestDeps()
	users := testutil.NewMockUserRepository()
	plans := testutil.NewMockLessonPlanRepository()
	handler := NewUsageHandler(services.NewQuotaService(users, plans, testutil.NewMockUsageRepository(), policy, log), log)

	u := seedUser(users, "teacher@example.com", user.RoleUser, subscription.TierBasic)
	plans.SeedPlans(u.ID, 7)

	rr := httptest.NewRecorder()
	handler.Summary(rr, newRequest(http.MethodGet, "/api/v1/usage", nil, u))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}

	var summary quota.Summary
	decodeEnvelope(t, rr, &summary)
	if summary.Tier != subscription.TierBasic {
		t.Errorf("tier = %q, want basic", summary.Tier)
	}
	if summary.Storage.Used != 7 || !summary.Storage.Limit.Equal(subscription.Finite(100)) {
		t.Errorf("storage = %+v, want 7 of 100", summary.Storage)
	}

	rr = httptest.NewRecorder()
	handler.Summary(rr, newRequest(http.MethodGet, "/api/v1/usage", nil, nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want 401", rr.Code)
	}
}
