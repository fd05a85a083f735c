package services

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/billing"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/testutil"
)

type billingFixture struct {
	users   *testutil.MockUserRepository
	gateway *testutil.MockBillingGateway
	service billing.Service
}

func testBillingOptions() BillingOptions {
	return BillingOptions{
		Prices: []billing.Price{
			{Tier: subscription.TierBasic, PriceID: "price_basic", Amount: 9.99},
			{Tier: subscription.TierPremium, PriceID: "price_premium", Amount: 19.99},
		},
		SuccessURL:      "http://localhost:3000/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       "http://localhost:3000/pricing",
		PortalReturnURL: "http://localhost:3000/account",
	}
}

func newBillingFixture() *billingFixture {
	f := &billingFixture{
		users:   testutil.NewMockUserRepository(),
		gateway: testutil.NewMockBillingGateway(),
	}
	f.service = NewBillingService(f.users, f.gateway, subscription.DefaultPolicy(adminEmail), testBillingOptions(), newTestLogger())
	return f
}

func TestBillingService_Plans(t *testing.T) {
	f := newBillingFixture()
	u := seedUser(f.users, "teacher@example.com", user.RoleUser, subscription.TierBasic)

	plans, err := f.service.Plans(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("Plans() error = %v", err)
	}
	if len(plans) != 3 {
		t.Fatalf("Plans() = %d plans, want 3", len(plans))
	}

	tests := []struct {
		tier        subscription.Tier
		storage     int64
		credits     int64
		purchasable bool
		current     bool
	}{
		{subscription.TierFree, 25, 5, false, false},
		{subscription.TierBasic, 100, 30, true, true},
		{subscription.TierPremium, 500, 150, true, false},
	}
	for i, tt := range tests {
		p := plans[i]
		if p.ID != tt.tier {
			t.Errorf("plans[%d].ID = %s, want %s", i, p.ID, tt.tier)
			continue
		}
		if p.Storage.Value() != tt.storage || p.Credits.Value() != tt.credits {
			t.Errorf("%s limits = %v/%v, want %d/%d", tt.tier, p.Storage, p.Credits, tt.storage, tt.credits)
		}
		if p.Purchasable() != tt.purchasable {
			t.Errorf("%s Purchasable() = %v, want %v", tt.tier, p.Purchasable(), tt.purchasable)
		}
		if p.IsCurrent != tt.current {
			t.Errorf("%s IsCurrent = %v, want %v", tt.tier, p.IsCurrent, tt.current)
		}
	}

	anonymous, err := f.service.Plans(context.Background(), "")
	if err != nil {
		t.Fatalf("Plans(\"\") error = %v", err)
	}
	if !anonymous[0].IsCurrent {
		t.Error("anonymous caller should see free as current")
	}
}

func TestBillingService_CreateCheckout(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	u := seedUser(f.users, "teacher@example.com", user.RoleUser, subscription.TierFree)

	session, err := f.service.CreateCheckout(ctx, u.ID, subscription.TierPremium)
	if err != nil {
		t.Fatalf("CreateCheckout() error = %v", err)
	}
	if session.ID != "cs_test" || session.URL == "" {
		t.Errorf("CreateCheckout() = %+v", session)
	}
	if len(f.gateway.Checkouts) != 1 {
		t.Fatalf("checkouts = %d, want 1", len(f.gateway.Checkouts))
	}
	req := f.gateway.Checkouts[0]
	if req.PriceID != "price_premium" || req.UserID != u.ID || req.CustomerID != "cus_test" {
		t.Errorf("checkout request = %+v", req)
	}

	stored, _ := f.users.GetByID(ctx, u.ID)
	if stored.Subscription.StripeCustomerID != "cus_test" {
		t.Errorf("StripeCustomerID = %q, want cus_test", stored.Subscription.StripeCustomerID)
	}
	if stored.Subscription.Tier != subscription.TierFree {
		t.Error("starting checkout must not change the tier")
	}

	if _, err := f.service.CreateCheckout(ctx, u.ID, subscription.TierBasic); err != nil {
		t.Fatalf("second CreateCheckout() error = %v", err)
	}
	if f.gateway.CustomerCalls != 1 {
		t.Errorf("customer created %d times, want 1", f.gateway.CustomerCalls)
	}
}

func TestBillingService_CreateCheckout_Errors(t *testing.T) {
	users := testutil.NewMockUserRepository()
	u := seedUser(users, "teacher@example.com", user.RoleUser, subscription.TierFree)
	policy := subscription.DefaultPolicy()

	failing := testutil.NewMockBillingGateway()
	failing.Err = stderrors.New("card_declined")

	tests := []struct {
		name     string
		service  billing.Service
		tier     subscription.Tier
		wantCode string
	}{
		{"no gateway", NewBillingService(users, nil, policy, testBillingOptions(), newTestLogger()), subscription.TierBasic, errors.ErrCodeServiceUnavailable},
		{"free tier", NewBillingService(users, testutil.NewMockBillingGateway(), policy, testBillingOptions(), newTestLogger()), subscription.TierFree, errors.ErrCodeInvalidArgument},
		{"unknown tier", NewBillingService(users, testutil.NewMockBillingGateway(), policy, testBillingOptions(), newTestLogger()), "gold", errors.ErrCodeInvalidArgument},
		{"unpriced tier", NewBillingService(users, testutil.NewMockBillingGateway(), policy, BillingOptions{}, newTestLogger()), subscription.TierBasic, errors.ErrCodeInvalidArgument},
		{"provider failure", NewBillingService(users, failing, policy, testBillingOptions(), newTestLogger()), subscription.TierBasic, errors.ErrCodeProviderAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.service.CreateCheckout(context.Background(), u.ID, tt.tier)
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("CreateCheckout() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestBillingService_ConfirmCheckout(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	u := seedUser(f.users, "teacher@example.com", user.RoleUser, subscription.TierFree)
	other := seedUser(f.users, "other@example.com", user.RoleUser, subscription.TierFree)
	periodEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	f.gateway.Sessions["cs_paid"] = &billing.CompletedCheckout{
		SessionID:      "cs_paid",
		UserID:         u.ID,
		CustomerID:     "cus_1",
		SubscriptionID: "sub_1",
		Status:         billing.SessionStatusComplete,
		PaymentStatus:  billing.PaymentStatusPaid,
		PriceID:        "price_premium",
		PeriodEnd:      &periodEnd,
	}
	f.gateway.Sessions["cs_open"] = &billing.CompletedCheckout{
		SessionID: "cs_open", UserID: u.ID, Status: "open", PaymentStatus: "unpaid", PriceID: "price_basic",
	}

	got, err := f.service.ConfirmCheckout(ctx, u.ID, "cs_paid")
	if err != nil {
		t.Fatalf("ConfirmCheckout() error = %v", err)
	}
	sub := got.Subscription
	if sub.Tier != subscription.TierPremium {
		t.Errorf("Tier = %s, want premium", sub.Tier)
	}
	if !sub.AICredits.Equal(subscription.Finite(150)) {
		t.Errorf("AICredits = %v, want 150", sub.AICredits)
	}
	if sub.ExpiresAt == nil || !sub.ExpiresAt.Equal(periodEnd) {
		t.Errorf("ExpiresAt = %v, want %v", sub.ExpiresAt, periodEnd)
	}
	if sub.StripeSubscriptionID != "sub_1" || sub.StripeCustomerID != "cus_1" {
		t.Errorf("stripe ids = %q/%q", sub.StripeCustomerID, sub.StripeSubscriptionID)
	}

	writes := f.users.Writes
	if _, err := f.service.ConfirmCheckout(ctx, u.ID, "cs_paid"); err != nil {
		t.Fatalf("repeat ConfirmCheckout() error = %v", err)
	}
	if f.users.Writes != writes {
		t.Error("confirming the same session twice wrote again")
	}

	tests := []struct {
		name     string
		userID   string
		session  string
		wantCode string
	}{
		{"another user's session", other.ID, "cs_paid", errors.ErrCodeForbidden},
		{"unpaid session", u.ID, "cs_open", errors.ErrCodeBadRequest},
		{"unknown session", u.ID, "cs_missing", errors.ErrCodeNotFound},
		{"blank session", u.ID, " ", errors.ErrCodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.ConfirmCheckout(ctx, tt.userID, tt.session)
			if !errors.HasCode(err, tt.wantCode) {
				t.Errorf("ConfirmCheckout() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestBillingService_ConfirmCheckout_TierPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		checkout billing.CompletedCheckout
		want     subscription.Tier
	}{
		{"product metadata wins", billing.CompletedCheckout{ProductTier: "premium", MetadataTier: "basic", PriceID: "price_basic"}, subscription.TierPremium},
		{"session metadata next", billing.CompletedCheckout{MetadataTier: "basic", PriceID: "price_premium"}, subscription.TierBasic},
		{"price table last", billing.CompletedCheckout{PriceID: "price_basic"}, subscription.TierBasic},
		{"free metadata ignored", billing.CompletedCheckout{ProductTier: "free", PriceID: "price_premium"}, subscription.TierPremium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBillingFixture()
			u := seedUser(f.users, "teacher@example.com", user.RoleUser, subscription.TierFree)
			c := tt.checkout
			c.SessionID, c.UserID = "cs_x", u.ID
			c.Status, c.PaymentStatus = billing.SessionStatusComplete, billing.PaymentStatusPaid
			f.gateway.Sessions["cs_x"] = &c

			got, err := f.service.ConfirmCheckout(context.Background(), u.ID, "cs_x")
			if err != nil {
				t.Fatalf("ConfirmCheckout() error = %v", err)
			}
			if got.Subscription.Tier != tt.want {
				t.Errorf("Tier = %s, want %s", got.Subscription.Tier, tt.want)
			}
		})
	}
}

func TestBillingService_CreatePortal(t *testing.T) {
	f := newBillingFixture()
	ctx := context.Background()
	u := seedUser(f.users, "teacher@example.com", user.RoleUser, subscription.TierFree)

	if _, err := f.service.CreatePortal(ctx, u.ID); !errors.HasCode(err, errors.ErrCodeBadRequest) {
		t.Errorf("CreatePortal() without customer error = %v, want BAD_REQUEST", err)
	}

	customer := "cus_42"
	if _, err := f.users.UpdateSubscription(ctx, u.ID, user.SubscriptionUpdate{StripeCustomerID: &customer}); err != nil {
		t.Fatal(err)
	}
	url, err := f.service.CreatePortal(ctx, u.ID)
	if err != nil {
		t.Fatalf("CreatePortal() error = %v", err)
	}
	if url != "https://billing.stripe.com/p/session/cus_42" {
		t.Errorf("CreatePortal() = %q", url)
	}
}

func TestBillingService_HandleWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("bad signature", func(t *testing.T) {
		f := newBillingFixture()
		f.gateway.WebhookErr = stderrors.New("signature mismatch")
		if err := f.service.HandleWebhook(ctx, []byte("{}"), "t=1,v1=bad"); !errors.HasCode(err, errors.ErrCodeBadRequest) {
			t.Errorf("HandleWebhook() error = %v, want BAD_REQUEST", err)
		}
	})

	t.Run("missing signing secret", func(t *testing.T) {
		f := newBillingFixture()
		f.gateway.WebhookErr = errors.ServiceUnavailable("Webhook signing secret is not configured")
		if err := f.service.HandleWebhook(ctx, []byte("{}"), "t=1,v1=x"); !errors.HasCode(err, errors.ErrCodeServiceUnavailable) {
			t.Errorf("HandleWebhook() error = %v, want SERVICE_UNAVAILABLE", err)
		}
	})

	t.Run("checkout completed upgrades", func(t *testing.T) {
		f := newBillingFixture()
		u := seedUser(f.users, "teacher@example.com", user.RoleUser, subscription.TierFree)
		f.gateway.Event = &billing.Event{
			ID:   "evt_1",
			Type: billing.EventCheckoutCompleted,
			Checkout: &billing.CompletedCheckout{
				SessionID: "cs_1", UserID: u.ID, CustomerID: "cus_1", SubscriptionID: "sub_1",
				Status: billing.SessionStatusComplete, PaymentStatus: billing.PaymentStatusPaid,
				PriceID: "price_basic",
			},
		}
		if err := f.service.HandleWebhook(ctx, []byte("{}"), "sig"); err != nil {
			t.Fatalf("HandleWebhook() error = %v", err)
		}
		stored, _ := f.users.GetByID(ctx, u.ID)
		if stored.Subscription.Tier != subscription.TierBasic {
			t.Errorf("Tier = %s, want basic", stored.Subscription.Tier)
		}
	})

	t.Run("subscription deleted downgrades", func(t *testing.T) {
		f := newBillingFixture()
		u := seedUser(f.users, "teacher@example.com", user.RoleUser, subscription.TierPremium)
		expires := time.Now().Add(24 * time.Hour)
		customer, sub := "cus_9", "sub_9"
		if _, err := f.users.UpdateSubscription(ctx, u.ID, user.SubscriptionUpdate{
			StripeCustomerID: &customer, StripeSubscriptionID: &sub, ExpiresAt: &expires,
		}); err != nil {
			t.Fatal(err)
		}

		f.gateway.Event = &billing.Event{ID: "evt_old", Type: billing.EventSubscriptionDeleted, CustomerID: customer, SubscriptionID: "sub_old"}
		if err := f.service.HandleWebhook(ctx, nil, "sig"); err != nil {
			t.Fatalf("HandleWebhook() error = %v", err)
		}
		stored, _ := f.users.GetByID(ctx, u.ID)
		if stored.Subscription.Tier != subscription.TierPremium {
			t.Fatal("deleting a superseded subscription downgraded the user")
		}

		f.gateway.Event = &billing.Event{ID: "evt_2", Type: billing.EventSubscriptionDeleted, CustomerID: customer, SubscriptionID: sub}
		if err := f.service.HandleWebhook(ctx, nil, "sig"); err != nil {
			t.Fatalf("HandleWebhook() error = %v", err)
		}
		stored, _ = f.users.GetByID(ctx, u.ID)
		if stored.Subscription.Tier != subscription.TierFree {
			t.Errorf("Tier = %s, want free", stored.Subscription.Tier)
		}
		if stored.Subscription.ExpiresAt != nil {
			t.Error("ExpiresAt should be cleared on downgrade")
		}
		if !stored.Subscription.AICredits.Equal(subscription.Finite(5)) {
			t.Errorf("AICredits = %v, want 5", stored.Subscription.AICredits)
		}
	})

	t.Run("unknown event ignored", func(t *testing.T) {
		f := newBillingFixture()
		f.gateway.Event = &billing.Event{ID: "evt_3", Type: "invoice.paid"}
		if err := f.service.HandleWebhook(ctx, nil, "sig"); err != nil {
			t.Errorf("HandleWebhook() error = %v, want nil", err)
		}
	})
}
