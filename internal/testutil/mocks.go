package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pratik-mahalle/lessonplanner/internal/domain/billing"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/generation"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/lessonplan"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/quota"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
)

// NewID returns a fresh hex object id
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// MockUserRepository is an in-memory implementation of user.Repository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*user.User
	Accounts    []*user.Account
	CreateError error
	GetError    error
	UpdateError error
	Writes      int

	// AfterListExpired runs once ListExpired has built its result
	AfterListExpired func()
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*user.User)}
}

func cloneUser(u *user.User) *user.User {
	c := *u
	c.Subscription.Features = append([]string(nil), u.Subscription.Features...)
	if u.Subscription.ExpiresAt != nil {
		t := *u.Subscription.ExpiresAt
		c.Subscription.ExpiresAt = &t
	}
	return &c
}

// Seed stores u directly, assigning an ID when it has none
func (m *MockUserRepository) Seed(u *user.User) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == "" {
		u.ID = NewID()
	}
	m.Users[u.ID] = cloneUser(u)
	return u
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range m.Users {
		if existing.Email == u.Email {
			return errors.Conflict("User already exists")
		}
	}
	u.ID = NewID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	m.Users[u.ID] = cloneUser(u)
	m.Writes++
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return cloneUser(u), nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return m.find(func(u *user.User) bool { return u.Email == strings.ToLower(strings.TrimSpace(email)) })
}

func (m *MockUserRepository) GetByStripeCustomer(ctx context.Context, customerID string) (*user.User, error) {
	if customerID == "" {
		return nil, errors.NotFound("User")
	}
	return m.find(func(u *user.User) bool { return u.Subscription.StripeCustomerID == customerID })
}

func (m *MockUserRepository) find(match func(*user.User) bool) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	for _, u := range m.Users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, errors.NotFound("User")
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id, name, image string) error {
	_, err := m.mutate(id, func(u *user.User) {
		u.Name = name
		u.Image = image
	})
	return err
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role user.Role) (*user.User, error) {
	return m.mutate(id, func(u *user.User) { u.Role = role })
}

func (m *MockUserRepository) UpdateSubscription(ctx context.Context, id string, upd user.SubscriptionUpdate) (*user.User, error) {
	return m.mutate(id, func(u *user.User) { upd.Apply(&u.Subscription) })
}

func (m *MockUserRepository) mutate(id string, fn func(*user.User)) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return nil, m.UpdateError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	fn(u)
	u.UpdatedAt = time.Now().UTC()
	m.Writes++
	return cloneUser(u), nil
}

func (m *MockUserRepository) DecrementCredit(ctx context.Context, id string) (subscription.Limit, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return subscription.Limit{}, false, m.UpdateError
	}
	u, ok := m.Users[id]
	if !ok {
		return subscription.Limit{}, false, errors.NotFound("User")
	}
	credits := u.Subscription.AICredits
	if credits.IsUnbounded() || credits.Value() == 0 {
		return credits, false, nil
	}
	u.Subscription.AICredits = credits.Decrement()
	m.Writes++
	return u.Subscription.AICredits, true, nil
}

func (m *MockUserRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*user.User, error) {
	m.mu.Lock()
	if m.GetError != nil {
		m.mu.Unlock()
		return nil, m.GetError
	}
	var out []*user.User
	for _, u := range m.Users {
		if expiredAt(u, now) {
			out = append(out, cloneUser(u))
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Subscription.ExpiresAt.Before(*out[j].Subscription.ExpiresAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	if m.AfterListExpired != nil {
		m.AfterListExpired()
	}
	return out, nil
}

func (m *MockUserRepository) DowngradeIfExpired(ctx context.Context, id string, now time.Time, upd user.SubscriptionUpdate) (*user.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return nil, false, m.UpdateError
	}
	u, ok := m.Users[id]
	if !ok || !expiredAt(u, now) {
		return nil, false, nil
	}
	upd.Apply(&u.Subscription)
	u.UpdatedAt = time.Now().UTC()
	m.Writes++
	return cloneUser(u), true, nil
}

func expiredAt(u *user.User, now time.Time) bool {
	exp := u.Subscription.ExpiresAt
	return u.Subscription.Tier != subscription.TierFree && exp != nil && exp.Before(now)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, 0, m.GetError
	}
	all := make([]*user.User, 0, len(m.Users))
	for _, u := range m.Users {
		all = append(all, cloneUser(u))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return window(all, limit, offset), int64(len(all)), nil
}

func (m *MockUserRepository) LinkAccount(ctx context.Context, a *user.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Accounts {
		if existing.Provider == a.Provider && existing.ProviderAccountID == a.ProviderAccountID {
			return nil
		}
	}
	c := *a
	m.Accounts = append(m.Accounts, &c)
	return nil
}

func window[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// MockLessonPlanRepository is an in-memory implementation of lessonplan.Repository
type MockLessonPlanRepository struct {
	mu          sync.Mutex
	Plans       map[string]*lessonplan.LessonPlan
	CreateError error
	GetError    error
	CountError  error
	clock       time.Time
}

func NewMockLessonPlanRepository() *MockLessonPlanRepository {
	return &MockLessonPlanRepository{
		Plans: make(map[string]*lessonplan.LessonPlan),
		clock: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func clonePlan(p *lessonplan.LessonPlan) *lessonplan.LessonPlan {
	c := *p
	c.Tags = append([]string(nil), p.Tags...)
	c.SharedWith = append([]lessonplan.Share(nil), p.SharedWith...)
	return &c
}

// tick returns strictly increasing timestamps so creation order is stable
func (m *MockLessonPlanRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// SeedPlans stores n plans owned by ownerID, oldest first
func (m *MockLessonPlanRepository) SeedPlans(ownerID string, n int) []*lessonplan.LessonPlan {
	plans := make([]*lessonplan.LessonPlan, 0, n)
	for i := 0; i < n; i++ {
		p := &lessonplan.LessonPlan{UserID: ownerID, Title: "Plan", Tags: []string{}}
		_ = m.Create(context.Background(), p)
		plans = append(plans, p)
	}
	return plans
}

func (m *MockLessonPlanRepository) Create(ctx context.Context, p *lessonplan.LessonPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	p.ID = NewID()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	m.Plans[p.ID] = clonePlan(p)
	return nil
}

func (m *MockLessonPlanRepository) GetByID(ctx context.Context, id string) (*lessonplan.LessonPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	p, ok := m.Plans[id]
	if !ok {
		return nil, errors.NotFound("Lesson plan")
	}
	return clonePlan(p), nil
}

func (m *MockLessonPlanRepository) Update(ctx context.Context, id string, upd lessonplan.Update) (*lessonplan.LessonPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Plans[id]
	if !ok {
		return nil, errors.NotFound("Lesson plan")
	}
	upd.Apply(p)
	p.UpdatedAt = m.tick()
	return clonePlan(p), nil
}

func (m *MockLessonPlanRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Plans[id]; !ok {
		return errors.NotFound("Lesson plan")
	}
	delete(m.Plans, id)
	return nil
}

func (m *MockLessonPlanRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountError != nil {
		return 0, m.CountError
	}
	var n int64
	for _, p := range m.Plans {
		if p.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (m *MockLessonPlanRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]*lessonplan.LessonPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	var owned []*lessonplan.LessonPlan
	for _, p := range m.Plans {
		if p.UserID == ownerID {
			owned = append(owned, clonePlan(p))
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return window(owned, limit, offset), nil
}

// MockUsageRepository is an in-memory implementation of quota.UsageRepository
type MockUsageRepository struct {
	mu          sync.Mutex
	Records     []*quota.UsageRecord
	AppendError error
}

func NewMockUsageRepository() *MockUsageRepository {
	return &MockUsageRepository{}
}

func (m *MockUsageRepository) Append(ctx context.Context, r *quota.UsageRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendError != nil {
		return m.AppendError
	}
	r.ID = NewID()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	c := *r
	m.Records = append(m.Records, &c)
	return nil
}

func (m *MockUsageRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*quota.UsageRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*quota.UsageRecord
	for i := len(m.Records) - 1; i >= 0 && len(out) < limit; i-- {
		if m.Records[i].UserID == userID {
			c := *m.Records[i]
			out = append(out, &c)
		}
	}
	return out, nil
}

// Count returns how many records were appended for userID
func (m *MockUsageRepository) Count(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.Records {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

// MockGenerator is a scripted generation.Generator
type MockGenerator struct {
	mu         sync.Mutex
	Content    string
	Model      string
	Err        error
	Calls      int
	LastSystem string
	LastPrompt string
}

func (m *MockGenerator) Complete(ctx context.Context, system, prompt string) (*generation.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastSystem = system
	m.LastPrompt = prompt
	if m.Err != nil {
		return nil, m.Err
	}
	return &generation.Result{Content: m.Content, Model: m.Model}, nil
}

// MockBillingGateway is a scripted billing.Gateway
type MockBillingGateway struct {
	mu            sync.Mutex
	NextCustomer  string
	Sessions      map[string]*billing.CompletedCheckout
	Event         *billing.Event
	Err           error
	WebhookErr    error
	Checkouts     []billing.CheckoutRequest
	CustomerCalls int
}

func NewMockBillingGateway() *MockBillingGateway {
	return &MockBillingGateway{NextCustomer: "cus_test", Sessions: make(map[string]*billing.CompletedCheckout)}
}

func (m *MockBillingGateway) EnsureCustomer(ctx context.Context, existingID, userID, email string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if existingID != "" {
		return existingID, nil
	}
	m.CustomerCalls++
	return m.NextCustomer, nil
}

func (m *MockBillingGateway) CreateCheckoutSession(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.Checkouts = append(m.Checkouts, req)
	return &billing.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/c/pay/cs_test"}, nil
}

func (m *MockBillingGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*billing.CompletedCheckout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	s, ok := m.Sessions[sessionID]
	if !ok {
		return nil, errors.NotFound("Checkout session")
	}
	c := *s
	return &c, nil
}

func (m *MockBillingGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "https://billing.stripe.com/p/session/" + customerID, nil
}

func (m *MockBillingGateway) ParseWebhook(payload []byte, signature string) (*billing.Event, error) {
	if m.WebhookErr != nil {
		return nil, m.WebhookErr
	}
	return m.Event, nil
}
