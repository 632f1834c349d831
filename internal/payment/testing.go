package payment

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// SetTestBackend points a Stripe provider at a test server.
// This should only be used in tests.
func SetTestBackend(s *Stripe, url string) {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(url),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	s.api = client.New("sk_test_fake", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

// FakeProvider is an in-memory Provider for tests.
type FakeProvider struct {
	mu        sync.Mutex
	intents   map[string]*Intent
	customers int
	created   int
}

// NewFakeProvider creates an empty fake.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{intents: make(map[string]*Intent)}
}

// CreateIntent records a new intent awaiting payment.
func (f *FakeProvider) CreateIntent(_ context.Context, req IntentRequest) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
	id := fmt.Sprintf("pi_fake_%d", f.created)
	in := &Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       "requires_payment_method",
		Metadata:     maps.Clone(req.Metadata),
	}
	f.intents[id] = in
	out := *in
	return &out, nil
}

// GetIntent returns a copy of a recorded intent.
func (f *FakeProvider) GetIntent(_ context.Context, id string) (*Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.intents[id]
	if !ok {
		return nil, ErrIntentNotFound
	}
	out := *in
	return &out, nil
}

// CreateCustomer returns a new fake customer id.
func (f *FakeProvider) CreateCustomer(_ context.Context, _ Customer) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers++
	return fmt.Sprintf("cus_fake_%d", f.customers), nil
}

// SetStatus changes a recorded intent's status, simulating the buyer paying.
func (f *FakeProvider) SetStatus(id, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in, ok := f.intents[id]; ok {
		in.Status = status
	}
}

// Put stores an intent as-is.
func (f *FakeProvider) Put(in Intent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.intents[in.ID] = &in
}

// Customers returns how many customers were created.
func (f *FakeProvider) Customers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customers
}
