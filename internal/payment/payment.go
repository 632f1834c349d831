// Package payment creates and inspects payment intents with an external
// payment processor.
package payment

import (
	"context"
	"errors"
)

// StatusSucceeded is the intent status that confirms funds were captured.
const StatusSucceeded = "succeeded"

// ErrIntentNotFound is returned when the processor has no such intent.
var ErrIntentNotFound = errors.New("payment intent not found")

// Intent is the processor-neutral view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Currency     string
	Status       string
	Metadata     map[string]string
}

// Succeeded reports whether the intent has been paid.
func (i *Intent) Succeeded() bool {
	return i.Status == StatusSucceeded
}

// IntentRequest describes a payment intent to create.
type IntentRequest struct {
	Amount     int64
	Currency   string
	CustomerID string
	Metadata   map[string]string
	// IdempotencyKey is forwarded so a retried create does not charge twice.
	IdempotencyKey string
}

// Customer identifies the payer when registering them with the processor.
type Customer struct {
	Email string
	Name  string
	// UserID is stored in the customer's metadata.
	UserID string
}

// Provider is the payment delegate.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	GetIntent(ctx context.Context, id string) (*Intent, error)
	CreateCustomer(ctx context.Context, c Customer) (string, error)
}
