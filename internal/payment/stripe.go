package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// Stripe is a Provider backed by the Stripe API.
type Stripe struct {
	api *client.API
}

// NewStripe creates a Stripe provider with the given secret key.
func NewStripe(secretKey string) (*Stripe, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	return &Stripe{api: client.New(secretKey, nil)}, nil
}

// CreateIntent creates a payment intent.
func (s *Stripe) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

// GetIntent fetches the current state of a payment intent.
func (s *Stripe) GetIntent(ctx context.Context, id string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.Get(id, params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Code == stripe.ErrorCodeResourceMissing {
			return nil, ErrIntentNotFound
		}
		return nil, fmt.Errorf("fetching payment intent %s: %w", id, err)
	}
	return fromStripe(pi), nil
}

// CreateCustomer registers a customer and returns its Stripe id.
func (s *Stripe) CreateCustomer(ctx context.Context, c Customer) (string, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	if c.Email != "" {
		params.Email = stripe.String(c.Email)
	}
	if c.Name != "" {
		params.Name = stripe.String(c.Name)
	}
	if c.UserID != "" {
		params.AddMetadata("userId", c.UserID)
	}

	cust, err := s.api.Customers.New(params)
	if err != nil {
		return "", fmt.Errorf("creating customer: %w", err)
	}
	return cust.ID, nil
}

func fromStripe(pi *stripe.PaymentIntent) *Intent {
	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
}
