package premium

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/payment"
	"github.com/evcraddock/fsbo/internal/property"
	"github.com/evcraddock/fsbo/internal/user"
	"github.com/evcraddock/fsbo/internal/validation"
)

// Service runs the two-phase premium upgrade: CreateIntent, then Verify once
// the buyer has paid.
type Service struct {
	db       *gorm.DB
	repo     *Repository
	props    *property.Service
	users    *user.Repository
	provider payment.Provider
	now      func() time.Time
}

// NewService creates a premium service. provider may be nil, in which case
// the payment operations report the feature as unavailable.
func NewService(gdb *gorm.DB, props *property.Service, users *user.Repository, provider payment.Provider) *Service {
	return &Service{
		db:       gdb,
		repo:     NewRepository(gdb),
		props:    props,
		users:    users,
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether a payment provider is configured.
func (s *Service) Enabled() bool {
	return s.provider != nil
}

// Repository exposes the ledger for read-only reporting.
func (s *Service) Repository() *Repository {
	return s.repo
}

// CreateIntent starts a premium purchase for a listing the actor manages.
func (s *Service) CreateIntent(ctx context.Context, actor identity.Actor, propertyID int64) (*Checkout, error) {
	if !s.Enabled() {
		return nil, apperr.Unavailable("payments are not configured")
	}
	p, err := s.props.Manageable(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, actor)
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateIntent(ctx, payment.IntentRequest{
		Amount:     PriceCents,
		Currency:   Currency,
		CustomerID: customerID,
		Metadata: map[string]string{
			"propertyId": strconv.FormatInt(p.ID, 10),
			"userId":     actor.UserID,
		},
		IdempotencyKey: uuid.NewString(),
	})
	if err != nil {
		return nil, apperr.New(apperr.CodeUnavailable, "payment processor error", http.StatusBadGateway, err)
	}

	return &Checkout{
		ClientSecret: intent.ClientSecret,
		IntentID:     intent.ID,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
	}, nil
}

func (s *Service) ensureCustomer(ctx context.Context, actor identity.Actor) (string, error) {
	u, err := s.users.Get(ctx, actor.UserID)
	if err != nil {
		return "", err
	}
	if u.PaymentCustomerID != nil && *u.PaymentCustomerID != "" {
		return *u.PaymentCustomerID, nil
	}

	var email string
	if u.Email != nil {
		email = *u.Email
	}
	id, err := s.provider.CreateCustomer(ctx, payment.Customer{Email: email, Name: u.DisplayName(), UserID: u.ID})
	if err != nil {
		return "", apperr.New(apperr.CodeUnavailable, "payment processor error", http.StatusBadGateway, err)
	}
	if err := s.users.SetPaymentCustomerID(ctx, u.ID, id); err != nil {
		return "", err
	}
	return id, nil
}

// Upgrade is the outcome of a verified payment.
type Upgrade struct {
	Property    *property.Property `json:"property"`
	Transaction *Transaction       `json:"transaction"`
	// Created is false when the payment had already been recorded.
	Created bool `json:"-"`
}

// Verify confirms a paid intent and upgrades the listing. Verifying the same
// intent again returns the existing ledger row without charging or writing.
func (s *Service) Verify(ctx context.Context, actor identity.Actor, req VerifyRequest) (*Upgrade, error) {
	if !s.Enabled() {
		return nil, apperr.Unavailable("payments are not configured")
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.props.Manageable(ctx, actor, req.PropertyID); err != nil {
		return nil, err
	}

	intent, err := s.provider.GetIntent(ctx, req.PaymentIntentID)
	if errors.Is(err, payment.ErrIntentNotFound) {
		return nil, apperr.NotFound("payment intent")
	}
	if err != nil {
		return nil, apperr.New(apperr.CodeUnavailable, "payment processor error", http.StatusBadGateway, err)
	}
	if !intent.Succeeded() {
		return nil, apperr.New(apperr.CodePaymentRequired,
			fmt.Sprintf("payment status is %s", intent.Status), http.StatusPaymentRequired, ErrPaymentNotSucceeded)
	}
	if intent.Metadata["propertyId"] != strconv.FormatInt(req.PropertyID, 10) {
		return nil, apperr.Validation("payment intent does not belong to property %d", req.PropertyID)
	}

	up, err := s.record(ctx, actor, req.PropertyID, intent)
	if errors.Is(err, errDuplicateRef) {
		// Lost a race with a concurrent verify of the same intent.
		return s.existing(ctx, intent.ID)
	}
	if err != nil {
		return nil, err
	}
	if up.Created {
		slog.InfoContext(ctx, "premium upgrade", "property_id", req.PropertyID, "user_id", actor.UserID, "payment_ref", intent.ID)
	}
	return up, nil
}

func (s *Service) record(ctx context.Context, actor identity.Actor, propertyID int64, intent *payment.Intent) (*Upgrade, error) {
	up := &Upgrade{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := s.repo.WithTx(tx)
		props := s.props.Repository().WithTx(tx)

		prior, err := ledger.ByRef(ctx, intent.ID)
		switch {
		case err == nil:
			up.Transaction = prior
		case apperr.Is(err, apperr.CodeNotFound):
			if err := props.SetPremium(ctx, propertyID, true, s.now().Add(property.PremiumDuration)); err != nil {
				return err
			}
			t := &Transaction{
				UserID:     actor.UserID,
				PropertyID: propertyID,
				Amount:     intent.Amount,
				PaymentRef: intent.ID,
				Status:     StatusCompleted,
			}
			if err := ledger.Create(ctx, t); err != nil {
				return err
			}
			up.Transaction = t
			up.Created = true
		default:
			return err
		}

		p, err := props.Get(ctx, propertyID)
		if err != nil {
			return err
		}
		up.Property = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return up, nil
}

func (s *Service) existing(ctx context.Context, ref string) (*Upgrade, error) {
	t, err := s.repo.ByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	p, err := s.props.Repository().Get(ctx, t.PropertyID)
	if err != nil {
		return nil, err
	}
	return &Upgrade{Property: p, Transaction: t}, nil
}

// ListForUser returns a user's purchases. Self or admin only.
func (s *Service) ListForUser(ctx context.Context, actor identity.Actor, userID string) ([]*Transaction, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if actor.UserID != userID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("you can only view your own transactions")
	}
	return s.repo.ListForUser(ctx, userID)
}

// ListAll returns the whole ledger.
func (s *Service) ListAll(ctx context.Context) ([]*Transaction, error) {
	return s.repo.ListAll(ctx)
}

// Totals returns the completed transaction count and revenue in cents.
func (s *Service) Totals(ctx context.Context) (count, revenue int64, err error) {
	return s.repo.Totals(ctx)
}
