package premium

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/db"
	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/payment"
	"github.com/evcraddock/fsbo/internal/property"
	"github.com/evcraddock/fsbo/internal/user"
)

var (
	seller   = identity.Actor{UserID: "seller", Role: user.RoleSeller, Email: "seller@example.com"}
	stranger = identity.Actor{UserID: "stranger", Role: user.RoleBuyer}
	admin    = identity.Actor{UserID: "admin", Role: user.RoleAdmin}
)

type fixture struct {
	svc      *Service
	db       *gorm.DB
	provider *payment.FakeProvider
	props    *property.Service
	users    *user.Repository
	listing  *property.Property
}

func setup(t *testing.T) fixture {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if cerr := db.Close(d); cerr != nil {
			t.Errorf("close db: %v", cerr)
		}
	})

	users := user.NewRepository(d)
	ctx := context.Background()
	for _, a := range []identity.Actor{seller, stranger, admin} {
		if _, err := users.Upsert(ctx, user.Profile{ID: a.UserID, Email: a.Email}, a.Role); err != nil {
			t.Fatalf("seed %s: %v", a.UserID, err)
		}
	}

	props := property.NewService(property.NewRepository(d), users)
	listing, err := props.Create(ctx, seller, property.NewProperty{
		Title: "Bungalow", Description: "d", Price: 180000, Address: "4 Pine", City: "Boise",
		State: "ID", ZipCode: "83702", Bedrooms: 2, Bathrooms: 1, SquareFeet: 900, PropertyType: "House",
	})
	if err != nil {
		t.Fatalf("create listing: %v", err)
	}

	provider := payment.NewFakeProvider()
	return fixture{
		svc:      NewService(d, props, users, provider),
		db:       d,
		provider: provider,
		props:    props,
		users:    users,
		listing:  listing,
	}
}

func (f fixture) ledgerRows(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&Transaction{}).Count(&n).Error; err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	return n
}

func (f fixture) paidIntent(t *testing.T) string {
	t.Helper()
	co, err := f.svc.CreateIntent(context.Background(), seller, f.listing.ID)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	f.provider.SetStatus(co.IntentID, payment.StatusSucceeded)
	return co.IntentID
}

func TestCreateIntent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	co, err := f.svc.CreateIntent(ctx, seller, f.listing.ID)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if co.Amount != PriceCents || co.Currency != Currency || co.ClientSecret == "" {
		t.Errorf("checkout = %+v", co)
	}

	in, err := f.provider.GetIntent(ctx, co.IntentID)
	if err != nil {
		t.Fatalf("get intent: %v", err)
	}
	if in.Metadata["propertyId"] != strconv.FormatInt(f.listing.ID, 10) || in.Metadata["userId"] != "seller" {
		t.Errorf("metadata = %v", in.Metadata)
	}

	u, err := f.users.Get(ctx, "seller")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.PaymentCustomerID == nil || *u.PaymentCustomerID == "" {
		t.Fatal("payment customer id not stored")
	}

	if _, err := f.svc.CreateIntent(ctx, seller, f.listing.ID); err != nil {
		t.Fatalf("second intent: %v", err)
	}
	if got := f.provider.Customers(); got != 1 {
		t.Errorf("created %d customers, want 1", got)
	}
}

func TestCreateIntentGuard(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.svc.CreateIntent(ctx, stranger, f.listing.ID); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("stranger: got %v, want forbidden", err)
	}
	if _, err := f.svc.CreateIntent(ctx, identity.Actor{}, f.listing.ID); !apperr.Is(err, apperr.CodeUnauthorized) {
		t.Errorf("anonymous: got %v, want unauthorized", err)
	}
	if _, err := f.svc.CreateIntent(ctx, seller, 999); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("missing listing: got %v, want not found", err)
	}
}

func TestPaymentsDisabled(t *testing.T) {
	f := setup(t)
	svc := NewService(f.db, f.props, f.users, nil)
	ctx := context.Background()

	if svc.Enabled() {
		t.Fatal("Enabled() = true with no provider")
	}
	if _, err := svc.CreateIntent(ctx, seller, f.listing.ID); !apperr.Is(err, apperr.CodeUnavailable) {
		t.Errorf("create intent: got %v, want unavailable", err)
	}
	if _, err := svc.Verify(ctx, seller, VerifyRequest{PaymentIntentID: "pi_x", PropertyID: f.listing.ID}); !apperr.Is(err, apperr.CodeUnavailable) {
		t.Errorf("verify: got %v, want unavailable", err)
	}
}

func TestVerifyUnpaidIntent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	co, err := f.svc.CreateIntent(ctx, seller, f.listing.ID)
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}

	_, err = f.svc.Verify(ctx, seller, VerifyRequest{PaymentIntentID: co.IntentID, PropertyID: f.listing.ID})
	if !errors.Is(err, ErrPaymentNotSucceeded) {
		t.Fatalf("got %v, want ErrPaymentNotSucceeded", err)
	}
	if apperr.StatusOf(err) != 402 {
		t.Errorf("status = %d, want 402", apperr.StatusOf(err))
	}

	p, err := f.props.Repository().Get(ctx, f.listing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if p.IsPremium {
		t.Error("listing became premium without payment")
	}
	if n := f.ledgerRows(t); n != 0 {
		t.Errorf("ledger has %d rows, want 0", n)
	}
}

func TestVerifyUpgradesOnce(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ref := f.paidIntent(t)
	before := time.Now().UTC()

	up, err := f.svc.Verify(ctx, seller, VerifyRequest{PaymentIntentID: ref, PropertyID: f.listing.ID})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !up.Created || !up.Property.IsPremium {
		t.Errorf("upgrade = %+v", up)
	}
	if up.Property.PremiumUntil == nil {
		t.Fatal("premium_until not set")
	}
	wantUntil := before.Add(property.PremiumDuration)
	if d := up.Property.PremiumUntil.Sub(wantUntil); d < -time.Minute || d > time.Minute {
		t.Errorf("premium_until = %v, want about %v", up.Property.PremiumUntil, wantUntil)
	}
	if up.Transaction.Amount != PriceCents || up.Transaction.PaymentRef != ref {
		t.Errorf("transaction = %+v", up.Transaction)
	}

	again, err := f.svc.Verify(ctx, seller, VerifyRequest{PaymentIntentID: ref, PropertyID: f.listing.ID})
	if err != nil {
		t.Fatalf("verify again: %v", err)
	}
	if again.Created {
		t.Error("second verify created a new row")
	}
	if again.Transaction.ID != up.Transaction.ID {
		t.Errorf("transaction id = %d, want %d", again.Transaction.ID, up.Transaction.ID)
	}
	if n := f.ledgerRows(t); n != 1 {
		t.Errorf("ledger has %d rows, want 1", n)
	}
}

func TestVerifyRejects(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ref := f.paidIntent(t)

	other, err := f.props.Create(ctx, seller, property.NewProperty{
		Title: "Other", Description: "d", Price: 1, Address: "a", City: "c", State: "s",
		ZipCode: "z", Bedrooms: 1, Bathrooms: 1, SquareFeet: 1, PropertyType: "Condo",
	})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}

	tests := []struct {
		name  string
		actor identity.Actor
		req   VerifyRequest
		code  string
	}{
		{"missing intent id", seller, VerifyRequest{PropertyID: f.listing.ID}, apperr.CodeValidation},
		{"unknown intent", seller, VerifyRequest{PaymentIntentID: "pi_nope", PropertyID: f.listing.ID}, apperr.CodeNotFound},
		{"intent for another listing", seller, VerifyRequest{PaymentIntentID: ref, PropertyID: other.ID}, apperr.CodeValidation},
		{"stranger", stranger, VerifyRequest{PaymentIntentID: ref, PropertyID: f.listing.ID}, apperr.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Verify(ctx, tt.actor, tt.req); !apperr.Is(err, tt.code) {
				t.Fatalf("got %v, want %s", err, tt.code)
			}
		})
	}

	if n := f.ledgerRows(t); n != 0 {
		t.Errorf("ledger has %d rows, want 0", n)
	}
}

func TestLedgerReads(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ref := f.paidIntent(t)
		if _, err := f.svc.Verify(ctx, seller, VerifyRequest{PaymentIntentID: ref, PropertyID: f.listing.ID}); err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
	}

	mine, err := f.svc.ListForUser(ctx, seller, "seller")
	if err != nil || len(mine) != 2 {
		t.Errorf("ListForUser = %d, %v", len(mine), err)
	}
	if _, err := f.svc.ListForUser(ctx, stranger, "seller"); !apperr.Is(err, apperr.CodeForbidden) {
		t.Errorf("stranger: got %v, want forbidden", err)
	}
	if _, err := f.svc.ListForUser(ctx, admin, "seller"); err != nil {
		t.Errorf("admin: %v", err)
	}

	count, revenue, err := f.svc.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if count != 2 || revenue != 2*PriceCents {
		t.Errorf("totals = %d, %d", count, revenue)
	}

	all, err := f.svc.ListAll(ctx)
	if err != nil || len(all) != 2 {
		t.Errorf("ListAll = %d, %v", len(all), err)
	}
}
