// Package premium sells featured placement for listings and keeps the
// append-only ledger of completed payments.
package premium

import (
	"errors"
	"time"
)

const (
	// PriceCents is the fixed price of one premium period.
	PriceCents int64 = 99900
	// Currency of PriceCents.
	Currency = "usd"

	StatusCompleted = "completed"
)

// ErrPaymentNotSucceeded is returned when verifying an intent the buyer
// has not paid.
var ErrPaymentNotSucceeded = errors.New("payment has not succeeded")

// Transaction is one ledger row. Rows are never updated or deleted.
type Transaction struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"userId"`
	PropertyID int64     `json:"propertyId"`
	Amount     int64     `json:"amount"`
	PaymentRef string    `json:"paymentRef"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Transaction) TableName() string { return "premium_transactions" }

// Checkout is what a client needs to collect payment.
type Checkout struct {
	ClientSecret string `json:"clientSecret"`
	IntentID     string `json:"paymentIntentId"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// VerifyRequest asks to confirm a paid intent for a listing.
type VerifyRequest struct {
	PaymentIntentID string `json:"paymentIntentId" validate:"required"`
	PropertyID      int64  `json:"propertyId" validate:"gt=0"`
}
