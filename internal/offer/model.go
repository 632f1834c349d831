// Package offer tracks buyer bids on listings through a forward-only lifecycle.
package offer

import (
	"fmt"
	"time"
)

// Status is an offer's position in its lifecycle: pending, then accepted or
// rejected. Resolved offers never change again.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// ParseResolution returns the target status for a transition request.
// Only accepted and rejected are valid targets.
func ParseResolution(s string) (Status, error) {
	switch Status(s) {
	case StatusAccepted, StatusRejected:
		return Status(s), nil
	case StatusPending:
		return "", fmt.Errorf("offers cannot be moved back to pending")
	}
	return "", fmt.Errorf("invalid offer status %q (must be accepted or rejected)", s)
}

// Resolved reports whether s is terminal.
func (s Status) Resolved() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Offer is a buyer's bid on a listing.
type Offer struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	PropertyID int64     `json:"propertyId"`
	BuyerID    string    `json:"buyerId"`
	Amount     int64     `json:"amount"`
	Message    *string   `json:"message"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewOffer is the input for submitting an offer.
type NewOffer struct {
	PropertyID int64   `json:"propertyId" validate:"gt=0"`
	Amount     int64   `json:"amount" validate:"gt=0"`
	Message    *string `json:"message" validate:"omitempty,max=2000"`
}

// StatusChange is the input for resolving an offer.
type StatusChange struct {
	Status string `json:"status" validate:"required"`
}
