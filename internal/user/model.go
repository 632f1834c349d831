// Package user stores marketplace accounts and their roles.
package user

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole returns the Role named by s or an error for anything else.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("invalid role %q (must be buyer, seller, or admin)", s)
}

// SelfAssignable reports whether users may pick this role for themselves.
func (r Role) SelfAssignable() bool {
	return r == RoleBuyer || r == RoleSeller
}

// User is a marketplace account. The ID is issued by the identity provider.
type User struct {
	ID                string    `json:"id" gorm:"primaryKey"`
	Email             *string   `json:"email"`
	FirstName         *string   `json:"firstName"`
	LastName          *string   `json:"lastName"`
	ProfileImageURL   *string   `json:"profileImageUrl" gorm:"column:profile_image_url"`
	Role              Role      `json:"role"`
	PaymentCustomerID *string   `json:"-" gorm:"column:payment_customer_id"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// DisplayName returns "First Last", falling back to the email, then the ID.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}
	if u.Email != nil && *u.Email != "" {
		return *u.Email
	}
	return u.ID
}

// Profile is the subset of a User the identity provider owns.
type Profile struct {
	ID              string
	Email           string
	FirstName       string
	LastName        string
	ProfileImageURL string
}

// PublicProfile is what other users may see.
type PublicProfile struct {
	ID              string    `json:"id"`
	FirstName       *string   `json:"firstName"`
	LastName        *string   `json:"lastName"`
	ProfileImageURL *string   `json:"profileImageUrl"`
	Role            Role      `json:"role"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Public strips private fields from u.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:              u.ID,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ProfileImageURL: u.ProfileImageURL,
		Role:            u.Role,
		CreatedAt:       u.CreatedAt,
	}
}

// RoleCounts tallies accounts per role.
type RoleCounts struct {
	Total   int64
	Buyers  int64
	Sellers int64
	Admins  int64
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
