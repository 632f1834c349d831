package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidToken is returned for tokens that fail verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the identity asserted by a verified token.
type Claims struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

// Verifier checks a bearer token with the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// splitName turns a display name into first and last names.
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
