package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims is the HS256 token layout used by Supabase-style providers.
type tokenClaims struct {
	Email        string         `json:"email,omitempty"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier verifies HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with secret.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("FSBO_JWT_SECRET is required")
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

// Verify checks the signature and expiry and requires a subject.
func (v *JWTVerifier) Verify(_ context.Context, token string) (*Claims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tc.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	c := &Claims{UserID: tc.Subject, Email: tc.Email}
	c.FirstName, _ = tc.UserMetadata["first_name"].(string)
	c.LastName, _ = tc.UserMetadata["last_name"].(string)
	c.Picture, _ = tc.UserMetadata["avatar_url"].(string)
	if c.FirstName == "" && c.LastName == "" {
		name, _ := tc.UserMetadata["full_name"].(string)
		c.FirstName, c.LastName = splitName(name)
	}
	return c, nil
}

// Issue signs a token for c that expires after ttl.
func (v *JWTVerifier) Issue(c Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	tc := tokenClaims{
		Email: c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	meta := map[string]any{}
	if c.FirstName != "" {
		meta["first_name"] = c.FirstName
	}
	if c.LastName != "" {
		meta["last_name"] = c.LastName
	}
	if c.Picture != "" {
		meta["avatar_url"] = c.Picture
	}
	if len(meta) > 0 {
		tc.UserMetadata = meta
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
