package cli

import (
	"context"
	"testing"
	"time"

	"github.com/evcraddock/fsbo/internal/identity"
)

func TestIssueTokenVerifies(t *testing.T) {
	const secret = "dev-secret"
	token, err := issueToken(secret, identity.Claims{UserID: "u1", Email: "u1@example.com", FirstName: "Una"}, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := validateToken(token); err != nil {
		t.Errorf("minted token fails login validation: %v", err)
	}

	v, err := identity.NewJWTVerifier(secret)
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	c, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if c.UserID != "u1" || c.Email != "u1@example.com" || c.FirstName != "Una" {
		t.Errorf("claims = %+v", c)
	}
}

func TestIssueTokenErrors(t *testing.T) {
	if _, err := issueToken("", identity.Claims{UserID: "u1"}, time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := issueToken("s", identity.Claims{UserID: "u1"}, 0); err == nil {
		t.Error("expected error for zero ttl")
	}
}
