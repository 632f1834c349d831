package identity

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/evcraddock/fsbo/internal/user"
)

const (
	knownUsersSize = 1024
	knownUsersTTL  = 5 * time.Minute
)

// Authenticator attaches the caller's Actor to requests that carry a valid
// bearer token. Requests without one continue anonymously; handlers decide
// whether that is acceptable.
type Authenticator struct {
	verifier   Verifier
	users      *user.Repository
	adminEmail string

	// known caches actors already upserted so each request does not write.
	known *expirable.LRU[string, Actor]
}

// NewAuthenticator creates an Authenticator. A user signing in for the first
// time with adminEmail is created with the admin role.
func NewAuthenticator(v Verifier, users *user.Repository, adminEmail string) *Authenticator {
	return &Authenticator{
		verifier:   v,
		users:      users,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		known:      expirable.NewLRU[string, Actor](knownUsersSize, nil, knownUsersTTL),
	}
}

// Middleware verifies the Authorization header.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		actor, err := a.Resolve(r.Context(), token)
		if err != nil {
			slog.WarnContext(r.Context(), "token rejected", "path", r.URL.Path, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// Resolve verifies token and makes sure the user exists locally.
func (a *Authenticator) Resolve(ctx context.Context, token string) (Actor, error) {
	claims, err := a.verifier.Verify(ctx, token)
	if err != nil {
		return Actor{}, err
	}
	if actor, ok := a.known.Get(claims.UserID); ok {
		return actor, nil
	}

	role := user.RoleBuyer
	if a.adminEmail != "" && strings.EqualFold(claims.Email, a.adminEmail) {
		role = user.RoleAdmin
	}
	u, err := a.users.Upsert(ctx, user.Profile{
		ID:              claims.UserID,
		Email:           claims.Email,
		FirstName:       claims.FirstName,
		LastName:        claims.LastName,
		ProfileImageURL: claims.Picture,
	}, role)
	if err != nil {
		return Actor{}, err
	}

	actor := Actor{UserID: u.ID, Role: u.Role}
	if u.Email != nil {
		actor.Email = *u.Email
	}
	a.known.Add(actor.UserID, actor)
	return actor, nil
}

// Forget drops a cached actor, e.g. after its role changed.
func (a *Authenticator) Forget(userID string) {
	a.known.Remove(userID)
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
