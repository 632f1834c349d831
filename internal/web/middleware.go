package web

import (
	"net"
	"net/http"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/identity"
)

// actorHandler is a handler that needs an authenticated caller.
type actorHandler func(w http.ResponseWriter, r *http.Request, actor identity.Actor)

// requireAuth rejects anonymous callers with 401.
func requireAuth(h actorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFrom(r.Context())
		if !ok {
			apiFail(w, r, apperr.Unauthorized("authentication required"))
			return
		}
		h(w, r, actor)
	}
}

// requireAdmin is router middleware for the admin subtree.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.ActorFrom(r.Context())
		if !ok {
			apiFail(w, r, apperr.Unauthorized("authentication required"))
			return
		}
		if !actor.IsAdmin() {
			apiFail(w, r, apperr.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// actorOf returns the caller, which may be anonymous.
func actorOf(r *http.Request) identity.Actor {
	actor, _ := identity.ActorFrom(r.Context())
	return actor
}

const maxLimiters = 10000

// rateLimiter throttles mutating requests per caller: the user id when
// authenticated, otherwise the client address.
type rateLimiter struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	cache, _ := lru.New[string, *rate.Limiter](maxLimiters)
	return &rateLimiter{limiters: cache, rate: rate.Limit(rps), burst: burst}
}

func (rl *rateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters.Get(key)
	if !ok {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters.Add(key, l)
	}
	return l
}

func (rl *rateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		key := actorOf(r).UserID
		if key == "" {
			key = clientIP(r)
		}
		if !rl.limiter(key).Allow() {
			apiFail(w, r, apperr.TooManyRequests("too many requests, slow down"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
