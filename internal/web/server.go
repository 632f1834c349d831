// Package web provides the HTTP API for the fsbo marketplace.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/logging"
	"github.com/evcraddock/fsbo/internal/message"
	"github.com/evcraddock/fsbo/internal/metrics"
	"github.com/evcraddock/fsbo/internal/notify"
	"github.com/evcraddock/fsbo/internal/offer"
	"github.com/evcraddock/fsbo/internal/payment"
	"github.com/evcraddock/fsbo/internal/premium"
	"github.com/evcraddock/fsbo/internal/property"
	"github.com/evcraddock/fsbo/internal/user"
)

// Notifier delivers best-effort emails to users.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string)
	PropertyURL(propertyID int64) string
}

// Options configures a Server. Verifier is required; Payments and Notifier
// may be nil, which disables those features.
type Options struct {
	Verifier   identity.Verifier
	Payments   payment.Provider
	Notifier   Notifier
	AdminEmail string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Server is the JSON API server.
type Server struct {
	users    *user.Repository
	props    *property.Service
	messages *message.Service
	offers   *offer.Service
	premium  *premium.Service
	auth     *identity.Authenticator
	handler  http.Handler
}

// NewServer wires services over gdb and builds the router.
func NewServer(gdb *gorm.DB, opts Options) *Server {
	users := user.NewRepository(gdb)
	props := property.NewService(property.NewRepository(gdb), users)

	var msgNotifier message.Notifier
	var offerNotifier offer.Notifier
	if opts.Notifier != nil {
		msgNotifier = opts.Notifier
		offerNotifier = opts.Notifier
	}

	s := &Server{
		users:    users,
		props:    props,
		messages: message.NewService(message.NewRepository(gdb), users, props, msgNotifier, notify.MessageEmail),
		offers:   offer.NewService(offer.NewRepository(gdb), users, props, offerNotifier),
		premium:  premium.NewService(gdb, props, users, opts.Payments),
		auth:     identity.NewAuthenticator(opts.Verifier, users, opts.AdminEmail),
	}
	if opts.Payments == nil {
		slog.Warn("payments disabled: no payment provider configured")
	}

	rps, burst := opts.RateLimitRPS, opts.RateLimitBurst
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 20
	}
	router := s.routes(newRateLimiter(rps, burst))
	s.handler = logging.RequestID(logging.RequestLogger(router))
	return s
}

func (s *Server) routes(limiter *rateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.Use(metrics.Middleware, s.auth.Middleware, limiter.Middleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)
	api.HandleFunc("/auth/user", requireAuth(s.handleAuthUser)).Methods(http.MethodGet)

	// Properties
	api.HandleFunc("/properties", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/properties", requireAuth(s.handleCreateProperty)).Methods(http.MethodPost)
	api.HandleFunc("/properties/featured", s.handleFeatured).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}", s.handleGetProperty).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}", requireAuth(s.handleUpdateProperty)).Methods(http.MethodPut)
	api.HandleFunc("/properties/{id:[0-9]+}", requireAuth(s.handleDeleteProperty)).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id:[0-9]+}/images", s.handleListImages).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}/images", requireAuth(s.handleAddImage)).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id:[0-9]+}/images/{imageId:[0-9]+}", requireAuth(s.handleDeleteImage)).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id:[0-9]+}/features", s.handleListFeatures).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}/features", requireAuth(s.handleAddFeature)).Methods(http.MethodPost)
	api.HandleFunc("/properties/{id:[0-9]+}/features/{featureId:[0-9]+}", requireAuth(s.handleDeleteFeature)).Methods(http.MethodDelete)
	api.HandleFunc("/properties/{id:[0-9]+}/messages", requireAuth(s.handlePropertyMessages)).Methods(http.MethodGet)
	api.HandleFunc("/properties/{id:[0-9]+}/offers", requireAuth(s.handlePropertyOffers)).Methods(http.MethodGet)

	// Messages
	api.HandleFunc("/messages", requireAuth(s.handleSendMessage)).Methods(http.MethodPost)
	api.HandleFunc("/messages", requireAuth(s.handleListMessages)).Methods(http.MethodGet)
	api.HandleFunc("/messages/{id:[0-9]+}/read", requireAuth(s.handleMarkRead)).Methods(http.MethodPost)
	api.HandleFunc("/conversations", requireAuth(s.handleConversations)).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{userId}/{propertyId:[0-9]+}", requireAuth(s.handleConversation)).Methods(http.MethodGet)

	// Offers
	api.HandleFunc("/offers", requireAuth(s.handleSubmitOffer)).Methods(http.MethodPost)
	api.HandleFunc("/offers/{id:[0-9]+}/status", requireAuth(s.handleOfferStatus)).Methods(http.MethodPut)

	// Users; fixed paths before {userId}
	api.HandleFunc("/users/type", requireAuth(s.handleSetOwnRole)).Methods(http.MethodPost)
	api.HandleFunc("/users/received-offers", requireAuth(s.handleReceivedOffers)).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}", s.handleGetUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}/properties", s.handleUserProperties).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}/offers", requireAuth(s.handleUserOffers)).Methods(http.MethodGet)
	api.HandleFunc("/users/{userId}/transactions", requireAuth(s.handleUserTransactions)).Methods(http.MethodGet)

	// Premium
	api.HandleFunc("/create-payment-intent", requireAuth(s.handleCreatePaymentIntent)).Methods(http.MethodPost)
	api.HandleFunc("/premium-listing/verify", requireAuth(s.handleVerifyPremium)).Methods(http.MethodPost)

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(requireAdmin)
	admin.HandleFunc("/properties", s.handleAdminProperties).Methods(http.MethodGet)
	admin.HandleFunc("/properties/{id:[0-9]+}/status", requireAuth(s.handleAdminPropertyStatus)).Methods(http.MethodPut)
	admin.HandleFunc("/properties/{id:[0-9]+}/premium", requireAuth(s.handleAdminPropertyPremium)).Methods(http.MethodPut)
	admin.HandleFunc("/users", s.handleAdminUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/role", requireAuth(s.handleAdminUserRole)).Methods(http.MethodPut)
	admin.HandleFunc("/transactions", s.handleAdminTransactions).Methods(http.MethodGet)
	admin.HandleFunc("/stats", s.handleAdminStats).Methods(http.MethodGet)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://localhost:"+port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	apiJSON(w, map[string]string{"message": "pong"}, http.StatusOK)
}
