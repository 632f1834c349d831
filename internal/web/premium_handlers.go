package web

import (
	"net/http"

	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/metrics"
	"github.com/evcraddock/fsbo/internal/premium"
	"github.com/evcraddock/fsbo/internal/validation"
)

type paymentIntentRequest struct {
	PropertyID int64 `json:"propertyId" validate:"gt=0"`
}

func (s *Server) handleCreatePaymentIntent(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	var req paymentIntentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiFail(w, r, err)
		return
	}
	if err := validation.Struct(req); err != nil {
		apiFail(w, r, err)
		return
	}
	co, err := s.premium.CreateIntent(r.Context(), actor, req.PropertyID)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, co, http.StatusOK)
}

// handleVerifyPremium re-checks a payment with the processor before
// upgrading the listing.
func (s *Server) handleVerifyPremium(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	var req premium.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiFail(w, r, err)
		return
	}
	up, err := s.premium.Verify(r.Context(), actor, req)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	if up.Created {
		metrics.RecordPremiumUpgrade()
	}
	apiJSON(w, up, http.StatusOK)
}
