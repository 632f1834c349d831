package web

import (
	"net/http"

	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/metrics"
	"github.com/evcraddock/fsbo/internal/offer"
	"github.com/evcraddock/fsbo/internal/validation"
)

func (s *Server) handleSubmitOffer(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	var in offer.NewOffer
	if err := decodeJSON(w, r, &in); err != nil {
		apiFail(w, r, err)
		return
	}
	o, err := s.offers.Submit(r.Context(), actor, in)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	metrics.RecordOffer(string(o.Status))
	apiJSON(w, o, http.StatusCreated)
}

// handleOfferStatus accepts or rejects a pending offer.
func (s *Server) handleOfferStatus(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	var in offer.StatusChange
	if err := decodeJSON(w, r, &in); err != nil {
		apiFail(w, r, err)
		return
	}
	if err := validation.Struct(in); err != nil {
		apiFail(w, r, err)
		return
	}
	o, err := s.offers.SetStatus(r.Context(), actor, id, in.Status)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	metrics.RecordOffer(string(o.Status))
	apiJSON(w, o, http.StatusOK)
}

func (s *Server) handlePropertyOffers(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	offers, err := s.offers.ListForProperty(r.Context(), actor, id)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, offers, http.StatusOK)
}

func (s *Server) handleUserOffers(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	offers, err := s.offers.ListForBuyer(r.Context(), actor, muxVar(r, "userId"))
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, offers, http.StatusOK)
}

func (s *Server) handleReceivedOffers(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	offers, err := s.offers.Received(r.Context(), actor)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, offers, http.StatusOK)
}
