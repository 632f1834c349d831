package web

import (
	"net/http"

	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/metrics"
	"github.com/evcraddock/fsbo/internal/property"
)

// handleSearch serves GET /api/properties.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	opts, err := property.ParseSearchQuery(r.URL.Query())
	if err != nil {
		apiFail(w, r, err)
		return
	}
	props, err := s.props.Search(r.Context(), opts)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	metrics.RecordSearch()
	apiJSON(w, props, http.StatusOK)
}

func (s *Server) handleFeatured(w http.ResponseWriter, r *http.Request) {
	limit, err := property.ParseLimit(r.URL.Query().Get("limit"), property.DefaultFeaturedLimit)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	props, err := s.props.Featured(r.Context(), limit)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, props, http.StatusOK)
}

// handleGetProperty returns a listing's detail and counts the view.
func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	d, err := s.props.View(r.Context(), id)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	metrics.RecordPropertyView()
	apiJSON(w, d, http.StatusOK)
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	var in property.NewProperty
	if err := decodeJSON(w, r, &in); err != nil {
		apiFail(w, r, err)
		return
	}
	p, err := s.props.Create(r.Context(), actor, in)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusCreated)
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	var patch property.Patch
	if err := decodeJSON(w, r, &patch); err != nil {
		apiFail(w, r, err)
		return
	}
	p, err := s.props.Update(r.Context(), actor, id, patch)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, p, http.StatusOK)
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	if err := s.props.Delete(r.Context(), actor, id); err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"id": id, "removed": true}, http.StatusOK)
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	images, err := s.props.Images(r.Context(), id)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, images, http.StatusOK)
}

func (s *Server) handleAddImage(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	var in property.NewImage
	if err := decodeJSON(w, r, &in); err != nil {
		apiFail(w, r, err)
		return
	}
	img, err := s.props.AddImage(r.Context(), actor, id, in)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, img, http.StatusCreated)
}

func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	imageID, err := pathID(r, "imageId")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	if err := s.props.DeleteImage(r.Context(), actor, id, imageID); err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"id": imageID, "removed": true}, http.StatusOK)
}

func (s *Server) handleListFeatures(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	features, err := s.props.Features(r.Context(), id)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, features, http.StatusOK)
}

func (s *Server) handleAddFeature(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	var in property.NewFeature
	if err := decodeJSON(w, r, &in); err != nil {
		apiFail(w, r, err)
		return
	}
	f, err := s.props.AddFeature(r.Context(), actor, id, in)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, f, http.StatusCreated)
}

func (s *Server) handleDeleteFeature(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	featureID, err := pathID(r, "featureId")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	if err := s.props.DeleteFeature(r.Context(), actor, id, featureID); err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, map[string]any{"id": featureID, "removed": true}, http.StatusOK)
}

// handleUserProperties lists a user's listings. Owners and admins see every
// status; everyone else only sees active listings.
func (s *Server) handleUserProperties(w http.ResponseWriter, r *http.Request) {
	userID := muxVar(r, "userId")
	props, err := s.props.ListByOwner(r.Context(), userID)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	actor := actorOf(r)
	if actor.UserID != userID && !actor.IsAdmin() {
		visible := make([]*property.Property, 0, len(props))
		for _, p := range props {
			if p.Status == property.StatusActive {
				visible = append(visible, p)
			}
		}
		props = visible
	}
	apiJSON(w, props, http.StatusOK)
}
