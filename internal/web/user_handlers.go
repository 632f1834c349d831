package web

import (
	"net/http"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/user"
)

// roleRequest is the body of role changes.
type roleRequest struct {
	Role string `json:"role" validate:"required"`
}

// handleAuthUser returns the caller's own account.
func (s *Server) handleAuthUser(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	u, err := s.users.Get(r.Context(), actor.UserID)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, u, http.StatusOK)
}

// handleSetOwnRole lets a user choose between buyer and seller.
func (s *Server) handleSetOwnRole(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	var req roleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		apiFail(w, r, err)
		return
	}
	role, err := user.ParseRole(req.Role)
	if err != nil {
		apiFail(w, r, apperr.Validation("%v", err))
		return
	}
	if !role.SelfAssignable() {
		apiFail(w, r, apperr.Forbidden("only buyer or seller can be chosen"))
		return
	}

	u, err := s.users.SetRole(r.Context(), actor.UserID, role)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	s.auth.Forget(actor.UserID)
	apiJSON(w, u, http.StatusOK)
}

// handleGetUser returns a public profile.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), muxVar(r, "userId"))
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, u.Public(), http.StatusOK)
}

func (s *Server) handleUserTransactions(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	txns, err := s.premium.ListForUser(r.Context(), actor, muxVar(r, "userId"))
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, txns, http.StatusOK)
}
