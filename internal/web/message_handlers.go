package web

import (
	"net/http"

	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/message"
	"github.com/evcraddock/fsbo/internal/metrics"
)

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	var in message.NewMessage
	if err := decodeJSON(w, r, &in); err != nil {
		apiFail(w, r, err)
		return
	}
	m, err := s.messages.Send(r.Context(), actor, in)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	metrics.RecordMessage()
	apiJSON(w, m, http.StatusCreated)
}

// handleListMessages returns every message the caller sent or received.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	msgs, err := s.messages.ListForUser(r.Context(), actor)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, msgs, http.StatusOK)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	m, err := s.messages.MarkRead(r.Context(), actor, id)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, m, http.StatusOK)
}

func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	summaries, err := s.messages.Conversations(r.Context(), actor)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, summaries, http.StatusOK)
}

func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	propertyID, err := pathID(r, "propertyId")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	msgs, err := s.messages.Conversation(r.Context(), actor, muxVar(r, "userId"), propertyID)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, msgs, http.StatusOK)
}

func (s *Server) handlePropertyMessages(w http.ResponseWriter, r *http.Request, actor identity.Actor) {
	id, err := pathID(r, "id")
	if err != nil {
		apiFail(w, r, err)
		return
	}
	msgs, err := s.messages.ListForProperty(r.Context(), actor, id)
	if err != nil {
		apiFail(w, r, err)
		return
	}
	apiJSON(w, msgs, http.StatusOK)
}
