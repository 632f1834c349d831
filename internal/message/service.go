package message

import (
	"context"
	"strings"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/property"
	"github.com/evcraddock/fsbo/internal/user"
	"github.com/evcraddock/fsbo/internal/validation"
)

// Notifier delivers best-effort emails about new activity.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string)
	PropertyURL(propertyID int64) string
}

// EmailFormatter builds a notification subject and body.
type EmailFormatter func(fromName, propertyTitle, text, link string) (subject, body string)

// Service sends messages and enforces who may read and mark them.
type Service struct {
	repo     *Repository
	users    *user.Repository
	props    *property.Service
	notifier Notifier
	format   EmailFormatter
}

// NewService creates a message service. notifier may be nil.
func NewService(repo *Repository, users *user.Repository, props *property.Service, notifier Notifier, format EmailFormatter) *Service {
	return &Service{repo: repo, users: users, props: props, notifier: notifier, format: format}
}

// Send stores a message from actor. Any two distinct users may message about
// any listing; the recipient need not be the owner.
func (s *Service) Send(ctx context.Context, actor identity.Actor, in NewMessage) (*Message, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.ToUserID == actor.UserID {
		return nil, apperr.Validation("cannot send a message to yourself")
	}

	recipient, err := s.users.Get(ctx, in.ToUserID)
	if err != nil {
		return nil, err
	}
	p, err := s.props.Repository().Get(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}

	m := &Message{
		FromUserID: actor.UserID,
		ToUserID:   in.ToUserID,
		PropertyID: in.PropertyID,
		Message:    in.Message,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.notify(ctx, actor, recipient, p, m)
	return m, nil
}

func (s *Service) notify(ctx context.Context, actor identity.Actor, recipient *user.User, p *property.Property, m *Message) {
	if s.notifier == nil || s.format == nil || recipient.Email == nil {
		return
	}
	senderName := actor.Email
	if sender, err := s.users.Get(ctx, actor.UserID); err == nil {
		senderName = sender.DisplayName()
	}
	subject, body := s.format(senderName, p.Title, m.Message, s.notifier.PropertyURL(p.ID))
	s.notifier.Notify(ctx, *recipient.Email, subject, body)
}

// MarkRead marks a message read. Only the recipient or an admin may do so;
// repeating the call succeeds without changing anything.
func (s *Service) MarkRead(ctx context.Context, actor identity.Actor, id int64) (*Message, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.ToUserID != actor.UserID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only the recipient can mark a message read")
	}
	if m.IsRead {
		return m, nil
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	m.IsRead = true
	return m, nil
}

// ListForUser returns every message involving actor.
func (s *Service) ListForUser(ctx context.Context, actor identity.Actor) ([]*Message, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	return s.repo.ListForUser(ctx, actor.UserID)
}

// Conversations summarises actor's conversations, most recent first.
func (s *Service) Conversations(ctx context.Context, actor identity.Actor) ([]Summary, error) {
	msgs, err := s.ListForUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	return Summaries(actor.UserID, msgs), nil
}

// Conversation returns actor's exchange with otherID about a listing.
func (s *Service) Conversation(ctx context.Context, actor identity.Actor, otherID string, propertyID int64) ([]*Message, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	return s.repo.Conversation(ctx, actor.UserID, otherID, propertyID)
}

// ListForProperty returns every message about a listing. Owner or admin only.
func (s *Service) ListForProperty(ctx context.Context, actor identity.Actor, propertyID int64) ([]*Message, error) {
	if _, err := s.props.Manageable(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	return s.repo.ListForProperty(ctx, propertyID)
}

// Count returns the total number of messages.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
