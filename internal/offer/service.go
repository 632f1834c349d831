package offer

import (
	"context"
	"fmt"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/notify"
	"github.com/evcraddock/fsbo/internal/property"
	"github.com/evcraddock/fsbo/internal/user"
	"github.com/evcraddock/fsbo/internal/validation"
)

// Notifier delivers best-effort emails about offer activity.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body string)
	PropertyURL(propertyID int64) string
}

// Service submits and resolves offers.
type Service struct {
	repo     *Repository
	users    *user.Repository
	props    *property.Service
	notifier Notifier
}

// NewService creates an offer service. notifier may be nil.
func NewService(repo *Repository, users *user.Repository, props *property.Service, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, props: props, notifier: notifier}
}

// Submit records a pending offer from actor.
func (s *Service) Submit(ctx context.Context, actor identity.Actor, in NewOffer) (*Offer, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p, err := s.props.Repository().Get(ctx, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if p.UserID == actor.UserID {
		return nil, apperr.Validation("cannot make an offer on your own property")
	}

	o := &Offer{PropertyID: in.PropertyID, BuyerID: actor.UserID, Amount: in.Amount, Message: in.Message}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	if owner, err := s.users.Get(ctx, p.UserID); err == nil && owner.Email != nil && s.notifier != nil {
		buyerName := actor.Email
		if buyer, err := s.users.Get(ctx, actor.UserID); err == nil {
			buyerName = buyer.DisplayName()
		}
		var msg string
		if o.Message != nil {
			msg = *o.Message
		}
		subject, body := notify.OfferEmail(buyerName, p.Title, o.Amount, msg, s.notifier.PropertyURL(p.ID))
		s.notifier.Notify(ctx, *owner.Email, subject, body)
	}

	return o, nil
}

// SetStatus resolves a pending offer. Only the listing owner or an admin may
// do so. Repeating the same resolution succeeds without change; any other
// change to a resolved offer is a conflict.
func (s *Service) SetStatus(ctx context.Context, actor identity.Actor, id int64, status string) (*Offer, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	target, err := ParseResolution(status)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.props.Manageable(ctx, actor, o.PropertyID)
	if err != nil {
		return nil, err
	}

	if o.Status.Resolved() {
		return s.alreadyResolved(o, target)
	}

	ok, err := s.repo.Resolve(ctx, id, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Resolved concurrently; report against the stored state.
		if o, err = s.repo.Get(ctx, id); err != nil {
			return nil, err
		}
		return s.alreadyResolved(o, target)
	}

	o, err = s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notifyBuyer(ctx, o, p)
	return o, nil
}

func (s *Service) alreadyResolved(o *Offer, target Status) (*Offer, error) {
	if o.Status == target {
		return o, nil
	}
	return nil, apperr.Conflict(fmt.Sprintf("offer was already %s", o.Status))
}

func (s *Service) notifyBuyer(ctx context.Context, o *Offer, p *property.Property) {
	if s.notifier == nil {
		return
	}
	buyer, err := s.users.Get(ctx, o.BuyerID)
	if err != nil || buyer.Email == nil {
		return
	}
	subject, body := notify.OfferStatusEmail(p.Title, o.Amount, string(o.Status), s.notifier.PropertyURL(p.ID))
	s.notifier.Notify(ctx, *buyer.Email, subject, body)
}

// ListForProperty returns the offers on a listing. Owner or admin only.
func (s *Service) ListForProperty(ctx context.Context, actor identity.Actor, propertyID int64) ([]*Offer, error) {
	if _, err := s.props.Manageable(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	return s.repo.ListForProperty(ctx, propertyID)
}

// ListForBuyer returns the offers buyerID has made. Self or admin only.
func (s *Service) ListForBuyer(ctx context.Context, actor identity.Actor, buyerID string) ([]*Offer, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if actor.UserID != buyerID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("you can only view your own offers")
	}
	return s.repo.ListForBuyer(ctx, buyerID)
}

// Received returns offers on every listing actor owns.
func (s *Service) Received(ctx context.Context, actor identity.Actor) ([]*Offer, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	ids, err := s.props.Repository().IDsByOwner(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForProperties(ctx, ids)
}

// Count returns the total number of offers.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
