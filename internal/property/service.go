package property

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/identity"
	"github.com/evcraddock/fsbo/internal/user"
	"github.com/evcraddock/fsbo/internal/validation"
)

// CanManage reports whether actor may mutate p: its owner or an admin.
func CanManage(actor identity.Actor, p *Property) bool {
	if !actor.Authenticated() {
		return false
	}
	return actor.IsAdmin() || actor.UserID == p.UserID
}

// Service applies the ownership guard to listing mutations.
type Service struct {
	repo  *Repository
	users *user.Repository
	now   func() time.Time
}

// NewService creates a property service.
func NewService(repo *Repository, users *user.Repository) *Service {
	return &Service{repo: repo, users: users, now: time.Now}
}

// Repository exposes the underlying store for read-only callers.
func (s *Service) Repository() *Repository {
	return s.repo
}

// Search runs a listing search.
func (s *Service) Search(ctx context.Context, opts SearchOptions) ([]*Property, error) {
	return s.repo.Search(ctx, opts)
}

// Featured returns premium listings for the landing page.
func (s *Service) Featured(ctx context.Context, limit int) ([]*Property, error) {
	return s.repo.Featured(ctx, limit)
}

// ListByOwner returns a user's listings.
func (s *Service) ListByOwner(ctx context.Context, userID string) ([]*Property, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// View fetches a listing with its images, features, and owner, then counts
// the view. Every call counts; there is no per-viewer dedup.
func (s *Service) View(ctx context.Context, id int64) (*Detail, error) {
	d, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	d.ViewCount++
	return d, nil
}

// Detail fetches a listing with its images, features, and owner.
func (s *Service) Detail(ctx context.Context, id int64) (*Detail, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.repo.Images(ctx, id)
	if err != nil {
		return nil, err
	}
	features, err := s.repo.Features(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &Detail{Property: p, Images: images, Features: features}
	if owner, err := s.users.Get(ctx, p.UserID); err == nil {
		public := owner.Public()
		d.Owner = &public
	} else if !apperr.Is(err, apperr.CodeNotFound) {
		return nil, err
	}
	return d, nil
}

// Create stores a new listing owned by actor.
func (s *Service) Create(ctx context.Context, actor identity.Actor, in NewProperty) (*Property, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	p := &Property{
		UserID:        actor.UserID,
		Title:         strings.TrimSpace(in.Title),
		Description:   in.Description,
		Price:         in.Price,
		Address:       strings.TrimSpace(in.Address),
		City:          strings.TrimSpace(in.City),
		State:         strings.TrimSpace(in.State),
		ZipCode:       strings.TrimSpace(in.ZipCode),
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		Bedrooms:      in.Bedrooms,
		Bathrooms:     in.Bathrooms,
		SquareFeet:    in.SquareFeet,
		LotSize:       in.LotSize,
		YearBuilt:     in.YearBuilt,
		PropertyType:  strings.TrimSpace(in.PropertyType),
		Status:        in.Status,
		FeaturedImage: in.FeaturedImage,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}
	return p, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, actor identity.Actor, id int64, patch Patch) (*Property, error) {
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	if _, err := s.Manageable(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, patch)
}

// Delete removes a listing and everything that cascades with it.
func (s *Service) Delete(ctx context.Context, actor identity.Actor, id int64) error {
	if _, err := s.Manageable(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// SetStatus changes a listing's sale status.
func (s *Service) SetStatus(ctx context.Context, actor identity.Actor, id int64, status Status) (*Property, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, apperr.Validation("%v", err)
	}
	if _, err := s.Manageable(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// SetPremium sets or clears the premium flag outside the payment flow.
// Owners may only clear it; granting premium without payment is admin-only.
func (s *Service) SetPremium(ctx context.Context, actor identity.Actor, id int64, premium bool) (*Property, error) {
	if _, err := s.Manageable(ctx, actor, id); err != nil {
		return nil, err
	}
	if premium && !actor.IsAdmin() {
		return nil, apperr.Forbidden("premium placement requires payment")
	}
	if err := s.repo.SetPremium(ctx, id, premium, s.now().Add(PremiumDuration)); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// AddImage attaches a photo to a listing.
func (s *Service) AddImage(ctx context.Context, actor identity.Actor, propertyID int64, in NewImage) (*Image, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.Manageable(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	img := &Image{PropertyID: propertyID, ImageURL: in.ImageURL, Caption: in.Caption, SortOrder: in.SortOrder}
	if err := s.repo.AddImage(ctx, img); err != nil {
		return nil, err
	}
	return img, nil
}

// DeleteImage removes a photo from a listing.
func (s *Service) DeleteImage(ctx context.Context, actor identity.Actor, propertyID, imageID int64) error {
	if _, err := s.Manageable(ctx, actor, propertyID); err != nil {
		return err
	}
	return s.repo.DeleteImage(ctx, propertyID, imageID)
}

// Images lists a listing's photos. Unknown listings are a not-found error.
func (s *Service) Images(ctx context.Context, propertyID int64) ([]*Image, error) {
	if _, err := s.repo.Get(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.repo.Images(ctx, propertyID)
}

// AddFeature adds an amenity label.
func (s *Service) AddFeature(ctx context.Context, actor identity.Actor, propertyID int64, in NewFeature) (*Feature, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if _, err := s.Manageable(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	f := &Feature{PropertyID: propertyID, Feature: strings.TrimSpace(in.Feature)}
	if err := s.repo.AddFeature(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFeature removes an amenity label.
func (s *Service) DeleteFeature(ctx context.Context, actor identity.Actor, propertyID, featureID int64) error {
	if _, err := s.Manageable(ctx, actor, propertyID); err != nil {
		return err
	}
	return s.repo.DeleteFeature(ctx, propertyID, featureID)
}

// Features lists a listing's amenity labels.
func (s *Service) Features(ctx context.Context, propertyID int64) ([]*Feature, error) {
	if _, err := s.repo.Get(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.repo.Features(ctx, propertyID)
}

// Manageable loads a listing and checks actor may mutate it.
func (s *Service) Manageable(ctx context.Context, actor identity.Actor, id int64) (*Property, error) {
	if !actor.Authenticated() {
		return nil, apperr.Unauthorized("authentication required")
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanManage(actor, p) {
		return nil, apperr.Forbidden("only the owner or an admin can modify this property")
	}
	return p, nil
}
