package property

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/db"
)

// Repository provides data access for listings, their images, and features.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a property repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts p and fills in its generated fields.
func (r *Repository) Create(ctx context.Context, p *Property) error {
	if p.Status == "" {
		p.Status = StatusActive
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.NotFound("user")
		}
		return fmt.Errorf("inserting property: %w", err)
	}
	return nil
}

// Get returns a listing by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Property, error) {
	var p Property
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("property")
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %d: %w", id, err)
	}
	return &p, nil
}

// Search returns listings matching every supplied constraint, premium
// listings first and newest first within each group.
func (r *Repository) Search(ctx context.Context, opts SearchOptions) ([]*Property, error) {
	opts = opts.Normalize()
	q := r.db.WithContext(ctx).Model(&Property{})

	if opts.Location != "" {
		pattern := "%" + escapeLike(opts.Location) + "%"
		q = q.Where(`(address LIKE ? ESCAPE '\' OR city LIKE ? ESCAPE '\' OR state LIKE ? ESCAPE '\' OR zip_code LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern, pattern)
	}
	if opts.MinPrice != nil {
		q = q.Where("price >= ?", *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		q = q.Where("price <= ?", *opts.MaxPrice)
	}
	if opts.PropertyType != "" {
		q = q.Where("property_type = ?", opts.PropertyType)
	}
	if opts.MinBeds != nil {
		q = q.Where("bedrooms >= ?", *opts.MinBeds)
	}
	if opts.MinBaths != nil {
		q = q.Where("bathrooms >= ?", *opts.MinBaths)
	}
	q = q.Where("status = ?", opts.Status)
	if opts.PremiumOnly {
		q = q.Where("is_premium = ?", true)
	}

	props := []*Property{}
	err := q.Order("is_premium DESC").
		Order("created_at DESC").
		Order("id DESC").
		Limit(opts.Limit).
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("searching properties: %w", err)
	}
	return props, nil
}

// Featured returns premium active listings, newest first.
func (r *Repository) Featured(ctx context.Context, limit int) ([]*Property, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	props := []*Property{}
	err := r.db.WithContext(ctx).
		Where("is_premium = ? AND status = ?", true, StatusActive).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("listing featured properties: %w", err)
	}
	return props, nil
}

// ListByOwner returns every listing owned by userID in any status, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]*Property, error) {
	props := []*Property{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&props).Error
	if err != nil {
		return nil, fmt.Errorf("listing properties for %s: %w", userID, err)
	}
	return props, nil
}

// ListAll returns every listing, optionally restricted to one status.
func (r *Repository) ListAll(ctx context.Context, status Status) ([]*Property, error) {
	q := r.db.WithContext(ctx).Model(&Property{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	props := []*Property{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	return props, nil
}

// IDsByOwner returns the IDs of every listing owned by userID.
func (r *Repository) IDsByOwner(ctx context.Context, userID string) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&Property{}).Where("user_id = ?", userID).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("listing property ids for %s: %w", userID, err)
	}
	return ids, nil
}

// Update applies the non-nil fields of patch and returns the stored listing.
func (r *Repository) Update(ctx context.Context, id int64, patch Patch) (*Property, error) {
	cols := patch.columns()
	if len(cols) == 0 {
		return r.Get(ctx, id)
	}
	if err := r.updateColumns(ctx, id, cols); err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// SetStatus changes a listing's status.
func (r *Repository) SetStatus(ctx context.Context, id int64, status Status) error {
	return r.updateColumns(ctx, id, map[string]any{"status": status})
}

// SetPremium sets or clears the premium flag. until is ignored when clearing.
func (r *Repository) SetPremium(ctx context.Context, id int64, premium bool, until time.Time) error {
	cols := map[string]any{"is_premium": premium, "premium_until": nil}
	if premium {
		cols["premium_until"] = until.UTC()
	}
	return r.updateColumns(ctx, id, cols)
}

func (r *Repository) updateColumns(ctx context.Context, id int64, cols map[string]any) error {
	result := r.db.WithContext(ctx).Model(&Property{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return fmt.Errorf("updating property %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("property")
	}
	return nil
}

// IncrementViews adds one to the view counter in a single statement.
func (r *Repository) IncrementViews(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&Property{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("incrementing views for %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("property")
	}
	return nil
}

// Delete removes a listing. Images, features, messages, and offers cascade.
// Listings referenced by the premium ledger cannot be deleted.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Property{})
	if result.Error != nil {
		if db.IsForeignKeyViolation(result.Error) {
			return apperr.Conflict("property has premium payment records and cannot be deleted")
		}
		return fmt.Errorf("deleting property %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("property")
	}
	return nil
}

// Counts returns the total and premium listing counts.
func (r *Repository) Counts(ctx context.Context) (total, premium int64, err error) {
	if err := r.db.WithContext(ctx).Model(&Property{}).Count(&total).Error; err != nil {
		return 0, 0, fmt.Errorf("counting properties: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&Property{}).Where("is_premium = ?", true).Count(&premium).Error; err != nil {
		return 0, 0, fmt.Errorf("counting premium properties: %w", err)
	}
	return total, premium, nil
}

// Images returns a listing's photos in display order.
func (r *Repository) Images(ctx context.Context, propertyID int64) ([]*Image, error) {
	images := []*Image{}
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("sort_order").
		Order("id").
		Find(&images).Error
	if err != nil {
		return nil, fmt.Errorf("listing images for %d: %w", propertyID, err)
	}
	return images, nil
}

// AddImage attaches a photo to a listing.
func (r *Repository) AddImage(ctx context.Context, img *Image) error {
	if err := r.db.WithContext(ctx).Create(img).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.NotFound("property")
		}
		return fmt.Errorf("inserting image: %w", err)
	}
	return nil
}

// DeleteImage removes a photo if it belongs to propertyID.
func (r *Repository) DeleteImage(ctx context.Context, propertyID, imageID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND property_id = ?", imageID, propertyID).
		Delete(&Image{})
	if result.Error != nil {
		return fmt.Errorf("deleting image %d: %w", imageID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("image")
	}
	return nil
}

// Features returns a listing's amenity labels.
func (r *Repository) Features(ctx context.Context, propertyID int64) ([]*Feature, error) {
	features := []*Feature{}
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("id").
		Find(&features).Error
	if err != nil {
		return nil, fmt.Errorf("listing features for %d: %w", propertyID, err)
	}
	return features, nil
}

// AddFeature adds an amenity label to a listing.
func (r *Repository) AddFeature(ctx context.Context, f *Feature) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.NotFound("property")
		}
		return fmt.Errorf("inserting feature: %w", err)
	}
	return nil
}

// DeleteFeature removes a label if it belongs to propertyID.
func (r *Repository) DeleteFeature(ctx context.Context, propertyID, featureID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND property_id = ?", featureID, propertyID).
		Delete(&Feature{})
	if result.Error != nil {
		return fmt.Errorf("deleting feature %d: %w", featureID, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("feature")
	}
	return nil
}
