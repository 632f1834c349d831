package offer

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/db"
)

// Repository provides data access for offers.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates an offer repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// Create inserts o as a pending offer.
func (r *Repository) Create(ctx context.Context, o *Offer) error {
	o.Status = StatusPending
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.NotFound("property or buyer")
		}
		return fmt.Errorf("inserting offer: %w", err)
	}
	return nil
}

// Get returns an offer by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Offer, error) {
	var o Offer
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("offer")
	}
	if err != nil {
		return nil, fmt.Errorf("querying offer %d: %w", id, err)
	}
	return &o, nil
}

// Resolve moves a pending offer to status in one conditional statement.
// It reports false when the offer was no longer pending.
func (r *Repository) Resolve(ctx context.Context, id int64, status Status) (bool, error) {
	result := r.db.WithContext(ctx).Model(&Offer{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, fmt.Errorf("resolving offer %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ListForProperty returns offers on a listing, newest first.
func (r *Repository) ListForProperty(ctx context.Context, propertyID int64) ([]*Offer, error) {
	return r.list(ctx, r.db.Where("property_id = ?", propertyID))
}

// ListForBuyer returns offers a buyer has made, newest first.
func (r *Repository) ListForBuyer(ctx context.Context, buyerID string) ([]*Offer, error) {
	return r.list(ctx, r.db.Where("buyer_id = ?", buyerID))
}

// ListForProperties returns offers on any of the given listings, newest first.
func (r *Repository) ListForProperties(ctx context.Context, propertyIDs []int64) ([]*Offer, error) {
	if len(propertyIDs) == 0 {
		return []*Offer{}, nil
	}
	return r.list(ctx, r.db.Where("property_id IN ?", propertyIDs))
}

func (r *Repository) list(ctx context.Context, q *gorm.DB) ([]*Offer, error) {
	offers := []*Offer{}
	if err := q.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	return offers, nil
}

// Count returns the total number of offers.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Offer{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting offers: %w", err)
	}
	return n, nil
}
