package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/db"
)

// Repository provides data access for users.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a user repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// Get returns a user by ID.
func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user %s: %w", id, err)
	}
	return &u, nil
}

// Exists reports whether a user with the given ID is stored.
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("checking user %s: %w", id, err)
	}
	return count > 0, nil
}

// Upsert stores the identity provider's view of a user. New users get role;
// existing users keep their role and have their profile fields refreshed.
func (r *Repository) Upsert(ctx context.Context, p Profile, role Role) (*User, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, apperr.Validation("user id is required")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, apperr.Validation("%v", err)
	}

	u := User{
		ID:              p.ID,
		Email:           nullable(strings.ToLower(p.Email)),
		FirstName:       nullable(p.FirstName),
		LastName:        nullable(p.LastName),
		ProfileImageURL: nullable(p.ProfileImageURL),
		Role:            role,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "profile_image_url", "updated_at"}),
	}).Create(&u).Error
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, apperr.Conflict("email already belongs to another account")
		}
		return nil, fmt.Errorf("upserting user %s: %w", p.ID, err)
	}

	return r.Get(ctx, p.ID)
}

// SetRole changes a user's role.
func (r *Repository) SetRole(ctx context.Context, id string, role Role) (*User, error) {
	if _, err := ParseRole(string(role)); err != nil {
		return nil, apperr.Validation("%v", err)
	}

	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return nil, fmt.Errorf("updating role for %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("user")
	}

	return r.Get(ctx, id)
}

// SetPaymentCustomerID records the payment processor's customer reference.
func (r *Repository) SetPaymentCustomerID(ctx context.Context, id, customerID string) error {
	result := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update("payment_customer_id", customerID)
	if result.Error != nil {
		return fmt.Errorf("updating payment customer for %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

// List returns all users, newest first.
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	users := []*User{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// CountByRole tallies users per role.
func (r *Repository) CountByRole(ctx context.Context) (RoleCounts, error) {
	var rows []struct {
		Role  Role
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return RoleCounts{}, fmt.Errorf("counting users: %w", err)
	}

	var counts RoleCounts
	for _, row := range rows {
		counts.Total += row.Count
		switch row.Role {
		case RoleBuyer:
			counts.Buyers = row.Count
		case RoleSeller:
			counts.Sellers = row.Count
		case RoleAdmin:
			counts.Admins = row.Count
		}
	}
	return counts, nil
}
