// Package property provides the listing domain model, search, and data access.
package property

import (
	"fmt"
	"time"

	"github.com/evcraddock/fsbo/internal/user"
)

// Status is where a listing is in its sale lifecycle.
type Status string

const (
	StatusActive   Status = "active"
	StatusPending  Status = "pending"
	StatusSold     Status = "sold"
	StatusInactive Status = "inactive"
)

// ParseStatus returns the Status named by s or an error for anything else.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusActive, StatusPending, StatusSold, StatusInactive:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q (must be active, pending, sold, or inactive)", s)
}

// PremiumDuration is how long a premium upgrade lasts. Expiry is advisory;
// nothing clears the flag when the window elapses.
const PremiumDuration = 30 * 24 * time.Hour

// Property is a for-sale-by-owner listing.
type Property struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	UserID        string     `json:"userId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Price         int64      `json:"price"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	ZipCode       string     `json:"zipCode"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	Bedrooms      int        `json:"bedrooms"`
	Bathrooms     float64    `json:"bathrooms"`
	SquareFeet    int        `json:"squareFeet"`
	LotSize       *float64   `json:"lotSize"`
	YearBuilt     *int       `json:"yearBuilt"`
	PropertyType  string     `json:"propertyType"`
	Status        Status     `json:"status"`
	IsPremium     bool       `json:"isPremium"`
	PremiumUntil  *time.Time `json:"premiumUntil"`
	FeaturedImage *string    `json:"featuredImage"`
	ViewCount     int64      `json:"viewCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// PremiumActive reports whether the premium window is still open at now.
func (p *Property) PremiumActive(now time.Time) bool {
	return p.IsPremium && p.PremiumUntil != nil && now.Before(*p.PremiumUntil)
}

// Image is a photo attached to a listing.
type Image struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	PropertyID int64     `json:"propertyId"`
	ImageURL   string    `json:"imageUrl" gorm:"column:image_url"`
	Caption    *string   `json:"caption"`
	SortOrder  int       `json:"sortOrder"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Image) TableName() string { return "property_images" }

// Feature is a free-text amenity label on a listing.
type Feature struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	PropertyID int64     `json:"propertyId"`
	Feature    string    `json:"feature"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (Feature) TableName() string { return "property_features" }

// Detail is a listing with its images, features, and the owner's public profile.
type Detail struct {
	*Property
	Images   []*Image            `json:"images"`
	Features []*Feature          `json:"features"`
	Owner    *user.PublicProfile `json:"owner,omitempty"`
}

// NewProperty is the input for creating a listing. Premium state, view count,
// and ownership are set by the server.
type NewProperty struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   string   `json:"description" validate:"required,max=10000"`
	Price         int64    `json:"price" validate:"gt=0"`
	Address       string   `json:"address" validate:"required,max=255"`
	City          string   `json:"city" validate:"required,max=100"`
	State         string   `json:"state" validate:"required,max=50"`
	ZipCode       string   `json:"zipCode" validate:"required,max=20"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
	Bedrooms      int      `json:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms     float64  `json:"bathrooms" validate:"gte=0,lte=100,halfstep"`
	SquareFeet    int      `json:"squareFeet" validate:"gt=0"`
	LotSize       *float64 `json:"lotSize" validate:"omitempty,gte=0"`
	YearBuilt     *int     `json:"yearBuilt" validate:"omitempty,gte=1600,lte=2100"`
	PropertyType  string   `json:"propertyType" validate:"required,max=50"`
	Status        Status   `json:"status" validate:"omitempty,oneof=active pending sold inactive"`
	FeaturedImage *string  `json:"featuredImage" validate:"omitempty,url"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Title         *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description" validate:"omitempty,min=1,max=10000"`
	Price         *int64   `json:"price" validate:"omitempty,gt=0"`
	Address       *string  `json:"address" validate:"omitempty,min=1,max=255"`
	City          *string  `json:"city" validate:"omitempty,min=1,max=100"`
	State         *string  `json:"state" validate:"omitempty,min=1,max=50"`
	ZipCode       *string  `json:"zipCode" validate:"omitempty,min=1,max=20"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
	Bedrooms      *int     `json:"bedrooms" validate:"omitempty,gte=0,lte=100"`
	Bathrooms     *float64 `json:"bathrooms" validate:"omitempty,gte=0,lte=100,halfstep"`
	SquareFeet    *int     `json:"squareFeet" validate:"omitempty,gt=0"`
	LotSize       *float64 `json:"lotSize" validate:"omitempty,gte=0"`
	YearBuilt     *int     `json:"yearBuilt" validate:"omitempty,gte=1600,lte=2100"`
	PropertyType  *string  `json:"propertyType" validate:"omitempty,min=1,max=50"`
	Status        *Status  `json:"status" validate:"omitempty,oneof=active pending sold inactive"`
	FeaturedImage *string  `json:"featuredImage" validate:"omitempty,url"`
}

// columns returns the column assignments for the non-nil fields of p.
func (p Patch) columns() map[string]any {
	cols := map[string]any{}
	set := func(name string, ok bool, v any) {
		if ok {
			cols[name] = v
		}
	}
	set("title", p.Title != nil, deref(p.Title))
	set("description", p.Description != nil, deref(p.Description))
	set("price", p.Price != nil, deref(p.Price))
	set("address", p.Address != nil, deref(p.Address))
	set("city", p.City != nil, deref(p.City))
	set("state", p.State != nil, deref(p.State))
	set("zip_code", p.ZipCode != nil, deref(p.ZipCode))
	set("latitude", p.Latitude != nil, deref(p.Latitude))
	set("longitude", p.Longitude != nil, deref(p.Longitude))
	set("bedrooms", p.Bedrooms != nil, deref(p.Bedrooms))
	set("bathrooms", p.Bathrooms != nil, deref(p.Bathrooms))
	set("square_feet", p.SquareFeet != nil, deref(p.SquareFeet))
	set("lot_size", p.LotSize != nil, deref(p.LotSize))
	set("year_built", p.YearBuilt != nil, deref(p.YearBuilt))
	set("property_type", p.PropertyType != nil, deref(p.PropertyType))
	set("status", p.Status != nil, deref(p.Status))
	set("featured_image", p.FeaturedImage != nil, deref(p.FeaturedImage))
	return cols
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// NewImage is the input for attaching a photo.
type NewImage struct {
	ImageURL  string  `json:"imageUrl" validate:"required,url,max=2048"`
	Caption   *string `json:"caption" validate:"omitempty,max=500"`
	SortOrder int     `json:"sortOrder" validate:"gte=0"`
}

// NewFeature is the input for adding an amenity label.
type NewFeature struct {
	Feature string `json:"feature" validate:"required,max=100"`
}
