package message

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/db"
)

// Repository provides data access for messages.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a message repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// Create inserts m.
func (r *Repository) Create(ctx context.Context, m *Message) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if db.IsForeignKeyViolation(err) {
			return apperr.NotFound("property or user")
		}
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// Get returns a message by ID.
func (r *Repository) Get(ctx context.Context, id int64) (*Message, error) {
	var m Message
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("message")
	}
	if err != nil {
		return nil, fmt.Errorf("querying message %d: %w", id, err)
	}
	return &m, nil
}

// ListForUser returns every message sent or received by userID, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]*Message, error) {
	msgs := []*Message{}
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("listing messages for %s: %w", userID, err)
	}
	return msgs, nil
}

// ListForProperty returns every message about a listing, newest first.
func (r *Repository) ListForProperty(ctx context.Context, propertyID int64) ([]*Message, error) {
	msgs := []*Message{}
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("listing messages for property %d: %w", propertyID, err)
	}
	return msgs, nil
}

// Conversation returns the messages between a and b about a listing in
// either direction, oldest first.
func (r *Repository) Conversation(ctx context.Context, a, b string, propertyID int64) ([]*Message, error) {
	msgs := []*Message{}
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))", a, b, b, a).
		Order("created_at").
		Order("id").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	return msgs, nil
}

// MarkRead sets the read flag. Marking an already-read message is a no-op.
func (r *Repository) MarkRead(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Model(&Message{}).Where("id = ?", id).Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("marking message %d read: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("message")
	}
	return nil
}

// Count returns the total number of messages.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Message{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return n, nil
}
