package premium

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/evcraddock/fsbo/internal/apperr"
	"github.com/evcraddock/fsbo/internal/db"
)

// errDuplicateRef is returned by Create when the payment reference is
// already in the ledger.
var errDuplicateRef = errors.New("payment reference already recorded")

// Repository provides data access for the premium ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a ledger repository.
func NewRepository(gdb *gorm.DB) *Repository {
	return &Repository{db: gdb}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create appends t to the ledger.
func (r *Repository) Create(ctx context.Context, t *Transaction) error {
	if t.Status == "" {
		t.Status = StatusCompleted
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		switch {
		case db.IsUniqueViolation(err):
			return errDuplicateRef
		case db.IsForeignKeyViolation(err):
			return apperr.NotFound("property or user")
		}
		return fmt.Errorf("inserting premium transaction: %w", err)
	}
	return nil
}

// ByRef returns the ledger row for a payment reference.
func (r *Repository) ByRef(ctx context.Context, ref string) (*Transaction, error) {
	var t Transaction
	err := r.db.WithContext(ctx).Where("payment_ref = ?", ref).Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("premium transaction")
	}
	if err != nil {
		return nil, fmt.Errorf("querying premium transaction %s: %w", ref, err)
	}
	return &t, nil
}

// ListForUser returns a user's ledger rows, newest first.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]*Transaction, error) {
	return r.list(ctx, r.db.Where("user_id = ?", userID))
}

// ListAll returns every ledger row, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]*Transaction, error) {
	return r.list(ctx, r.db)
}

func (r *Repository) list(ctx context.Context, q *gorm.DB) ([]*Transaction, error) {
	txns := []*Transaction{}
	if err := q.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&txns).Error; err != nil {
		return nil, fmt.Errorf("listing premium transactions: %w", err)
	}
	return txns, nil
}

// Totals returns the number of completed rows and their summed amount.
func (r *Repository) Totals(ctx context.Context) (count, revenue int64, err error) {
	var row struct {
		Count   int64
		Revenue int64
	}
	err = r.db.WithContext(ctx).Model(&Transaction{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount), 0) AS revenue").
		Where("status = ?", StatusCompleted).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("totalling premium transactions: %w", err)
	}
	return row.Count, row.Revenue, nil
}
