package domain

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryLimits maps a category name to its monthly spending ceiling.
// Keys need not cover every allowed category.
type CategoryLimits map[string]decimal.Decimal

// Clone returns an independent copy; a nil receiver yields an empty map
func (l CategoryLimits) Clone() CategoryLimits {
	out := make(CategoryLimits, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Total sums all limits
func (l CategoryLimits) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range l {
		total = total.Add(v)
	}
	return total
}

// Keys returns the category names in sorted order
func (l CategoryLimits) Keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Budget is an owner's allocation for one calendar month. Month is 1-12.
type Budget struct {
	ID             uuid.UUID       `json:"id"`
	OwnerID        uuid.UUID       `json:"ownerId"`
	TotalBudget    decimal.Decimal `json:"totalBudget"`
	CategoryLimits CategoryLimits  `json:"categoryLimits"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// IsPersisted reports whether the budget came from storage rather than DefaultBudget
func (b *Budget) IsPersisted() bool {
	return b.ID != uuid.Nil
}

// DefaultBudget is the zero-valued budget returned when an owner has not saved one for the month
func DefaultBudget(ownerID uuid.UUID, month, year int) *Budget {
	return &Budget{
		OwnerID:        ownerID,
		TotalBudget:    decimal.Zero,
		CategoryLimits: CategoryLimits{},
		Month:          month,
		Year:           year,
	}
}

// BudgetInput carries caller-supplied fields for a budget save.
// Pointers distinguish "absent" from zero.
type BudgetInput struct {
	TotalBudget    *decimal.Decimal
	CategoryLimits CategoryLimits
	Month          *int
	Year           *int
}

type BudgetRepository interface {
	// GetByPeriod returns ErrBudgetNotFound when the owner has no budget for the month
	GetByPeriod(ctx context.Context, ownerID uuid.UUID, month, year int) (*Budget, error)
	// Upsert atomically creates or overwrites the budget keyed by (owner, month, year).
	// created is true when a new row was inserted.
	Upsert(ctx context.Context, budget *Budget) (result *Budget, created bool, err error)
}
