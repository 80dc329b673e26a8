package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a single dated spending record owned by exactly one user
type Expense struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   uuid.UUID       `json:"ownerId"`
	Title     string          `json:"title"`
	Amount    decimal.Decimal `json:"amount"`
	Category  string          `json:"category"`
	Date      time.Time       `json:"date"`
	CreatedAt time.Time       `json:"createdAt"`
}

// ExpenseInput carries caller-supplied fields for a new expense.
// Owner is never part of the input; it comes from the authenticated session.
type ExpenseInput struct {
	Title    string
	Amount   *decimal.Decimal
	Category string
	Date     *time.Time
}

// MaxAmount is the largest money value a NUMERIC(14,2) column holds
var MaxAmount = decimal.RequireFromString("999999999999.99")

// CategorySummary is one row of the all-time per-category aggregation
type CategorySummary struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int64           `json:"count"`
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) (*Expense, error)
	// GetByID looks an expense up regardless of owner. It exists only so the
	// delete path can tell "not found" apart from "not yours".
	GetByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Expense, error)
	// DeleteOwned removes the expense only if it still belongs to ownerID.
	// Returns ErrExpenseNotFound when no row matched.
	DeleteOwned(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error
	SummarizeByCategory(ctx context.Context, ownerID uuid.UUID) ([]*CategorySummary, error)
}
