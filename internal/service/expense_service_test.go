package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExpenseService(repo *testutil.MockExpenseRepository) *ExpenseService {
	return NewExpenseService(repo, domain.NewCategorySet(domain.DefaultCategories))
}

func amountPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCreateExpense_Success(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	fixed := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	svc := newTestExpenseService(repo).WithClock(func() time.Time { return fixed })
	owner := uuid.New()

	expense, err := svc.CreateExpense(context.Background(), owner, domain.ExpenseInput{
		Title:    "  Groceries  ",
		Amount:   amountPtr("42.5"),
		Category: "Food",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, expense.ID)
	assert.Equal(t, owner, expense.OwnerID)
	assert.Equal(t, "Groceries", expense.Title)
	assert.Equal(t, "42.50", expense.Amount.StringFixed(2))
	assert.Equal(t, "Food", expense.Category)
	assert.True(t, fixed.Equal(expense.Date), "date defaults to now")
	assert.Equal(t, 1, repo.Count())
}

func TestCreateExpense_ExplicitDate(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	svc := newTestExpenseService(repo)
	date := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)

	expense, err := svc.CreateExpense(context.Background(), uuid.New(), domain.ExpenseInput{
		Title:    "Bus",
		Amount:   amountPtr("2.75"),
		Category: "Transport",
		Date:     &date,
	})

	require.NoError(t, err)
	assert.True(t, date.Equal(expense.Date))
}

func TestCreateExpense_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   domain.ExpenseInput
		wantErr error
	}{
		{"missing title", domain.ExpenseInput{Amount: amountPtr("1"), Category: "Food"}, domain.ErrTitleRequired},
		{"blank title", domain.ExpenseInput{Title: "   ", Amount: amountPtr("1"), Category: "Food"}, domain.ErrTitleRequired},
		{"long title", domain.ExpenseInput{Title: strings.Repeat("a", domain.MaxExpenseTitleLength+1), Amount: amountPtr("1"), Category: "Food"}, domain.ErrTitleTooLong},
		{"long multibyte title", domain.ExpenseInput{Title: strings.Repeat("食", domain.MaxExpenseTitleLength+1), Amount: amountPtr("1"), Category: "Food"}, domain.ErrTitleTooLong},
		{"amount too large", domain.ExpenseInput{Title: "x", Amount: amountPtr("1e13"), Category: "Food"}, domain.ErrInvalidAmount},
		{"amount rounds above max", domain.ExpenseInput{Title: "x", Amount: amountPtr("999999999999.996"), Category: "Food"}, domain.ErrInvalidAmount},
		{"missing amount", domain.ExpenseInput{Title: "x", Category: "Food"}, domain.ErrAmountRequired},
		{"zero amount", domain.ExpenseInput{Title: "x", Amount: amountPtr("0"), Category: "Food"}, domain.ErrAmountRequired},
		{"negative amount", domain.ExpenseInput{Title: "x", Amount: amountPtr("-5"), Category: "Food"}, domain.ErrInvalidAmount},
		{"rounds to zero", domain.ExpenseInput{Title: "x", Amount: amountPtr("0.001"), Category: "Food"}, domain.ErrInvalidAmount},
		{"missing category", domain.ExpenseInput{Title: "x", Amount: amountPtr("1")}, domain.ErrCategoryRequired},
		{"unknown category", domain.ExpenseInput{Title: "x", Amount: amountPtr("1"), Category: "Crypto"}, domain.ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockExpenseRepository()
			svc := newTestExpenseService(repo)

			_, err := svc.CreateExpense(context.Background(), uuid.New(), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, 0, repo.Count())
		})
	}
}

func TestCreateExpense_MultibyteTitleAndMaxAmount(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	svc := newTestExpenseService(repo)
	title := strings.Repeat("食", domain.MaxExpenseTitleLength)

	expense, err := svc.CreateExpense(context.Background(), uuid.New(), domain.ExpenseInput{
		Title:    title,
		Amount:   amountPtr("999999999999.99"),
		Category: "Food",
	})

	require.NoError(t, err)
	assert.Equal(t, title, expense.Title)
	assert.True(t, expense.Amount.Equal(domain.MaxAmount))
}

func TestListExpenses_OwnerIsolationAndOrder(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	svc := newTestExpenseService(repo)
	alice, bob := uuid.New(), uuid.New()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	repo.AddExpense(&domain.Expense{OwnerID: alice, Title: "old", Amount: decimal.NewFromInt(1), Category: "Food", Date: base})
	repo.AddExpense(&domain.Expense{OwnerID: alice, Title: "new", Amount: decimal.NewFromInt(2), Category: "Food", Date: base.AddDate(0, 0, 3)})
	repo.AddExpense(&domain.Expense{OwnerID: bob, Title: "bob", Amount: decimal.NewFromInt(3), Category: "Food", Date: base})

	expenses, err := svc.ListExpenses(context.Background(), alice)

	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "new", expenses[0].Title)
	assert.Equal(t, "old", expenses[1].Title)
	for _, e := range expenses {
		assert.Equal(t, alice, e.OwnerID)
	}
}

func TestListExpenses_EmptyIsNotNil(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	repo.ListByOwnerFn = func(ownerID uuid.UUID) ([]*domain.Expense, error) { return nil, nil }
	svc := newTestExpenseService(repo)

	expenses, err := svc.ListExpenses(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, expenses)
	assert.Empty(t, expenses)
}

func TestDeleteExpense_Success(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	svc := newTestExpenseService(repo)
	owner := uuid.New()
	e := &domain.Expense{OwnerID: owner, Title: "x", Amount: decimal.NewFromInt(1), Category: "Food"}
	repo.AddExpense(e)

	err := svc.DeleteExpense(context.Background(), owner, e.ID)

	require.NoError(t, err)
	assert.Equal(t, 0, repo.Count())
}

func TestDeleteExpense_NotFound(t *testing.T) {
	svc := newTestExpenseService(testutil.NewMockExpenseRepository())

	err := svc.DeleteExpense(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteExpense_NotOwnedLeavesRecord(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	svc := newTestExpenseService(repo)
	owner, intruder := uuid.New(), uuid.New()
	e := &domain.Expense{OwnerID: owner, Title: "x", Amount: decimal.NewFromInt(1), Category: "Food"}
	repo.AddExpense(e)

	err := svc.DeleteExpense(context.Background(), intruder, e.ID)

	assert.ErrorIs(t, err, domain.ErrExpenseNotOwned)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Equal(t, 1, repo.Count())

	remaining, err := svc.ListExpenses(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestDeleteExpense_ConcurrentlyRemoved(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	owner := uuid.New()
	e := &domain.Expense{OwnerID: owner, Title: "x", Amount: decimal.NewFromInt(1), Category: "Food"}
	repo.AddExpense(e)
	repo.DeleteOwnedFn = func(ownerID uuid.UUID, id uuid.UUID) error { return domain.ErrExpenseNotFound }
	svc := newTestExpenseService(repo)

	err := svc.DeleteExpense(context.Background(), owner, e.ID)

	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
}

func TestDeleteExpense_RepositoryError(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	owner := uuid.New()
	e := &domain.Expense{OwnerID: owner, Title: "x", Amount: decimal.NewFromInt(1), Category: "Food"}
	repo.AddExpense(e)
	repo.DeleteOwnedFn = func(ownerID uuid.UUID, id uuid.UUID) error { return errors.New("db down") }
	svc := newTestExpenseService(repo)

	err := svc.DeleteExpense(context.Background(), owner, e.ID)

	assert.EqualError(t, err, "db down")
}

func TestAnalyticsSummarize(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	owner := uuid.New()
	repo.AddExpense(&domain.Expense{OwnerID: owner, Title: "a", Amount: decimal.NewFromInt(10), Category: "Food"})
	repo.AddExpense(&domain.Expense{OwnerID: owner, Title: "b", Amount: decimal.NewFromInt(5), Category: "Food"})
	repo.AddExpense(&domain.Expense{OwnerID: owner, Title: "c", Amount: decimal.NewFromInt(5), Category: "Transport"})
	repo.AddExpense(&domain.Expense{OwnerID: uuid.New(), Title: "other", Amount: decimal.NewFromInt(500), Category: "Health"})
	svc := NewAnalyticsService(repo)

	summary, err := svc.Summarize(context.Background(), owner)

	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Food", summary[0].Category)
	assert.Equal(t, "15.00", summary[0].Total.StringFixed(2))
	assert.Equal(t, int64(2), summary[0].Count)
	assert.Equal(t, "Transport", summary[1].Category)
	assert.Equal(t, "5.00", summary[1].Total.StringFixed(2))
	assert.Equal(t, int64(1), summary[1].Count)
}

func TestAnalyticsSummarize_Empty(t *testing.T) {
	repo := testutil.NewMockExpenseRepository()
	repo.SummarizeFn = func(ownerID uuid.UUID) ([]*domain.CategorySummary, error) { return nil, nil }
	svc := NewAnalyticsService(repo)

	summary, err := svc.Summarize(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Empty(t, summary)
}
