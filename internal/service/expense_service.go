package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ExpenseService handles ledger business logic
type ExpenseService struct {
	expenseRepo domain.ExpenseRepository
	categories  *domain.CategorySet
	now         func() time.Time
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository, categories *domain.CategorySet) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		categories:  categories,
		now:         time.Now,
	}
}

// WithClock overrides the clock used to default expense dates
func (s *ExpenseService) WithClock(now func() time.Time) *ExpenseService {
	s.now = now
	return s
}

// Categories returns the allowed category names
func (s *ExpenseService) Categories() []string {
	return s.categories.Names()
}

// ListExpenses returns every expense of the owner, most recent first
func (s *ExpenseService) ListExpenses(ctx context.Context, ownerID uuid.UUID) ([]*domain.Expense, error) {
	expenses, err := s.expenseRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []*domain.Expense{}
	}
	return expenses, nil
}

// CreateExpense validates input and records a new expense for the owner
func (s *ExpenseService) CreateExpense(ctx context.Context, ownerID uuid.UUID, input domain.ExpenseInput) (*domain.Expense, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, domain.ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > domain.MaxExpenseTitleLength {
		return nil, domain.ErrTitleTooLong
	}
	if input.Amount == nil || input.Amount.IsZero() {
		return nil, domain.ErrAmountRequired
	}
	amount := input.Amount.Round(2)
	if !amount.IsPositive() || amount.GreaterThan(domain.MaxAmount) {
		return nil, domain.ErrInvalidAmount
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}
	if !s.categories.Contains(category) {
		return nil, domain.ErrUnknownCategory
	}

	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}

	expense := &domain.Expense{
		OwnerID:  ownerID,
		Title:    title,
		Amount:   amount,
		Category: category,
		Date:     date,
	}

	created, err := s.expenseRepo.Create(ctx, expense)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("owner_id", ownerID.String()).
		Str("expense_id", created.ID.String()).
		Str("category", created.Category).
		Msg("Expense recorded")
	return created, nil
}

// DeleteExpense removes an expense after checking it exists and belongs to the owner.
// Ownership is checked again by the delete statement itself.
func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID uuid.UUID, expenseID uuid.UUID) error {
	existing, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return err
	}
	if existing.OwnerID != ownerID {
		log.Warn().
			Str("owner_id", ownerID.String()).
			Str("expense_id", expenseID.String()).
			Msg("Refused delete of expense owned by another user")
		return domain.ErrExpenseNotOwned
	}

	if err := s.expenseRepo.DeleteOwned(ctx, ownerID, expenseID); err != nil {
		if errors.Is(err, domain.ErrExpenseNotFound) {
			return domain.ErrExpenseNotFound
		}
		return err
	}
	return nil
}
