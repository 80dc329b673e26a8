package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetService handles monthly budget business logic
type BudgetService struct {
	budgetRepo domain.BudgetRepository
	categories *domain.CategorySet
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categories *domain.CategorySet) *BudgetService {
	return &BudgetService{
		budgetRepo: budgetRepo,
		categories: categories,
	}
}

// GetBudget returns the owner's budget for the month, or a zero-valued default when none is saved
func (s *BudgetService) GetBudget(ctx context.Context, ownerID uuid.UUID, month, year int) (*domain.Budget, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByPeriod(ctx, ownerID, month, year)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return domain.DefaultBudget(ownerID, month, year), nil
		}
		return nil, err
	}
	if budget.CategoryLimits == nil {
		budget.CategoryLimits = domain.CategoryLimits{}
	}
	return budget, nil
}

// SaveBudget creates or overwrites the owner's budget for the month.
// created reports whether a new budget was stored.
func (s *BudgetService) SaveBudget(ctx context.Context, ownerID uuid.UUID, input domain.BudgetInput) (*domain.Budget, bool, error) {
	if input.TotalBudget == nil {
		return nil, false, domain.ErrTotalBudgetRequired
	}
	if input.Month == nil {
		return nil, false, domain.ErrMonthRequired
	}
	if input.Year == nil {
		return nil, false, domain.ErrYearRequired
	}
	if err := validatePeriod(*input.Month, *input.Year); err != nil {
		return nil, false, err
	}
	if !validMoney(*input.TotalBudget) {
		return nil, false, domain.ErrInvalidAmount
	}

	limits := make(domain.CategoryLimits, len(input.CategoryLimits))
	for name, limit := range input.CategoryLimits {
		if !s.categories.Contains(name) {
			return nil, false, domain.ErrUnknownCategory
		}
		if !validMoney(limit) {
			return nil, false, domain.ErrInvalidAmount
		}
		limits[name] = limit.Round(2)
	}

	budget := &domain.Budget{
		OwnerID:        ownerID,
		TotalBudget:    input.TotalBudget.Round(2),
		CategoryLimits: limits,
		Month:          *input.Month,
		Year:           *input.Year,
	}

	saved, created, err := s.budgetRepo.Upsert(ctx, budget)
	if err != nil {
		return nil, false, err
	}
	log.Debug().
		Str("owner_id", ownerID.String()).
		Int("month", saved.Month).
		Int("year", saved.Year).
		Bool("created", created).
		Msg("Budget saved")
	return saved, created, nil
}

// validMoney reports whether d is non-negative and fits the money columns once rounded
func validMoney(d decimal.Decimal) bool {
	return !d.IsNegative() && !d.Round(2).GreaterThan(domain.MaxAmount)
}

func validatePeriod(month, year int) error {
	if !util.IsValidMonth(month) {
		return domain.ErrInvalidMonth
	}
	if year < domain.MinBudgetYear || year > domain.MaxBudgetYear {
		return domain.ErrInvalidYear
	}
	return nil
}
