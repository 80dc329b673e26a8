package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBudgetService(repo *testutil.MockBudgetRepository) *BudgetService {
	return NewBudgetService(repo, domain.NewCategorySet(domain.DefaultCategories))
}

func intPtr(i int) *int { return &i }

func TestGetBudget_DefaultWhenMissing(t *testing.T) {
	svc := newTestBudgetService(testutil.NewMockBudgetRepository())
	owner := uuid.New()

	budget, err := svc.GetBudget(context.Background(), owner, 6, 2025)

	require.NoError(t, err)
	assert.False(t, budget.IsPersisted())
	assert.Equal(t, owner, budget.OwnerID)
	assert.True(t, budget.TotalBudget.IsZero())
	assert.NotNil(t, budget.CategoryLimits)
	assert.Empty(t, budget.CategoryLimits)
	assert.Equal(t, 6, budget.Month)
	assert.Equal(t, 2025, budget.Year)
}

func TestGetBudget_Existing(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	owner := uuid.New()
	repo.AddBudget(&domain.Budget{
		OwnerID:        owner,
		TotalBudget:    decimal.NewFromInt(500),
		CategoryLimits: domain.CategoryLimits{"Food": decimal.NewFromInt(200)},
		Month:          6,
		Year:           2025,
	})
	svc := newTestBudgetService(repo)

	budget, err := svc.GetBudget(context.Background(), owner, 6, 2025)

	require.NoError(t, err)
	assert.True(t, budget.IsPersisted())
	assert.Equal(t, "500.00", budget.TotalBudget.StringFixed(2))
	assert.Equal(t, "200.00", budget.CategoryLimits["Food"].StringFixed(2))
}

func TestGetBudget_InvalidPeriod(t *testing.T) {
	svc := newTestBudgetService(testutil.NewMockBudgetRepository())

	_, err := svc.GetBudget(context.Background(), uuid.New(), 0, 2025)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)

	_, err = svc.GetBudget(context.Background(), uuid.New(), 13, 2025)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)

	_, err = svc.GetBudget(context.Background(), uuid.New(), 1, 1800)
	assert.ErrorIs(t, err, domain.ErrInvalidYear)
}

func TestGetBudget_RepositoryError(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	repo.GetByPeriodFn = func(ownerID uuid.UUID, month, year int) (*domain.Budget, error) {
		return nil, errors.New("db down")
	}
	svc := newTestBudgetService(repo)

	_, err := svc.GetBudget(context.Background(), uuid.New(), 1, 2025)

	assert.EqualError(t, err, "db down")
}

func TestSaveBudget_CreateThenUpdate(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	svc := newTestBudgetService(repo)
	owner := uuid.New()

	first, created, err := svc.SaveBudget(context.Background(), owner, domain.BudgetInput{
		TotalBudget:    amountPtr("1000"),
		CategoryLimits: domain.CategoryLimits{"Food": decimal.NewFromInt(300)},
		Month:          intPtr(4),
		Year:           intPtr(2025),
	})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.SaveBudget(context.Background(), owner, domain.BudgetInput{
		TotalBudget: amountPtr("1200"),
		Month:       intPtr(4),
		Year:        intPtr(2025),
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "1200.00", second.TotalBudget.StringFixed(2))
	assert.NotNil(t, second.CategoryLimits)
	assert.Empty(t, second.CategoryLimits, "limits are replaced, not merged")
	assert.Equal(t, 1, repo.Count())

	got, err := svc.GetBudget(context.Background(), owner, 4, 2025)
	require.NoError(t, err)
	assert.Equal(t, "1200.00", got.TotalBudget.StringFixed(2))
}

func TestSaveBudget_PeriodsAndOwnersAreSeparate(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	svc := newTestBudgetService(repo)
	alice, bob := uuid.New(), uuid.New()

	for _, in := range []struct {
		owner uuid.UUID
		month int
	}{{alice, 1}, {alice, 2}, {bob, 1}} {
		_, created, err := svc.SaveBudget(context.Background(), in.owner, domain.BudgetInput{
			TotalBudget: amountPtr("100"),
			Month:       intPtr(in.month),
			Year:        intPtr(2025),
		})
		require.NoError(t, err)
		assert.True(t, created)
	}
	assert.Equal(t, 3, repo.Count())
}

func TestSaveBudget_ConcurrentSavesKeepOneRecord(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	svc := newTestBudgetService(repo)
	owner := uuid.New()

	const writers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		creates int
		ids     = make(map[uuid.UUID]struct{})
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, created, err := svc.SaveBudget(context.Background(), owner, domain.BudgetInput{
				TotalBudget: amountPtr(decimal.NewFromInt(int64(100 + i)).String()),
				Month:       intPtr(7),
				Year:        intPtr(2025),
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			ids[b.ID] = struct{}{}
			if created {
				creates++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.Count())
	assert.Equal(t, 1, creates)
	assert.Len(t, ids, 1)
}

func TestSaveBudget_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   domain.BudgetInput
		wantErr error
	}{
		{"missing total", domain.BudgetInput{Month: intPtr(1), Year: intPtr(2025)}, domain.ErrTotalBudgetRequired},
		{"missing month", domain.BudgetInput{TotalBudget: amountPtr("1"), Year: intPtr(2025)}, domain.ErrMonthRequired},
		{"missing year", domain.BudgetInput{TotalBudget: amountPtr("1"), Month: intPtr(1)}, domain.ErrYearRequired},
		{"month too low", domain.BudgetInput{TotalBudget: amountPtr("1"), Month: intPtr(0), Year: intPtr(2025)}, domain.ErrInvalidMonth},
		{"month too high", domain.BudgetInput{TotalBudget: amountPtr("1"), Month: intPtr(13), Year: intPtr(2025)}, domain.ErrInvalidMonth},
		{"year out of range", domain.BudgetInput{TotalBudget: amountPtr("1"), Month: intPtr(1), Year: intPtr(3000)}, domain.ErrInvalidYear},
		{"negative total", domain.BudgetInput{TotalBudget: amountPtr("-1"), Month: intPtr(1), Year: intPtr(2025)}, domain.ErrInvalidAmount},
		{"negative limit", domain.BudgetInput{
			TotalBudget:    amountPtr("10"),
			CategoryLimits: domain.CategoryLimits{"Food": decimal.NewFromInt(-1)},
			Month:          intPtr(1), Year: intPtr(2025),
		}, domain.ErrInvalidAmount},
		{"total too large", domain.BudgetInput{TotalBudget: amountPtr("10000000000000"), Month: intPtr(1), Year: intPtr(2025)}, domain.ErrInvalidAmount},
		{"limit too large", domain.BudgetInput{
			TotalBudget:    amountPtr("10"),
			CategoryLimits: domain.CategoryLimits{"Food": decimal.RequireFromString("1e13")},
			Month:          intPtr(1), Year: intPtr(2025),
		}, domain.ErrInvalidAmount},
		{"unknown limit category", domain.BudgetInput{
			TotalBudget:    amountPtr("10"),
			CategoryLimits: domain.CategoryLimits{"Crypto": decimal.NewFromInt(1)},
			Month:          intPtr(1), Year: intPtr(2025),
		}, domain.ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockBudgetRepository()
			svc := newTestBudgetService(repo)

			_, _, err := svc.SaveBudget(context.Background(), uuid.New(), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Equal(t, 0, repo.Count())
		})
	}
}

func TestSaveBudget_ZeroTotalAllowed(t *testing.T) {
	svc := newTestBudgetService(testutil.NewMockBudgetRepository())

	b, created, err := svc.SaveBudget(context.Background(), uuid.New(), domain.BudgetInput{
		TotalBudget: amountPtr("0"),
		Month:       intPtr(1),
		Year:        intPtr(2025),
	})

	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, b.TotalBudget.IsZero())
}

func TestSaveBudget_ConflictPropagates(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	repo.UpsertFn = func(budget *domain.Budget) (*domain.Budget, bool, error) {
		return nil, false, domain.ErrBudgetConflict
	}
	svc := newTestBudgetService(repo)

	_, _, err := svc.SaveBudget(context.Background(), uuid.New(), domain.BudgetInput{
		TotalBudget: amountPtr("10"),
		Month:       intPtr(1),
		Year:        intPtr(2025),
	})

	assert.ErrorIs(t, err, domain.ErrConflict)
}
