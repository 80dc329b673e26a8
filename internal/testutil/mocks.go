package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	mu       sync.Mutex
	Users    map[string]*domain.User
	CreateFn func(auth0ID, email string, name *string) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users: make(map[string]*domain.User),
	}
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(ctx context.Context, auth0ID, email string, name *string) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(auth0ID, email, name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	user := &domain.User{
		ID:        uuid.New(),
		Auth0ID:   auth0ID,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.Users[auth0ID] = user
	return user, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Users[user.Auth0ID] = user
}

// MockExpenseRepository is an in-memory implementation of domain.ExpenseRepository.
// It is safe for concurrent use.
type MockExpenseRepository struct {
	mu       sync.RWMutex
	Expenses map[uuid.UUID]*domain.Expense

	CreateFn      func(expense *domain.Expense) (*domain.Expense, error)
	ListByOwnerFn func(ownerID uuid.UUID) ([]*domain.Expense, error)
	DeleteOwnedFn func(ownerID uuid.UUID, id uuid.UUID) error
	SummarizeFn   func(ownerID uuid.UUID) ([]*domain.CategorySummary, error)
}

// NewMockExpenseRepository creates a new MockExpenseRepository
func NewMockExpenseRepository() *MockExpenseRepository {
	return &MockExpenseRepository{
		Expenses: make(map[uuid.UUID]*domain.Expense),
	}
}

// Create stores a copy of the expense with a generated ID
func (m *MockExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	if m.CreateFn != nil {
		return m.CreateFn(expense)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *expense
	stored.ID = uuid.New()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.Expenses[stored.ID] = &stored
	out := stored
	return &out, nil
}

// GetByID retrieves an expense regardless of owner
func (m *MockExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.Expenses[id]; ok {
		out := *e
		return &out, nil
	}
	return nil, domain.ErrExpenseNotFound
}

// ListByOwner returns the owner's expenses, most recent date first
func (m *MockExpenseRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Expense, error) {
	if m.ListByOwnerFn != nil {
		return m.ListByOwnerFn(ownerID)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*domain.Expense, 0)
	for _, e := range m.Expenses {
		if e.OwnerID == ownerID {
			out := *e
			result = append(result, &out)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteOwned removes the expense if it belongs to ownerID
func (m *MockExpenseRepository) DeleteOwned(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	if m.DeleteOwnedFn != nil {
		return m.DeleteOwnedFn(ownerID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Expenses[id]
	if !ok || e.OwnerID != ownerID {
		return domain.ErrExpenseNotFound
	}
	delete(m.Expenses, id)
	return nil
}

// SummarizeByCategory groups the owner's expenses by category, total descending
func (m *MockExpenseRepository) SummarizeByCategory(ctx context.Context, ownerID uuid.UUID) ([]*domain.CategorySummary, error) {
	if m.SummarizeFn != nil {
		return m.SummarizeFn(ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	byCategory := make(map[string]*domain.CategorySummary)
	for _, e := range m.Expenses {
		if e.OwnerID != ownerID {
			continue
		}
		s, ok := byCategory[e.Category]
		if !ok {
			s = &domain.CategorySummary{Category: e.Category, Total: decimal.Zero}
			byCategory[e.Category] = s
		}
		s.Total = s.Total.Add(e.Amount)
		s.Count++
	}

	result := make([]*domain.CategorySummary, 0, len(byCategory))
	for _, s := range byCategory {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Total.GreaterThan(result[j].Total)
	})
	return result, nil
}

// AddExpense adds an expense directly (helper for tests)
func (m *MockExpenseRepository) AddExpense(expense *domain.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	m.Expenses[expense.ID] = expense
}

// Count returns the number of stored expenses across all owners
func (m *MockExpenseRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Expenses)
}

// MockBudgetRepository is an in-memory implementation of domain.BudgetRepository.
// Upsert holds the lock across find-and-modify so concurrent saves cannot create duplicates.
type MockBudgetRepository struct {
	mu      sync.Mutex
	Budgets map[string]*domain.Budget

	GetByPeriodFn func(ownerID uuid.UUID, month, year int) (*domain.Budget, error)
	UpsertFn      func(budget *domain.Budget) (*domain.Budget, bool, error)
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{
		Budgets: make(map[string]*domain.Budget),
	}
}

func budgetKey(ownerID uuid.UUID, month, year int) string {
	return fmt.Sprintf("%s-%d-%d", ownerID, year, month)
}

// GetByPeriod retrieves the budget for (owner, month, year)
func (m *MockBudgetRepository) GetByPeriod(ctx context.Context, ownerID uuid.UUID, month, year int) (*domain.Budget, error) {
	if m.GetByPeriodFn != nil {
		return m.GetByPeriodFn(ownerID, month, year)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.Budgets[budgetKey(ownerID, month, year)]; ok {
		return copyBudget(b), nil
	}
	return nil, domain.ErrBudgetNotFound
}

// Upsert creates or overwrites the budget for (owner, month, year)
func (m *MockBudgetRepository) Upsert(ctx context.Context, budget *domain.Budget) (*domain.Budget, bool, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(budget)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := budgetKey(budget.OwnerID, budget.Month, budget.Year)
	now := time.Now()
	if existing, ok := m.Budgets[key]; ok {
		existing.TotalBudget = budget.TotalBudget
		existing.CategoryLimits = budget.CategoryLimits.Clone()
		existing.UpdatedAt = now
		return copyBudget(existing), false, nil
	}

	stored := copyBudget(budget)
	stored.ID = uuid.New()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.Budgets[key] = stored
	return copyBudget(stored), true, nil
}

// AddBudget adds a budget directly (helper for tests)
func (m *MockBudgetRepository) AddBudget(budget *domain.Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if budget.ID == uuid.Nil {
		budget.ID = uuid.New()
	}
	m.Budgets[budgetKey(budget.OwnerID, budget.Month, budget.Year)] = budget
}

// Count returns the number of stored budgets
func (m *MockBudgetRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Budgets)
}

func copyBudget(b *domain.Budget) *domain.Budget {
	out := *b
	out.CategoryLimits = b.CategoryLimits.Clone()
	return &out
}
