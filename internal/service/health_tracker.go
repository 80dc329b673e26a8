package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/util"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrStaleSnapshot is returned by Refresh when a later refresh or mutation superseded it
	ErrStaleSnapshot = errors.New("health snapshot superseded by a newer change")
	// ErrNotLoaded is returned by Health before the first successful refresh
	ErrNotLoaded = errors.New("health snapshot not loaded")
)

// LedgerSource is an owner-bound view of the expense ledger
type LedgerSource interface {
	ListExpenses(ctx context.Context) ([]*domain.Expense, error)
	CreateExpense(ctx context.Context, input domain.ExpenseInput) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

// BudgetSource is an owner-bound view of the budget store
type BudgetSource interface {
	GetBudget(ctx context.Context, month, year int) (*domain.Budget, error)
	SaveBudget(ctx context.Context, input domain.BudgetInput) (*domain.Budget, bool, error)
}

// OwnerSession binds the ledger and budget services to one owner.
// It satisfies both LedgerSource and BudgetSource.
type OwnerSession struct {
	ownerID  uuid.UUID
	expenses *ExpenseService
	budgets  *BudgetService
}

// NewOwnerSession creates a session for ownerID
func NewOwnerSession(ownerID uuid.UUID, expenses *ExpenseService, budgets *BudgetService) *OwnerSession {
	return &OwnerSession{ownerID: ownerID, expenses: expenses, budgets: budgets}
}

func (s *OwnerSession) ListExpenses(ctx context.Context) ([]*domain.Expense, error) {
	return s.expenses.ListExpenses(ctx, s.ownerID)
}

func (s *OwnerSession) CreateExpense(ctx context.Context, input domain.ExpenseInput) (*domain.Expense, error) {
	return s.expenses.CreateExpense(ctx, s.ownerID, input)
}

func (s *OwnerSession) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	return s.expenses.DeleteExpense(ctx, s.ownerID, id)
}

func (s *OwnerSession) GetBudget(ctx context.Context, month, year int) (*domain.Budget, error) {
	return s.budgets.GetBudget(ctx, s.ownerID, month, year)
}

func (s *OwnerSession) SaveBudget(ctx context.Context, input domain.BudgetInput) (*domain.Budget, bool, error) {
	return s.budgets.SaveBudget(ctx, s.ownerID, input)
}

// HealthTracker holds one owner's ledger and current budget and keeps the
// derived BudgetHealth in step with every acknowledged change.
//
// Every refresh and mutation takes a new generation. A refresh whose
// generation is no longer current when its fetches complete is discarded,
// so an older response can never overwrite a newer state.
type HealthTracker struct {
	ledger  LedgerSource
	budgets BudgetSource
	opts    ReconcileOptions
	now     func() time.Time

	mu         sync.Mutex
	generation uint64
	loaded     bool
	expenses   []*domain.Expense
	budget     *domain.Budget
	health     *domain.BudgetHealth
	lastErr    error
}

// NewHealthTracker creates a tracker over the given sources. A nil clock means time.Now.
func NewHealthTracker(ledger LedgerSource, budgets BudgetSource, opts ReconcileOptions, now func() time.Time) *HealthTracker {
	if now == nil {
		now = time.Now
	}
	return &HealthTracker{
		ledger:  ledger,
		budgets: budgets,
		opts:    opts,
		now:     now,
	}
}

// Refresh refetches the ledger and the current month's budget and recomputes the view.
func (t *HealthTracker) Refresh(ctx context.Context) (*domain.BudgetHealth, error) {
	t.mu.Lock()
	t.generation++
	gen := t.generation
	t.mu.Unlock()

	month, year := util.CurrentPeriod(t.now(), t.opts.Location)

	var (
		ledger []*domain.Expense
		budget *domain.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ledger, err = t.ledger.ListExpenses(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		budget, err = t.budgets.GetBudget(gctx, month, year)
		return err
	})
	err := g.Wait()

	t.mu.Lock()
	defer t.mu.Unlock()

	if gen != t.generation {
		log.Debug().Uint64("generation", gen).Msg("Dropping superseded health refresh")
		return nil, ErrStaleSnapshot
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		t.loaded = false
		t.expenses = nil
		t.budget = nil
		t.health = nil
		t.lastErr = err
		return nil, err
	}

	t.expenses = sortedExpenses(ledger)
	t.budget = budget
	t.loaded = true
	t.lastErr = nil
	t.recomputeLocked()
	return t.health, nil
}

// Health returns the current view. It returns the last refresh error rather
// than a zeroed view when that refresh failed, and ErrNotLoaded before any refresh.
func (t *HealthTracker) Health() (*domain.BudgetHealth, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastErr != nil {
		return nil, t.lastErr
	}
	if !t.loaded {
		return nil, ErrNotLoaded
	}
	return t.health, nil
}

// Expenses returns the held ledger, newest first
func (t *HealthTracker) Expenses() []*domain.Expense {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*domain.Expense{}, t.expenses...)
}

// AddExpense records an expense and, once acknowledged, folds it into the view.
// When nothing is loaded yet a full refresh runs instead; its failure is reported by Health.
func (t *HealthTracker) AddExpense(ctx context.Context, input domain.ExpenseInput) (*domain.Expense, error) {
	created, err := t.ledger.CreateExpense(ctx, input)
	if err != nil {
		return nil, err
	}

	t.apply(ctx, func() {
		// a refresh landing after the create may already hold it
		for _, e := range t.expenses {
			if e.ID == created.ID {
				return
			}
		}
		t.expenses = sortedExpenses(append(append([]*domain.Expense{}, t.expenses...), created))
	})
	return created, nil
}

// DeleteExpense removes an expense and, once acknowledged, drops it from the view
func (t *HealthTracker) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if err := t.ledger.DeleteExpense(ctx, id); err != nil {
		return err
	}

	t.apply(ctx, func() {
		kept := make([]*domain.Expense, 0, len(t.expenses))
		for _, e := range t.expenses {
			if e.ID != id {
				kept = append(kept, e)
			}
		}
		t.expenses = kept
	})
	return nil
}

// SaveBudget stores a budget and, when it is for the tracked month, adopts it in the view
func (t *HealthTracker) SaveBudget(ctx context.Context, input domain.BudgetInput) (*domain.Budget, bool, error) {
	saved, created, err := t.budgets.SaveBudget(ctx, input)
	if err != nil {
		return nil, false, err
	}

	t.apply(ctx, func() {
		if t.budget == nil || (saved.Month == t.budget.Month && saved.Year == t.budget.Year) {
			t.budget = saved
		}
	})
	return saved, created, nil
}

// apply runs mutate against the held snapshot and recomputes, superseding any
// in-flight refresh. Without a snapshot it falls back to a full refresh.
func (t *HealthTracker) apply(ctx context.Context, mutate func()) {
	t.mu.Lock()
	if !t.loaded {
		t.mu.Unlock()
		if _, err := t.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleSnapshot) {
			log.Warn().Err(err).Msg("Health refresh after mutation failed")
		}
		return
	}
	defer t.mu.Unlock()

	t.generation++
	mutate()
	t.recomputeLocked()
}

func (t *HealthTracker) recomputeLocked() {
	t.health = Reconcile(t.expenses, t.budget, t.opts)
}

// sortedExpenses orders by date descending, newest record first on equal dates
func sortedExpenses(in []*domain.Expense) []*domain.Expense {
	out := make([]*domain.Expense, 0, len(in))
	for _, e := range in {
		if e != nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
