package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/util"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

var hundred = decimal.NewFromInt(100)

// ReconcileOptions tune how a ledger is reconciled against a budget
type ReconcileOptions struct {
	Scope      domain.LedgerScope
	Thresholds domain.AlertThresholds
	// Location decides month boundaries for LedgerScopeBudgetMonth. Nil means UTC.
	Location *time.Location
}

// DefaultReconcileOptions reconciles the whole history with the default alert bands
func DefaultReconcileOptions() ReconcileOptions {
	return ReconcileOptions{
		Scope:      domain.LedgerScopeAllTime,
		Thresholds: domain.DefaultAlertThresholds(),
		Location:   time.UTC,
	}
}

// Reconcile derives the health view of ledger against budget. It is pure and
// recomputes everything from its inputs; the result never depends on map order.
func Reconcile(ledger []*domain.Expense, budget *domain.Budget, opts ReconcileOptions) *domain.BudgetHealth {
	if budget == nil {
		budget = domain.DefaultBudget(uuid.Nil, 0, 0)
	}
	if opts.Scope == "" {
		opts.Scope = domain.LedgerScopeAllTime
	}

	totalSpent := decimal.Zero
	usage := make(map[string]decimal.Decimal)
	for _, e := range ledger {
		if e == nil {
			continue
		}
		if opts.Scope == domain.LedgerScopeBudgetMonth && !util.InMonth(e.Date, budget.Year, budget.Month, opts.Location) {
			continue
		}
		totalSpent = totalSpent.Add(e.Amount)
		usage[e.Category] = usage[e.Category].Add(e.Amount)
	}

	health := &domain.BudgetHealth{
		Month:          budget.Month,
		Year:           budget.Year,
		Scope:          opts.Scope,
		TotalBudget:    budget.TotalBudget,
		TotalSpent:     totalSpent,
		Remaining:      budget.TotalBudget.Sub(totalSpent),
		Percentage:     percentOf(totalSpent, budget.TotalBudget),
		Allocated:      budget.CategoryLimits.Total(),
		CategoryUsage:  usage,
		CategoryStatus: make(map[string]domain.CategoryStatus, len(budget.CategoryLimits)),
		OverBudget:     []string{},
		Warning:        []string{},
	}
	health.Unallocated = budget.TotalBudget.Sub(health.Allocated)
	health.Alert = opts.Thresholds.Level(health.Percentage)

	for _, name := range budget.CategoryLimits.Keys() {
		limit := budget.CategoryLimits[name]
		spent := usage[name]
		status := domain.CategoryStatus{
			Limit:      limit,
			Spent:      spent,
			Remaining:  limit.Sub(spent),
			Percentage: percentOf(spent, limit),
		}
		status.Alert = opts.Thresholds.Level(status.Percentage)
		health.CategoryStatus[name] = status

		switch status.Alert {
		case domain.AlertCritical:
			health.OverBudget = append(health.OverBudget, name)
		case domain.AlertWarning:
			health.Warning = append(health.Warning, name)
		}
	}
	sort.Strings(health.OverBudget)
	sort.Strings(health.Warning)

	return health
}

// percentOf returns part*100/whole, or zero when whole is not positive
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}

// ReconciliationService computes BudgetHealth server side for the current month
type ReconciliationService struct {
	expenseService *ExpenseService
	budgetService  *BudgetService
	opts           ReconcileOptions
	now            func() time.Time
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(expenseService *ExpenseService, budgetService *BudgetService, opts ReconcileOptions) *ReconciliationService {
	return &ReconciliationService{
		expenseService: expenseService,
		budgetService:  budgetService,
		opts:           opts,
		now:            time.Now,
	}
}

// WithClock overrides the clock used to pick the current month
func (s *ReconciliationService) WithClock(now func() time.Time) *ReconciliationService {
	s.now = now
	return s
}

// CurrentPeriod returns the month and year the service reconciles against
func (s *ReconciliationService) CurrentPeriod() (month, year int) {
	return util.CurrentPeriod(s.now(), s.opts.Location)
}

// GetHealth fetches the owner's ledger and current budget concurrently and reconciles them.
// The first fetch failure is returned as is.
func (s *ReconciliationService) GetHealth(ctx context.Context, ownerID uuid.UUID) (*domain.BudgetHealth, error) {
	month, year := s.CurrentPeriod()

	var (
		ledger []*domain.Expense
		budget *domain.Budget
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ledger, err = s.expenseService.ListExpenses(gctx, ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		budget, err = s.budgetService.GetBudget(gctx, ownerID, month, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Reconcile(ledger, budget, s.opts), nil
}
