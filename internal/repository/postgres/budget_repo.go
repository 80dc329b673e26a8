package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = `id, owner_id, total_budget, category_limits, month, year, created_at, updated_at`

// GetByPeriod retrieves the owner's budget for a month
func (r *BudgetRepository) GetByPeriod(ctx context.Context, ownerID uuid.UUID, month, year int) (*domain.Budget, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE owner_id = $1 AND month = $2 AND year = $3`,
		ownerID, int16(month), int32(year),
	)

	var b domain.Budget
	if err := scanBudget(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("get budget: %w", err)
	}
	return &b, nil
}

// Upsert creates or overwrites the budget for (owner, month, year) in one statement.
// The unique constraint makes concurrent saves for the same period converge on one row.
func (r *BudgetRepository) Upsert(ctx context.Context, budget *domain.Budget) (*domain.Budget, bool, error) {
	total, err := decimalToPgNumeric(budget.TotalBudget)
	if err != nil {
		return nil, false, fmt.Errorf("invalid total budget: %w", err)
	}

	limits, err := json.Marshal(budget.CategoryLimits.Clone())
	if err != nil {
		return nil, false, fmt.Errorf("encode category limits: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (owner_id, total_budget, category_limits, month, year)
		VALUES ($1, $2, $3::jsonb, $4, $5)
		ON CONFLICT (owner_id, month, year) DO UPDATE
		SET total_budget    = EXCLUDED.total_budget,
		    category_limits = EXCLUDED.category_limits,
		    updated_at      = now()
		RETURNING `+budgetColumns+`, (xmax = 0) AS inserted`,
		budget.OwnerID, total, string(limits), int16(budget.Month), int32(budget.Year),
	)

	var (
		b        domain.Budget
		inserted bool
	)
	if err := scanBudget(row, &b, &inserted); err != nil {
		if isUniqueViolation(err) {
			return nil, false, domain.ErrBudgetConflict
		}
		return nil, false, fmt.Errorf("upsert budget: %w", err)
	}
	return &b, inserted, nil
}

func scanBudget(row pgx.Row, b *domain.Budget, extra ...any) error {
	var (
		total  pgtype.Numeric
		limits []byte
		month  int16
		year   int32
	)
	dest := append([]any{&b.ID, &b.OwnerID, &total, &limits, &month, &year, &b.CreatedAt, &b.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}

	b.TotalBudget = pgNumericToDecimal(total)
	b.Month = int(month)
	b.Year = int(year)
	b.CategoryLimits = domain.CategoryLimits{}
	if len(limits) > 0 {
		if err := json.Unmarshal(limits, &b.CategoryLimits); err != nil {
			return fmt.Errorf("decode category limits: %w", err)
		}
	}
	return nil
}
