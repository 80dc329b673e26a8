package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LedgerScope selects which part of the ledger is reconciled against a month's budget
type LedgerScope string

const (
	// LedgerScopeAllTime reconciles the whole expense history against the current budget
	LedgerScopeAllTime LedgerScope = "all_time"
	// LedgerScopeBudgetMonth reconciles only expenses dated inside the budget's month
	LedgerScopeBudgetMonth LedgerScope = "budget_month"
)

// ParseLedgerScope validates a configured scope value
func ParseLedgerScope(s string) (LedgerScope, error) {
	switch LedgerScope(s) {
	case LedgerScopeAllTime, LedgerScopeBudgetMonth:
		return LedgerScope(s), nil
	}
	return "", fmt.Errorf("unknown ledger scope %q", s)
}

type AlertLevel string

const (
	AlertHealthy  AlertLevel = "healthy"
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// AlertThresholds are percentage boundaries. A percentage strictly above
// Critical is critical; strictly above Warning (and not critical) is a warning.
type AlertThresholds struct {
	Warning  decimal.Decimal
	Critical decimal.Decimal
}

// DefaultAlertThresholds mirror the dashboard's warning zone and overspending bands
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		Warning:  decimal.NewFromInt(85),
		Critical: decimal.NewFromInt(100),
	}
}

// Level classifies a usage percentage
func (t AlertThresholds) Level(percentage decimal.Decimal) AlertLevel {
	switch {
	case percentage.GreaterThan(t.Critical):
		return AlertCritical
	case percentage.GreaterThan(t.Warning):
		return AlertWarning
	default:
		return AlertHealthy
	}
}

// CategoryStatus is usage against an explicit category limit
type CategoryStatus struct {
	Limit      decimal.Decimal `json:"limit"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"`
	Alert      AlertLevel      `json:"alert"`
}

// BudgetHealth is the derived, never-persisted view of a ledger reconciled against a budget.
// CategoryStatus only has entries for categories with an explicit limit.
type BudgetHealth struct {
	Month          int                        `json:"month"`
	Year           int                        `json:"year"`
	Scope          LedgerScope                `json:"scope"`
	TotalBudget    decimal.Decimal            `json:"totalBudget"`
	TotalSpent     decimal.Decimal            `json:"totalSpent"`
	Remaining      decimal.Decimal            `json:"remaining"`
	Percentage     decimal.Decimal            `json:"percentage"`
	Alert          AlertLevel                 `json:"alert"`
	Allocated      decimal.Decimal            `json:"allocated"`
	Unallocated    decimal.Decimal            `json:"unallocated"`
	CategoryUsage  map[string]decimal.Decimal `json:"categoryUsage"`
	CategoryStatus map[string]CategoryStatus  `json:"categoryStatus"`
	OverBudget     []string                   `json:"overBudget"`
	Warning        []string                   `json:"warning"`
}
