package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertThresholds_Level(t *testing.T) {
	thresholds := DefaultAlertThresholds()

	tests := []struct {
		name       string
		percentage int64
		expected   AlertLevel
	}{
		{"zero is healthy", 0, AlertHealthy},
		{"at warning boundary is healthy", 85, AlertHealthy},
		{"above warning is warning", 86, AlertWarning},
		{"at critical boundary is warning", 100, AlertWarning},
		{"above critical is critical", 125, AlertCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, thresholds.Level(decimal.NewFromInt(tt.percentage)))
		})
	}
}

func TestParseLedgerScope(t *testing.T) {
	scope, err := ParseLedgerScope("all_time")
	require.NoError(t, err)
	assert.Equal(t, LedgerScopeAllTime, scope)

	scope, err = ParseLedgerScope("budget_month")
	require.NoError(t, err)
	assert.Equal(t, LedgerScopeBudgetMonth, scope)

	_, err = ParseLedgerScope("weekly")
	assert.Error(t, err)
}

func TestCategorySet(t *testing.T) {
	set := NewCategorySet([]string{" Food ", "Transport", "", "Food", "Pets"})

	assert.Equal(t, []string{"Food", "Transport", "Pets"}, set.Names())
	assert.True(t, set.Contains("Food"))
	assert.True(t, set.Contains("Pets"))
	assert.False(t, set.Contains("food"), "matching is exact")
	assert.False(t, set.Contains(""))

	var nilSet *CategorySet
	assert.False(t, nilSet.Contains("Food"))
	assert.Empty(t, nilSet.Names())
}

func TestCategoryLimits_CloneTotalKeys(t *testing.T) {
	limits := CategoryLimits{
		"Transport": decimal.NewFromInt(50),
		"Food":      decimal.NewFromInt(120),
	}

	clone := limits.Clone()
	clone["Food"] = decimal.NewFromInt(1)
	assert.True(t, limits["Food"].Equal(decimal.NewFromInt(120)), "clone must not alias")

	assert.Equal(t, "170", limits.Total().String())
	assert.Equal(t, []string{"Food", "Transport"}, limits.Keys())

	var nilLimits CategoryLimits
	assert.NotNil(t, nilLimits.Clone())
	assert.True(t, nilLimits.Total().IsZero())
}

func TestDefaultBudget(t *testing.T) {
	owner := uuid.New()
	b := DefaultBudget(owner, 3, 2026)

	assert.Equal(t, owner, b.OwnerID)
	assert.True(t, b.TotalBudget.IsZero())
	assert.NotNil(t, b.CategoryLimits)
	assert.Empty(t, b.CategoryLimits)
	assert.Equal(t, 3, b.Month)
	assert.Equal(t, 2026, b.Year)
	assert.False(t, b.IsPersisted())
}
