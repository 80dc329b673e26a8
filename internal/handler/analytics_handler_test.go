package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/service"
	"github.com/pocketledger/pocketledger-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSummary(t *testing.T) {
	e := echo.New()
	repo := testutil.NewMockExpenseRepository()
	h := NewAnalyticsHandler(service.NewAnalyticsService(repo))
	owner := uuid.New()
	repo.AddExpense(&domain.Expense{OwnerID: owner, Title: "a", Amount: decimal.NewFromInt(10), Category: "Food"})
	repo.AddExpense(&domain.Expense{OwnerID: owner, Title: "b", Amount: decimal.NewFromInt(5), Category: "Food"})
	repo.AddExpense(&domain.Expense{OwnerID: owner, Title: "c", Amount: decimal.NewFromInt(5), Category: "Transport"})

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupOwnerContext(c, owner)

	require.NoError(t, h.GetSummary(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []CategorySummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []CategorySummaryResponse{
		{Category: "Food", Total: "15.00", Count: 2},
		{Category: "Transport", Total: "5.00", Count: 1},
	}, resp)
}

func TestGetSummary_MissingOwner(t *testing.T) {
	e := echo.New()
	h := NewAnalyticsHandler(service.NewAnalyticsService(testutil.NewMockExpenseRepository()))

	req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.GetSummary(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
