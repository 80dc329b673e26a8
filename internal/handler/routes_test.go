package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pocketledger/pocketledger-backend/internal/middleware"
	"github.com/pocketledger/pocketledger-backend/internal/service"
	"github.com/pocketledger/pocketledger-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	if token != "valid" {
		return nil, errors.New("invalid")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|routes"},
	}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func newTestServer(t *testing.T, pingErr error) *echo.Echo {
	t.Helper()
	expenses := testutil.NewMockExpenseRepository()
	budgets := testutil.NewMockBudgetRepository()
	users := testutil.NewMockUserRepository()

	expenseService := service.NewExpenseService(expenses, testCategories)
	budgetService := service.NewBudgetService(budgets, testCategories)
	reconciliation := service.NewReconciliationService(expenseService, budgetService, service.DefaultReconcileOptions())

	auth := middleware.NewAuthMiddlewareWithValidator(stubValidator{}, service.NewAuthService(users))
	limiter := middleware.NewRateLimiterWithConfig(600, 100)
	t.Cleanup(limiter.Stop)

	e := echo.New()
	RegisterRoutes(e, auth, limiter, middleware.NewMetrics(), Handlers{
		Expense:   NewExpenseHandler(expenseService),
		Budget:    NewBudgetHandler(budgetService, reconciliation),
		Analytics: NewAnalyticsHandler(service.NewAnalyticsService(expenses)),
		Status:    NewStatusHandler(stubPinger{err: pingErr}),
	})
	return e
}

func TestRoutes_RequireAuthentication(t *testing.T) {
	e := newTestServer(t, nil)

	for _, target := range []string{"/api/expenses", "/api/budget?month=1&year=2025", "/api/budget/health", "/api/analytics/summary", "/api/categories"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestRoutes_AuthenticatedFlow(t *testing.T) {
	e := newTestServer(t, nil)

	do := func(method, target, body string) *httptest.ResponseRecorder {
		req := newJSONRequest(method, target, body)
		req.Header.Set(echo.HeaderAuthorization, "Bearer valid")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	now := time.Now().UTC()
	rec := do(http.MethodPost, "/api/budget", fmt.Sprintf(`{"totalBudget":100,"categoryLimits":{"Food":40},"month":%d,"year":%d}`, int(now.Month()), now.Year()))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(http.MethodPost, "/api/expenses", `{"title":"Dinner","amount":50,"category":"Food"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(http.MethodGet, "/api/budget/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalSpent":"50.00"`)
	assert.Contains(t, rec.Body.String(), `"overBudget":["Food"]`)

	rec = do(http.MethodGet, "/api/expenses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Remaining"))
}

func TestRoutes_DeleteUnknownExpense(t *testing.T) {
	e := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/expenses/"+uuid.New().String(), nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer valid")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_HealthAndMetricsArePublic(t *testing.T) {
	e := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_HealthReportsDatabaseDown(t *testing.T) {
	e := newTestServer(t, errors.New("connection refused"))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
