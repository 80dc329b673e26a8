package handler

import (
	"github.com/labstack/echo/v4"
	"github.com/pocketledger/pocketledger-backend/internal/middleware"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes
type Handlers struct {
	Expense   *ExpenseHandler
	Budget    *BudgetHandler
	Analytics *AnalyticsHandler
	Status    *StatusHandler
}

// RegisterRoutes sets up all routes. Everything under /api requires a bearer token
// and is rate limited per owner.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, metrics *middleware.Metrics, h Handlers) {
	e.GET("/health", h.Status.Health)
	if metrics != nil {
		e.GET("/metrics", metrics.Handler())
	}

	api := e.Group("/api")
	api.Use(authMiddleware.Authenticate())
	if rateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(rateLimiter))
	}

	// Ledger routes
	expenses := api.Group("/expenses")
	expenses.GET("", h.Expense.GetExpenses)
	expenses.POST("", h.Expense.CreateExpense)
	expenses.DELETE("/:id", h.Expense.DeleteExpense)

	api.GET("/categories", h.Expense.GetCategories)

	// Budget routes
	budget := api.Group("/budget")
	budget.GET("", h.Budget.GetBudget)
	budget.POST("", h.Budget.SaveBudget)
	budget.GET("/health", h.Budget.GetHealth)

	// Analytics routes
	analytics := api.Group("/analytics")
	analytics.GET("/summary", h.Analytics.GetSummary)
}
