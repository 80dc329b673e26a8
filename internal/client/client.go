// Package client is a Go client for the pocketledger REST API.
// A Client is bound to one bearer token, so it satisfies the owner-scoped
// service.LedgerSource and service.BudgetSource interfaces directly.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	requestTimeout = 15 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "pocketledger-ledgerctl/1.0"
)

// ErrRateLimited indicates the API answered 429
var ErrRateLimited = errors.New("pocketledger: rate limited")

// FieldError is one entry of a validation problem response
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a non-2xx response decoded from its problem details body.
// It unwraps to the matching domain error category.
type APIError struct {
	Status int          `json:"status"`
	Title  string       `json:"title"`
	Detail string       `json:"detail"`
	Errors []FieldError `json:"errors"`
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, fe := range e.Errors {
			parts = append(parts, fe.Field+": "+fe.Message)
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	return fmt.Sprintf("pocketledger: %d %s", e.Status, msg)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return domain.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return domain.ErrInternalError
}

// Client talks to one API base URL on behalf of one token holder
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a client. baseURL is the server root, e.g. http://localhost:8080.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{},
	}
}

// WithHTTPClient swaps the underlying http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

type expenseRequest struct {
	Title    string           `json:"title"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Category string           `json:"category"`
	Date     *string          `json:"date,omitempty"`
}

type budgetRequest struct {
	TotalBudget    *decimal.Decimal           `json:"totalBudget,omitempty"`
	CategoryLimits map[string]decimal.Decimal `json:"categoryLimits,omitempty"`
	Month          *int                       `json:"month,omitempty"`
	Year           *int                       `json:"year,omitempty"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// Ping checks GET /health
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/health", nil, nil)
	return err
}

// ListExpenses returns the caller's expenses, newest first
func (c *Client) ListExpenses(ctx context.Context) ([]*domain.Expense, error) {
	var out []*domain.Expense
	if _, err := c.do(ctx, http.MethodGet, "/api/expenses", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.Expense{}
	}
	return out, nil
}

// CreateExpense posts a new expense
func (c *Client) CreateExpense(ctx context.Context, input domain.ExpenseInput) (*domain.Expense, error) {
	body := expenseRequest{
		Title:    input.Title,
		Amount:   input.Amount,
		Category: input.Category,
	}
	if input.Date != nil {
		d := input.Date.Format(time.RFC3339)
		body.Date = &d
	}

	var out domain.Expense
	if _, err := c.do(ctx, http.MethodPost, "/api/expenses", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteExpense removes one of the caller's expenses
func (c *Client) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/expenses/"+id.String(), nil, nil)
	return err
}

// GetBudget returns the budget for a month, or the server's default budget
func (c *Client) GetBudget(ctx context.Context, month, year int) (*domain.Budget, error) {
	q := url.Values{}
	q.Set("month", strconv.Itoa(month))
	q.Set("year", strconv.Itoa(year))

	var out domain.Budget
	if _, err := c.do(ctx, http.MethodGet, "/api/budget?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if out.CategoryLimits == nil {
		out.CategoryLimits = domain.CategoryLimits{}
	}
	return &out, nil
}

// SaveBudget creates or replaces a month's budget. created reports a 201 answer.
func (c *Client) SaveBudget(ctx context.Context, input domain.BudgetInput) (*domain.Budget, bool, error) {
	body := budgetRequest{
		TotalBudget:    input.TotalBudget,
		CategoryLimits: input.CategoryLimits,
		Month:          input.Month,
		Year:           input.Year,
	}

	var out domain.Budget
	status, err := c.do(ctx, http.MethodPost, "/api/budget", body, &out)
	if err != nil {
		return nil, false, err
	}
	if out.CategoryLimits == nil {
		out.CategoryLimits = domain.CategoryLimits{}
	}
	return &out, status == http.StatusCreated, nil
}

// Health returns the server-side reconciliation for the current month
func (c *Client) Health(ctx context.Context) (*domain.BudgetHealth, error) {
	var out domain.BudgetHealth
	if _, err := c.do(ctx, http.MethodGet, "/api/budget/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Summary returns per-category totals over the caller's whole history
func (c *Client) Summary(ctx context.Context) ([]*domain.CategorySummary, error) {
	var out []*domain.CategorySummary
	if _, err := c.do(ctx, http.MethodGet, "/api/analytics/summary", nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*domain.CategorySummary{}
	}
	return out, nil
}

// Categories returns the server's category allow-list
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	var out categoriesResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}
	return out.Categories, nil
}

// do sends one request and decodes a 2xx body into out when out is non-nil.
// It returns the response status code.
func (c *Client) do(ctx context.Context, method, path string, in, out any) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("pocketledger: encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("pocketledger: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("pocketledger: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("pocketledger: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{}
		// A non-JSON error body still yields an APIError carrying the status
		_ = json.Unmarshal(body, apiErr)
		apiErr.Status = resp.StatusCode
		return resp.StatusCode, apiErr
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, fmt.Errorf("pocketledger: decoding %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}
