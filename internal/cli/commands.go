package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pocketledger/pocketledger-backend/internal/client"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/pocketledger/pocketledger-backend/internal/service"
	"github.com/pocketledger/pocketledger-backend/internal/util"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// trackerFlags configure client-side reconciliation
type trackerFlags struct {
	scope    string
	warning  float64
	critical float64
	timezone string
}

func (f *trackerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scope, "scope", string(domain.LedgerScopeAllTime), "ledger scope: all_time or budget_month")
	cmd.Flags().Float64Var(&f.warning, "warning", 85, "warning threshold percent")
	cmd.Flags().Float64Var(&f.critical, "critical", 100, "critical threshold percent")
	cmd.Flags().StringVar(&f.timezone, "timezone", "UTC", "IANA zone deciding month boundaries")
}

func (f *trackerFlags) options() (service.ReconcileOptions, error) {
	scope, err := domain.ParseLedgerScope(f.scope)
	if err != nil {
		return service.ReconcileOptions{}, err
	}
	if f.warning < 0 || f.critical < f.warning {
		return service.ReconcileOptions{}, fmt.Errorf("thresholds must satisfy 0 <= warning <= critical (got %v, %v)", f.warning, f.critical)
	}
	loc, err := f.location()
	if err != nil {
		return service.ReconcileOptions{}, err
	}
	return service.ReconcileOptions{
		Scope: scope,
		Thresholds: domain.AlertThresholds{
			Warning:  decimal.NewFromFloat(f.warning),
			Critical: decimal.NewFromFloat(f.critical),
		},
		Location: loc,
	}, nil
}

func (f *trackerFlags) location() (*time.Location, error) {
	loc, err := time.LoadLocation(f.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", f.timezone, err)
	}
	return loc, nil
}

func (f *trackerFlags) tracker(c *client.Client) (*service.HealthTracker, error) {
	opts, err := f.options()
	if err != nil {
		return nil, err
	}
	return service.NewHealthTracker(c, c, opts, nil), nil
}

func newHealthCommand(root *rootOptions) *cobra.Command {
	var (
		flags  trackerFlags
		server bool
	)

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Reconcile the ledger against this month's budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.context(cmd)
			defer cancel()

			var health *domain.BudgetHealth
			if server {
				health, err = c.Health(ctx)
			} else {
				var tracker *service.HealthTracker
				if tracker, err = flags.tracker(c); err != nil {
					return err
				}
				health, err = tracker.Refresh(ctx)
			}
			if err != nil {
				return explain(err)
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderHealth(health))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&server, "server", false, "use the server's reconciliation instead of computing locally")
	return cmd
}

func newExpensesCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"expense", "ex"},
		Short:   "List, record and remove expenses",
	}
	cmd.AddCommand(newExpensesListCommand(root), newExpensesAddCommand(root), newExpensesDeleteCommand(root))
	return cmd
}

func newExpensesListCommand(root *rootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.context(cmd)
			defer cancel()

			expenses, err := c.ListExpenses(ctx)
			if err != nil {
				return explain(err)
			}
			if category != "" {
				filtered := expenses[:0]
				for _, e := range expenses {
					if e.Category == category {
						filtered = append(filtered, e)
					}
				}
				expenses = filtered
			}

			fmt.Fprint(cmd.OutOrStdout(), RenderExpenses(expenses))
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only show this category")
	return cmd
}

func newExpensesAddCommand(root *rootOptions) *cobra.Command {
	var (
		flags      trackerFlags
		title      string
		amount     string
		category   string
		date       string
		showHealth bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input := domain.ExpenseInput{Title: title, Category: category}
			if strings.TrimSpace(amount) != "" {
				d, err := decimal.NewFromString(strings.TrimSpace(amount))
				if err != nil {
					return fmt.Errorf("invalid --amount %q", amount)
				}
				input.Amount = &d
			}
			if strings.TrimSpace(date) != "" {
				loc, err := flags.location()
				if err != nil {
					return err
				}
				t, err := parseDate(date, loc)
				if err != nil {
					return fmt.Errorf("invalid --date %q: use YYYY-MM-DD or RFC 3339", date)
				}
				input.Date = &t
			}

			c, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.context(cmd)
			defer cancel()

			out := cmd.OutOrStdout()
			if !showHealth {
				created, err := c.CreateExpense(ctx, input)
				if err != nil {
					return explain(err)
				}
				fmt.Fprintf(out, "  Recorded %s\n", created.ID)
				fmt.Fprint(out, RenderExpenses([]*domain.Expense{created}))
				return nil
			}

			tracker, err := flags.tracker(c)
			if err != nil {
				return err
			}
			created, err := tracker.AddExpense(ctx, input)
			if err != nil {
				return explain(err)
			}
			fmt.Fprintf(out, "  Recorded %s\n", created.ID)
			health, err := tracker.Health()
			if err != nil {
				return explain(err)
			}
			fmt.Fprint(out, RenderHealth(health))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "what the money was spent on")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount, e.g. 12.50")
	cmd.Flags().StringVar(&category, "category", "", "one of the server's categories")
	cmd.Flags().StringVar(&date, "date", "", "expense date (default today)")
	cmd.Flags().BoolVar(&showHealth, "health", false, "show budget health after recording")
	flags.register(cmd)
	return cmd
}

func newExpensesDeleteCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove an expense",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid expense id %q", args[0])
			}

			c, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.context(cmd)
			defer cancel()

			if err := c.DeleteExpense(ctx, id); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("expense %s not found", id)
				}
				return explain(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  Expense removed %s\n", id)
			return nil
		},
	}
}

func newBudgetCommand(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or plan a monthly budget",
	}
	cmd.AddCommand(newBudgetGetCommand(root), newBudgetSetCommand(root))
	return cmd
}

// periodFlags default to the current UTC month when left at zero
type periodFlags struct {
	month int
	year  int
}

func (p *periodFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.month, "month", 0, "month 1-12 (default current)")
	cmd.Flags().IntVar(&p.year, "year", 0, "year (default current)")
}

func (p *periodFlags) resolve() (int, int) {
	month, year := util.CurrentPeriod(time.Now(), time.UTC)
	if p.month != 0 {
		month = p.month
	}
	if p.year != 0 {
		year = p.year
	}
	return month, year
}

func newBudgetGetCommand(root *rootOptions) *cobra.Command {
	var period periodFlags

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a month's budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.context(cmd)
			defer cancel()

			month, year := period.resolve()
			budget, err := c.GetBudget(ctx, month, year)
			if err != nil {
				return explain(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderBudget(budget))
			return nil
		},
	}
	period.register(cmd)
	return cmd
}

func newBudgetSetCommand(root *rootOptions) *cobra.Command {
	var (
		period periodFlags
		total  string
		limits []string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Create or replace a month's budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			totalBudget, err := decimal.NewFromString(strings.TrimSpace(total))
			if err != nil {
				return fmt.Errorf("invalid --total %q", total)
			}
			categoryLimits, err := parseLimits(limits)
			if err != nil {
				return err
			}

			c, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.context(cmd)
			defer cancel()

			month, year := period.resolve()
			budget, created, err := c.SaveBudget(ctx, domain.BudgetInput{
				TotalBudget:    &totalBudget,
				CategoryLimits: categoryLimits,
				Month:          &month,
				Year:           &year,
			})
			if err != nil {
				return explain(err)
			}

			verb := "Updated"
			if created {
				verb = "Created"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "  %s budget for %04d-%02d\n", verb, budget.Year, budget.Month)
			fmt.Fprint(out, RenderBudget(budget))
			return nil
		},
	}
	period.register(cmd)
	cmd.Flags().StringVar(&total, "total", "", "total budget for the month")
	cmd.Flags().StringArrayVar(&limits, "limit", nil, "category limit as Category=amount, repeatable")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func newSummaryCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Total spending per category across all time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.context(cmd)
			defer cancel()

			rows, err := c.Summary(ctx)
			if err != nil {
				return explain(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderSummary(rows))
			return nil
		},
	}
}

func newCategoriesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories the server accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.client()
			if err != nil {
				return err
			}
			ctx, cancel := root.context(cmd)
			defer cancel()

			names, err := c.Categories(ctx)
			if err != nil {
				return explain(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), RenderCategories(names))
			return nil
		},
	}
}

// parseDate reads RFC 3339 or a bare YYYY-MM-DD, which is taken as midnight in loc
func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}

// parseLimits reads Category=amount pairs. A repeated category keeps the last value.
func parseLimits(pairs []string) (domain.CategoryLimits, error) {
	out := domain.CategoryLimits{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --limit %q: want Category=amount", p)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid --limit %q: %w", p, err)
		}
		out[name] = d
	}
	return out, nil
}
