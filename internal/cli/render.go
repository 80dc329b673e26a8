package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Theme colors
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)

	healthyStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warningStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	criticalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)
)

const barWidth = 20

// Table is a bordered text table. The first column is left aligned, the rest right aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// AlertStyle picks the color for an alert level
func AlertStyle(level domain.AlertLevel) lipgloss.Style {
	switch level {
	case domain.AlertCritical:
		return criticalStyle
	case domain.AlertWarning:
		return warningStyle
	default:
		return healthyStyle
	}
}

// RenderTitle renders a centered title in a rounded box
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders headers and rows inside box-drawing borders
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i := 0; i < numCols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + padRight(h, widths[i]) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			var padded string
			if i == 0 {
				padded = " " + padRight(cell, widths[i]) + " "
			} else {
				padded = " " + padLeft(cell, widths[i]) + " "
			}
			b.WriteString(valueStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

// RenderUsageBar renders a fixed-width bar for a usage percentage, capped at full
func RenderUsageBar(percentage decimal.Decimal, level domain.AlertLevel) string {
	filled := int(percentage.Mul(decimal.NewFromInt(barWidth)).Div(decimal.NewFromInt(100)).IntPart())
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return AlertStyle(level).Render(strings.Repeat("█", filled)) +
		dimStyle.Render(strings.Repeat("░", barWidth-filled))
}

// RenderHealth renders the reconciled view: totals, per-category status and alert lists
func RenderHealth(h *domain.BudgetHealth) string {
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("BUDGET HEALTH %04d-%02d", h.Year, h.Month)))
	b.WriteString("\n\n")

	line := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render(padRight(label, 12)), value)
	}
	line("Budget", valueStyle.Render(FormatMoney(h.TotalBudget)))
	line("Spent", valueStyle.Render(FormatMoney(h.TotalSpent)))
	line("Remaining", AlertStyle(h.Alert).Render(FormatMoney(h.Remaining)))
	line("Used", RenderUsageBar(h.Percentage, h.Alert)+" "+AlertStyle(h.Alert).Render(FormatPercent(h.Percentage)+" "+string(h.Alert)))
	line("Allocated", valueStyle.Render(FormatMoney(h.Allocated)))
	line("Unallocated", valueStyle.Render(FormatMoney(h.Unallocated)))
	line("Scope", mutedStyle.Render(string(h.Scope)))
	b.WriteString("\n")

	if len(h.CategoryStatus) > 0 {
		t := Table{
			Title:   "Category limits",
			Headers: []string{"Category", "Limit", "Spent", "Remaining", "Used", "Status"},
		}
		for _, name := range sortedKeys(h.CategoryStatus) {
			s := h.CategoryStatus[name]
			t.Rows = append(t.Rows, []string{
				name,
				FormatMoney(s.Limit),
				FormatMoney(s.Spent),
				FormatMoney(s.Remaining),
				FormatPercent(s.Percentage),
				string(s.Alert),
			})
		}
		b.WriteString(RenderTable(t))
		b.WriteString("\n")
	}

	unlimited := make([]string, 0)
	for _, name := range sortedKeys(h.CategoryUsage) {
		if _, ok := h.CategoryStatus[name]; !ok {
			unlimited = append(unlimited, name)
		}
	}
	if len(unlimited) > 0 {
		t := Table{Title: "Spending without a limit", Headers: []string{"Category", "Spent"}}
		for _, name := range unlimited {
			t.Rows = append(t.Rows, []string{name, FormatMoney(h.CategoryUsage[name])})
		}
		b.WriteString(RenderTable(t))
		b.WriteString("\n")
	}

	if len(h.OverBudget) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", criticalStyle.Render("Over budget:"), strings.Join(h.OverBudget, ", "))
	}
	if len(h.Warning) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", warningStyle.Render("Approaching limit:"), strings.Join(h.Warning, ", "))
	}
	if len(h.OverBudget) == 0 && len(h.Warning) == 0 {
		fmt.Fprintf(&b, "  %s\n", healthyStyle.Render("All category limits healthy"))
	}

	return b.String()
}

// RenderExpenses renders the ledger newest first, as returned by the API
func RenderExpenses(expenses []*domain.Expense) string {
	if len(expenses) == 0 {
		return "  " + mutedStyle.Render("No expenses recorded") + "\n"
	}

	t := Table{Headers: []string{"Date", "Title", "Category", "Amount", "ID"}}
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
		t.Rows = append(t.Rows, []string{
			FormatDate(e.Date),
			Truncate(e.Title, 32),
			e.Category,
			FormatMoney(e.Amount),
			e.ID.String(),
		})
	}
	return RenderTable(t) + fmt.Sprintf("  %s %s\n", mutedStyle.Render("Total"), valueStyle.Render(FormatMoney(total)))
}

// RenderSummary renders per-category totals in the order given
func RenderSummary(rows []*domain.CategorySummary) string {
	if len(rows) == 0 {
		return "  " + mutedStyle.Render("No expenses recorded") + "\n"
	}

	t := Table{Title: "Spending by category", Headers: []string{"Category", "Total", "Count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Category, FormatMoney(r.Total), fmt.Sprintf("%d", r.Count)})
	}
	return RenderTable(t)
}

// RenderBudget renders one month's allocation
func RenderBudget(budget *domain.Budget) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %04d-%02d\n", headerStyle.Render("Budget"), budget.Year, budget.Month)
	if !budget.IsPersisted() {
		fmt.Fprintf(&b, "  %s\n", mutedStyle.Render("Nothing saved for this month"))
	}
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render(padRight("Total", 12)), valueStyle.Render(FormatMoney(budget.TotalBudget)))

	allocated := budget.CategoryLimits.Total()
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render(padRight("Allocated", 12)), valueStyle.Render(FormatMoney(allocated)))
	fmt.Fprintf(&b, "  %s %s\n", mutedStyle.Render(padRight("Unallocated", 12)), valueStyle.Render(FormatMoney(budget.TotalBudget.Sub(allocated))))

	if len(budget.CategoryLimits) > 0 {
		t := Table{Headers: []string{"Category", "Limit"}}
		for _, name := range budget.CategoryLimits.Keys() {
			t.Rows = append(t.Rows, []string{name, FormatMoney(budget.CategoryLimits[name])})
		}
		b.WriteString(RenderTable(t))
	}
	return b.String()
}

// RenderCategories renders the allow-list one per line
func RenderCategories(names []string) string {
	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "  %s\n", valueStyle.Render(n))
	}
	return b.String()
}

func padRight(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

func padLeft(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return strings.Repeat(" ", gap) + s
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
