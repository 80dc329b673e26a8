package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pocketledger/pocketledger-backend/internal/client"
	"github.com/pocketledger/pocketledger-backend/internal/domain"
	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8080"

type rootOptions struct {
	apiURL  string
	token   string
	timeout time.Duration
}

// Execute is the entry point called from cmd/ledgerctl.
func Execute() {
	// Optional .env next to the binary, same as the server
	_ = godotenv.Load()

	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCommand assembles ledgerctl. Flags default from LEDGER_API_URL and LEDGER_TOKEN.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Personal budget tracker CLI",
		Long:          "Record expenses, plan monthly budgets and check budget health against a pocketledger server.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", envOr("LEDGER_API_URL", defaultAPIURL), "pocketledger server URL")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("LEDGER_TOKEN"), "bearer token (Auth0 access token)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")

	root.AddCommand(
		newHealthCommand(opts),
		newExpensesCommand(opts),
		newBudgetCommand(opts),
		newSummaryCommand(opts),
		newCategoriesCommand(opts),
	)
	return root
}

func (o *rootOptions) client() (*client.Client, error) {
	if strings.TrimSpace(o.token) == "" {
		return nil, errors.New("no token configured: pass --token or set LEDGER_TOKEN")
	}
	return client.New(o.apiURL, o.token), nil
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, o.timeout)
}

// explain turns API failures into messages a terminal user can act on
func explain(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, client.ErrRateLimited):
		return errors.New("rate limited by server, try again in a minute")
	case errors.Is(err, domain.ErrUnauthorized):
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Detail != "" {
			return fmt.Errorf("not authorized: %s", apiErr.Detail)
		}
		return errors.New("not authorized: token expired or invalid")
	}
	return err
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
