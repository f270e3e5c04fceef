package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonandersen/wst/internal/output"
	"github.com/jonandersen/wst/pkg/wstrade"
)

// accountOptions holds dependencies for the account command.
type accountOptions struct {
	load     contextLoader
	jsonMode bool
}

func newAccountCmd(opts accountOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "List your trading accounts",
		Long: `List the trading accounts of the configured login with their balance
and buying power. The first account is the default unless one is set with
'wst configure' or WST_DEFAULT_ACCOUNT.

Examples:
  wst account
  wst account --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.jsonMode = opts.jsonMode || GetJSONMode()
			return withClient(opts.load, func(ctx context.Context, app *appContext, client *wstrade.Client) error {
				return runAccountList(cmd, opts, client)
			})
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runAccountList(cmd *cobra.Command, opts accountOptions, client *wstrade.Client) error {
	accounts := client.Accounts()
	if len(accounts) == 0 && !opts.jsonMode {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No accounts found")
		return nil
	}

	defaultID, _ := client.DefaultAccountID()

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	headers := []string{"Account ID", "Type", "Balance", "Buying Power", "Default"}
	rows := make([][]string, 0, len(accounts))
	for _, acc := range accounts {
		isDefault := ""
		if acc.ID == defaultID {
			isDefault = "*"
		}
		rows = append(rows, []string{
			acc.ID,
			acc.Type,
			output.Amount(acc.Balance, acc.Currency),
			output.Amount(acc.BuyingPower, acc.Currency),
			isDefault,
		})
	}

	return formatter.Table(headers, rows)
}

func init() {
	rootCmd.AddCommand(newAccountCmd(accountOptions{load: loadAppContext}))
}
