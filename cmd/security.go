package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonandersen/wst/internal/output"
	"github.com/jonandersen/wst/pkg/wstrade"
)

type securityOptions struct {
	load     contextLoader
	jsonMode bool
}

func newSecurityCmd(opts securityOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security SYMBOL",
		Short: "Look up the security id of a ticker",
		Long: `Resolve a ticker symbol to its security id. The first search result whose
ticker matches exactly (ignoring case) wins.

Examples:
  wst security SHOP
  wst security shop.to --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.jsonMode = opts.jsonMode || GetJSONMode()
			return withClient(opts.load, func(ctx context.Context, app *appContext, client *wstrade.Client) error {
				return runSecurity(ctx, cmd, opts, client, args[0])
			})
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runSecurity(ctx context.Context, cmd *cobra.Command, opts securityOptions, client *wstrade.Client, symbol string) error {
	id, err := resolveSecurityID(ctx, client, symbol)
	if err != nil {
		return err
	}

	sec, err := client.GetSecurity(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch security %s: %w", id, err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		return formatter.JSON(sec)
	}

	return formatter.KeyValue([]output.Field{
		{Key: "Security ID", Value: sec.ID},
		{Key: "Symbol", Value: sec.Symbol},
		{Key: "Name", Value: sec.Name},
		{Key: "Exchange", Value: sec.Exchange},
		{Key: "Currency", Value: sec.Currency},
	})
}

func init() {
	rootCmd.AddCommand(newSecurityCmd(securityOptions{load: loadAppContext}))
}
