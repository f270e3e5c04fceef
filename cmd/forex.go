package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jonandersen/wst/internal/output"
	"github.com/jonandersen/wst/pkg/wstrade"
)

type forexOptions struct {
	load     contextLoader
	jsonMode bool
}

func newForexCmd(opts forexOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forex",
		Short: "Show currency exchange rates",
		Long: `Show the buy and sell rates the service applies when converting foreign
currencies into your home currency.

Examples:
  wst forex
  wst forex --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.jsonMode = opts.jsonMode || GetJSONMode()
			return withClient(opts.load, func(ctx context.Context, app *appContext, client *wstrade.Client) error {
				return runForex(ctx, cmd, opts, client)
			})
		},
	}

	cmd.SilenceUsage = true

	return cmd
}

func runForex(ctx context.Context, cmd *cobra.Command, opts forexOptions, client *wstrade.Client) error {
	rates, err := client.GetForex(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch forex rates: %w", err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		return formatter.JSON(rates)
	}

	if len(rates) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No forex rates available")
		return nil
	}

	headers := []string{"Currency", "Buy Rate", "Sell Rate"}
	rows := make([][]string, 0, len(rates))
	for _, code := range slices.Sorted(maps.Keys(rates)) {
		rate := rates[code]
		rows = append(rows, []string{code, output.Rate(rate.BuyRate), output.Rate(rate.SellRate)})
	}
	return formatter.Table(headers, rows)
}

func init() {
	rootCmd.AddCommand(newForexCmd(forexOptions{load: loadAppContext}))
}
