package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonandersen/wst/internal/output"
	"github.com/jonandersen/wst/pkg/wstrade"
)

// quoteOptions holds dependencies for the quote command.
type quoteOptions struct {
	load           contextLoader
	jsonMode       bool
	convert        bool
	lastAtSellRate bool
}

// quoteResult is one quote line, labelled with what the user typed.
type quoteResult struct {
	Symbol string `json:"symbol"`
	*wstrade.Quote
}

func newQuoteCmd(opts quoteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote SYMBOL_OR_ID [SYMBOL_OR_ID...]",
		Short: "Get security quotes",
		Long: `Get the bid, ask and last price of one or more securities. Arguments
starting with "sec-" are security ids; anything else is looked up as a ticker.

With --convert, quotes in a foreign currency are converted into your home
currency: the bid at the buy rate, the ask at the sell rate, and the last
price at the buy rate (or the sell rate with --last-at-sell-rate).

Examples:
  wst quote SHOP
  wst quote AAPL --convert
  wst quote sec-s-76a7155242e8477880cbb43269235cb6 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.jsonMode = opts.jsonMode || GetJSONMode()
			return withClient(opts.load, func(ctx context.Context, app *appContext, client *wstrade.Client) error {
				return runQuote(ctx, cmd, opts, client, args)
			})
		},
	}

	cmd.Flags().BoolVarP(&opts.convert, "convert", "c", false, "Convert foreign quotes into the home currency")
	cmd.Flags().BoolVar(&opts.lastAtSellRate, "last-at-sell-rate", false, "Convert the last price at the sell rate instead of the buy rate")
	cmd.SilenceUsage = true

	return cmd
}

func runQuote(ctx context.Context, cmd *cobra.Command, opts quoteOptions, client *wstrade.Client, args []string) error {
	quoteOpts := wstrade.QuoteOptions{
		Convert:        opts.convert,
		LastAtSellRate: opts.lastAtSellRate,
	}

	results := make([]quoteResult, 0, len(args))
	for _, arg := range args {
		id, err := resolveSecurityID(ctx, client, arg)
		if err != nil {
			return err
		}

		quote, err := client.GetQuote(ctx, id, quoteOpts)
		if err != nil {
			return fmt.Errorf("failed to get quote for %s: %w", arg, err)
		}
		results = append(results, quoteResult{Symbol: strings.ToUpper(arg), Quote: quote})
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		return formatter.JSON(results)
	}

	headers := []string{"Symbol", "Security ID", "Bid", "Ask", "Last", "Currency"}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		currency := r.Currency
		if r.Converted {
			currency += " (converted)"
		}
		rows = append(rows, []string{
			r.Symbol,
			r.SecurityID,
			output.Amount(r.Bid, ""),
			output.Amount(r.Ask, ""),
			output.Amount(r.Price, ""),
			currency,
		})
	}
	return formatter.Table(headers, rows)
}

func init() {
	rootCmd.AddCommand(newQuoteCmd(quoteOptions{load: loadAppContext}))
}
