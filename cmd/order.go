package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonandersen/wst/internal/output"
	"github.com/jonandersen/wst/pkg/wstrade"
)

// Status filters accepted by 'order list'.
const (
	statusAll       = "all"
	statusPending   = "pending"
	statusCancelled = "cancelled"
	statusFilled    = "filled"
)

// orderOptions holds dependencies for the order commands.
type orderOptions struct {
	load     contextLoader
	jsonMode bool
}

// orderParams holds the flags of buy and sell.
type orderParams struct {
	quantity    int
	limitPrice  float64
	accountID   string
	skipConfirm bool
}

func newOrderCmd(opts orderOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place and manage orders",
		Long: `Place buy and sell orders, list order history, and cancel open orders.

Placing and cancelling orders requires trading_enabled: true in the config
file (or WST_TRADING_ENABLED=true).

Examples:
  wst order buy SHOP --quantity 10 --yes                 # Market buy
  wst order sell SHOP --quantity 5 --limit 120.50 --yes  # Limit sell
  wst order list --status pending                        # Open orders
  wst order cancel order-1a2b3c --yes                    # Cancel an order`,
	}

	cmd.AddCommand(newOrderPlaceCmd(opts, wstrade.BuyQuantity))
	cmd.AddCommand(newOrderPlaceCmd(opts, wstrade.SellQuantity))
	cmd.AddCommand(newOrderListCmd(opts))
	cmd.AddCommand(newOrderCancelCmd(opts))

	return cmd
}

func sideName(side wstrade.OrderType) string {
	if side == wstrade.SellQuantity {
		return "sell"
	}
	return "buy"
}

// newOrderPlaceCmd creates the buy or sell subcommand.
func newOrderPlaceCmd(opts orderOptions, side wstrade.OrderType) *cobra.Command {
	var params orderParams
	name := sideName(side)

	cmd := &cobra.Command{
		Use:   name + " SYMBOL_OR_ID",
		Short: fmt.Sprintf("Place a %s order", name),
		Long: fmt.Sprintf(`Place a %[1]s order for a security. Without --limit the order is a
market order; with --limit it is a limit order at that price. The order is
good for the day.

Examples:
  wst order %[1]s SHOP --quantity 10 --yes
  wst order %[1]s SHOP --quantity 10 --limit 75.25 --yes
  wst order %[1]s sec-s-76a7155242e8477880cbb43269235cb6 -q 1 --account rrsp-abc --yes`, name),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.jsonMode = opts.jsonMode || GetJSONMode()
			return runPlaceOrder(cmd, opts, side, args[0], params)
		},
	}

	cmd.Flags().IntVarP(&params.quantity, "quantity", "q", 0, "Number of shares (required)")
	cmd.Flags().Float64VarP(&params.limitPrice, "limit", "l", 0, "Limit price; omit for a market order")
	cmd.Flags().StringVarP(&params.accountID, "account", "a", "", "Account ID (uses default if not specified)")
	cmd.Flags().BoolVarP(&params.skipConfirm, "yes", "y", false, "Confirm the order")
	cmd.SilenceUsage = true

	return cmd
}

func runPlaceOrder(cmd *cobra.Command, opts orderOptions, side wstrade.OrderType, target string, params orderParams) error {
	app, err := opts.load()
	if err != nil {
		return err
	}
	if err := app.cfg.CheckTrading(); err != nil {
		return err
	}

	if params.quantity <= 0 {
		return fmt.Errorf("quantity is required and must be positive (use --quantity flag)")
	}
	if params.limitPrice < 0 {
		return fmt.Errorf("limit price must be positive")
	}

	subType := wstrade.Market
	if params.limitPrice > 0 {
		subType = wstrade.Limit
	}

	if !opts.jsonMode {
		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "\nOrder Preview:\n")
		_, _ = fmt.Fprintf(w, "  Action:   %s\n", strings.ToUpper(sideName(side)))
		_, _ = fmt.Fprintf(w, "  Security: %s\n", strings.ToUpper(target))
		_, _ = fmt.Fprintf(w, "  Quantity: %d shares\n", params.quantity)
		_, _ = fmt.Fprintf(w, "  Type:     %s\n", strings.ToUpper(string(subType)))
		if subType == wstrade.Limit {
			_, _ = fmt.Fprintf(w, "  Limit:    %s\n", output.Amount(params.limitPrice, ""))
		}
		if params.accountID != "" {
			_, _ = fmt.Fprintf(w, "  Account:  %s\n", params.accountID)
		}
		_, _ = fmt.Fprintln(w)
	}

	if !params.skipConfirm {
		return fmt.Errorf("order requires confirmation (use --yes to confirm)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client, err := app.connect(ctx)
	if err != nil {
		return err
	}

	securityID, err := resolveSecurityID(ctx, client, target)
	if err != nil {
		return err
	}

	order, err := placeOrder(ctx, client, side, subType, securityID, params)
	if err != nil {
		return fmt.Errorf("failed to place order: %w", err)
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		return formatter.JSON(order)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Order placed successfully!")
	return formatter.KeyValue([]output.Field{
		{Key: "Order ID", Value: order.Key()},
		{Key: "Status", Value: order.Status},
		{Key: "Security ID", Value: securityID},
	})
}

// placeOrder routes to the convenience call for the side and pricing mode.
func placeOrder(ctx context.Context, client *wstrade.Client, side wstrade.OrderType, subType wstrade.SubType, securityID string, params orderParams) (*wstrade.Order, error) {
	switch {
	case side == wstrade.BuyQuantity && subType == wstrade.Limit:
		return client.BuyLimitOrder(ctx, securityID, params.limitPrice, params.accountID, params.quantity)
	case side == wstrade.BuyQuantity:
		return client.BuyMarketOrder(ctx, securityID, 0, params.accountID, params.quantity)
	case subType == wstrade.Limit:
		return client.SellLimitOrder(ctx, securityID, params.limitPrice, params.accountID, params.quantity)
	default:
		return client.SellMarketOrder(ctx, securityID, params.accountID, params.quantity)
	}
}

func newOrderListCmd(opts orderOptions) *cobra.Command {
	var status, accountID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List order history",
		Long: `List the orders of an account, optionally filtered by status.

Status filters:
  all        every order (default)
  pending    orders with no fill time that are not cancelled
  cancelled  cancelled orders
  filled     posted orders

Examples:
  wst order list
  wst order list --status pending
  wst order list --account rrsp-abc --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.jsonMode = opts.jsonMode || GetJSONMode()
			filter, err := orderFilter(status)
			if err != nil {
				return err
			}
			return withClient(opts.load, func(ctx context.Context, app *appContext, client *wstrade.Client) error {
				return runOrderList(ctx, cmd, opts, client, accountID, filter)
			})
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", statusAll, "Filter: all, pending, cancelled or filled")
	cmd.Flags().StringVarP(&accountID, "account", "a", "", "Account ID (uses default if not specified)")
	cmd.SilenceUsage = true

	return cmd
}

// orderFilter maps a --status value to a classifier.
func orderFilter(status string) (func([]wstrade.Order) []wstrade.Order, error) {
	switch strings.ToLower(status) {
	case statusAll, "":
		return func(orders []wstrade.Order) []wstrade.Order { return orders }, nil
	case statusPending:
		return wstrade.PendingOrders, nil
	case statusCancelled:
		return wstrade.CancelledOrders, nil
	case statusFilled:
		return wstrade.FilledOrders, nil
	default:
		return nil, fmt.Errorf("invalid status: %s (use all, pending, cancelled or filled)", status)
	}
}

func runOrderList(ctx context.Context, cmd *cobra.Command, opts orderOptions, client *wstrade.Client, accountID string, filter func([]wstrade.Order) []wstrade.Order) error {
	history, err := client.GetOrderHistory(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to fetch orders: %w", err)
	}
	orders := filter(history)
	if orders == nil {
		orders = []wstrade.Order{}
	}

	formatter := output.New(cmd.OutOrStdout(), opts.jsonMode)
	if opts.jsonMode {
		return formatter.JSON(orders)
	}

	if len(orders) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No orders")
		return nil
	}

	headers := []string{"Order ID", "Security", "Type", "Sub Type", "Status", "Qty", "Filled At"}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		security := o.Symbol
		if security == "" {
			security = o.SecurityID
		}
		filledAt := "-"
		if o.FilledAt != nil {
			filledAt = *o.FilledAt
		}
		rows = append(rows, []string{
			o.Key(),
			security,
			o.OrderType,
			o.OrderSubType,
			o.Status,
			o.Quantity.String(),
			filledAt,
		})
	}
	return formatter.Table(headers, rows)
}

func newOrderCancelCmd(opts orderOptions) *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "cancel ORDER_ID",
		Short: "Cancel an open order",
		Long: `Cancel an open order by its order id.

Examples:
  wst order cancel order-1a2b3c --yes`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.jsonMode = opts.jsonMode || GetJSONMode()
			return runCancelOrder(cmd, opts, args[0], skipConfirm)
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Confirm the cancellation")
	cmd.SilenceUsage = true

	return cmd
}

func runCancelOrder(cmd *cobra.Command, opts orderOptions, orderID string, skipConfirm bool) error {
	app, err := opts.load()
	if err != nil {
		return err
	}
	if err := app.cfg.CheckTrading(); err != nil {
		return err
	}

	if !opts.jsonMode {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nCancel Order:\n")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Order ID: %s\n\n", orderID)
	}

	if !skipConfirm {
		return fmt.Errorf("cancel requires confirmation (use --yes to confirm)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client, err := app.connect(ctx)
	if err != nil {
		return err
	}

	body, err := client.CancelOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	if opts.jsonMode {
		result := map[string]any{"order_id": orderID}
		if json.Valid([]byte(body)) {
			result["response"] = json.RawMessage(body)
		} else {
			result["response"] = body
		}
		return output.New(cmd.OutOrStdout(), true).JSON(result)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancel request submitted!")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Order ID: %s\n", orderID)
	if body != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Response: %s\n", body)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(newOrderCmd(orderOptions{load: loadAppContext}))
}
