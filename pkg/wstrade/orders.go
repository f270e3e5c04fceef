package wstrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
)

// OrderType is the side of an order.
type OrderType string

// SubType is the pricing mode of an order.
type SubType string

const (
	BuyQuantity  OrderType = "buy_quantity"
	SellQuantity OrderType = "sell_quantity"

	Market SubType = "market"
	Limit  SubType = "limit"

	// TimeInForceDay is the only time-in-force the client sends.
	TimeInForceDay = "day"

	StatusCancelled = "cancelled"
	StatusPosted    = "posted"
)

// OrderParams describes an order to place. Zero Quantity and LimitPrice
// default to 1; an empty AccountID uses the default account.
type OrderParams struct {
	SecurityID string
	OrderType  OrderType
	SubType    SubType
	AccountID  string
	LimitPrice float64
	Quantity   int
}

// orderRequest is the order payload. LimitPrice is a pointer so it can be
// left out entirely.
type orderRequest struct {
	AccountID    string    `json:"account_id"`
	Quantity     int       `json:"quantity"`
	SecurityID   string    `json:"security_id"`
	OrderType    OrderType `json:"order_type"`
	OrderSubType SubType   `json:"order_sub_type"`
	TimeInForce  string    `json:"time_in_force"`
	LimitPrice   *float64  `json:"limit_price,omitempty"`
}

// buildOrderRequest applies defaults and the limit price rule: the service
// rejects a limit price on market sells, and requires one on every other
// combination, market buys included.
func buildOrderRequest(p OrderParams, accountID string) orderRequest {
	quantity := p.Quantity
	if quantity == 0 {
		quantity = 1
	}
	limitPrice := p.LimitPrice
	if limitPrice == 0 {
		limitPrice = 1
	}

	req := orderRequest{
		AccountID:    accountID,
		Quantity:     quantity,
		SecurityID:   p.SecurityID,
		OrderType:    p.OrderType,
		OrderSubType: p.SubType,
		TimeInForce:  TimeInForceDay,
	}
	if !(p.OrderType == SellQuantity && p.SubType == Market) {
		req.LimitPrice = &limitPrice
	}
	return req
}

func validateOrderParams(p OrderParams) error {
	if p.SecurityID == "" {
		return fmt.Errorf("securityID is required")
	}
	switch p.OrderType {
	case BuyQuantity, SellQuantity:
	default:
		return fmt.Errorf("invalid order type: %q", p.OrderType)
	}
	switch p.SubType {
	case Market, Limit:
	default:
		return fmt.Errorf("invalid order sub type: %q", p.SubType)
	}
	if p.Quantity < 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if p.LimitPrice < 0 {
		return fmt.Errorf("limit price must be positive")
	}
	return nil
}

// PlaceOrder submits an order and returns the order record the service
// created for it.
func (c *Client) PlaceOrder(ctx context.Context, p OrderParams) (*Order, error) {
	const op = "place order"

	if err := validateOrderParams(p); err != nil {
		return nil, err
	}

	accountID, err := c.resolveAccount(p.AccountID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(buildOrderRequest(p, accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.Post(ctx, "/orders", body)
	if err != nil {
		return nil, withOp(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return nil, classify(op, err)
	}

	var order Order
	if err := DecodeJSON(resp, &order); err != nil {
		return nil, withOp(op, err)
	}

	c.log.Info().
		Str("order_id", order.Key()).
		Str("security_id", p.SecurityID).
		Str("order_type", string(p.OrderType)).
		Str("sub_type", string(p.SubType)).
		Msg("order placed")

	return &order, nil
}

// BuyLimitOrder places a limit buy.
func (c *Client) BuyLimitOrder(ctx context.Context, securityID string, limitPrice float64, accountID string, quantity int) (*Order, error) {
	return c.PlaceOrder(ctx, OrderParams{
		SecurityID: securityID,
		OrderType:  BuyQuantity,
		SubType:    Limit,
		AccountID:  accountID,
		LimitPrice: limitPrice,
		Quantity:   quantity,
	})
}

// BuyMarketOrder places a market buy. The service still expects a limit
// price on market buys; zero sends the default of 1.
func (c *Client) BuyMarketOrder(ctx context.Context, securityID string, limitPrice float64, accountID string, quantity int) (*Order, error) {
	return c.PlaceOrder(ctx, OrderParams{
		SecurityID: securityID,
		OrderType:  BuyQuantity,
		SubType:    Market,
		AccountID:  accountID,
		LimitPrice: limitPrice,
		Quantity:   quantity,
	})
}

// SellLimitOrder places a limit sell.
func (c *Client) SellLimitOrder(ctx context.Context, securityID string, limitPrice float64, accountID string, quantity int) (*Order, error) {
	return c.PlaceOrder(ctx, OrderParams{
		SecurityID: securityID,
		OrderType:  SellQuantity,
		SubType:    Limit,
		AccountID:  accountID,
		LimitPrice: limitPrice,
		Quantity:   quantity,
	})
}

// SellMarketOrder places a market sell. No limit price is sent.
func (c *Client) SellMarketOrder(ctx context.Context, securityID, accountID string, quantity int) (*Order, error) {
	return c.PlaceOrder(ctx, OrderParams{
		SecurityID: securityID,
		OrderType:  SellQuantity,
		SubType:    Market,
		AccountID:  accountID,
		Quantity:   quantity,
	})
}

// GetOrderHistory returns every order of accountID, or of the default
// account when accountID is empty.
func (c *Client) GetOrderHistory(ctx context.Context, accountID string) ([]Order, error) {
	const op = "order history"

	accountID, err := c.resolveAccount(accountID)
	if err != nil {
		return nil, err
	}

	resp, err := c.GetWithParams(ctx, "/orders", map[string]string{"account": accountID})
	if err != nil {
		return nil, withOp(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return nil, classify(op, err)
	}

	var raw json.RawMessage
	if err := DecodeJSON(resp, &raw); err != nil {
		return nil, withOp(op, err)
	}

	orders, err := decodeOrders(raw)
	if err != nil {
		return nil, newError(KindDecode, op, err)
	}
	return orders, nil
}

// decodeOrders accepts a bare array of orders or an object with a results
// array.
func decodeOrders(raw json.RawMessage) ([]Order, error) {
	var orders []Order
	if err := json.Unmarshal(raw, &orders); err == nil {
		return orders, nil
	}

	var wrapped ordersResponse
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	if wrapped.Results == nil {
		return nil, errors.New("failed to decode orders: no results field")
	}
	return wrapped.Results, nil
}

// GetPendingOrders returns the unfilled, uncancelled orders of accountID.
func (c *Client) GetPendingOrders(ctx context.Context, accountID string) ([]Order, error) {
	orders, err := c.GetOrderHistory(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return PendingOrders(orders), nil
}

// GetCancelledOrders returns the cancelled orders of accountID.
func (c *Client) GetCancelledOrders(ctx context.Context, accountID string) ([]Order, error) {
	orders, err := c.GetOrderHistory(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return CancelledOrders(orders), nil
}

// GetFilledOrders returns the posted orders of accountID.
func (c *Client) GetFilledOrders(ctx context.Context, accountID string) ([]Order, error) {
	orders, err := c.GetOrderHistory(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return FilledOrders(orders), nil
}

// PendingOrders selects orders with no fill time that are not cancelled.
//
// The three classifiers overlap and do not cover every status; an order may
// match none of them.
func PendingOrders(orders []Order) []Order {
	return filterOrders(orders, func(o Order) bool {
		return o.FilledAt == nil && o.Status != StatusCancelled
	})
}

// CancelledOrders selects orders with status "cancelled".
func CancelledOrders(orders []Order) []Order {
	return filterOrders(orders, func(o Order) bool {
		return o.Status == StatusCancelled
	})
}

// FilledOrders selects orders with status "posted".
func FilledOrders(orders []Order) []Order {
	return filterOrders(orders, func(o Order) bool {
		return o.Status == StatusPosted
	})
}

func filterOrders(orders []Order, keep func(Order) bool) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

// CancelOrder deletes an order and returns the server's response text as is.
func (c *Client) CancelOrder(ctx context.Context, orderID string) (string, error) {
	const op = "cancel order"

	if orderID == "" {
		return "", fmt.Errorf("orderID is required")
	}

	resp, err := c.Delete(ctx, "/orders/"+url.PathEscape(orderID))
	if err != nil {
		return "", withOp(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return "", classify(op, err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", newError(KindTransport, op, fmt.Errorf("failed to read response: %w", err))
	}

	c.log.Info().Str("order_id", orderID).Msg("order cancel requested")

	return string(body), nil
}
