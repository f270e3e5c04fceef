package wstrade

import (
	"context"
)

// GetForex returns the exchange rates the service currently applies.
// Rates are fetched on every call.
func (c *Client) GetForex(ctx context.Context) (ForexRates, error) {
	const op = "forex"

	resp, err := c.Get(ctx, "/forex")
	if err != nil {
		return nil, withOp(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return nil, classify(op, err)
	}

	var rates ForexRates
	if err := DecodeJSON(resp, &rates); err != nil {
		return nil, withOp(op, err)
	}

	return rates, nil
}
