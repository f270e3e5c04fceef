package wstrade

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// SearchSecurities returns the securities matching query, in server order.
func (c *Client) SearchSecurities(ctx context.Context, query string) ([]Security, error) {
	const op = "search securities"

	resp, err := c.GetWithParams(ctx, "/securities", map[string]string{"query": query})
	if err != nil {
		return nil, withOp(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return nil, classify(op, err)
	}

	var result securitiesResponse
	if err := DecodeJSON(resp, &result); err != nil {
		return nil, withOp(op, err)
	}

	securities := make([]Security, 0, len(result.Results))
	for _, rec := range result.Results {
		securities = append(securities, rec.security())
	}
	return securities, nil
}

// FindSecurityID returns the id of the first search result whose ticker equals
// symbol, ignoring case. ok is false when nothing matches exactly.
func (c *Client) FindSecurityID(ctx context.Context, symbol string) (id string, ok bool, err error) {
	securities, err := c.SearchSecurities(ctx, symbol)
	if err != nil {
		return "", false, err
	}

	for _, sec := range securities {
		if strings.EqualFold(sec.Symbol, symbol) {
			return sec.ID, true, nil
		}
	}
	return "", false, nil
}

// GetSecurity returns the detail record of a security.
func (c *Client) GetSecurity(ctx context.Context, securityID string) (*Security, error) {
	rec, err := c.getSecurityRecord(ctx, securityID)
	if err != nil {
		return nil, err
	}
	sec := rec.security()
	return &sec, nil
}

func (c *Client) getSecurityRecord(ctx context.Context, securityID string) (*securityRecord, error) {
	const op = "get security"

	if securityID == "" {
		return nil, fmt.Errorf("securityID is required")
	}

	resp, err := c.Get(ctx, "/securities/"+url.PathEscape(securityID))
	if err != nil {
		return nil, withOp(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return nil, classify(op, err)
	}

	var rec securityRecord
	if err := DecodeJSON(resp, &rec); err != nil {
		return nil, withOp(op, err)
	}
	return &rec, nil
}

func (r securityRecord) security() Security {
	return Security{
		ID:       r.ID,
		Symbol:   r.Stock.Symbol,
		Name:     r.Stock.Name,
		Exchange: r.Stock.PrimaryExchange,
		Currency: r.Currency,
	}
}
