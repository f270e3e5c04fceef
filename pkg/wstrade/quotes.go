package wstrade

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// QuoteOptions controls currency conversion in GetQuote.
type QuoteOptions struct {
	// Convert converts foreign-currency quotes into the home currency.
	Convert bool

	// LastAtSellRate converts the last price with the sell rate instead of
	// the buy rate.
	LastAtSellRate bool
}

// GetQuote returns the ask, bid and last price of a security.
//
// With Convert set and a foreign-currency security, fresh forex rates are
// fetched and applied as a dealer spread: bid at the buy rate, ask at the sell
// rate, and the last price at the buy rate unless LastAtSellRate is set.
// Otherwise the raw values are returned unchanged.
func (c *Client) GetQuote(ctx context.Context, securityID string, opts QuoteOptions) (*Quote, error) {
	const op = "get quote"

	rec, err := c.getSecurityRecord(ctx, securityID)
	if err != nil {
		return nil, err
	}
	if rec.Quote == nil {
		return nil, newError(KindDecode, op, fmt.Errorf("security %s has no quote", securityID))
	}

	currency := strings.ToUpper(rec.Currency)
	ask, bid, price := rec.Quote.Ask, rec.Quote.Bid, rec.Quote.Amount

	quote := &Quote{
		SecurityID: securityID,
		Currency:   currency,
	}

	if opts.Convert && c.isForeign(currency) {
		rates, err := c.GetForex(ctx)
		if err != nil {
			return nil, err
		}
		rate, ok := rates[currency]
		if !ok {
			return nil, newError(KindDecode, op, fmt.Errorf("no forex rate for %s", currency))
		}

		buy := decimal.NewFromFloat(rate.BuyRate)
		sell := decimal.NewFromFloat(rate.SellRate)

		bid = bid.Mul(buy)
		ask = ask.Mul(sell)
		if opts.LastAtSellRate {
			price = price.Mul(sell)
		} else {
			price = price.Mul(buy)
		}

		quote.Currency = c.HomeCurrency
		quote.Converted = true

		c.log.Debug().
			Str("security_id", securityID).
			Str("from", currency).
			Float64("buy_rate", rate.BuyRate).
			Float64("sell_rate", rate.SellRate).
			Msg("quote converted")
	}

	quote.Ask = ask.InexactFloat64()
	quote.Bid = bid.InexactFloat64()
	quote.Price = price.InexactFloat64()

	return quote, nil
}

// isForeign reports whether currency differs from the home currency. An empty
// currency is treated as domestic.
func (c *Client) isForeign(currency string) bool {
	return currency != "" && !strings.EqualFold(currency, c.HomeCurrency)
}
