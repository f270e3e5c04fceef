package wstrade

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// Wire types
// =============================================================================

// money is a monetary value. The service sends amounts as JSON numbers in some
// responses and as strings in others; decimal accepts both.
type money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type accountRecord struct {
	ID             string `json:"id"`
	AccountType    string `json:"account_type"`
	CurrentBalance money  `json:"current_balance"`
	BuyingPower    money  `json:"buying_power"`
}

type accountsResponse struct {
	Results []accountRecord `json:"results"`
}

type stockRecord struct {
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	PrimaryExchange string `json:"primary_exchange"`
}

type quoteRecord struct {
	Ask    decimal.Decimal `json:"ask"`
	Bid    decimal.Decimal `json:"bid"`
	Amount decimal.Decimal `json:"amount"`
}

type securityRecord struct {
	ID       string       `json:"id"`
	Currency string       `json:"currency"`
	Stock    stockRecord  `json:"stock"`
	Quote    *quoteRecord `json:"quote,omitempty"`
}

type securitiesResponse struct {
	Results []securityRecord `json:"results"`
}

type ordersResponse struct {
	Results []Order `json:"results"`
}

// =============================================================================
// Domain types
// =============================================================================

// Account is a trading account owned by the logged-in user.
type Account struct {
	ID          string  `json:"id"`
	Type        string  `json:"type,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Balance     float64 `json:"balance"`
	BuyingPower float64 `json:"buying_power"`
}

// Security is a tradable instrument.
type Security struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// ForexRate holds the dealer rates for one foreign currency.
type ForexRate struct {
	BuyRate  float64 `json:"buy_rate"`
	SellRate float64 `json:"sell_rate"`
}

// ForexRates maps a currency code to its rates.
type ForexRates map[string]ForexRate

// Quote is the current price of a security.
type Quote struct {
	SecurityID string  `json:"security_id"`
	Currency   string  `json:"currency"`
	Ask        float64 `json:"ask"`
	Bid        float64 `json:"bid"`
	Price      float64 `json:"price"`
	Converted  bool    `json:"converted"`
}

// Order is an order record as returned by the service. Only the fields the
// client inspects are typed; Raw holds the full server record.
type Order struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	AccountID    string          `json:"account_id"`
	SecurityID   string          `json:"security_id"`
	Symbol       string          `json:"symbol"`
	OrderType    string          `json:"order_type"`
	OrderSubType string          `json:"order_sub_type"`
	Status       string          `json:"status"`
	Quantity     decimal.Decimal `json:"quantity"`
	FilledAt     *string         `json:"filled_at"`
	CreatedAt    string          `json:"created_at"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps the raw record.
func (o *Order) UnmarshalJSON(data []byte) error {
	type plain Order
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Order(p)
	o.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the raw server record when one is available.
func (o Order) MarshalJSON() ([]byte, error) {
	if len(o.Raw) > 0 {
		return o.Raw, nil
	}
	type plain Order
	return json.Marshal(plain(o))
}

// Key returns the identifier used to address the order, preferring order_id.
func (o Order) Key() string {
	if o.OrderID != "" {
		return o.OrderID
	}
	return o.ID
}

// Filled reports whether the order has a fill timestamp.
func (o Order) Filled() bool {
	return o.FilledAt != nil
}
