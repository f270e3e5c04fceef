package wstrade

import (
	"context"
)

// ListAccounts retrieves the user's accounts and replaces the cached list.
// The cache keeps the server's order.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	const op = "list accounts"

	resp, err := c.Get(ctx, "/account/list")
	if err != nil {
		return nil, withOp(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := CheckResponse(resp); err != nil {
		return nil, classify(op, err)
	}

	var result accountsResponse
	if err := DecodeJSON(resp, &result); err != nil {
		return nil, withOp(op, err)
	}

	accounts := make([]Account, 0, len(result.Results))
	for _, rec := range result.Results {
		accounts = append(accounts, Account{
			ID:          rec.ID,
			Type:        rec.AccountType,
			Currency:    rec.CurrentBalance.Currency,
			Balance:     rec.CurrentBalance.Amount.InexactFloat64(),
			BuyingPower: rec.BuyingPower.Amount.InexactFloat64(),
		})
	}

	c.accounts = accounts
	c.log.Debug().Int("count", len(accounts)).Msg("accounts loaded")

	return accounts, nil
}

// Accounts returns the cached account list without a request.
func (c *Client) Accounts() []Account {
	out := make([]Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// DefaultAccountID returns the configured default account, or the first cached
// account when none is configured. It fails with ErrNoAccounts when neither is
// available.
func (c *Client) DefaultAccountID() (string, error) {
	if c.DefaultAccount != "" {
		return c.DefaultAccount, nil
	}
	if len(c.accounts) == 0 {
		return "", ErrNoAccounts
	}
	return c.accounts[0].ID, nil
}

// resolveAccount returns accountID, or the default account when it is empty.
func (c *Client) resolveAccount(accountID string) (string, error) {
	if accountID != "" {
		return accountID, nil
	}
	return c.DefaultAccountID()
}
