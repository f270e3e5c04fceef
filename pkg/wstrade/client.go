// Package wstrade provides a Go client for the Wealthsimple Trade service API.
//
// A Client is bound to one login session. It is not safe for concurrent use;
// callers that need concurrency should use one Client per goroutine or
// serialize access externally.
package wstrade

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the production trade service host.
	DefaultBaseURL = "https://trade-service.wealthsimple.com"

	// DefaultHomeCurrency is the account currency quotes are converted into.
	DefaultHomeCurrency = "CAD"
)

// Client handles HTTP requests to the trade service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// HomeCurrency is the domestic currency. Quotes in any other currency are
	// foreign and may be converted with the forex rates.
	HomeCurrency string

	// DefaultAccount overrides the account used when an operation is not
	// given one explicitly. When empty the first cached account is used.
	DefaultAccount string

	log      zerolog.Logger
	session  *Session
	accounts []Account
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log.With().Str("client", "wstrade").Logger()
	}
}

// WithHomeCurrency sets the domestic currency code.
func WithHomeCurrency(code string) Option {
	return func(c *Client) {
		c.HomeCurrency = strings.ToUpper(code)
	}
}

// WithDefaultAccount sets the account used when none is given.
func WithDefaultAccount(accountID string) Option {
	return func(c *Client) {
		c.DefaultAccount = accountID
	}
}

// NewClient creates a client without a session. Call Login before any
// authenticated operation.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
		HomeCurrency: DefaultHomeCurrency,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect creates a client, logs in and loads the account list.
// The returned client always holds a session.
func Connect(ctx context.Context, baseURL, email, password string, opts ...Option) (*Client, error) {
	c := NewClient(baseURL, opts...)
	if _, err := c.Login(ctx, email, password); err != nil {
		return nil, err
	}
	if _, err := c.ListAccounts(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Get performs an authenticated GET request to the specified path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, true)
}

// GetWithParams performs an authenticated GET request with query parameters.
func (c *Client) GetWithParams(ctx context.Context, path string, params map[string]string) (*http.Response, error) {
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		path = path + "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, true)
}

// Post performs an authenticated POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	return c.do(ctx, http.MethodPost, path, body, true)
}

// Delete performs an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*http.Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, true)
}

// do performs a single HTTP request. Authenticated requests carry the raw
// access token in the Authorization header.
func (c *Client) do(ctx context.Context, method, path string, bodyBytes []byte, authenticated bool) (*http.Response, error) {
	if authenticated && c.session == nil {
		return nil, ErrNotAuthenticated
	}

	var body io.Reader
	if bodyBytes != nil {
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, newError(KindTransport, "", fmt.Errorf("failed to create request: %w", err))
	}

	if authenticated {
		req.Header.Set("Authorization", c.session.AccessToken)
	}
	if bodyBytes != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.log.Debug().
			Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Msg("request failed")
		return nil, newError(KindTransport, "", fmt.Errorf("request failed: %w", err))
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	return resp, nil
}

// withOp labels an unlabelled *Error with the operation name.
func withOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Op == "" {
		return &Error{Kind: e.Kind, Op: op, Err: e.Err}
	}
	return err
}
