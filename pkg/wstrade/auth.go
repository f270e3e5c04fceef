package wstrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	headerAccessToken  = "X-Access-Token"
	headerRefreshToken = "X-Refresh-Token"

	notAuthorizedMessage = "Not authorized"
)

// Session holds the tokens issued at login. The refresh token is kept but
// never used; sessions are not renewed.
type Session struct {
	AccessToken  string
	RefreshToken string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session and stores it on the client.
// Rejected credentials produce a KindAuthentication error whether the server
// signals it with a status code or only in the response body.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	const op = "login"

	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, newError(KindTransport, op, fmt.Errorf("failed to encode request: %w", err))
	}

	resp, err := c.do(ctx, http.MethodPost, "/auth/login", body, false)
	if err != nil {
		return nil, withOp(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(KindTransport, op, fmt.Errorf("failed to read response: %w", err))
	}

	if err := checkLoginResponse(resp.StatusCode, respBody); err != nil {
		c.log.Warn().Int("status", resp.StatusCode).Msg("login rejected")
		return nil, err
	}

	session := &Session{
		AccessToken:  resp.Header.Get(headerAccessToken),
		RefreshToken: resp.Header.Get(headerRefreshToken),
	}
	if session.AccessToken == "" {
		return nil, newError(KindDecode, op, errors.New("missing access token in response"))
	}

	c.session = session
	c.log.Debug().Msg("logged in")

	return session, nil
}

// checkLoginResponse maps a login response to an error. Authentication
// failures come back either as 401/403 or as a 2xx body with an error field.
func checkLoginResponse(status int, body []byte) error {
	const op = "login"

	var errResp errorResponse
	_ = json.Unmarshal(body, &errResp)
	message := errResp.Error
	if message == "" {
		message = errResp.Message
	}

	apiErr := &APIError{StatusCode: status, Code: errResp.Code, Message: message}

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return newError(KindAuthentication, op, apiErr)
	}
	if strings.EqualFold(errResp.Error, notAuthorizedMessage) {
		return newError(KindAuthentication, op, apiErr)
	}
	if status < 200 || status >= 300 {
		return newError(KindDecode, op, apiErr)
	}
	return nil
}

// Session returns the current session, or nil before Login.
func (c *Client) Session() *Session {
	return c.session
}

