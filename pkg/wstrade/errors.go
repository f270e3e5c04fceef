package wstrade

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Kind classifies failures returned by the client.
type Kind int

const (
	// KindAuthentication means the server rejected the credentials or the
	// client has no session.
	KindAuthentication Kind = iota + 1
	// KindTransport means the request never produced a usable HTTP response.
	KindTransport
	// KindDecode means the server answered with a body of an unexpected shape.
	KindDecode
	// KindIllegalState means the operation needs cached data that is absent.
	KindIllegalState
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindIllegalState:
		return "illegal state"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per Kind. Use errors.Is to test an error's kind.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrTransport      = &Error{Kind: KindTransport}
	ErrDecode         = &Error{Kind: KindDecode}
	ErrIllegalState   = &Error{Kind: KindIllegalState}

	// ErrNotAuthenticated is returned by authenticated calls made before Login.
	ErrNotAuthenticated = &Error{Kind: KindAuthentication, Op: "session", Err: errors.New("not logged in")}

	// ErrNoAccounts is returned when a default account is needed but none is cached.
	ErrNoAccounts = &Error{Kind: KindIllegalState, Op: "default account", Err: errors.New("no accounts cached")}
)

// Error is a classified client failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	default:
		return e.Kind.String() + " error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// IsConnectionFailure reports whether err is a transport or decode failure.
// Callers typically rebuild the client and try again.
func IsConnectionFailure(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrDecode)
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// APIError represents an error response from the trade service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
}

// IsNotFound returns true if the error is a 404 Not Found.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if the error is a 401 Unauthorized.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden returns true if the error is a 403 Forbidden.
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// CheckResponse returns an *APIError for responses outside the 2xx range and
// nil otherwise. The error body is parsed when it is JSON.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return apiErr
	}

	if errResp.Error != "" {
		apiErr.Message = errResp.Error
	} else if errResp.Message != "" {
		apiErr.Message = errResp.Message
	}
	apiErr.Code = errResp.Code

	return apiErr
}

// DecodeJSON decodes a JSON response body into target.
// Failures are classified as KindDecode.
func DecodeJSON(resp *http.Response, target any) error {
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return newError(KindDecode, "", fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// classify wraps an error from CheckResponse with the kind that matches its
// status code. 401 and 403 are authentication failures; everything else the
// server answered with is an unexpected response.
func classify(op string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.IsUnauthorized() || apiErr.IsForbidden()) {
		return newError(KindAuthentication, op, err)
	}
	return newError(KindDecode, op, err)
}
