package auth

import (
	"errors"
	"fmt"

	"github.com/jonandersen/wst/internal/config"
	"github.com/jonandersen/wst/internal/keyring"
)

// ErrNotConfigured is returned when no email or password is available.
var ErrNotConfigured = errors.New("CLI not configured: run 'wst configure' first")

// Credentials are the login email and password.
type Credentials struct {
	Email    string
	Password string
}

// ResolveCredentials takes the email from cfg and the password from store.
// The store is usually an EnvStore, so WST_PASSWORD takes precedence over
// the system keyring.
func ResolveCredentials(cfg *config.Config, store keyring.Store) (Credentials, error) {
	if cfg.Email == "" {
		return Credentials{}, fmt.Errorf("%w (no email set)", ErrNotConfigured)
	}

	password, err := keyring.Password(store)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credentials{}, fmt.Errorf("%w (no password stored)", ErrNotConfigured)
		}
		return Credentials{}, err
	}

	return Credentials{Email: cfg.Email, Password: password}, nil
}
