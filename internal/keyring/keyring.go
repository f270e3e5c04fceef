package keyring

import (
	"errors"
	"fmt"
	"os"

	gokeyring "github.com/zalando/go-keyring"
)

const (
	// ServiceName is the keyring service the account password is stored under.
	ServiceName = "com.wealthsimple.wst"

	// KeyPassword is the keyring key for the account password.
	KeyPassword = "password"

	// EnvPassword overrides keyring lookups of the password for headless runs.
	EnvPassword = "WST_PASSWORD"
)

// ErrNotFound is returned when a secret is not found in the keyring.
var ErrNotFound = errors.New("secret not found")

// Store provides an interface for secure secret storage.
type Store interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// SystemStore implements Store using the system keyring.
type SystemStore struct{}

// NewSystemStore creates a new system keyring store.
func NewSystemStore() *SystemStore {
	return &SystemStore{}
}

func (s *SystemStore) Get(service, key string) (string, error) {
	secret, err := gokeyring.Get(service, key)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return secret, nil
}

func (s *SystemStore) Set(service, key, value string) error {
	return gokeyring.Set(service, key, value)
}

// Delete removes a secret. Removing a missing secret is not an error.
func (s *SystemStore) Delete(service, key string) error {
	err := gokeyring.Delete(service, key)
	if err != nil && errors.Is(err, gokeyring.ErrNotFound) {
		return nil
	}
	return err
}

// EnvStore wraps another Store and answers password lookups from
// WST_PASSWORD when it is set.
type EnvStore struct {
	underlying Store
}

// NewEnvStore creates a new EnvStore wrapping the given store.
func NewEnvStore(underlying Store) *EnvStore {
	return &EnvStore{underlying: underlying}
}

func (e *EnvStore) Get(service, key string) (string, error) {
	if key == KeyPassword {
		if v := os.Getenv(EnvPassword); v != "" {
			return v, nil
		}
	}
	return e.underlying.Get(service, key)
}

func (e *EnvStore) Set(service, key, value string) error {
	return e.underlying.Set(service, key, value)
}

func (e *EnvStore) Delete(service, key string) error {
	return e.underlying.Delete(service, key)
}

// Password reads the stored account password.
func Password(s Store) (string, error) {
	password, err := s.Get(ServiceName, KeyPassword)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read password from keyring: %w", err)
	}
	return password, nil
}

// SetPassword stores the account password.
func SetPassword(s Store, password string) error {
	if err := s.Set(ServiceName, KeyPassword, password); err != nil {
		return fmt.Errorf("failed to store password in keyring: %w", err)
	}
	return nil
}

// DeletePassword removes the stored account password.
func DeletePassword(s Store) error {
	if err := s.Delete(ServiceName, KeyPassword); err != nil {
		return fmt.Errorf("failed to delete password from keyring: %w", err)
	}
	return nil
}
