package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonandersen/wst/internal/config"
	"github.com/jonandersen/wst/internal/keyring"
	"github.com/jonandersen/wst/pkg/wstrade"
)

func TestResolveCredentials(t *testing.T) {
	t.Setenv(keyring.EnvPassword, "")

	cfg := config.DefaultConfig()
	cfg.Email = "me@example.com"

	creds, err := ResolveCredentials(cfg, keyring.NewMockStore().WithPassword("hunter2"))
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", creds.Email)
	assert.Equal(t, "hunter2", creds.Password)
}

func TestResolveCredentials_EnvPassword(t *testing.T) {
	t.Setenv(keyring.EnvPassword, "from-env")

	cfg := config.DefaultConfig()
	cfg.Email = "me@example.com"

	creds, err := ResolveCredentials(cfg, keyring.NewEnvStore(keyring.NewMockStore()))
	require.NoError(t, err)
	assert.Equal(t, "from-env", creds.Password)
}

func TestResolveCredentials_Missing(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		store   keyring.Store
		wantErr string
	}{
		{"no email", "", keyring.NewMockStore().WithPassword("x"), "no email set"},
		{"no password", "me@example.com", keyring.NewMockStore(), "no password stored"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Email = tt.email

			_, err := ResolveCredentials(cfg, tt.store)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotConfigured)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveCredentials_KeyringFailure(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Email = "me@example.com"
	storeErr := errors.New("keyring locked")

	_, err := ResolveCredentials(cfg, keyring.NewMockStore().WithGetError(storeErr))
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}

func newTradeServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "hunter2" {
				_, _ = w.Write([]byte(`{"error":"Not authorized"}`))
				return
			}
			w.Header().Set("X-Access-Token", "access-123")
			w.Header().Set("X-Refresh-Token", "refresh-123")
			_, _ = w.Write([]byte(`{}`))
		case "/account/list":
			assert.Equal(t, "access-123", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"results":[
				{"id":"tfsa-abc","current_balance":{"amount":"10"},"buying_power":{"amount":"5"}},
				{"id":"rrsp-def","current_balance":{"amount":"20"},"buying_power":{"amount":"0"}}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConnect(t *testing.T) {
	server := newTradeServer(t)

	cfg := config.DefaultConfig()
	cfg.APIBaseURL = server.URL
	cfg.Email = "me@example.com"
	cfg.HomeCurrency = "USD"

	var logs bytes.Buffer
	log := zerolog.New(&logs).Level(zerolog.DebugLevel)

	client, err := Connect(context.Background(), cfg, keyring.NewMockStore().WithPassword("hunter2"), log)
	require.NoError(t, err)

	require.NotNil(t, client.Session())
	assert.Equal(t, "access-123", client.Session().AccessToken)
	assert.Equal(t, "USD", client.HomeCurrency)
	assert.Len(t, client.Accounts(), 2)

	id, err := client.DefaultAccountID()
	require.NoError(t, err)
	assert.Equal(t, "tfsa-abc", id)

	assert.NotContains(t, logs.String(), "hunter2")
	assert.NotContains(t, logs.String(), "access-123")
}

func TestConnect_DefaultAccountFromConfig(t *testing.T) {
	server := newTradeServer(t)

	cfg := config.DefaultConfig()
	cfg.APIBaseURL = server.URL
	cfg.Email = "me@example.com"
	cfg.DefaultAccount = "rrsp-def"

	client, err := Connect(context.Background(), cfg, keyring.NewMockStore().WithPassword("hunter2"), zerolog.Nop())
	require.NoError(t, err)

	id, err := client.DefaultAccountID()
	require.NoError(t, err)
	assert.Equal(t, "rrsp-def", id)
}

func TestConnect_WrongPassword(t *testing.T) {
	server := newTradeServer(t)

	cfg := config.DefaultConfig()
	cfg.APIBaseURL = server.URL
	cfg.Email = "me@example.com"

	client, err := Connect(context.Background(), cfg, keyring.NewMockStore().WithPassword("wrong"), zerolog.Nop())
	require.Error(t, err)
	assert.Nil(t, client)
	assert.ErrorIs(t, err, wstrade.ErrAuthentication)
}

func TestConnect_NotConfigured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("server should not be called without credentials")
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.APIBaseURL = server.URL

	_, err := Connect(context.Background(), cfg, keyring.NewMockStore(), zerolog.Nop())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
