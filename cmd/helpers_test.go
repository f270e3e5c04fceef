package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonandersen/wst/internal/config"
	"github.com/jonandersen/wst/internal/keyring"
)

const (
	testEmail    = "me@example.com"
	testPassword = "hunter2"
	testToken    = "access-123"
)

const testAccounts = `{"results":[
	{"id":"tfsa-abc","account_type":"ca_tfsa","current_balance":{"amount":"1500.25","currency":"CAD"},"buying_power":{"amount":"800.5","currency":"CAD"}},
	{"id":"rrsp-def","account_type":"ca_rrsp","current_balance":{"amount":"42.1","currency":"CAD"},"buying_power":{"amount":"0","currency":"CAD"}}
]}`

// fakeService emulates the trade service. Login and the account list are
// always served; other routes are keyed by "METHOD /path".
type fakeService struct {
	t      *testing.T
	routes map[string]http.HandlerFunc
}

func newFakeService(t *testing.T, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	fs := &fakeService{t: t, routes: routes}
	server := httptest.NewServer(fs)
	t.Cleanup(server.Close)
	return server
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path

	if key == "POST /auth/login" {
		var body map[string]string
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		if body["email"] != testEmail || body["password"] != testPassword {
			_, _ = w.Write([]byte(`{"error":"Not authorized"}`))
			return
		}
		w.Header().Set("X-Access-Token", testToken)
		w.Header().Set("X-Refresh-Token", "refresh-123")
		_, _ = w.Write([]byte(`{}`))
		return
	}

	assert.Equal(f.t, testToken, r.Header.Get("Authorization"), "request %s", key)

	if handler, ok := f.routes[key]; ok {
		handler(w, r)
		return
	}
	if key == "GET /account/list" {
		_, _ = w.Write([]byte(testAccounts))
		return
	}

	f.t.Errorf("unexpected request %s", key)
	w.WriteHeader(http.StatusNotFound)
}

// respond returns a handler writing body with status 200.
func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

// testLoader returns a contextLoader bound to serverURL with the test login
// stored in an in-memory keyring.
func testLoader(serverURL string, mutate ...func(*config.Config)) contextLoader {
	return func() (*appContext, error) {
		cfg := config.DefaultConfig()
		cfg.APIBaseURL = serverURL
		cfg.Email = testEmail
		for _, m := range mutate {
			m(cfg)
		}
		return &appContext{
			cfg:   cfg,
			store: keyring.NewMockStore().WithPassword(testPassword),
			log:   zerolog.Nop(),
		}, nil
	}
}

func tradingEnabled(cfg *config.Config) {
	cfg.TradingEnabled = true
}

// execute runs cmd with args and returns its stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
