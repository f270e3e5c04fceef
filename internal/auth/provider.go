package auth

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jonandersen/wst/internal/config"
	"github.com/jonandersen/wst/internal/keyring"
	"github.com/jonandersen/wst/pkg/wstrade"
)

// ClientOptions turns config values into client options.
func ClientOptions(cfg *config.Config, log zerolog.Logger) []wstrade.Option {
	opts := []wstrade.Option{
		wstrade.WithLogger(log),
		wstrade.WithHomeCurrency(cfg.HomeCurrency),
	}
	if cfg.DefaultAccount != "" {
		opts = append(opts, wstrade.WithDefaultAccount(cfg.DefaultAccount))
	}
	return opts
}

// Connect resolves the stored credentials and returns a logged-in client with
// its account list loaded. Nothing is cached between runs; every call logs in
// again.
func Connect(ctx context.Context, cfg *config.Config, store keyring.Store, log zerolog.Logger) (*wstrade.Client, error) {
	creds, err := ResolveCredentials(cfg, store)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("email", creds.Email).Msg("connecting")

	return wstrade.Connect(ctx, cfg.APIBaseURL, creds.Email, creds.Password, ClientOptions(cfg, log)...)
}
