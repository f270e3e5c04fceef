package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jonandersen/wst/internal/auth"
	"github.com/jonandersen/wst/internal/config"
	"github.com/jonandersen/wst/internal/keyring"
	"github.com/jonandersen/wst/internal/logging"
	"github.com/jonandersen/wst/pkg/wstrade"
)

var Version = "dev"

// commandTimeout bounds a whole command: login, account list and the
// operation itself.
const commandTimeout = 60 * time.Second

var (
	jsonOutput bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "wst",
	Short:   "Wealthsimple Trade CLI",
	Long:    `A CLI for looking up securities, converting quotes and placing orders on Wealthsimple Trade.`,
	Version: Version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

// GetJSONMode returns whether JSON output mode is enabled.
func GetJSONMode() bool {
	return jsonOutput
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appContext holds what commands need once flags are parsed.
type appContext struct {
	cfg   *config.Config
	store keyring.Store
	log   zerolog.Logger
}

// contextLoader builds the appContext. Commands receive one so tests can
// point them at a fake service and an in-memory keyring.
type contextLoader func() (*appContext, error)

// loadAppContext reads .env, the config file and WST_* overrides, and sets up
// logging to stderr.
func loadAppContext() (*appContext, error) {
	if err := config.LoadDotenv(); err != nil {
		return nil, err
	}

	cfg, err := config.LoadWithEnv(config.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logging.New(logging.Config{
		Level:  level,
		Pretty: logging.IsTerminal(os.Stderr),
	})
	if err != nil {
		return nil, err
	}

	return &appContext{
		cfg:   cfg,
		store: keyring.NewEnvStore(keyring.NewSystemStore()),
		log:   log,
	}, nil
}

func (a *appContext) connect(ctx context.Context) (*wstrade.Client, error) {
	client, err := auth.Connect(ctx, a.cfg, a.store, a.log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return client, nil
}

// withClient loads the app context, connects and runs fn.
func withClient(load contextLoader, fn func(ctx context.Context, app *appContext, client *wstrade.Client) error) error {
	app, err := load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client, err := app.connect(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, app, client)
}

// resolveSecurityID accepts a security id as is and looks anything else up
// as a ticker symbol.
func resolveSecurityID(ctx context.Context, client *wstrade.Client, arg string) (string, error) {
	if strings.HasPrefix(arg, "sec-") {
		return arg, nil
	}

	symbol := strings.ToUpper(arg)
	id, ok, err := client.FindSecurityID(ctx, symbol)
	if err != nil {
		return "", fmt.Errorf("failed to look up %s: %w", symbol, err)
	}
	if !ok {
		return "", fmt.Errorf("no security found for symbol %s", symbol)
	}
	return id, nil
}
