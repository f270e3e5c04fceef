package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonandersen/wst/internal/auth"
	"github.com/jonandersen/wst/internal/config"
	"github.com/jonandersen/wst/internal/keyring"
	"github.com/jonandersen/wst/internal/output"
	"github.com/jonandersen/wst/pkg/wstrade"
)

// passwordReader abstracts terminal password input for testing.
type passwordReader interface {
	ReadPassword() (string, error)
	IsTerminal() bool
}

// terminalReader reads passwords from the terminal using golang.org/x/term.
type terminalReader struct {
	fd int
}

func newTerminalReader(fd int) *terminalReader {
	return &terminalReader{fd: fd}
}

func (r *terminalReader) ReadPassword() (string, error) {
	password, err := term.ReadPassword(r.fd)
	if err != nil {
		return "", err
	}
	return string(password), nil
}

func (r *terminalReader) IsTerminal() bool {
	return term.IsTerminal(r.fd)
}

// prompter abstracts interactive menu selection for testing.
type prompter interface {
	SelectOption(options []string) (int, error)
	ReadLine(prompt string) (string, error)
}

// terminalPrompter implements prompter on a line-oriented reader. It keeps one
// scanner so buffered input is not lost between prompts.
type terminalPrompter struct {
	scanner *bufio.Scanner
	writer  io.Writer
}

func newTerminalPrompter(r io.Reader, w io.Writer) *terminalPrompter {
	return &terminalPrompter{scanner: bufio.NewScanner(r), writer: w}
}

func (p *terminalPrompter) SelectOption(options []string) (int, error) {
	for {
		if !p.scanner.Scan() {
			if err := p.scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("no input")
		}
		idx, err := strconv.Atoi(strings.TrimSpace(p.scanner.Text()))
		if err != nil || idx < 1 || idx > len(options) {
			_, _ = fmt.Fprintf(p.writer, "Please enter a number between 1 and %d: ", len(options))
			continue
		}
		return idx - 1, nil
	}
}

func (p *terminalPrompter) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(p.writer, prompt)
	if !p.scanner.Scan() {
		return "", p.scanner.Err()
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// configureOptions holds dependencies for the configure command.
type configureOptions struct {
	configPath     string
	store          keyring.Store
	passwordReader passwordReader
	prompt         prompter
	log            zerolog.Logger
}

func newConfigureCmd(opts configureOptions) *cobra.Command {
	var email, accountID string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Configure login credentials",
		Long: `Configure the CLI with your Wealthsimple Trade login.

You will be prompted for your email and password. The credentials are checked
by logging in, then the password is stored in the system keyring and the email
in the config file.

Example:
  wst configure
  wst configure --email me@example.com --account tfsa-abc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd, opts, email, accountID)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Login email (prompted if not given)")
	cmd.Flags().StringVar(&accountID, "account", "", "Default account ID (optional)")
	cmd.SilenceUsage = true

	return cmd
}

// reconfigureMenuOptions defines the menu options when already configured.
var reconfigureMenuOptions = []string{
	"Select different default account",
	"Enter new credentials",
	"View current configuration",
	"Toggle trading (enable/disable order placement)",
	"Clear stored password",
}

func runConfigure(cmd *cobra.Command, opts configureOptions, email, accountID string) error {
	if !opts.passwordReader.IsTerminal() {
		return fmt.Errorf("configure requires an interactive terminal\nRun this command directly in your terminal (not piped or in a script)")
	}

	_, err := keyring.Password(opts.store)
	if err == nil {
		return runReconfigureMenu(cmd, opts)
	}

	return runInitialSetup(cmd, opts, email, accountID)
}

func runReconfigureMenu(cmd *cobra.Command, opts configureOptions) error {
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w, "CLI is already configured. What would you like to do?")
	_, _ = fmt.Fprintln(w)
	for i, opt := range reconfigureMenuOptions {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, opt)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, "Select option: ")

	choice, err := opts.prompt.SelectOption(reconfigureMenuOptions)
	if err != nil {
		return fmt.Errorf("failed to read selection: %w", err)
	}

	switch choice {
	case 0:
		return runSelectAccount(cmd, opts)
	case 1:
		return runInitialSetup(cmd, opts, "", "")
	case 2:
		return runViewConfiguration(cmd, opts)
	case 3:
		return runToggleTrading(cmd, opts)
	case 4:
		return runClearPassword(cmd, opts)
	default:
		return fmt.Errorf("invalid selection")
	}
}

// loadConfigOrDefault reads the config file, falling back to defaults when it
// is unreadable.
func loadConfigOrDefault(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

func runInitialSetup(cmd *cobra.Command, opts configureOptions, email, accountID string) error {
	cfg := loadConfigOrDefault(opts.configPath)

	if email == "" {
		prompt := "Email: "
		if cfg.Email != "" {
			prompt = fmt.Sprintf("Email [%s]: ", cfg.Email)
		}
		line, err := opts.prompt.ReadLine(prompt)
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		email = line
		if email == "" {
			email = cfg.Email
		}
	}
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), "Enter your password: ")
	password, err := opts.passwordReader.ReadPassword()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout())

	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client, err := wstrade.Connect(ctx, cfg.APIBaseURL, email, password, auth.ClientOptions(cfg, opts.log)...)
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	if err := keyring.SetPassword(opts.store, password); err != nil {
		return err
	}

	cfg.Email = email
	if accountID != "" {
		cfg.DefaultAccount = accountID
	} else {
		selected, err := promptAccountSelection(cmd, opts, client.Accounts())
		if err != nil {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Note: Could not select an account: %v\n", err)
		} else if selected != "" {
			cfg.DefaultAccount = selected
		}
	}

	if err := config.Save(opts.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved successfully!")
	return nil
}

// promptAccountSelection offers the accounts plus a Skip entry. It returns an
// empty id when there is nothing to pick or Skip is chosen.
func promptAccountSelection(cmd *cobra.Command, opts configureOptions, accounts []wstrade.Account) (string, error) {
	if len(accounts) == 0 {
		return "", nil
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Select a default account:")

	options := make([]string, 0, len(accounts)+1)
	for i, acc := range accounts {
		text := fmt.Sprintf("%s (%s, buying power %s)", acc.ID, acc.Type, output.Amount(acc.BuyingPower, acc.Currency))
		options = append(options, text)
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, text)
	}
	options = append(options, "Skip")
	_, _ = fmt.Fprintf(w, "  %d. Skip\n", len(accounts)+1)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, "Select account: ")

	choice, err := opts.prompt.SelectOption(options)
	if err != nil {
		return "", err
	}
	if choice >= len(accounts) {
		return "", nil
	}
	return accounts[choice].ID, nil
}

func runSelectAccount(cmd *cobra.Command, opts configureOptions) error {
	cfg := loadConfigOrDefault(opts.configPath)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	client, err := auth.Connect(ctx, cfg, opts.store, opts.log)
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	selected, err := promptAccountSelection(cmd, opts, client.Accounts())
	if err != nil {
		return fmt.Errorf("failed to select account: %w", err)
	}
	if selected == "" {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No account selected.")
		return nil
	}

	cfg.DefaultAccount = selected
	if err := config.Save(opts.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default account set to: %s\n", selected)
	return nil
}

func runViewConfiguration(cmd *cobra.Command, opts configureOptions) error {
	cfg := loadConfigOrDefault(opts.configPath)

	passwordStatus := "Not configured"
	if _, err := keyring.Password(opts.store); err == nil {
		passwordStatus = "Configured"
	}

	notSet := func(v string) string {
		if v == "" {
			return "Not set"
		}
		return v
	}
	trading := "DISABLED"
	if cfg.TradingEnabled {
		trading = "ENABLED"
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout())
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Current Configuration:")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "----------------------")

	return output.New(cmd.OutOrStdout(), false).KeyValue([]output.Field{
		{Key: "Email", Value: notSet(cfg.Email)},
		{Key: "Password", Value: passwordStatus},
		{Key: "Default account", Value: notSet(cfg.DefaultAccount)},
		{Key: "API base URL", Value: cfg.APIBaseURL},
		{Key: "Home currency", Value: cfg.HomeCurrency},
		{Key: "Trading", Value: trading},
		{Key: "Log level", Value: cfg.LogLevel},
	})
}

func runToggleTrading(cmd *cobra.Command, opts configureOptions) error {
	cfg := loadConfigOrDefault(opts.configPath)
	cfg.TradingEnabled = !cfg.TradingEnabled

	if err := config.Save(opts.configPath, cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	if cfg.TradingEnabled {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Trading is now ENABLED. Order commands will place real orders.")
	} else {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Trading is now DISABLED.")
	}
	return nil
}

func runClearPassword(cmd *cobra.Command, opts configureOptions) error {
	if err := keyring.DeletePassword(opts.store); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Stored password cleared.")
	return nil
}

func init() {
	rootCmd.AddCommand(newConfigureCmd(configureOptions{
		configPath:     config.ConfigPath(),
		store:          keyring.NewEnvStore(keyring.NewSystemStore()),
		passwordReader: newTerminalReader(int(os.Stdin.Fd())),
		prompt:         newTerminalPrompter(os.Stdin, os.Stdout),
		log:            zerolog.Nop(),
	}))
}
