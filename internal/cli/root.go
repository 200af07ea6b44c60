package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/verixa/internal/app"
	"github.com/roach88/verixa/internal/config"
	"github.com/roach88/verixa/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	ConfigPath string
	Backend    string
	Database   string
	DSN        string
	StateDir   string

	// AppOptions are passed to app.Boot (for testing).
	AppOptions []app.Option
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the verixa CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verixa",
		Short: "Vérixa storefront",
		Long: `Vérixa storefront core: catalog, cart, wishlist, checkout and orders
on an embedded SQLite engine or a hosted Postgres database.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (sqlite|postgres)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "Postgres connection string")
	cmd.PersistentFlags().StringVar(&opts.StateDir, "state-dir", "", "directory for the saved cart and wishlist")

	// Add subcommands
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewProductCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewWishlistCommand(opts))
	cmd.AddCommand(NewCheckoutCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewCustomersCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// loadConfig resolves settings: defaults, config file, environment, then
// any global flag that was set explicitly.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Resolve(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.Database != "" {
		cfg.DatabasePath = o.Database
	}
	if o.DSN != "" {
		cfg.PostgresDSN = o.DSN
	}
	if o.StateDir != "" {
		cfg.StateDir = o.StateDir
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, cfg.Validate()
}

// boot loads configuration and brings up the storefront. Diagnostics go to
// stderr so JSON output on stdout stays clean.
func (o *RootOptions) boot(cmd *cobra.Command) (*app.App, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	logger.Debug("booting storefront", "backend", cfg.Backend, "db", cfg.DatabasePath, "state_dir", cfg.StateDir)

	a, err := app.Boot(cmd.Context(), cfg, logger, o.AppOptions...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to start storefront", err)
	}
	return a, nil
}

// closeApp releases the engine, logging rather than failing the command.
func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		a.Logger.Error("error closing database", "error", err)
	}
}

// withApp boots the storefront, runs fn and closes it again. Errors from
// fn are reported through the formatter.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(a *app.App, f *OutputFormatter) error) error {
	f := o.formatter(cmd)
	a, err := o.boot(cmd)
	if err != nil {
		return reportError(f, err, nil)
	}
	defer closeApp(a)

	if err := fn(a, f); err != nil {
		return reportError(f, err, a.Logger)
	}
	return nil
}
