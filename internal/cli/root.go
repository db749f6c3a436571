package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tablekit/internal/config"
	"github.com/roach88/tablekit/internal/database"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string // overrides database.path from config
	Config   string // path to tablekit.yaml
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tablekit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tablekit",
		Short: "tablekit - query and edit SQLite tables",
		Long:  "Compose queries and apply row changes against a SQLite database without writing SQL by hand.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "path to tablekit.yaml")

	// Add subcommands
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewCreateTableCommand(opts))
	cmd.AddCommand(NewDropTableCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the OutputFormatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// open loads configuration, installs the logger and opens the database.
// Failures are reported through f.
func (o *RootOptions) open(ctx context.Context, f *OutputFormatter) (*database.DB, error) {
	cfg, err := config.Load(o.Config)
	if err != nil {
		_ = f.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Database != "" {
		cfg.Database.Path = o.Database
	}

	logger := newLogger(f.GetErrWriter(), cfg.Logging, o.Verbose)
	slog.SetDefault(logger)

	dbOpts, err := cfg.DatabaseOptions(logger)
	if err != nil {
		return nil, f.Fail("invalid config", err)
	}

	logger.Debug("opening database", "path", dbOpts.Path, "driver", dbOpts.Store.Driver)
	db, err := database.Open(ctx, dbOpts)
	if err != nil {
		_ = f.Error(ErrCodeEngine, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return db, nil
}

// newLogger builds the slog logger described by cfg. Verbose forces debug.
func newLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// closeDB closes db, logging failures.
func closeDB(db *database.DB) {
	if err := db.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
