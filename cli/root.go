package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"roster/app"
	"roster/config"
	"roster/config/setup"
	"roster/storage"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "text" | "json" | "yaml"
	Backend  string
	Database string

	Config *config.Config
	Logger *slog.Logger
	Level  *slog.LevelVar
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command. Flag defaults come from cfg;
// level is lowered to debug by --verbose.
func NewRootCommand(cfg *config.Config, logger *slog.Logger, level *slog.LevelVar) *cobra.Command {
	opts := &RootOptions{Config: cfg, Logger: logger, Level: level}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Roster - a staged store of people and their secrets",
		Long: `Roster keeps a list of people in a pluggable backing store.

Changes are staged in a working set and written on save. The backend is
chosen with --backend (sqlite, mysql or oracle).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Verbose && opts.Level != nil {
				opts.Level.Set(slog.LevelDebug)
			}

			opts.Config.Backend = opts.Backend
			opts.Config.DBPath = opts.Database
			if err := opts.Config.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", cfg.Backend, fmt.Sprintf("storage backend %v", storage.Backends))
	cmd.PersistentFlags().StringVar(&opts.Database, "db", cfg.DBPath, "path to SQLite database")

	// Add subcommands
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))

	return cmd
}

// withApp opens the configured store, loads the working set and runs fn.
// A command is a single goroutine, so the coordinator is never started.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := setup.InitDatabase(opts.Config, opts.Logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure database", err)
	}

	a := app.New(db, opts.Config.StorageBackend(), nil, opts.Logger, 0)
	if err := a.Controller.OnOpen(ctx); err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer a.Controller.OnClose()

	return fn(ctx, a)
}

func (o *RootOptions) printer(cmd *cobra.Command) *Printer {
	return &Printer{Format: o.Format, Writer: cmd.OutOrStdout()}
}
