package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"roster/config/setup"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API until interrupted.

Every request runs on one coordinator goroutine, so concurrent clients see
a single ordering of working-set changes.

Example:
  roster serve --port 8080 --backend sqlite --db ./data/roster.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Port, "port", rootOpts.Config.Port, "listen port")
	return cmd
}

func serve(cmd *cobra.Command, opts *ServeOptions) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	cfg.Port = opts.Port

	db, err := setup.InitDatabase(cfg, opts.Logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to configure database", err)
	}

	application, err := setup.InitApp(ctx, db, cfg, opts.Logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start application", err)
	}
	defer setup.Shutdown(application, opts.Logger)

	if err := setup.Serve(ctx, cfg, application, opts.Logger); err != nil {
		return WrapExitError(ExitFailure, "server failed", err)
	}
	return nil
}
