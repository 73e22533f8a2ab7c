package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"roster/app"
	"roster/models"
	"roster/storage"
)

// RecordOptions holds flags shared by the record commands.
type RecordOptions struct {
	*RootOptions
	Name        string
	Secret      string
	ShowSecrets bool
	Yes         bool
	Limit       int
}

func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				return opts.printer(cmd).Records(masked(a.Model.Records(), opts.ShowSecrets))
			})
		},
	}

	cmd.Flags().BoolVar(&opts.ShowSecrets, "show-secrets", false, "print secrets instead of a mask")
	return cmd
}

func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Look up one record in the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				repo, err := a.Factory.ForBackend(a.Backend)
				if err != nil {
					return err
				}
				rec, err := repo.GetRecord(ctx, id)
				if err != nil {
					return WrapExitError(ExitFailure, "get failed", err)
				}
				return opts.printer(cmd).Record(masked([]models.Record{rec}, opts.ShowSecrets)[0])
			})
		},
	}

	cmd.Flags().BoolVar(&opts.ShowSecrets, "show-secrets", false, "print secrets instead of a mask")
	return cmd
}

func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a record and save it",
		Example: `  roster add Bob --secret pw1
  roster add "Sue Smith" --secret pw2 --backend sqlite --db ./data/roster.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				if _, err := a.Controller.OnRecordCreated(ctx, models.CreateRecordRequest{Name: args[0], Secret: opts.Secret}); err != nil {
					return WrapExitError(ExitCommandError, "invalid record", err)
				}
				if err := a.Controller.OnSave(ctx); err != nil {
					return WrapExitError(ExitFailure, "save failed", err)
				}

				added, ok := newest(a.Model.Records(), args[0], opts.Secret)
				if !ok {
					return opts.printer(cmd).Message("saved; %s backend assigned no id", a.Backend)
				}
				return opts.printer(cmd).Record(masked([]models.Record{added}, false)[0])
			})
		},
	}

	cmd.Flags().StringVar(&opts.Secret, "secret", "", "secret to store (required)")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a stored record's name or secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if opts.Name == "" && opts.Secret == "" {
				return NewExitError(ExitCommandError, "nothing to update: pass --name and/or --secret")
			}

			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				held, ok := a.Model.Find(id)
				if !ok {
					return WrapExitError(ExitFailure, "update failed", fmt.Errorf("%w: id %d", storage.ErrRecordNotFound, id))
				}

				req := models.UpdateRecordRequest{Name: held.Name, Secret: held.Secret}
				if opts.Name != "" {
					req.Name = opts.Name
				}
				if opts.Secret != "" {
					req.Secret = opts.Secret
				}

				updated, err := a.Controller.OnRecordUpdated(ctx, id, req)
				if err != nil {
					return WrapExitError(ExitCommandError, "invalid record", err)
				}
				if err := a.Controller.OnSave(ctx); err != nil {
					return WrapExitError(ExitFailure, "save failed", err)
				}
				return opts.printer(cmd).Record(masked([]models.Record{updated}, false)[0])
			})
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "new name")
	cmd.Flags().StringVar(&opts.Secret, "secret", "", "new secret")
	return cmd
}

func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				if err := a.Controller.OnRecordDeleted(ctx, id); err != nil {
					return WrapExitError(ExitFailure, "delete failed", err)
				}
				return opts.printer(cmd).Message("deleted record %d", id)
			})
		},
	}

	return cmd
}

func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record from the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !opts.Yes {
				return NewExitError(ExitCommandError, "reset deletes every record; pass --yes to confirm")
			}

			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				repo, err := a.Factory.ForBackend(a.Backend)
				if err != nil {
					return err
				}
				n, err := repo.DeleteAll(ctx)
				if err != nil {
					return WrapExitError(ExitFailure, "reset failed", err)
				}
				if err := a.Model.Load(ctx); err != nil {
					return WrapExitError(ExitFailure, "reload failed", err)
				}
				return opts.printer(cmd).Message("deleted %d records", n)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm deleting every record")
	return cmd
}

func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the latest audit entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts.RootOptions, func(ctx context.Context, a *app.App) error {
				logs, err := a.Logs()
				if err != nil {
					return err
				}
				entries, err := logs.GetEntries(ctx, opts.Limit)
				if err != nil {
					return WrapExitError(ExitFailure, "reading audit log failed", err)
				}
				return opts.printer(cmd).Logs(entries)
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of entries")
	return cmd
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= models.UnassignedID {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid record id %q", arg))
	}
	return id, nil
}

// newest picks the highest-id record matching name and secret.
func newest(records []models.Record, name, secret string) (models.Record, bool) {
	var found models.Record
	for _, r := range records {
		if r.Name == name && r.Secret == secret && r.ID > found.ID {
			found = r
		}
	}
	return found, found.ID != models.UnassignedID
}
