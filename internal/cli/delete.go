package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// DeleteOptions holds flags for the delete command.
type DeleteOptions struct {
	*RootOptions
	App     string
	User    string
	Session string
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DeleteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a session and its events",
		Long: `Delete a session and its whole event log. Application and user scope
state is left untouched. Deleting a session that does not exist succeeds.

Examples:
  sessiondoc delete --app shop --user alice --session checkout-1`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "application name (required)")
	_ = cmd.MarkFlagRequired("app")
	cmd.Flags().StringVar(&opts.User, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runDelete(opts *DeleteOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	svc, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	if err := svc.DeleteSession(context.Background(), opts.App, opts.User, opts.Session); err != nil {
		code := MapServiceError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "delete failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]string{"deleted": opts.Session})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", opts.Session)
	return nil
}
