package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	App  string
	User string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's sessions",
		Long: `List every session for an application/user pair, oldest first.

Summaries carry merged state but no events.

Examples:
  sessiondoc list --app shop --user alice
  sessiondoc list --app shop --user alice --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "application name (required)")
	_ = cmd.MarkFlagRequired("app")
	cmd.Flags().StringVar(&opts.User, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
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

	sessions, err := svc.ListSessions(context.Background(), opts.App, opts.User)
	if err != nil {
		code := MapServiceError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "list failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(sessions)
	}
	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintf(out, "No sessions for app=%s user=%s\n", opts.App, opts.User)
		return nil
	}
	for _, sess := range sessions {
		fmt.Fprintf(out, "%s  created=%s updated=%s state_keys=%d\n",
			sess.ID,
			sess.CreateTime.Format(time.RFC3339),
			sess.LastUpdateTime.Format(time.RFC3339),
			len(sess.State))
	}
	return nil
}
