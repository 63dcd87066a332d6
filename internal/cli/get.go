package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftware/sessiondoc/internal/session"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	App     string
	User    string
	Session string
	Last    int    // keep only the most recent N events
	After   string // RFC 3339; keep only events after this instant
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a session with merged state and events",
		Long: `Fetch one session: its merged application/user/session state view and
its event log in append order.

Examples:
  sessiondoc get --app shop --user alice --session checkout-1
  sessiondoc get --app shop --user alice --session checkout-1 --last 10
  sessiondoc get --app shop --user alice --session checkout-1 --after 2024-06-01T00:00:00Z`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "application name (required)")
	_ = cmd.MarkFlagRequired("app")
	cmd.Flags().StringVar(&opts.User, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().IntVar(&opts.Last, "last", 0, "load only the most recent N events")
	cmd.Flags().StringVar(&opts.After, "after", "", "load only events after this RFC 3339 instant")

	return cmd
}

func runGet(opts *GetOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	getOpts := session.GetOptions{NumRecentEvents: opts.Last}
	if opts.After != "" {
		after, err := time.Parse(time.RFC3339, opts.After)
		if err != nil {
			_ = formatter.Error(ErrCodeBadArgument, "invalid --after", err.Error())
			return WrapExitError(ExitCommandError, "invalid --after", err)
		}
		getOpts.AfterTime = after
	}

	svc, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	sess, err := svc.GetSession(context.Background(), opts.App, opts.User, opts.Session, getOpts)
	if err != nil {
		code := MapServiceError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "get failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(sess)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s (app=%s user=%s)\n", sess.ID, sess.AppName, sess.UserID)
	fmt.Fprintf(out, "  created: %s\n", sess.CreateTime.Format(time.RFC3339))
	fmt.Fprintf(out, "  updated: %s\n", sess.LastUpdateTime.Format(time.RFC3339))
	fmt.Fprintf(out, "  state keys: %d\n", len(sess.State))
	fmt.Fprintf(out, "  events: %d\n", len(sess.Events))
	for _, ev := range sess.Events {
		fmt.Fprintf(out, "    %s  %s  author=%s\n", ev.Timestamp.Format(time.RFC3339), ev.ID, ev.Author)
	}
	return nil
}
