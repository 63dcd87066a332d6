package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftware/sessiondoc/internal/session"
)

// EventsOptions holds flags for the events command.
type EventsOptions struct {
	*RootOptions
	App      string
	User     string
	Session  string
	PageSize int
	Cursor   string
}

// NewEventsCommand creates the events command.
func NewEventsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Page through a session's event log",
		Long: `List one page of a session's event log in append order. When more
events remain the output carries an opaque cursor; pass it back with
--cursor to continue.

Examples:
  sessiondoc events --app shop --user alice --session checkout-1
  sessiondoc events --app shop --user alice --session checkout-1 --page-size 20
  sessiondoc events --app shop --user alice --session checkout-1 --cursor eyJw...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "application name (required)")
	_ = cmd.MarkFlagRequired("app")
	cmd.Flags().StringVar(&opts.User, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "events per page (0 uses the configured default)")
	cmd.Flags().StringVar(&opts.Cursor, "cursor", "", "continuation cursor from a previous page")

	return cmd
}

func runEvents(opts *EventsOptions, cmd *cobra.Command) error {
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

	page, err := svc.ListEvents(context.Background(), opts.App, opts.User, opts.Session, session.ListEventsOptions{
		PageSize: opts.PageSize,
		Cursor:   opts.Cursor,
	})
	if err != nil {
		code := MapServiceError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "events failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(page)
	}
	out := cmd.OutOrStdout()
	for _, ev := range page.Events {
		fmt.Fprintf(out, "%s  %s  author=%s state_keys=%d\n",
			ev.Timestamp.Format(time.RFC3339), ev.ID, ev.Author, len(ev.StateDelta))
	}
	if page.NextCursor != "" {
		fmt.Fprintf(out, "More events remain; continue with --cursor %s\n", page.NextCursor)
	}
	return nil
}
