package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftware/sessiondoc/internal/session"
	"github.com/driftware/sessiondoc/internal/state"
)

// AppendOptions holds flags for the append command.
type AppendOptions struct {
	*RootOptions
	App        string
	User       string
	Session    string
	Author     string
	Content    string // JSON object
	StateDelta string // JSON object; null values delete keys
	Partial    bool
}

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AppendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append an event to a session",
		Long: `Append one event to a session's log and fold its state delta into the
application, user, and session scopes in a single atomic batch.

Delta keys route by prefix: "app:" to the application document, "user:" to
the user document, "temp:" nowhere, everything else to the session. A JSON
null value deletes the key from its scope.

Examples:
  sessiondoc append --app shop --user alice --session checkout-1 \
      --author agent --delta '{"cart_total": 42, "user:lang": "de"}'
  sessiondoc append --app shop --user alice --session checkout-1 \
      --author agent --delta '{"cart_total": null}'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAppend(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "application name (required)")
	_ = cmd.MarkFlagRequired("app")
	cmd.Flags().StringVar(&opts.User, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (required)")
	_ = cmd.MarkFlagRequired("session")
	cmd.Flags().StringVar(&opts.Author, "author", "", "event author")
	cmd.Flags().StringVar(&opts.Content, "content", "", "event content as a JSON object")
	cmd.Flags().StringVar(&opts.StateDelta, "delta", "", "state delta as a JSON object")
	cmd.Flags().BoolVar(&opts.Partial, "partial", false, "mark the event as a streaming fragment (not persisted)")

	return cmd
}

func runAppend(opts *AppendOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	content, err := parseJSONObject(opts.Content)
	if err != nil {
		_ = formatter.Error(ErrCodeBadArgument, "invalid --content", err.Error())
		return WrapExitError(ExitCommandError, "invalid --content", err)
	}
	delta, err := parseJSONObject(opts.StateDelta)
	if err != nil {
		_ = formatter.Error(ErrCodeBadArgument, "invalid --delta", err.Error())
		return WrapExitError(ExitCommandError, "invalid --delta", err)
	}
	// JSON null is the wire form of a key deletion.
	for k, v := range delta {
		if v == nil {
			delta[k] = state.Tombstone
		}
	}

	svc, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	ev, err := svc.AppendEvent(context.Background(), opts.App, opts.User, opts.Session, session.Event{
		Author:     opts.Author,
		Content:    content,
		StateDelta: delta,
		Partial:    opts.Partial,
	})
	if err != nil {
		code := MapServiceError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "append failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(ev)
	}
	if ev.Partial {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped partial event %s\n", ev.ID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Appended event %s to session %s\n", ev.ID, opts.Session)
	return nil
}
