package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/driftware/sessiondoc/internal/session"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	App      string
	User     string
	Session  string
	State    string // JSON object of initial state
	Metadata string // JSON object of session metadata
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a session",
		Long: `Create a session for an application/user pair.

Initial state may carry scope prefixes: "app:" keys are shared across the
application, "user:" keys across the user's sessions, and "temp:" keys are
discarded. Prefixed initial state is written to the scope documents in the
same atomic batch as the session itself.

Examples:
  sessiondoc create --app shop --user alice
  sessiondoc create --app shop --user alice --session checkout-1
  sessiondoc create --app shop --user alice --state '{"user:lang":"de"}'`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.App, "app", "", "application name (required)")
	_ = cmd.MarkFlagRequired("app")
	cmd.Flags().StringVar(&opts.User, "user", "", "user id (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session id (generated when omitted)")
	cmd.Flags().StringVar(&opts.State, "state", "", "initial state as a JSON object")
	cmd.Flags().StringVar(&opts.Metadata, "metadata", "", "session metadata as a JSON object")

	return cmd
}

func runCreate(opts *CreateOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	state, err := parseJSONObject(opts.State)
	if err != nil {
		_ = formatter.Error(ErrCodeBadArgument, "invalid --state", err.Error())
		return WrapExitError(ExitCommandError, "invalid --state", err)
	}
	metadata, err := parseJSONObject(opts.Metadata)
	if err != nil {
		_ = formatter.Error(ErrCodeBadArgument, "invalid --metadata", err.Error())
		return WrapExitError(ExitCommandError, "invalid --metadata", err)
	}

	svc, closer, err := openService(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closer()

	sess, err := svc.CreateSession(context.Background(), session.CreateSessionRequest{
		AppName:  opts.App,
		UserID:   opts.User,
		ID:       opts.Session,
		State:    state,
		Metadata: metadata,
	})
	if err != nil {
		code := MapServiceError(err)
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitFailure, "create failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(sess)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created session %s (app=%s user=%s)\n", sess.ID, sess.AppName, sess.UserID)
	return nil
}

// parseJSONObject decodes an optional JSON-object flag value.
func parseJSONObject(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}
	return obj, nil
}
