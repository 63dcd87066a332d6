// Package cli implements the sessiondoc command line interface: session
// lifecycle and event-log operations against a configured document store.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftware/sessiondoc/internal/config"
	"github.com/driftware/sessiondoc/internal/docstore"
	"github.com/driftware/sessiondoc/internal/session"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	StoreURI   string // overrides the configured store when set

	cfg config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sessiondoc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sessiondoc",
		Short: "Manage agent sessions in a document store",
		Long: `sessiondoc persists agent conversation sessions as hierarchical
documents: per-application and per-user shared state, per-session state,
and an append-only event log under each session.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "loading configuration", err)
			}
			if opts.StoreURI != "" {
				cfg.Store.URI = opts.StoreURI
			}
			opts.cfg = cfg
			setupLogging(cfg.Log, opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.StoreURI, "store", "", "store connection string (overrides config)")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewAppendCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))

	return cmd
}

// setupLogging installs the process-wide slog handler. The verbose flag
// forces debug level regardless of configuration.
func setupLogging(cfg config.LogConfig, verbose bool) {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	ho := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, ho)
	} else {
		handler = slog.NewTextHandler(os.Stderr, ho)
	}
	slog.SetDefault(slog.New(handler))
}

// openService connects to the configured store and builds the session
// manager over it. The caller must invoke the returned closer.
func openService(opts *RootOptions) (session.Service, func() error, error) {
	store, err := docstore.Open(opts.cfg.Store.URI)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "opening store", err)
	}
	mgr := session.NewManager(store,
		session.WithDeleteBatchSize(opts.cfg.Limits.DeleteBatchSize),
		session.WithEventPageSize(opts.cfg.Limits.EventPageSize),
	)
	return mgr, store.Close, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
