package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/vtscope/internal/catalog"
	"github.com/roach88/vtscope/internal/config"
	"github.com/roach88/vtscope/internal/shell"
)

// ScopeOptions holds flags for the scope command.
type ScopeOptions struct {
	*RootOptions
	Listen string
}

// NewScopeCommand creates the scope command.
func NewScopeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScopeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scope [capture-file]",
		Short: "Run the interactive replay shell",
		Long: `Run the interactive replay shell.

Loads a canned terminal session and plays it back, chunk by chunk, to
TCP-connected clients. Connect terminals with:

  $ nc 127.0.0.1 8383

Example session:
  vtscope> open test_data/vttest-01.log
  vtscope> accept 2
  vtscope> step
  vtscope> seek %1`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScope(opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")

	return cmd
}

func runScope(opts *ScopeOptions, args []string) error {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}

	// The catalog is an aid; a broken one must not keep the scope from
	// running.
	var cat *catalog.Catalog
	if cfg.CatalogPath != "" {
		cat, err = catalog.Open(cfg.CatalogPath)
		if err != nil {
			slog.Warn("capture catalog unavailable", "path", cfg.CatalogPath, "error", err)
			cat = nil
		} else {
			defer cat.Close()
		}
	}

	sh := shell.New(shell.Options{
		Listen:      cfg.Listen,
		HistoryFile: cfg.HistoryFile,
		Catalog:     cat,
		DelayMS:     cfg.DelayMS,
		Out:         os.Stdout,
	})

	if len(args) == 1 {
		if err := sh.OpenPath(args[0]); err != nil {
			return WrapExitError(ExitCommandError, "failed to open capture", err)
		}
	}

	if err := sh.Run(); err != nil {
		return WrapExitError(ExitFailure, "shell terminated", err)
	}
	return nil
}
