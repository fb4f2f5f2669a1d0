package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/vtscope/internal/catalog"
	"github.com/roach88/vtscope/internal/config"
)

// RecentOptions holds flags for the recent command.
type RecentOptions struct {
	*RootOptions
	Limit int
}

// RecentEntry is one listed capture.
type RecentEntry struct {
	Path       string `json:"path"`
	Bytes      int64  `json:"bytes"`
	Stops      int    `json:"stops"`
	OpenedAt   string `json:"opened_at"`
	LastOffset int64  `json:"last_offset"`
}

// RecentResult is the recent-captures listing.
type RecentResult struct {
	Entries []RecentEntry `json:"entries"`
}

// String renders the text format.
func (r *RecentResult) String() string {
	if len(r.Entries) == 0 {
		return "No captures recorded."
	}
	var b strings.Builder
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "%s  %s (%d bytes, %d stops, last offset %d)\n",
			e.OpenedAt, e.Path, e.Bytes, e.Stops, e.LastOffset)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewRecentCommand creates the recent command.
func NewRecentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened captures",
		Long: `List captures previously opened in the scope shell, most recent
first, with how far each replay got.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:  opts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: opts.Verbose,
			}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if cfg.CatalogPath == "" {
				return NewExitError(ExitCommandError, "capture catalog is disabled in config")
			}

			result, err := listRecent(cfg.CatalogPath, opts.Limit)
			if err != nil {
				return err
			}
			return formatter.Success(result)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum entries to list")

	return cmd
}

func listRecent(catalogPath string, limit int) (*RecentResult, error) {
	cat, err := catalog.Open(catalogPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open catalog", err)
	}
	defer cat.Close()

	entries, err := cat.Recent(limit)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to list captures", err)
	}

	result := &RecentResult{}
	for _, e := range entries {
		result.Entries = append(result.Entries, RecentEntry{
			Path:       e.Path,
			Bytes:      e.Bytes,
			Stops:      e.Bookmarks,
			OpenedAt:   e.OpenedAt.Local().Format(time.DateTime),
			LastOffset: e.LastOffset,
		})
	}
	return result, nil
}
