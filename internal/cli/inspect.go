package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/vtscope/internal/capture"
	"github.com/roach88/vtscope/internal/scope"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
}

// InspectChunk is one classified chunk in the dump.
type InspectChunk struct {
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	Kind     string `json:"kind"` // "text" | "escape"
	Category string `json:"category,omitempty"`
	Preview  string `json:"preview"`
}

// InspectStop is one header bookmark.
type InspectStop struct {
	Offset int `json:"offset"`
	Lines  int `json:"lines"`
	Row    int `json:"row"`
	Col    int `json:"col"`
}

// InspectResult is the full non-interactive dump of a capture.
type InspectResult struct {
	Path        string         `json:"path"`
	Bytes       int            `json:"bytes"`
	Stops       []InspectStop  `json:"stops,omitempty"`
	Chunks      []InspectChunk `json:"chunks"`
	Diagnostics []string       `json:"diagnostics,omitempty"`
}

// String renders the text format.
func (r *InspectResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Capture: %s\n", r.Path)
	fmt.Fprintf(&b, "Payload: %d bytes, %d chunks\n", r.Bytes, len(r.Chunks))

	for _, d := range r.Diagnostics {
		fmt.Fprintf(&b, "Warning: %s\n", d)
	}

	if len(r.Stops) > 0 {
		fmt.Fprintf(&b, "Stops:\n")
		for i, s := range r.Stops {
			fmt.Fprintf(&b, "  %%%d: offset %d, %d lines, cursor %d,%d\n",
				i+1, s.Offset, s.Lines, s.Row, s.Col)
		}
	}

	fmt.Fprintf(&b, "Chunks:\n")
	for _, ch := range r.Chunks {
		fmt.Fprintf(&b, "  offset %d, %s\n", ch.Offset, ch.Preview)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <capture-file>",
		Short: "Dump a capture's chunks without replaying",
		Long: `Classify and list every chunk in a capture without stepping
through it interactively or broadcasting anything.

Useful for eyeballing what a session will replay, or diffing two
captures structurally.

Example:
  vtscope inspect test_data/vttest-01.log
  vtscope inspect --format json test_data/vttest-01.log`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:  opts.Format,
				Writer:  cmd.OutOrStdout(),
				Verbose: opts.Verbose,
			}

			result, err := InspectCapture(args[0])
			if err != nil {
				return err
			}
			return formatter.Success(result)
		},
	}

	return cmd
}

// InspectCapture loads a capture and classifies every chunk in it.
func InspectCapture(path string) (*InspectResult, error) {
	c, diag, err := capture.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load capture", err)
	}

	result := &InspectResult{
		Path:  path,
		Bytes: len(c.Payload),
	}
	if diag != "" {
		result.Diagnostics = append(result.Diagnostics, diag)
	}
	for _, b := range c.Bookmarks {
		result.Stops = append(result.Stops, InspectStop{
			Offset: b.Offset, Lines: b.Lines, Row: b.Row, Col: b.Col,
		})
	}

	var cursor scope.Cursor
	for {
		ch := cursor.Advance(c.Payload)
		if ch.Kind == scope.ChunkNone {
			break
		}
		if ch.Miss {
			result.Diagnostics = append(result.Diagnostics,
				fmt.Sprintf("no recognizer matched the escape sequence at offset %d", ch.Start))
		}

		ic := InspectChunk{
			Offset:  ch.Start,
			Length:  ch.End - ch.Start,
			Kind:    "text",
			Preview: ch.Preview(c.Payload),
		}
		if ch.Kind == scope.ChunkEscape {
			ic.Kind = "escape"
			ic.Category = string(ch.Category)
		}
		result.Chunks = append(result.Chunks, ic)
	}

	return result, nil
}
