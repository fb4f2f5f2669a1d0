package cli

import (
	"fmt"
	"io"
	"strconv"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/text/width"
)

// UTF8Options holds flags for the utf8 command. Start and end are kept
// as strings so 0x-prefixed values parse the way operators expect.
type UTF8Options struct {
	*RootOptions
	Start  string
	End    string
	Width  int
	Spacer string
}

// NewUTF8Command creates the utf8 command, a code-point table dumper for
// exercising a terminal's width handling.
func NewUTF8Command(rootOpts *RootOptions) *cobra.Command {
	opts := &UTF8Options{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "utf8",
		Short: "Dump a UTF-8 code-point table for terminal width testing",
		Long: `Print a table of code points so a terminal's rendering of narrow,
wide, combining, and unprintable characters can be checked by eye.

Unprintable code points render as 'x', zero-width ones as 'X';
surrogates are skipped.

Example:
  vtscope utf8 -s 0x20 -e 0x80
  vtscope utf8 -s 0x3000 -e 0x3100 -w 32`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUTF8(opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Start, "start", "s", "0", "first code point to display")
	cmd.Flags().StringVarP(&opts.End, "end", "e", "0x800", "last code point to display (exclusive)")
	cmd.Flags().IntVarP(&opts.Width, "width", "w", 64, "width of the table")
	cmd.Flags().StringVarP(&opts.Spacer, "spacer", "p", "|", "interspace character for the table")

	return cmd
}

func runUTF8(opts *UTF8Options, w io.Writer) error {
	start, err := parseCodePoint(opts.Start)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid start", err)
	}
	end, err := parseCodePoint(opts.End)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid end", err)
	}
	if end <= start {
		return NewExitError(ExitCommandError, "end must be greater than start")
	}
	if opts.Width < 1 {
		return NewExitError(ExitCommandError, "width must be >= 1")
	}

	cps := codePointRange(start, end)
	if len(cps) == 0 {
		return nil
	}

	// Row labels line up with the widest offset in the table.
	pad := len(fmt.Sprintf("%x", end))
	labelSpacer := opts.Spacer
	if labelSpacer == "" {
		labelSpacer = " "
	}

	printUTF8Header(w, opts, pad)

	var wide, zero, unprintable int
	for i := 0; i < len(cps); i += opts.Width {
		row := cps[i:min(i+opts.Width, len(cps))]
		fmt.Fprintf(w, "%*x%s", pad, i+int(cps[0]), labelSpacer)
		for j, cp := range row {
			if j > 0 {
				fmt.Fprint(w, opts.Spacer)
			}
			switch terminalWidth(cp) {
			case -1:
				unprintable++
				fmt.Fprint(w, "x")
			case 0:
				zero++
				fmt.Fprint(w, "X")
			case 2:
				wide++
				fmt.Fprint(w, string(cp))
			default:
				fmt.Fprint(w, string(cp))
			}
		}
		fmt.Fprintln(w, opts.Spacer)
	}

	fmt.Fprintf(w, "%d code points: %d printable, %d wide, %d zero-width, %d unprintable\n",
		len(cps), len(cps)-zero-unprintable, wide, zero, unprintable)
	return nil
}

// printUTF8Header emits the "+3 +7 +b ..." column ruler.
func printUTF8Header(w io.Writer, opts *UTF8Options, pad int) {
	labelSpacer := opts.Spacer
	if labelSpacer == "" {
		labelSpacer = " "
	}
	fmt.Fprintf(w, "%*s%s", pad, "", labelSpacer)

	colWidth := 4
	if opts.Spacer != "" {
		colWidth += 4*len(opts.Spacer) - 1
	}
	for i := 4; i <= opts.Width; i += 4 {
		fmt.Fprintf(w, "%*s%s", colWidth, fmt.Sprintf("+%x", i-1), opts.Spacer)
	}
	fmt.Fprintln(w)
}

// parseCodePoint accepts decimal, hex (0x...), and octal (0...) forms.
func parseCodePoint(s string) (rune, error) {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > unicode.MaxRune {
		return 0, fmt.Errorf("code point %s out of range", s)
	}
	return rune(n), nil
}

// codePointRange lists [start,end) with the surrogate block removed.
func codePointRange(start, end rune) []rune {
	cps := make([]rune, 0, end-start)
	for r := start; r < end; r++ {
		if r >= 0xd800 && r < 0xe000 {
			continue
		}
		cps = append(cps, r)
	}
	return cps
}

// terminalWidth approximates wcwidth(3): -1 for unprintable code points,
// 0 for combining marks, 2 for East Asian wide/fullwidth, 1 otherwise.
func terminalWidth(r rune) int {
	if !unicode.IsPrint(r) {
		return -1
	}
	if unicode.In(r, unicode.Mn, unicode.Me) {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}
