// Package shell is the interactive command loop: one operator, one
// replay session, a fixed set of verbs.
//
// The loop is single-threaded and cooperative. Commands that block
// (accept) block the whole loop; that is intentional, since the operator
// is expected to be wiring up terminal clients out-of-band while the
// shell waits.
package shell

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ergochat/readline"

	"github.com/roach88/vtscope/internal/broadcast"
	"github.com/roach88/vtscope/internal/capture"
	"github.com/roach88/vtscope/internal/catalog"
	"github.com/roach88/vtscope/internal/scope"
)

const prompt = "vtscope> "

// Options configures a Shell.
type Options struct {
	// Listen is the address the accept command binds.
	Listen string

	// HistoryFile persists readline history; empty disables it.
	HistoryFile string

	// Catalog records opened captures; nil disables recording.
	Catalog *catalog.Catalog

	// DelayMS is the initial pacing delay.
	DelayMS int

	// Out receives all operator output.
	Out io.Writer
}

// Shell drives a replay session from operator commands.
type Shell struct {
	session *scope.Session
	caster  *broadcast.Broadcaster
	catalog *catalog.Catalog
	out     io.Writer

	historyFile string
	currentPath string
	lastLine    string
	running     bool

	// commands maps each verb to its handler. The verb set is closed:
	// anything else is an error, case-sensitively.
	commands map[string]func(args []string) error
}

// New creates a Shell with its own session and broadcaster.
func New(opts Options) *Shell {
	caster := broadcast.New(opts.Listen, opts.Out)
	session := scope.New(caster, opts.Out)
	if opts.DelayMS > 0 {
		// Negative values are rejected at config load; > 0 here just
		// skips a no-op call.
		_ = session.SetDelay(opts.DelayMS)
	}

	s := &Shell{
		session:     session,
		caster:      caster,
		catalog:     opts.Catalog,
		out:         opts.Out,
		historyFile: opts.HistoryFile,
	}
	s.commands = map[string]func(args []string) error{
		"open":   s.cmdOpen,
		"reset":  s.cmdReset,
		"step":   s.cmdStep,
		"bstep":  s.cmdBstep,
		"seek":   s.cmdSeek,
		"stops":  s.cmdStops,
		"accept": s.cmdAccept,
		"delay":  s.cmdDelay,
		"exit":   s.cmdExit,
	}
	return s
}

// Run reads command lines until exit or EOF. Ctrl-D on a blank line
// behaves like exit, echoing it the way the operator would have typed it.
func (s *Shell) Run() error {
	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:      prompt,
		HistoryFile: s.historyFile,
	})
	if err != nil {
		return fmt.Errorf("init line editor: %w", err)
	}
	defer rl.Close()

	s.running = true
	for s.running {
		line, err := rl.ReadLine()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(s.out, "exit")
			return nil
		case err != nil:
			return fmt.Errorf("read command: %w", err)
		}
		s.Execute(line)
	}
	return nil
}

// Execute dispatches one command line. A blank line repeats the previous
// command line verbatim; an unknown verb is reported and changes nothing.
func (s *Shell) Execute(line string) {
	if strings.TrimSpace(line) == "" {
		line = s.lastLine
	}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	s.lastLine = line

	handler, ok := s.commands[fields[0]]
	if !ok {
		fmt.Fprintf(s.out, "Unknown command: %q\n", fields[0])
		return
	}

	if err := handler(fields[1:]); err != nil {
		fmt.Fprintln(s.out, err)
	}
	s.rememberOffset()
}

// OpenPath loads a capture file into the session, recording it in the
// catalog. Used by the open command and by a path given on the command
// line.
func (s *Shell) OpenPath(path string) error {
	c, diag, err := capture.Load(path)
	if err != nil {
		return err
	}
	if diag != "" {
		fmt.Fprintln(s.out, diag)
	}

	fmt.Fprintf(s.out, "Read %d bytes from %s.\n", len(c.Payload), path)
	s.currentPath = path

	if s.catalog != nil {
		if err := s.catalog.RecordOpen(path, int64(len(c.Payload)), len(c.Bookmarks)); err != nil {
			fmt.Fprintf(s.out, "Catalog: %v\n", err)
		}
	}

	s.session.Open(c)
	return nil
}

func (s *Shell) cmdOpen(args []string) error {
	if len(args) != 1 {
		return scope.NewUserError("Usage: open <path>")
	}
	return s.OpenPath(args[0])
}

func (s *Shell) cmdReset(args []string) error {
	s.session.Reset()
	return nil
}

func (s *Shell) cmdStep(args []string) error {
	n, err := optionalCount(args, 1)
	if err != nil {
		return err
	}
	s.session.Step(n)
	return nil
}

func (s *Shell) cmdBstep(args []string) error {
	n, err := optionalCount(args, 1)
	if err != nil {
		return err
	}
	return s.session.ByteStep(n)
}

func (s *Shell) cmdSeek(args []string) error {
	if len(args) != 1 {
		return scope.NewUserError("Usage: seek <offset> | seek %<stop-index>")
	}

	if rest, ok := strings.CutPrefix(args[0], "%"); ok {
		index, err := strconv.Atoi(rest)
		if err != nil {
			return scope.NewUserError(fmt.Sprintf("Invalid stop index: %q", rest))
		}
		return s.session.SeekBookmark(index)
	}

	offset, err := strconv.Atoi(args[0])
	if err != nil {
		return scope.NewUserError(fmt.Sprintf("Invalid offset: %q", args[0]))
	}
	return s.session.Seek(offset)
}

func (s *Shell) cmdStops(args []string) error {
	stops := s.session.Bookmarks()
	if len(stops) == 0 {
		fmt.Fprintln(s.out, "No stops defined.")
		return nil
	}
	for i, b := range stops {
		fmt.Fprintf(s.out, "%%%d: offset %d, %d lines, cursor %d,%d\n",
			i+1, b.Offset, b.Lines, b.Row, b.Col)
	}
	return nil
}

func (s *Shell) cmdAccept(args []string) error {
	if len(args) != 1 {
		return scope.NewUserError("Usage: accept <count> | accept +<count>")
	}

	arg, grow := strings.CutPrefix(args[0], "+")
	count, err := strconv.Atoi(arg)
	if err != nil || count < 1 {
		return scope.NewUserError(fmt.Sprintf("Invalid client count: %q", args[0]))
	}

	return s.caster.AcceptUntil(count, grow)
}

func (s *Shell) cmdDelay(args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintf(s.out, "Delay is %d ms.\n", s.session.Delay())
		return nil
	case 1:
		ms, err := strconv.Atoi(args[0])
		if err != nil {
			return scope.NewUserError(fmt.Sprintf("Invalid delay: %q", args[0]))
		}
		if err := s.session.SetDelay(ms); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Delay set to %d ms.\n", ms)
		return nil
	default:
		return scope.NewUserError("Usage: delay [<ms>]")
	}
}

func (s *Shell) cmdExit(args []string) error {
	s.running = false
	return nil
}

// rememberOffset mirrors the replay position into the catalog so `recent`
// can show how far each capture got. Failures are silent: the catalog is
// an aid, not part of replay.
func (s *Shell) rememberOffset() {
	if s.catalog == nil || s.currentPath == "" {
		return
	}
	start, _ := s.session.Position()
	_ = s.catalog.SetLastOffset(s.currentPath, int64(start))
}

// optionalCount parses the single optional positive count argument used
// by step and bstep.
func optionalCount(args []string, def int) (int, error) {
	switch len(args) {
	case 0:
		return def, nil
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return 0, scope.NewUserError(fmt.Sprintf("Invalid count: %q", args[0]))
		}
		return n, nil
	default:
		return 0, scope.NewUserError("Expected at most one count argument.")
	}
}
