// Package scope implements the replay engine: a position-addressable
// cursor over a captured terminal session, stepped on operator command,
// with every consumed byte range relayed to the attached clients.
//
// All state lives on one Session owned by the single shell thread; no
// operation runs concurrently with another, so there is no locking.
package scope

import (
	"fmt"
	"io"
	"time"

	"github.com/roach88/vtscope/internal/capture"
)

// State is the session lifecycle position.
type State int

const (
	// StateEmpty means no capture has been opened yet.
	StateEmpty State = iota

	// StateLoaded means the cursor still has payload ahead of it.
	StateLoaded

	// StateAtEnd means the cursor has consumed the whole payload.
	StateAtEnd
)

// Sender relays one byte range to every connected client. Implemented by
// broadcast.Broadcaster; a nil Sender drops the data, which is the state
// before any client has attached.
type Sender interface {
	Send(data []byte)
}

// Session orchestrates replay over one loaded capture.
//
// The chunk in [cursor.Start,cursor.End) is always the one most recently
// shown to the operator and not yet broadcast; Step sends it and then
// resolves the next one.
type Session struct {
	payload   []byte
	bookmarks []capture.Bookmark
	cursor    Cursor

	// delayMS > 0 paces broadcasts one byte at a time to simulate live
	// typing. Affects wall-clock timing only, never content or order.
	delayMS int

	sender Sender
	out    io.Writer

	// sleep is swappable so pacing tests don't wait in real time.
	sleep func(time.Duration)
}

// New creates an empty Session writing operator output to out.
func New(sender Sender, out io.Writer) *Session {
	return &Session{
		sender: sender,
		out:    out,
		sleep:  time.Sleep,
	}
}

// Open replaces the session contents with a freshly loaded capture and
// resets the cursor to the start.
func (s *Session) Open(c *capture.Capture) {
	s.payload = c.Payload
	s.bookmarks = c.Bookmarks
	s.Reset()
}

// Reset rewinds the cursor to (0,0) and shows the first chunk. This is
// the only way the cursor ever moves backward.
func (s *Session) Reset() {
	s.cursor = Cursor{}
	s.showNext()
}

// State reports the session lifecycle position.
func (s *Session) State() State {
	switch {
	case s.payload == nil:
		return StateEmpty
	case s.cursor.Start >= len(s.payload):
		return StateAtEnd
	default:
		return StateLoaded
	}
}

// Bookmarks returns the loaded capture's stops in encounter order.
func (s *Session) Bookmarks() []capture.Bookmark {
	return s.bookmarks
}

// Position returns the current cursor window.
func (s *Session) Position() (start, end int) {
	return s.cursor.Start, s.cursor.End
}

// Delay returns the pacing delay in milliseconds (0 = bulk send).
func (s *Session) Delay() int {
	return s.delayMS
}

// SetDelay sets the pacing delay in milliseconds.
func (s *Session) SetDelay(ms int) error {
	if ms < 0 {
		return NewUserError("Delay must be >= 0.")
	}
	s.delayMS = ms
	return nil
}

// Step broadcasts the current chunk and advances to the next one, n times.
// At the end of the data it reports and stops.
func (s *Session) Step(n int) {
	for i := 0; i < n; i++ {
		if s.cursor.Start >= len(s.payload) {
			fmt.Fprintln(s.out, "Already at end of data.")
			return
		}

		s.broadcast()
		s.showNext()

		if s.cursor.Start >= len(s.payload) {
			return
		}
	}
}

// ByteStep forces the cursor window to n raw bytes and steps once,
// letting the operator move by byte count instead of chunk boundaries.
// The window is clipped at the end of the payload.
func (s *Session) ByteStep(n int) error {
	if n < 1 {
		return NewUserError("Byte count must be >= 1.")
	}

	end := s.cursor.Start + n
	if end > len(s.payload) {
		end = len(s.payload)
	}
	s.cursor.End = end

	s.Step(1)
	return nil
}

// Seek replays forward until the cursor window has moved past target.
// Every intervening chunk is broadcast in strict offset order, so clients
// never miss bytes. Seeking to or before the current chunk start rewinds
// to zero first and replays from there.
func (s *Session) Seek(target int) error {
	if target > len(s.payload) {
		return NewUserError("Seek past end.")
	}

	if target <= s.cursor.Start {
		s.Reset()
	}

	for s.cursor.End <= target {
		if s.cursor.Start >= len(s.payload) {
			break
		}
		s.broadcast()
		s.showNext()
	}
	return nil
}

// SeekBookmark seeks to the 1-based stop index from the capture header.
func (s *Session) SeekBookmark(index int) error {
	if index < 1 || index > len(s.bookmarks) {
		return NewUserError(fmt.Sprintf("No such stop: %d", index))
	}
	return s.Seek(s.bookmarks[index-1].Offset)
}

// broadcast relays the current cursor window to the clients, pacing
// byte-by-byte when a delay is set.
func (s *Session) broadcast() {
	if s.sender == nil {
		return
	}

	data := s.payload[s.cursor.Start:s.cursor.End]
	if len(data) == 0 {
		return
	}

	if s.delayMS <= 0 {
		s.sender.Send(data)
		return
	}

	pause := time.Duration(s.delayMS) * time.Millisecond
	for i := range data {
		s.sender.Send(data[i : i+1])
		if i < len(data)-1 {
			s.sleep(pause)
		}
	}
}

// showNext advances the cursor and prints the resolved chunk.
func (s *Session) showNext() {
	ch := s.cursor.Advance(s.payload)

	if ch.Kind == ChunkNone {
		fmt.Fprintln(s.out, "End of data.")
		return
	}
	if ch.Miss {
		fmt.Fprintln(s.out, "Unable to find end of escape sequence.")
	}
	fmt.Fprintf(s.out, "Next up: offset %d, %s\n", ch.Start, ch.Preview(s.payload))
}
