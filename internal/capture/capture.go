// Package capture loads canned terminal sessions and indexes their
// optional header block.
//
// A capture is the raw byte stream recorded from a terminal session,
// optionally prefixed with a header that names interesting stop offsets.
// Everything after the header (or the whole file, when there is none) is
// the payload that gets replayed byte-exact to connected terminals.
package capture

import (
	"fmt"
	"os"
)

// Capture is a loaded session: the replayable payload plus the bookmarks
// extracted from its header, in encounter order.
type Capture struct {
	// Payload is the byte stream to replay. Immutable after load.
	Payload []byte

	// Bookmarks holds the header's stop offsets in encounter order.
	// Operators address them by 1-based index. Offsets are relative to
	// Payload, not to the raw file.
	Bookmarks []Bookmark
}

// Bookmark is one named stop parsed from a capture header.
type Bookmark struct {
	// Offset is the byte index into the payload.
	Offset int

	// Lines is the line count at the recorded stop.
	Lines int

	// Row and Col are the recorded cursor position.
	Row int
	Col int
}

// Load reads a capture file and parses its header.
//
// The returned diagnostic is non-empty when the header was malformed and
// the whole file was treated as payload; callers should show it to the
// operator but proceed.
func Load(path string) (*Capture, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read capture: %w", err)
	}
	c, diag := Parse(raw)
	return c, diag, nil
}
