package scope

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/vtscope/internal/vt"
)

// MaxPreview bounds the plain-text preview shown to the operator. Longer
// runs are cut here and marked with an ellipsis.
const MaxPreview = 15

// ChunkKind distinguishes the two chunk flavors, plus the terminal state.
type ChunkKind int

const (
	// ChunkNone means the cursor has consumed the whole payload.
	ChunkNone ChunkKind = iota

	// ChunkText is a maximal run of bytes with no escape introducer.
	ChunkText

	// ChunkEscape is a single escape/control sequence.
	ChunkEscape
)

// Chunk is one resolved [Start,End) window over the payload. Chunks are
// transient: each advance recomputes the next one, nothing is persisted.
type Chunk struct {
	Kind  ChunkKind
	Start int
	End   int

	// Category tags escape chunks; unset for plain text.
	Category vt.Category

	// Miss is set when no recognizer matched and the fixed lookahead
	// window was used instead.
	Miss bool
}

// Cursor is the position-addressable window over a payload. The bytes in
// [Start,End) are the chunk next up to be sent to the clients.
//
// Invariant: 0 <= Start <= End <= len(payload). End strictly increases on
// every Advance except at the terminal state, so stepping always makes
// progress.
type Cursor struct {
	Start int
	End   int
}

// Advance moves the cursor to the next chunk: Start jumps to the previous
// End, then End is resolved by the classifier (escape runs) or by scanning
// for the next introducer (text runs). At the end of the payload it
// returns a ChunkNone and leaves the cursor in place.
func (c *Cursor) Advance(payload []byte) Chunk {
	c.Start = c.End

	if c.Start >= len(payload) {
		return Chunk{Kind: ChunkNone, Start: c.Start, End: c.End}
	}

	if payload[c.Start] == vt.ESC {
		cat, end, ok := vt.Classify(payload, c.Start+1)
		c.End = end
		return Chunk{Kind: ChunkEscape, Start: c.Start, End: end, Category: cat, Miss: !ok}
	}

	if next := bytes.IndexByte(payload[c.Start:], vt.ESC); next >= 0 {
		c.End = c.Start + next
	} else {
		c.End = len(payload)
	}
	return Chunk{Kind: ChunkText, Start: c.Start, End: c.End}
}

// Preview renders the chunk the way the operator sees it, without the
// leading "Next up" prefix.
//
// Plain text:   19 chars: "# 20120103.1540..."
// Escape:       CSI [ 3 1 m
func (ch Chunk) Preview(payload []byte) string {
	switch ch.Kind {
	case ChunkText:
		text := string(payload[ch.Start:ch.End])
		n := len(text)
		if n > MaxPreview {
			text = text[:MaxPreview] + "..."
		}
		return fmt.Sprintf("%d chars: %s", n, strconv.Quote(text))

	case ChunkEscape:
		// The introducer itself is implied by the category tag; show the
		// sequence body byte by byte, spaced out for readability.
		body := payload[ch.Start+1 : ch.End]
		if len(body) == 0 {
			return string(ch.Category)
		}
		var b strings.Builder
		for i, c := range body {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte(c)
		}
		quoted := strconv.Quote(b.String())
		return fmt.Sprintf("%s %s", ch.Category, quoted[1:len(quoted)-1])

	default:
		return ""
	}
}
