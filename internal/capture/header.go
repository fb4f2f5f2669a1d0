package capture

import (
	"bytes"
	"regexp"
	"strconv"
)

// Header block markers. The start marker must open the raw file for a
// header to be recognized at all; the end marker closes the block and
// everything after its line is payload.
const (
	headerStart = "@@ HEADER_START"
	headerEnd   = "@@ HEADER_END"
)

// bookmarkLine matches one stop entry inside the header block:
//
//	@@ OFFSET:5 LINES:1 CURSOR:0,5
var bookmarkLine = regexp.MustCompile(`^@@ OFFSET:(\d+) LINES:(\d+) CURSOR:(\d+),(\d+)$`)

// Parse splits raw capture bytes into payload and bookmarks.
//
// Inputs that do not begin with the header start marker are returned
// whole, with no bookmarks. A start marker without a matching end marker
// is a data format problem, but loading never fails over it: the whole
// input is treated as payload and a diagnostic is returned for the
// operator. Header lines that do not match the bookmark pattern are
// ignored.
func Parse(raw []byte) (*Capture, string) {
	if !bytes.HasPrefix(raw, []byte(headerStart)) {
		return &Capture{Payload: raw}, ""
	}

	idx := bytes.Index(raw, []byte(headerEnd))
	if idx < 0 {
		return &Capture{Payload: raw},
			"Capture header has no end marker; treating entire file as payload."
	}

	// Payload starts after the end marker's line, newline included.
	payloadStart := idx + len(headerEnd)
	if nl := bytes.IndexByte(raw[payloadStart:], '\n'); nl >= 0 {
		payloadStart += nl + 1
	} else {
		payloadStart = len(raw)
	}

	var bookmarks []Bookmark
	for _, line := range bytes.Split(raw[:idx], []byte{'\n'}) {
		m := bookmarkLine.FindSubmatch(line)
		if m == nil {
			continue
		}
		bookmarks = append(bookmarks, Bookmark{
			Offset: mustInt(m[1]),
			Lines:  mustInt(m[2]),
			Row:    mustInt(m[3]),
			Col:    mustInt(m[4]),
		})
	}

	return &Capture{Payload: raw[payloadStart:], Bookmarks: bookmarks}, ""
}

// mustInt converts a regexp digit group. The pattern guarantees digits,
// so a conversion failure cannot happen for values that fit in an int.
func mustInt(b []byte) int {
	n, _ := strconv.Atoi(string(b))
	return n
}
