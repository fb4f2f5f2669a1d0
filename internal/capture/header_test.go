package capture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NoHeader(t *testing.T) {
	raw := []byte("plain session data \x1b[31mred\x1b[0m")

	c, diag := Parse(raw)

	assert.Empty(t, diag)
	assert.Equal(t, raw, c.Payload)
	assert.Empty(t, c.Bookmarks)
}

func TestParse_SingleBookmark(t *testing.T) {
	raw := []byte("@@ HEADER_START\n@@ OFFSET:5 LINES:1 CURSOR:0,5\n@@ HEADER_END\nhello")

	c, diag := Parse(raw)

	assert.Empty(t, diag)
	assert.Equal(t, []byte("hello"), c.Payload)
	require.Len(t, c.Bookmarks, 1)
	assert.Equal(t, Bookmark{Offset: 5, Lines: 1, Row: 0, Col: 5}, c.Bookmarks[0])
}

func TestParse_BookmarksKeepEncounterOrder(t *testing.T) {
	raw := []byte("@@ HEADER_START\n" +
		"@@ OFFSET:40 LINES:3 CURSOR:2,10\n" +
		"@@ OFFSET:7 LINES:1 CURSOR:0,7\n" +
		"@@ OFFSET:99 LINES:9 CURSOR:8,0\n" +
		"@@ HEADER_END\npayload")

	c, _ := Parse(raw)

	require.Len(t, c.Bookmarks, 3)
	assert.Equal(t, 40, c.Bookmarks[0].Offset)
	assert.Equal(t, 7, c.Bookmarks[1].Offset)
	assert.Equal(t, 99, c.Bookmarks[2].Offset)
}

func TestParse_MissingEndMarkerFallsBack(t *testing.T) {
	raw := []byte("@@ HEADER_START\n@@ OFFSET:5 LINES:1 CURSOR:0,5\npayload without end")

	c, diag := Parse(raw)

	assert.NotEmpty(t, diag, "missing end marker must surface a diagnostic")
	assert.Equal(t, raw, c.Payload, "fallback treats the whole input as payload")
	assert.Empty(t, c.Bookmarks)
}

func TestParse_UnrecognizedHeaderLinesIgnored(t *testing.T) {
	raw := []byte("@@ HEADER_START\n" +
		"@@ recorded 2024-03-01 on xterm-256color\n" +
		"@@ OFFSET:12 LINES:2 CURSOR:1,4\n" +
		"@@ HEADER_END\ndata")

	c, diag := Parse(raw)

	assert.Empty(t, diag)
	require.Len(t, c.Bookmarks, 1)
	assert.Equal(t, 12, c.Bookmarks[0].Offset)
}

func TestParse_EmptyPayloadAfterHeader(t *testing.T) {
	raw := []byte("@@ HEADER_START\n@@ HEADER_END\n")

	c, diag := Parse(raw)

	assert.Empty(t, diag)
	assert.Empty(t, c.Payload)
	assert.Empty(t, c.Bookmarks)
}

func TestParse_EndMarkerWithoutTrailingNewline(t *testing.T) {
	raw := []byte("@@ HEADER_START\n@@ HEADER_END")

	c, _ := Parse(raw)

	assert.Empty(t, c.Payload)
}

func TestParse_BinaryPayloadPreserved(t *testing.T) {
	payload := []byte{0x1b, '[', '3', '1', 'm', 0x00, 0xff, '\n', 0x07}
	raw := append([]byte("@@ HEADER_START\n@@ HEADER_END\n"), payload...)

	c, _ := Parse(raw)

	assert.Equal(t, payload, c.Payload)
}

func TestLoad_ReadsFileAndParsesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	raw := []byte("@@ HEADER_START\n@@ OFFSET:3 LINES:1 CURSOR:0,3\n@@ HEADER_END\nabc")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	c, diag, err := Load(path)

	require.NoError(t, err)
	assert.Empty(t, diag)
	assert.Equal(t, []byte("abc"), c.Payload)
	require.Len(t, c.Bookmarks, 1)
	assert.Equal(t, 3, c.Bookmarks[0].Offset)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}
