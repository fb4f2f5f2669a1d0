package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_RecordAndList(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.RecordOpen("/captures/vttest-01.log", 16723, 3))
	require.NoError(t, c.RecordOpen("/captures/vttest-02.log", 512, 0))

	entries, err := c.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recently opened first.
	assert.Equal(t, "/captures/vttest-02.log", entries[0].Path)
	assert.Equal(t, int64(512), entries[0].Bytes)
	assert.Equal(t, "/captures/vttest-01.log", entries[1].Path)
	assert.Equal(t, 3, entries[1].Bookmarks)
	assert.NotEmpty(t, entries[1].ID)
}

func TestCatalog_ReopenUpdatesInPlace(t *testing.T) {
	c := openTestCatalog(t)

	require.NoError(t, c.RecordOpen("/captures/a.log", 100, 1))
	first, err := c.Recent(1)
	require.NoError(t, err)

	require.NoError(t, c.RecordOpen("/captures/a.log", 200, 2))

	entries, err := c.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1, "re-opening the same path must not add a row")
	assert.Equal(t, first[0].ID, entries[0].ID, "row identity survives re-open")
	assert.Equal(t, int64(200), entries[0].Bytes)
	assert.Equal(t, 2, entries[0].Bookmarks)
}

func TestCatalog_LastOffset(t *testing.T) {
	c := openTestCatalog(t)
	require.NoError(t, c.RecordOpen("/captures/a.log", 100, 0))

	require.NoError(t, c.SetLastOffset("/captures/a.log", 73))

	entries, err := c.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(73), entries[0].LastOffset)
}

func TestCatalog_RecentRespectsLimit(t *testing.T) {
	c := openTestCatalog(t)
	for _, p := range []string{"/a", "/b", "/c"} {
		require.NoError(t, c.RecordOpen(p, 1, 0))
	}

	entries, err := c.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestCatalog_OpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	c1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, c1.RecordOpen("/a", 1, 0))
	require.NoError(t, c1.Close())

	c2, err := Open(path)
	require.NoError(t, err)
	defer c2.Close()

	entries, err := c2.Recent(10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
