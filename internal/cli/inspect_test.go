package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInspect_TextOutputMatchesGolden(t *testing.T) {
	out, err := executeCommand(t, "inspect", "testdata/basic.log")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "inspect_basic", []byte(out))
}

func TestInspect_JSONOutput(t *testing.T) {
	out, err := executeCommand(t, "inspect", "--format", "json", "testdata/basic.log")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   InspectResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 14, resp.Data.Bytes)
	require.Len(t, resp.Data.Chunks, 3)
	assert.Equal(t, "escape", resp.Data.Chunks[0].Kind)
	assert.Equal(t, "CSI", resp.Data.Chunks[0].Category)
	assert.Equal(t, "text", resp.Data.Chunks[1].Kind)
	assert.Equal(t, 5, resp.Data.Chunks[1].Length)
	require.Len(t, resp.Data.Stops, 1)
	assert.Equal(t, 5, resp.Data.Stops[0].Offset)
}

func TestInspect_MissingFileIsCommandError(t *testing.T) {
	_, err := executeCommand(t, "inspect", "testdata/absent.log")

	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInspect_ChunkRangesTileThePayload(t *testing.T) {
	result, err := InspectCapture("testdata/basic.log")
	require.NoError(t, err)

	offset := 0
	for _, ch := range result.Chunks {
		assert.Equal(t, offset, ch.Offset)
		offset += ch.Length
	}
	assert.Equal(t, result.Bytes, offset)
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	_, err := executeCommand(t, "inspect", "--format", "xml", "testdata/basic.log")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
