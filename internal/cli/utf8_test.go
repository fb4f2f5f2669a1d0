package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF8_ASCIITable(t *testing.T) {
	out, err := executeCommand(t, "utf8", "-s", "0x20", "-e", "0x40", "-w", "16")
	require.NoError(t, err)

	want := strings.Join([]string{
		"  |     +3|     +7|     +b|     +f|",
		`20| |!|"|#|$|%|&|'|(|)|*|+|,|-|.|/|`,
		"30|0|1|2|3|4|5|6|7|8|9|:|;|<|=|>|?|",
		"32 code points: 32 printable, 0 wide, 0 zero-width, 0 unprintable",
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestUTF8_ControlCharactersRenderAsX(t *testing.T) {
	out, err := executeCommand(t, "utf8", "-s", "0", "-e", "0x10", "-w", "16")
	require.NoError(t, err)

	assert.Contains(t, out, "x|x|x|x|x|x|x|x|x|x|x|x|x|x|x|x|")
	assert.Contains(t, out, "16 unprintable")
}

func TestUTF8_SurrogatesSkipped(t *testing.T) {
	out, err := executeCommand(t, "utf8", "-s", "0xd7ff", "-e", "0xe001", "-w", "8")
	require.NoError(t, err)

	// 0xd800-0xdfff drop out: one before the block, one after.
	assert.Contains(t, out, "2 code points")
}

func TestUTF8_ArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"end before start", []string{"utf8", "-s", "0x100", "-e", "0x20"}},
		{"unparseable start", []string{"utf8", "-s", "zero"}},
		{"zero width", []string{"utf8", "-w", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestTerminalWidth(t *testing.T) {
	tests := []struct {
		name string
		r    rune
		want int
	}{
		{"ascii letter", 'A', 1},
		{"space", ' ', 1},
		{"cjk ideograph", '漢', 2},
		{"fullwidth latin", 'Ａ', 2},
		{"combining acute", '\u0301', 0},
		{"bell", '\x07', -1},
		{"delete", '\x7f', -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, terminalWidth(tt.r))
		})
	}
}
