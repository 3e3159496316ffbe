package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode OutputMode, tty bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, tty, mode), out, errOut
}

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want OutputMode
	}{
		{"text", ModeText},
		{"json", ModeJSON},
		{"markdown", ModeMarkdown},
		{"md", ModeMarkdown},
		{"auto", ModeAuto},
		{"", ModeAuto},
		{"yaml", ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Mode(tt.in))
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name string
		mode OutputMode
		tty  bool
		want OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto when piped", ModeAuto, false, ModeMarkdown},
		{"explicit json", ModeJSON, true, ModeJSON},
		{"explicit text when piped", ModeText, false, ModeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.tty)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRendererDetectsNonTerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestPlainOutputHasNoANSI(t *testing.T) {
	r, out, errOut := newTest(ModeText, false)
	r.Header(1, "Title")
	r.Success("done")
	r.StatusLine("a.sql", "error", "invalid table x")
	r.StatusLine("b.sql", "success", "")
	r.Error("boom")
	r.Warning("careful")

	assert.NotContains(t, out.String(), "\x1b[")
	assert.Equal(t, "Title\n✓ done\n✗ a.sql invalid table x\n✓ b.sql\n", out.String())
	assert.Equal(t, "✗ boom\n! careful\n", errOut.String())
}

func TestMarkdownHeader(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "Tables")
	assert.Equal(t, "## Tables\n", out.String())
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "# x", FormatHeader(0, "x"))
	assert.Equal(t, "### x", FormatHeader(3, "x"))
	assert.Equal(t, "- **Kind**: SELECT", FormatKeyValue("Kind", "SELECT"))
	assert.Equal(t, "```sql\nSELECT 1\n```", FormatCodeBlock("sql", "SELECT 1\n"))
}

func TestJSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]int{"n": 1}))
	assert.Equal(t, "{\n  \"n\": 1\n}\n", out.String())
}

func TestTable(t *testing.T) {
	rows := [][]string{{"users", "3"}, {"orders", "5"}}

	r, out, _ := newTest(ModeText, true)
	r.Table([]string{"table", "columns"}, rows)
	text := out.String()
	assert.Contains(t, text, "users")
	assert.Contains(t, text, "┌")
	assert.True(t, strings.HasSuffix(text, "(2 rows)\n"))

	r, out, _ = newTest(ModeMarkdown, false)
	r.Table([]string{"table", "columns"}, rows)
	md := out.String()
	assert.Contains(t, md, "| orders | 5 |")
	assert.NotContains(t, md, "┌")

	r, out, _ = newTest(ModeText, true)
	r.Table([]string{"table"}, nil)
	assert.Equal(t, "(0 rows)\n", out.String())
}
