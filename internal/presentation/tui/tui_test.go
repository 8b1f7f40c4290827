package tui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyler_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewStyler(&buf)
	assert.Equal(t, "ok", s.OK("ok"))
	assert.Equal(t, "bad", s.Error("bad"))
	assert.Equal(t, "dim", s.Faint("dim"))
	assert.False(t, IsTerminal(&buf))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "version 1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[", "no escapes outside a terminal")
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("# Title")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}
