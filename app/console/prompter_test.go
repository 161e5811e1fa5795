package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompter(t *testing.T) {
	t.Run("ask falls back to default", func(t *testing.T) {
		var out bytes.Buffer
		p := NewLinePrompter(strings.NewReader("\n  typed  \n"), &out)

		got, err := p.Ask("Name:", "Ada")
		require.NoError(t, err)
		assert.Equal(t, "Ada", got)
		assert.Contains(t, out.String(), "Name: (Ada)")

		got, err = p.Ask("Name:", "Ada")
		require.NoError(t, err)
		assert.Equal(t, "typed", got)
	})

	t.Run("confirm", func(t *testing.T) {
		p := NewLinePrompter(strings.NewReader("maybe\nYES\n\n"), io.Discard)

		ok, err := p.Confirm("Sure?")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = p.Confirm("Sure?")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("multiline stops at blank line", func(t *testing.T) {
		p := NewLinePrompter(strings.NewReader("# Title\nbody text  \n\nrest\n"), io.Discard)

		got, err := p.Multiline("Body:")
		require.NoError(t, err)
		assert.Equal(t, "# Title\nbody text", got)
	})

	t.Run("multiline stops at end of input", func(t *testing.T) {
		p := NewLinePrompter(strings.NewReader("only line"), io.Discard)

		got, err := p.Multiline("Body:")
		require.NoError(t, err)
		assert.Equal(t, "only line", got)
	})

	t.Run("select reports end of input", func(t *testing.T) {
		p := NewLinePrompter(strings.NewReader(""), io.Discard)

		_, err := p.Select("Pick", []string{"a", "b"})
		assert.ErrorIs(t, err, io.EOF)
	})

	t.Run("pause tolerates end of input", func(t *testing.T) {
		p := NewLinePrompter(strings.NewReader(""), io.Discard)
		assert.NoError(t, p.Pause())
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer title here", 10, "a much ..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n), tt.in)
	}
}

func TestPlainTheme(t *testing.T) {
	var out bytes.Buffer
	theme := NewTheme(&out)

	rendered := theme.Table([]string{"ID", "Name"}, [][]string{{"1", "Ada"}})
	assert.Contains(t, rendered, "Name")
	assert.Contains(t, rendered, "Ada")
	assert.NotContains(t, rendered, "\x1b[")
}
