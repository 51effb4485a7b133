package notify_test

import (
	"bytes"
	"testing"

	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeferredNewlineWriter_SingleWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewDeferredNewlineWriter(&buf)

	_, err := writer.Write([]byte("hello\n"))
	require.NoError(t, err)

	// Trailing newline is held back
	assert.Equal(t, "hello", buf.String())
}

func TestDeferredNewlineWriter_MultipleWrites(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewDeferredNewlineWriter(&buf)

	for _, line := range []string{"line1\n", "line2\n", "line3\n"} {
		_, err := writer.Write([]byte(line))
		require.NoError(t, err)
	}

	// Held newlines flush before the next write; only the final one stays held
	assert.Equal(t, "line1\nline2\nline3", buf.String())
}

func TestDeferredNewlineWriter_NoTrailingNewline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewDeferredNewlineWriter(&buf)

	_, err := writer.Write([]byte("no newline"))
	require.NoError(t, err)

	assert.Equal(t, "no newline", buf.String())
}

func TestDeferredNewlineWriter_Flush(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewDeferredNewlineWriter(&buf)

	_, err := writer.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, "hello", buf.String())

	err = writer.Flush()
	require.NoError(t, err)
	assert.Equal(t, "hello\n", buf.String())

	// A second flush has nothing left to emit
	err = writer.Flush()
	require.NoError(t, err)
	assert.Equal(t, "hello\n", buf.String())
}

func TestDeferredNewlineWriter_OnlyNewline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewDeferredNewlineWriter(&buf)

	n, err := writer.Write([]byte("\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, buf.String())

	_, err = writer.Write([]byte("after\n"))
	require.NoError(t, err)
	assert.Equal(t, "\nafter", buf.String())
}

func TestDeferredNewlineWriter_InternalNewlinesPreserved(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewDeferredNewlineWriter(&buf)

	_, err := writer.Write([]byte("line\n\n"))
	require.NoError(t, err)

	// Only the final newline of a write is held
	assert.Equal(t, "line\n", buf.String())
}

func TestDeferredNewlineWriter_EmptyWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewDeferredNewlineWriter(&buf)

	n, err := writer.Write([]byte{})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, buf.String())
}

func TestDeferredNewlineWriter_ByteCountIncludesHeldNewline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	writer := notify.NewDeferredNewlineWriter(&buf)

	n, err := writer.Write([]byte("hello\n"))
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}
