package notify

import (
	"fmt"
	"io"
	"sync"
)

// DeferredNewlineWriter wraps an io.Writer and holds back trailing newlines.
// Each Write first emits any newline held from the previous call, then
// withholds its own trailing newline, so a capture never ends with a blank
// line. Call Flush to emit a held newline when the trailing newline should
// be kept after all.
//
// Usage:
//
//	var buf bytes.Buffer
//	w := notify.NewDeferredNewlineWriter(&buf)
//	// ... route output through w ...
//	message := buf.String() // content without the trailing newline
type DeferredNewlineWriter struct {
	underlying     io.Writer
	pendingNewline bool
	mu             sync.Mutex
}

// NewDeferredNewlineWriter creates a DeferredNewlineWriter wrapping the given writer.
func NewDeferredNewlineWriter(underlying io.Writer) *DeferredNewlineWriter {
	return &DeferredNewlineWriter{underlying: underlying}
}

// Write implements io.Writer. The reported length includes a held trailing
// newline, so callers relying on full-write semantics see no short write.
func (w *DeferredNewlineWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(data) == 0 {
		return 0, nil
	}

	if w.pendingNewline {
		_, err := w.underlying.Write([]byte{'\n'})
		if err != nil {
			return 0, fmt.Errorf("failed to write pending newline: %w", err)
		}

		w.pendingNewline = false
	}

	endsWithNewline := data[len(data)-1] == '\n'

	content := data
	if endsWithNewline {
		content = data[:len(data)-1]
	}

	written := 0

	if len(content) > 0 {
		var err error

		written, err = w.underlying.Write(content)
		if err != nil {
			return written, fmt.Errorf("failed to write content: %w", err)
		}
	}

	if endsWithNewline {
		w.pendingNewline = true

		return len(data), nil
	}

	return written, nil
}

// Flush writes a held trailing newline to the underlying writer.
func (w *DeferredNewlineWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.pendingNewline {
		return nil
	}

	if _, err := w.underlying.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("failed to flush pending newline: %w", err)
	}

	w.pendingNewline = false

	return nil
}
