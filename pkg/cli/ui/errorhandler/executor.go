// Package errorhandler turns Cobra execution failures into errors that read
// well on a terminal while preserving the original error chain.
package errorhandler

import (
	"bytes"
	"strings"

	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/spf13/cobra"
)

// Executor runs a Cobra command while intercepting its error stream so the
// caller can print one normalized failure message instead of Cobra's raw
// stderr output.
type Executor struct {
	normalizer DefaultNormalizer
}

// NewExecutor constructs an Executor.
func NewExecutor() *Executor {
	return &Executor{normalizer: DefaultNormalizer{}}
}

// Execute runs cmd with stderr captured. It returns nil on success, or a
// *CommandError carrying both the normalized stderr text and the original
// error so errors.Is and errors.As keep working.
func (e *Executor) Execute(cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	var errBuf bytes.Buffer

	originalErrWriter := cmd.ErrOrStderr()

	// Hold back the trailing newline so the captured message ends clean.
	cmd.SetErr(notify.NewDeferredNewlineWriter(&errBuf))
	defer cmd.SetErr(originalErrWriter)

	err := cmd.Execute()
	if err == nil {
		return nil
	}

	message := e.normalizer.Normalize(errBuf.String())

	return &CommandError{
		message: message,
		cause:   err,
	}
}

// CommandError is a Cobra execution failure augmented with the normalized
// stderr output captured during the run.
type CommandError struct {
	message string
	cause   error
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.cause == nil:
		return e.message
	case e.message != "":
		if strings.Contains(e.message, e.cause.Error()) {
			return e.message
		}

		return e.message + ": " + e.cause.Error()
	default:
		return e.cause.Error()
	}
}

// Unwrap exposes the underlying cause for errors.Is/errors.As consumers.
func (e *CommandError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

// DefaultNormalizer cleans up captured stderr text for display.
type DefaultNormalizer struct{}

// Normalize trims whitespace and removes a leading "Error:" prefix from the
// first line while keeping multi-line usage hints intact.
func (DefaultNormalizer) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) == 0 {
		return ""
	}

	first := strings.TrimSpace(lines[0])
	first = strings.TrimPrefix(first, "Error: ")
	lines[0] = first

	return strings.Join(lines, "\n")
}
