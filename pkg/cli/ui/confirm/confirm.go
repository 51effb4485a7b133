// Package confirm provides confirmation prompt utilities for destructive operations.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
)

// ErrRemovalCancelled is returned when the user declines the removal prompt.
var ErrRemovalCancelled = errors.New("removal cancelled")

// RemovalPreview lists the resources an uninstall is about to remove. Empty
// fields are omitted from the rendered preview.
type RemovalPreview struct {
	// Components holds the container names in removal order.
	Components []string
	// Network is the Docker network name.
	Network string
	// Volumes holds the data volumes removed with --volumes or --purge.
	Volumes []string
	// Files holds the generated file paths removed with --purge.
	Files []string
	// SourceDir is the server source checkout removed with --purge.
	SourceDir string
	// Images holds the built image refs removed with --purge.
	Images []string
}

// Test override variables with mutexes for thread safety.
var (
	//nolint:gochecknoglobals // dependency injection for tests
	stdinReaderMu sync.RWMutex
	//nolint:gochecknoglobals // dependency injection for tests
	stdinReaderOverride io.Reader

	//nolint:gochecknoglobals // dependency injection for tests
	ttyCheckerMu sync.RWMutex
	//nolint:gochecknoglobals // dependency injection for tests
	ttyCheckerOverride func() bool
)

// SetStdinReaderForTests overrides the stdin reader for testing.
// Returns a restore function that should be called to reset the override.
func SetStdinReaderForTests(reader io.Reader) func() {
	stdinReaderMu.Lock()

	previous := stdinReaderOverride
	stdinReaderOverride = reader

	stdinReaderMu.Unlock()

	return func() {
		stdinReaderMu.Lock()

		stdinReaderOverride = previous

		stdinReaderMu.Unlock()
	}
}

// SetTTYCheckerForTests overrides the TTY checker for testing.
// Returns a restore function that should be called to reset the override.
func SetTTYCheckerForTests(checker func() bool) func() {
	ttyCheckerMu.Lock()

	previous := ttyCheckerOverride
	ttyCheckerOverride = checker

	ttyCheckerMu.Unlock()

	return func() {
		ttyCheckerMu.Lock()

		ttyCheckerOverride = previous

		ttyCheckerMu.Unlock()
	}
}

// getStdinReader returns the stdin reader to use, respecting test overrides.
func getStdinReader() io.Reader {
	stdinReaderMu.RLock()
	defer stdinReaderMu.RUnlock()

	if stdinReaderOverride != nil {
		return stdinReaderOverride
	}

	return os.Stdin
}

// IsTTY returns true if stdin is connected to a terminal.
// This is used to skip confirmation prompts in non-interactive environments (CI/pipelines).
func IsTTY() bool {
	ttyCheckerMu.RLock()

	override := ttyCheckerOverride

	ttyCheckerMu.RUnlock()

	if override != nil {
		return override()
	}

	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}

	// If stdin is a character device (terminal), ModeCharDevice will be set
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldSkipPrompt returns true if the confirmation prompt should be skipped.
// This happens when:
// - force flag is set, OR
// - stdin is not a TTY (non-interactive environment)
func ShouldSkipPrompt(force bool) bool {
	return force || !IsTTY()
}

// ShowRemovalPreview displays the resources the uninstall will remove and
// ends with the confirmation instruction.
func ShowRemovalPreview(writer io.Writer, preview *RemovalPreview) {
	notify.WriteMessage(notify.Message{
		Type:    notify.WarningType,
		Content: "The following resources will be removed:",
		Writer:  writer,
	})

	var previewText strings.Builder

	appendList(&previewText, "Containers", preview.Components)

	if preview.Network != "" {
		previewText.WriteString(fmt.Sprintf("\n  Network: %s", preview.Network))
	}

	appendList(&previewText, "Volumes", preview.Volumes)
	appendList(&previewText, "Files", preview.Files)

	if preview.SourceDir != "" {
		previewText.WriteString(fmt.Sprintf("\n  Source: %s", preview.SourceDir))
	}

	appendList(&previewText, "Images", preview.Images)

	notify.WriteMessage(notify.Message{
		Type:    notify.InfoType,
		Content: strings.TrimPrefix(previewText.String(), "\n"),
		Writer:  writer,
	})

	notify.WriteMessage(notify.Message{
		Type:    notify.WarningType,
		Content: `Type "yes" to confirm removal: `,
		Writer:  writer,
	})
}

// PromptForConfirmation reads one line from stdin and reports whether the
// user typed "yes" (case-insensitive).
func PromptForConfirmation() bool {
	reader := bufio.NewReader(getStdinReader())

	input, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	input = strings.TrimSpace(input)

	return strings.EqualFold(input, "yes")
}

func appendList(builder *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}

	builder.WriteString(fmt.Sprintf("\n  %s:", heading))

	for _, item := range items {
		builder.WriteString(fmt.Sprintf("\n    - %s", item))
	}
}
