package confirm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Jaydooooooo/happy-code/pkg/cli/ui/confirm"
	"github.com/stretchr/testify/require"
)

//nolint:paralleltest,tparallel // Subtests cannot run in parallel - they share TTY checker state
func TestShouldSkipPrompt(t *testing.T) {
	tests := []struct {
		name     string
		force    bool
		isTTY    bool
		expected bool
	}{
		{
			name:     "force_true_skips_prompt",
			force:    true,
			isTTY:    true,
			expected: true,
		},
		{
			name:     "force_true_non_tty_skips_prompt",
			force:    true,
			isTTY:    false,
			expected: true,
		},
		{
			name:     "non_tty_skips_prompt",
			force:    false,
			isTTY:    false,
			expected: true,
		},
		{
			name:     "tty_without_force_shows_prompt",
			force:    false,
			isTTY:    true,
			expected: false,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			// Do NOT run subtests in parallel - they share TTY checker state
			restoreTTY := confirm.SetTTYCheckerForTests(func() bool { return testCase.isTTY })
			defer restoreTTY()

			result := confirm.ShouldSkipPrompt(testCase.force)
			require.Equal(t, testCase.expected, result)
		})
	}
}

//nolint:paralleltest,tparallel // Subtests cannot run in parallel - they share stdin reader state
func TestPromptForConfirmation(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"yes_lowercase_confirms", "yes\n", true},
		{"yes_uppercase_confirms", "YES\n", true},
		{"yes_mixed_case_confirms", "Yes\n", true},
		{"no_denies", "no\n", false},
		{"y_denies", "y\n", false},
		{"empty_denies", "\n", false},
		{"random_text_denies", "maybe\n", false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			// Do NOT run subtests in parallel - they share stdin reader state
			restoreStdin := confirm.SetStdinReaderForTests(strings.NewReader(testCase.input))
			defer restoreStdin()

			result := confirm.PromptForConfirmation()

			require.Equal(t, testCase.expected, result)
		})
	}
}

func TestShowRemovalPreview_FullPurge(t *testing.T) {
	t.Parallel()

	preview := &confirm.RemovalPreview{
		Components: []string{"happy-proxy", "happy-server", "happy-cache", "happy-db"},
		Network:    "happy",
		Volumes:    []string{"happy-db-data", "happy-cache-data"},
		Files:      []string{"/etc/happy/config.yaml", "/etc/happy/Caddyfile"},
		SourceDir:  "/opt/happy/src",
		Images:     []string{"happy-server:local"},
	}

	var out bytes.Buffer
	confirm.ShowRemovalPreview(&out, preview)

	output := out.String()
	require.Contains(t, output, "The following resources will be removed")
	require.Contains(t, output, "Containers:")
	require.Contains(t, output, "happy-proxy")
	require.Contains(t, output, "happy-db")
	require.Contains(t, output, "Network: happy")
	require.Contains(t, output, "Volumes:")
	require.Contains(t, output, "happy-db-data")
	require.Contains(t, output, "Files:")
	require.Contains(t, output, "/etc/happy/config.yaml")
	require.Contains(t, output, "Source: /opt/happy/src")
	require.Contains(t, output, "Images:")
	require.Contains(t, output, "happy-server:local")
	require.Contains(t, output, `Type "yes" to confirm removal`)
}

func TestShowRemovalPreview_ContainersOnly(t *testing.T) {
	t.Parallel()

	preview := &confirm.RemovalPreview{
		Components: []string{"happy-proxy", "happy-server", "happy-cache", "happy-db"},
		Network:    "happy",
	}

	var out bytes.Buffer
	confirm.ShowRemovalPreview(&out, preview)

	output := out.String()
	require.Contains(t, output, "Containers:")
	require.Contains(t, output, `Type "yes" to confirm removal`)
	// Should not contain resource sections when empty
	require.NotContains(t, output, "Volumes:")
	require.NotContains(t, output, "Files:")
	require.NotContains(t, output, "Images:")
}

func TestIsTTY_Override(t *testing.T) {
	t.Parallel()

	restoreTTY := confirm.SetTTYCheckerForTests(func() bool { return true })

	require.True(t, confirm.IsTTY())

	restoreTTY()

	restoreTTY = confirm.SetTTYCheckerForTests(func() bool { return false })

	require.False(t, confirm.IsTTY())

	restoreTTY()
}

func TestErrRemovalCancelled(t *testing.T) {
	t.Parallel()

	require.Error(t, confirm.ErrRemovalCancelled)
	require.Equal(t, "removal cancelled", confirm.ErrRemovalCancelled.Error())
}
