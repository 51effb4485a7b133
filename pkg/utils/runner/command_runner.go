// Package runner executes external commands while capturing their output.
//
// Every privileged system call the installer makes (apt-get, systemctl, git,
// certbot) goes through [CommandRunner], so command construction stays
// testable and the install transcript can record exactly what ran.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrCommandFailed is returned when a command exits with a non-zero status.
var ErrCommandFailed = errors.New("command failed")

// stderrTailLines bounds how much stderr is included in error messages.
const stderrTailLines = 10

// CommandResult captures the stdout and stderr collected during a command
// execution. Both fields contain the complete output, including any output
// produced before an error occurred.
type CommandResult struct {
	Stdout string
	Stderr string
}

// CommandRunner executes external commands while capturing their output.
// Implementations should display output to the configured writers in
// real-time while also capturing it for programmatic access via CommandResult.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (CommandResult, error)
}

// ExecCommandRunner executes commands with os/exec and console output.
// This runner displays command output to stdout/stderr in real-time while
// also capturing it for the result.
type ExecCommandRunner struct {
	stdout io.Writer
	stderr io.Writer
	env    []string
}

// Option is a functional option for configuring an ExecCommandRunner.
type Option func(*ExecCommandRunner)

// WithExtraEnv appends environment variables ("KEY=value") to the inherited
// environment of every command the runner executes.
func WithExtraEnv(env ...string) Option {
	return func(r *ExecCommandRunner) {
		r.env = append(r.env, env...)
	}
}

// NewExecCommandRunner creates a command runner backed by os/exec.
// It displays output to stdout/stderr in real-time (like running the binary
// directly) while also capturing output for programmatic use in the
// CommandResult.
//
// If stdout or stderr are nil, they default to os.Stdout and os.Stderr respectively.
func NewExecCommandRunner(stdout, stderr io.Writer, opts ...Option) *ExecCommandRunner {
	if stdout == nil {
		stdout = os.Stdout
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	execRunner := &ExecCommandRunner{
		stdout: stdout,
		stderr: stderr,
	}

	for _, opt := range opts {
		opt(execRunner)
	}

	return execRunner
}

// Run executes a command and displays output in real-time to the console.
// The command's output streams write to both capture buffers and the
// configured stdout/stderr writers, providing the same behavior as running
// the binary directly while also making the output available programmatically.
//
// On a non-zero exit the returned error wraps ErrCommandFailed and includes
// the tail of stderr for context.
func (r *ExecCommandRunner) Run(
	ctx context.Context,
	name string,
	args ...string,
) (CommandResult, error) {
	var outBuf, errBuf bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)

	// Use io.MultiWriter to display AND capture output
	cmd.Stdout = io.MultiWriter(&outBuf, r.stdout)
	cmd.Stderr = io.MultiWriter(&errBuf, r.stderr)

	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	execErr := cmd.Run()

	result := CommandResult{
		Stdout: outBuf.String(),
		Stderr: errBuf.String(),
	}

	if execErr != nil {
		return result, commandError(name, args, result.Stderr, execErr)
	}

	return result, nil
}

// commandError builds a failure error carrying the command line and the tail
// of its stderr output.
func commandError(name string, args []string, stderr string, execErr error) error {
	commandLine := name
	if len(args) > 0 {
		commandLine += " " + strings.Join(args, " ")
	}

	tail := stderrTail(stderr)
	if tail != "" {
		return fmt.Errorf("%w: %s: %w: %s", ErrCommandFailed, commandLine, execErr, tail)
	}

	return fmt.Errorf("%w: %s: %w", ErrCommandFailed, commandLine, execErr)
}

// stderrTail returns the last lines of stderr for inclusion in error messages.
func stderrTail(stderr string) string {
	trimmed := strings.TrimSpace(stderr)
	if trimmed == "" {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) > stderrTailLines {
		lines = lines[len(lines)-stderrTailLines:]
	}

	return strings.Join(lines, "\n")
}
