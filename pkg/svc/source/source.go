// Package source maintains the git checkout the Happy server image is
// built from.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
)

// Source manager error definitions.
var (
	// ErrRunnerNil is returned when the command runner is nil.
	ErrRunnerNil = errors.New("command runner cannot be nil")
	// ErrRepositoryEmpty is returned when no git repository is configured.
	ErrRepositoryEmpty = errors.New("source repository cannot be empty")
	// ErrRefEmpty is returned when no git ref is configured.
	ErrRefEmpty = errors.New("source ref cannot be empty")
	// ErrDirEmpty is returned when no checkout directory is configured.
	ErrDirEmpty = errors.New("source directory cannot be empty")
)

const sourceDirPerm = 0o755

// Manager keeps a git checkout in sync with a configured repository and ref.
type Manager struct {
	runner     runner.CommandRunner
	repository string
	ref        string
	dir        string
}

// NewManager creates a source manager for the given repository, ref, and
// checkout directory.
func NewManager(commandRunner runner.CommandRunner, repository, ref, dir string) (*Manager, error) {
	if commandRunner == nil {
		return nil, ErrRunnerNil
	}

	if strings.TrimSpace(repository) == "" {
		return nil, ErrRepositoryEmpty
	}

	if strings.TrimSpace(ref) == "" {
		return nil, ErrRefEmpty
	}

	if strings.TrimSpace(dir) == "" {
		return nil, ErrDirEmpty
	}

	return &Manager{
		runner:     commandRunner,
		repository: repository,
		ref:        ref,
		dir:        dir,
	}, nil
}

// Dir returns the checkout directory. The server image build uses it as its
// build context.
func (m *Manager) Dir() string { return m.dir }

// Ensure makes the checkout match the configured repository and ref, cloning
// on first run and fetch+resetting afterwards. Local modifications in the
// checkout are discarded.
func (m *Manager) Ensure(ctx context.Context) error {
	if m.isCheckedOut() {
		return m.sync(ctx)
	}

	return m.clone(ctx)
}

// HeadCommit returns the full commit SHA the checkout currently points at.
func (m *Manager) HeadCommit(ctx context.Context) (string, error) {
	result, err := m.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve HEAD of %s: %w", m.dir, err)
	}

	return strings.TrimSpace(result.Stdout), nil
}

// Changed reports whether the remote ref points at a different commit than
// the checkout. A ref pinned to a commit SHA only counts as changed when the
// checkout does not match it.
func (m *Manager) Changed(ctx context.Context) (bool, error) {
	local, err := m.HeadCommit(ctx)
	if err != nil {
		return false, err
	}

	remote, err := m.remoteCommit(ctx)
	if err != nil {
		return false, err
	}

	if remote == "" {
		return !strings.HasPrefix(local, m.ref), nil
	}

	return local != remote, nil
}

func (m *Manager) isCheckedOut() bool {
	info, err := os.Stat(filepath.Join(m.dir, ".git"))

	return err == nil && info.IsDir()
}

func (m *Manager) clone(ctx context.Context) error {
	err := os.MkdirAll(filepath.Dir(m.dir), sourceDirPerm)
	if err != nil {
		return fmt.Errorf("create source parent directory: %w", err)
	}

	_, err = m.runner.Run(ctx, "git", "clone", m.repository, m.dir)
	if err != nil {
		return fmt.Errorf("clone %s: %w", m.repository, err)
	}

	_, err = m.git(ctx, "checkout", m.ref)
	if err != nil {
		return fmt.Errorf("checkout %s: %w", m.ref, err)
	}

	return nil
}

// sync updates an existing checkout, resetting to the remote tracking ref
// when one exists and to the literal ref for tags and pinned commits.
func (m *Manager) sync(ctx context.Context) error {
	_, err := m.git(ctx, "fetch", "--tags", "--force", "origin")
	if err != nil {
		return fmt.Errorf("fetch %s: %w", m.repository, err)
	}

	target := m.ref

	_, err = m.git(ctx, "rev-parse", "--verify", "--quiet", "origin/"+m.ref)
	if err == nil {
		target = "origin/" + m.ref
	}

	_, err = m.git(ctx, "reset", "--hard", target)
	if err != nil {
		return fmt.Errorf("reset to %s: %w", target, err)
	}

	return nil
}

func (m *Manager) remoteCommit(ctx context.Context) (string, error) {
	result, err := m.git(ctx, "ls-remote", "origin", m.ref)
	if err != nil {
		return "", fmt.Errorf("query remote ref %s: %w", m.ref, err)
	}

	return parseLsRemote(result.Stdout), nil
}

// parseLsRemote extracts the commit SHA from ls-remote output, preferring
// the peeled line an annotated tag produces.
func parseLsRemote(output string) string {
	sha := ""

	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		if strings.HasSuffix(fields[1], "^{}") {
			return fields[0]
		}

		if sha == "" {
			sha = fields[0]
		}
	}

	return sha
}

func (m *Manager) git(ctx context.Context, args ...string) (runner.CommandResult, error) {
	return m.runner.Run(ctx, "git", append([]string{"-C", m.dir}, args...)...)
}
