package source_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Jaydooooooo/happy-code/pkg/svc/source"
	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repository = "https://github.com/slopus/happy-server.git"

type fakeResult struct {
	stdout string
	err    error
}

// fakeRunner records invocations and serves canned results keyed by the
// space-joined command line.
type fakeRunner struct {
	calls   [][]string
	results map[string]fakeResult
}

func (f *fakeRunner) Run(
	_ context.Context,
	name string,
	args ...string,
) (runner.CommandResult, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)

	result := f.results[strings.Join(call, " ")]

	return runner.CommandResult{Stdout: result.stdout}, result.err
}

// gitKey builds the lookup key for a git command run inside dir.
func gitKey(dir string, args ...string) string {
	return strings.Join(append([]string{"git", "-C", dir}, args...), " ")
}

// newCheckedOutManager creates a manager whose directory already contains a
// .git directory.
func newCheckedOutManager(
	t *testing.T,
	commandRunner runner.CommandRunner,
	ref string,
) (*source.Manager, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "src")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))

	manager, err := source.NewManager(commandRunner, repository, ref, dir)
	require.NoError(t, err)

	return manager, dir
}

func TestNewManager_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		runner     runner.CommandRunner
		repository string
		ref        string
		dir        string
		wantErr    error
	}{
		{name: "nil runner", runner: nil, repository: repository, ref: "main", dir: "/opt/happy/src", wantErr: source.ErrRunnerNil},
		{name: "empty repository", runner: &fakeRunner{}, repository: " ", ref: "main", dir: "/opt/happy/src", wantErr: source.ErrRepositoryEmpty},
		{name: "empty ref", runner: &fakeRunner{}, repository: repository, ref: "", dir: "/opt/happy/src", wantErr: source.ErrRefEmpty},
		{name: "empty dir", runner: &fakeRunner{}, repository: repository, ref: "main", dir: "", wantErr: source.ErrDirEmpty},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			manager, err := source.NewManager(
				testCase.runner, testCase.repository, testCase.ref, testCase.dir,
			)

			require.ErrorIs(t, err, testCase.wantErr)
			assert.Nil(t, manager)
		})
	}
}

func TestDir(t *testing.T) {
	t.Parallel()

	manager, err := source.NewManager(&fakeRunner{}, repository, "main", "/opt/happy/src")
	require.NoError(t, err)

	assert.Equal(t, "/opt/happy/src", manager.Dir())
}

func TestEnsure_ClonesWhenMissing(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	dir := filepath.Join(t.TempDir(), "src")
	manager, err := source.NewManager(commandRunner, repository, "main", dir)
	require.NoError(t, err)

	err = manager.Ensure(context.Background())

	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"git", "clone", repository, dir},
		{"git", "-C", dir, "checkout", "main"},
	}, commandRunner.calls)
}

func TestEnsure_CloneFailureIsWrapped(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "src")
	commandRunner := &fakeRunner{results: map[string]fakeResult{
		"git clone " + repository + " " + dir: {err: runner.ErrCommandFailed},
	}}
	manager, err := source.NewManager(commandRunner, repository, "main", dir)
	require.NoError(t, err)

	err = manager.Ensure(context.Background())

	require.ErrorIs(t, err, runner.ErrCommandFailed)
	assert.Contains(t, err.Error(), "clone "+repository)
}

func TestEnsure_SyncsExistingCheckout(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	manager, dir := newCheckedOutManager(t, commandRunner, "main")

	err := manager.Ensure(context.Background())

	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"git", "-C", dir, "fetch", "--tags", "--force", "origin"},
		{"git", "-C", dir, "rev-parse", "--verify", "--quiet", "origin/main"},
		{"git", "-C", dir, "reset", "--hard", "origin/main"},
	}, commandRunner.calls)
}

func TestEnsure_ResetsToLiteralRefForTags(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	manager, dir := newCheckedOutManager(t, commandRunner, "v1.2.3")
	commandRunner.results = map[string]fakeResult{
		gitKey(dir, "rev-parse", "--verify", "--quiet", "origin/v1.2.3"): {err: runner.ErrCommandFailed},
	}

	err := manager.Ensure(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"git", "-C", dir, "reset", "--hard", "v1.2.3"},
		commandRunner.calls[len(commandRunner.calls)-1])
}

func TestHeadCommit_TrimsOutput(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	manager, dir := newCheckedOutManager(t, commandRunner, "main")
	commandRunner.results = map[string]fakeResult{
		gitKey(dir, "rev-parse", "HEAD"): {stdout: "0bd2bd1021a79b55031761e0787260e9cc4c461a\n"},
	}

	commit, err := manager.HeadCommit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "0bd2bd1021a79b55031761e0787260e9cc4c461a", commit)
}

func TestChanged_TrueWhenRemoteMoved(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	manager, dir := newCheckedOutManager(t, commandRunner, "main")
	commandRunner.results = map[string]fakeResult{
		gitKey(dir, "rev-parse", "HEAD"):        {stdout: "aaa111\n"},
		gitKey(dir, "ls-remote", "origin", "main"): {stdout: "bbb222\trefs/heads/main\n"},
	}

	changed, err := manager.Changed(context.Background())

	require.NoError(t, err)
	assert.True(t, changed)
}

func TestChanged_FalseWhenUpToDate(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	manager, dir := newCheckedOutManager(t, commandRunner, "main")
	commandRunner.results = map[string]fakeResult{
		gitKey(dir, "rev-parse", "HEAD"):        {stdout: "aaa111\n"},
		gitKey(dir, "ls-remote", "origin", "main"): {stdout: "aaa111\trefs/heads/main\n"},
	}

	changed, err := manager.Changed(context.Background())

	require.NoError(t, err)
	assert.False(t, changed)
}

func TestChanged_AnnotatedTagUsesPeeledCommit(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	manager, dir := newCheckedOutManager(t, commandRunner, "v1.2.3")
	commandRunner.results = map[string]fakeResult{
		gitKey(dir, "rev-parse", "HEAD"): {stdout: "ccc333\n"},
		gitKey(dir, "ls-remote", "origin", "v1.2.3"): {
			stdout: "tag0000\trefs/tags/v1.2.3\nccc333\trefs/tags/v1.2.3^{}\n",
		},
	}

	changed, err := manager.Changed(context.Background())

	require.NoError(t, err)
	assert.False(t, changed)
}

func TestChanged_PinnedCommitComparesPrefix(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	manager, dir := newCheckedOutManager(t, commandRunner, "0bd2bd1")
	commandRunner.results = map[string]fakeResult{
		gitKey(dir, "rev-parse", "HEAD"): {stdout: "0bd2bd1021a79b55031761e0787260e9cc4c461a\n"},
	}

	changed, err := manager.Changed(context.Background())

	require.NoError(t, err)
	assert.False(t, changed)

	commandRunner.results[gitKey(dir, "rev-parse", "HEAD")] = fakeResult{stdout: "deadbeef\n"}

	changed, err = manager.Changed(context.Background())

	require.NoError(t, err)
	assert.True(t, changed)
}
