package certbot_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Jaydooooooo/happy-code/pkg/client/certbot"
	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errLookPathMiss = errors.New("executable file not found in $PATH")

// fakeRunner records command invocations and returns a configured error.
type fakeRunner struct {
	calls [][]string
	err   error
}

func (f *fakeRunner) Run(
	_ context.Context,
	name string,
	args ...string,
) (runner.CommandResult, error) {
	f.calls = append(f.calls, append([]string{name}, args...))

	return runner.CommandResult{}, f.err
}

// newInstalledClient creates a client whose PATH probe always succeeds.
func newInstalledClient(t *testing.T, commandRunner runner.CommandRunner) *certbot.Client {
	t.Helper()

	client, err := certbot.NewClient(commandRunner)
	require.NoError(t, err)

	client.SetLookPath(func(string) (string, error) {
		return "/usr/bin/certbot", nil
	})

	return client
}

func TestNewClient_NilRunnerFails(t *testing.T) {
	t.Parallel()

	client, err := certbot.NewClient(nil)

	require.ErrorIs(t, err, certbot.ErrRunnerNil)
	assert.Nil(t, client)
}

func TestIsInstalled(t *testing.T) {
	t.Parallel()

	client, err := certbot.NewClient(&fakeRunner{})
	require.NoError(t, err)

	client.SetLookPath(func(string) (string, error) {
		return "", errLookPathMiss
	})
	assert.False(t, client.IsInstalled())

	client.SetLookPath(func(string) (string, error) {
		return "/usr/bin/certbot", nil
	})
	assert.True(t, client.IsInstalled())
}

func TestIssue_RunsStandaloneChallenge(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	client := newInstalledClient(t, commandRunner)

	err := client.Issue(context.Background(), "happy.example.com", "admin@happy.example.com")

	require.NoError(t, err)
	require.Len(t, commandRunner.calls, 1)
	assert.Equal(t, []string{
		"certbot",
		"certonly",
		"--standalone",
		"-n",
		"--agree-tos",
		"--keep-until-expiring",
		"-m", "admin@happy.example.com",
		"-d", "happy.example.com",
	}, commandRunner.calls[0])
}

func TestIssue_EmptyDomainFails(t *testing.T) {
	t.Parallel()

	client := newInstalledClient(t, &fakeRunner{})

	err := client.Issue(context.Background(), "  ", "admin@happy.example.com")

	require.ErrorIs(t, err, certbot.ErrDomainEmpty)
}

func TestIssue_EmptyEmailFails(t *testing.T) {
	t.Parallel()

	client := newInstalledClient(t, &fakeRunner{})

	err := client.Issue(context.Background(), "happy.example.com", "")

	require.ErrorIs(t, err, certbot.ErrEmailEmpty)
}

func TestIssue_MissingBinaryFails(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	client, err := certbot.NewClient(commandRunner)
	require.NoError(t, err)

	client.SetLookPath(func(string) (string, error) {
		return "", errLookPathMiss
	})

	err = client.Issue(context.Background(), "happy.example.com", "admin@happy.example.com")

	require.ErrorIs(t, err, certbot.ErrNotInstalled)
	assert.Empty(t, commandRunner.calls)
}

func TestIssue_CommandFailureIsWrapped(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{err: runner.ErrCommandFailed}
	client := newInstalledClient(t, commandRunner)

	err := client.Issue(context.Background(), "happy.example.com", "admin@happy.example.com")

	require.ErrorIs(t, err, runner.ErrCommandFailed)
	assert.Contains(t, err.Error(), "failed to issue certificate for happy.example.com")
}

func TestRenew_RunsRenewForDomain(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	client := newInstalledClient(t, commandRunner)

	err := client.Renew(context.Background(), "happy.example.com")

	require.NoError(t, err)
	require.Len(t, commandRunner.calls, 1)
	assert.Equal(t, []string{"certbot", "renew", "--cert-name", "happy.example.com"}, commandRunner.calls[0])
}

func TestRenew_EmptyDomainFails(t *testing.T) {
	t.Parallel()

	client := newInstalledClient(t, &fakeRunner{})

	err := client.Renew(context.Background(), "")

	require.ErrorIs(t, err, certbot.ErrDomainEmpty)
}

func TestRenewAll_RunsRenew(t *testing.T) {
	t.Parallel()

	commandRunner := &fakeRunner{}
	client := newInstalledClient(t, commandRunner)

	err := client.RenewAll(context.Background())

	require.NoError(t, err)
	require.Len(t, commandRunner.calls, 1)
	assert.Equal(t, []string{"certbot", "renew"}, commandRunner.calls[0])
}

func TestCertPaths(t *testing.T) {
	t.Parallel()

	client := newInstalledClient(t, &fakeRunner{})

	paths := client.CertPaths("happy.example.com")

	assert.Equal(t, "/etc/letsencrypt/live/happy.example.com/fullchain.pem", paths.CertPath)
	assert.Equal(t, "/etc/letsencrypt/live/happy.example.com/privkey.pem", paths.KeyPath)
}

func TestInstallDeployHook_WritesExecutableScript(t *testing.T) {
	t.Parallel()

	client := newInstalledClient(t, &fakeRunner{})
	hookDir := filepath.Join(t.TempDir(), "renewal-hooks", "deploy")
	client.SetHookDir(hookDir)

	script := "#!/bin/sh\ndocker exec happy-proxy caddy reload --config /etc/caddy/Caddyfile\n"

	hookPath, err := client.InstallDeployHook(script)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(hookDir, certbot.HookFileName), hookPath)

	content, err := os.ReadFile(hookPath)
	require.NoError(t, err)
	assert.Equal(t, script, string(content))

	info, err := os.Stat(hookPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestInstallDeployHook_EmptyScriptFails(t *testing.T) {
	t.Parallel()

	client := newInstalledClient(t, &fakeRunner{})
	client.SetHookDir(t.TempDir())

	hookPath, err := client.InstallDeployHook("   \n")

	require.ErrorIs(t, err, certbot.ErrHookScriptEmpty)
	assert.Empty(t, hookPath)
}
