package cmd_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	cmdpkg "github.com/Jaydooooooo/happy-code/pkg/cli/cmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	localCommit  = "aaaa1f7d9c2e3b4a5d6e7f8091a2b3c4d5e6f708"
	remoteCommit = "bbb47c1d2e3f4a5b6c7d8e9f0a1b2c3d4e5f6071"
)

// gitLine builds the expected command line for a git invocation inside dir.
func gitLine(dir string, args ...string) string {
	return strings.Join(append([]string{"git", "-C", dir}, args...), " ")
}

// checkoutSource creates the source dir with a .git marker so the manager
// treats it as an existing checkout.
func checkoutSource(t *testing.T, cfg *v1alpha1.Deployment) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Spec.Paths.SourceDir, ".git"), 0o755))
}

func TestUpdateCmd_GitStrategySyncsAndRecreatesServer(t *testing.T) {
	t.Parallel()

	cfg := newTestDeployment(t)
	configPath := scaffoldDeployment(t, cfg)
	checkoutSource(t, cfg)

	sourceDir := cfg.Spec.Paths.SourceDir
	headLine := gitLine(sourceDir, "rev-parse", "HEAD")
	lsRemoteLine := gitLine(sourceDir, "ls-remote", "origin", "main")

	commandRunner := &fakeRunner{results: map[string]fakeResult{
		headLine:     {stdout: localCommit + "\n"},
		lsRemoteLine: {stdout: remoteCommit + "\trefs/heads/main\n"},
	}}

	components := &fakeComponents{}
	testRuntime := newTestRuntime(components, commandRunner, startVerifyEndpoints(t))

	output, err := executeCommand(t, cmdpkg.NewUpdateCmd(testRuntime), "--config", configPath)
	require.NoError(t, err)

	lines := commandRunner.commandLines()
	assert.Contains(t, lines, gitLine(sourceDir, "fetch", "--tags", "--force", "origin"))
	assert.Contains(t, lines, gitLine(sourceDir, "reset", "--hard", "origin/main"))

	// The rebuilt image keeps its tag, so the server container is recreated
	// to pick it up.
	assert.Contains(t, components.builds, v1alpha1.ServerImageName)
	assert.Contains(t, components.removed, v1alpha1.ComponentServer)

	assert.Contains(t, output, "server source at commit '"+localCommit[:7]+"'")
	assert.Contains(t, output, "Update complete")
}

func TestUpdateCmd_GitStrategyUnchangedSkipsRecreate(t *testing.T) {
	t.Parallel()

	cfg := newTestDeployment(t)
	configPath := scaffoldDeployment(t, cfg)
	checkoutSource(t, cfg)

	sourceDir := cfg.Spec.Paths.SourceDir
	headLine := gitLine(sourceDir, "rev-parse", "HEAD")
	lsRemoteLine := gitLine(sourceDir, "ls-remote", "origin", "main")

	commandRunner := &fakeRunner{results: map[string]fakeResult{
		headLine:     {stdout: localCommit + "\n"},
		lsRemoteLine: {stdout: localCommit + "\trefs/heads/main\n"},
	}}

	components := &fakeComponents{}
	testRuntime := newTestRuntime(components, commandRunner, startVerifyEndpoints(t))

	output, err := executeCommand(t, cmdpkg.NewUpdateCmd(testRuntime), "--config", configPath)
	require.NoError(t, err)

	assert.NotContains(t, commandRunner.commandLines(),
		gitLine(sourceDir, "fetch", "--tags", "--force", "origin"))
	assert.NotContains(t, components.removed, v1alpha1.ComponentServer)

	assert.Contains(t, output, "server source already at 'main'")
	assert.Contains(t, output, "server source unchanged, keeping the running server")

	// Verification still runs on a no-op update.
	assert.Contains(t, output, "Verify deployment")
}

func TestUpdateCmd_GitStrategyClonesOnFirstRun(t *testing.T) {
	t.Parallel()

	cfg := newTestDeployment(t)
	configPath := scaffoldDeployment(t, cfg)

	sourceDir := cfg.Spec.Paths.SourceDir
	headLine := gitLine(sourceDir, "rev-parse", "HEAD")

	commandRunner := &fakeRunner{results: map[string]fakeResult{
		headLine: {stdout: remoteCommit + "\n"},
	}}

	components := &fakeComponents{}
	testRuntime := newTestRuntime(components, commandRunner, startVerifyEndpoints(t))

	_, err := executeCommand(t, cmdpkg.NewUpdateCmd(testRuntime), "--config", configPath)
	require.NoError(t, err)

	assert.Contains(t, commandRunner.commandLines(),
		"git clone "+v1alpha1.DefaultServerRepository+" "+sourceDir)
	assert.Contains(t, components.removed, v1alpha1.ComponentServer)
}

func TestUpdateCmd_ImageStrategyRecreatesServerOnNewImage(t *testing.T) {
	t.Parallel()

	cfg := newTestDeployment(t)
	cfg.Spec.Server.Source.Strategy = v1alpha1.SourceStrategyImage
	configPath := scaffoldDeployment(t, cfg)

	components := &fakeComponents{imageIDs: []string{"sha256:old", "sha256:new"}}
	testRuntime := newTestRuntime(components, &fakeRunner{}, startVerifyEndpoints(t))

	output, err := executeCommand(t, cmdpkg.NewUpdateCmd(testRuntime), "--config", configPath)
	require.NoError(t, err)

	assert.Equal(t, []string{v1alpha1.DefaultServerImage}, components.pulled)
	assert.Contains(t, components.removed, v1alpha1.ComponentServer)
	assert.Empty(t, components.builds)

	assert.Contains(t, output, "Update complete")
}

func TestUpdateCmd_ImageStrategyStableImageSkipsRecreate(t *testing.T) {
	t.Parallel()

	cfg := newTestDeployment(t)
	cfg.Spec.Server.Source.Strategy = v1alpha1.SourceStrategyImage
	configPath := scaffoldDeployment(t, cfg)

	components := &fakeComponents{imageIDs: []string{"sha256:same", "sha256:same"}}
	testRuntime := newTestRuntime(components, &fakeRunner{}, startVerifyEndpoints(t))

	output, err := executeCommand(t, cmdpkg.NewUpdateCmd(testRuntime), "--config", configPath)
	require.NoError(t, err)

	assert.NotContains(t, components.removed, v1alpha1.ComponentServer)
	assert.Contains(t, output, "server source unchanged, keeping the running server")
}
