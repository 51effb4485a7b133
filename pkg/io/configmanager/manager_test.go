package configmanager_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/io/configmanager"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `kind: Deployment
apiVersion: happy.dev/v1alpha1
spec:
  domain: happy.example.com
  email: admin@example.com
`

// pointViperAt replaces the manager's viper instance with one that only
// searches dir, so tests never pick up config files from the host.
func pointViperAt(manager *configmanager.ConfigManager, dir string) {
	vip := viper.New()
	vip.SetConfigName("config")
	vip.SetConfigType("yaml")
	vip.AddConfigPath(dir)
	manager.Viper = vip
}

func newManagerWithDir(
	t *testing.T,
	configYAML string,
	selectors ...configmanager.FieldSelector[v1alpha1.Deployment],
) (*configmanager.ConfigManager, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	tempDir := t.TempDir()

	if configYAML != "" {
		err := os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(configYAML), 0o600)
		require.NoError(t, err)
	}

	manager := configmanager.NewConfigManager(out, selectors...)
	pointViperAt(manager, tempDir)

	return manager, out
}

func TestLoadConfigReadsConfigFile(t *testing.T) {
	t.Parallel()

	manager, out := newManagerWithDir(t, validConfigYAML)

	config, err := manager.LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "happy.example.com", config.Spec.Domain)
	assert.Equal(t, "admin@example.com", config.Spec.Email)
	assert.True(t, manager.ConfigFileFound())
	assert.Contains(t, out.String(), "config.yaml' found")
	assert.Contains(t, out.String(), "config loaded")
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cmd := newTestCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultDeploymentFieldSelectors())
	pointViperAt(manager, t.TempDir())

	require.NoError(t, cmd.Flags().Set("domain", "happy.example.com"))
	require.NoError(t, cmd.Flags().Set("email", "admin@example.com"))

	config, err := manager.LoadConfig(nil)
	require.NoError(t, err)

	assert.False(t, manager.ConfigFileFound())
	assert.Equal(t, v1alpha1.TLSModeAuto, config.Spec.TLS.Mode)
	assert.Equal(t, v1alpha1.DefaultConfigDir, config.Spec.Paths.ConfigDir)
	assert.Equal(t, v1alpha1.DefaultServerRepository, config.Spec.Server.Source.Repository)
	assert.Contains(t, out.String(), "using default config")
}

func TestLoadRequiredConfigMissingFileFails(t *testing.T) {
	t.Parallel()

	manager, _ := newManagerWithDir(t, "")

	_, err := manager.LoadRequiredConfig(nil)
	require.Error(t, err)
	require.ErrorIs(t, err, configmanager.ErrConfigFileNotFound)
	assert.Contains(t, err.Error(), "happyctl init")
}

func TestLoadConfigFlagOverridesFile(t *testing.T) {
	t.Parallel()

	cmd := newTestCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	tempDir := t.TempDir()
	fileConfig := `spec:
  domain: file.example.com
  email: admin@example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(fileConfig), 0o600))

	manager := configmanager.NewCommandConfigManager(cmd, configmanager.DefaultDeploymentFieldSelectors())
	pointViperAt(manager, tempDir)

	require.NoError(t, cmd.Flags().Set("domain", "flag.example.com"))

	config, err := manager.LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "flag.example.com", config.Spec.Domain)
	assert.Equal(t, "admin@example.com", config.Spec.Email)
}

func TestLoadConfigDecodesTypedFields(t *testing.T) {
	t.Parallel()

	configYAML := `spec:
  domain: happy.example.com
  email: admin@example.com
  tls:
    mode: certbot
  server:
    source:
      strategy: image
      image: ghcr.io/example/happy-server:1.2.3
  timeouts:
    ready: 90s
`
	manager, _ := newManagerWithDir(t, configYAML)

	config, err := manager.LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, v1alpha1.TLSModeCertbot, config.Spec.TLS.Mode)
	assert.Equal(t, v1alpha1.SourceStrategyImage, config.Spec.Server.Source.Strategy)
	assert.Equal(t, "ghcr.io/example/happy-server:1.2.3", config.Spec.Server.Source.Image)
	assert.Equal(t, 90*time.Second, config.Spec.Timeouts.Ready.Duration)
}

func TestLoadConfigRejectsInvalidDomain(t *testing.T) {
	t.Parallel()

	configYAML := `spec:
  domain: "not a domain"
  email: admin@example.com
`
	manager, out := newManagerWithDir(t, configYAML)

	_, err := manager.LoadConfig(nil)
	require.Error(t, err)
	require.ErrorIs(t, err, configmanager.ErrConfigInvalid)
	assert.Contains(t, err.Error(), "issue(s) found")
	assert.Contains(t, out.String(), "spec.domain")
}

func TestLoadConfigRejectsUnknownKind(t *testing.T) {
	t.Parallel()

	configYAML := `kind: Cluster
spec:
  domain: happy.example.com
  email: admin@example.com
`
	manager, out := newManagerWithDir(t, configYAML)

	_, err := manager.LoadConfig(nil)
	require.Error(t, err)
	require.ErrorIs(t, err, configmanager.ErrConfigInvalid)
	assert.Contains(t, out.String(), "kind")
}

func TestLoadConfigRejectsMalformedDuration(t *testing.T) {
	t.Parallel()

	configYAML := `spec:
  domain: happy.example.com
  email: admin@example.com
  timeouts:
    ready: soon
`
	manager, _ := newManagerWithDir(t, configYAML)

	_, err := manager.LoadConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal configuration")
	assert.Contains(t, err.Error(), "parse duration")
}

func TestLoadConfigReusesLoadedConfig(t *testing.T) {
	t.Parallel()

	manager, out := newManagerWithDir(t, validConfigYAML)

	first, err := manager.LoadConfig(nil)
	require.NoError(t, err)

	second, err := manager.LoadConfig(nil)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Contains(t, out.String(), "config already loaded, reusing existing config")
}

func TestLoadConfigSilentProducesNoOutput(t *testing.T) {
	t.Parallel()

	manager, out := newManagerWithDir(t, validConfigYAML)

	_, err := manager.LoadConfigSilent()
	require.NoError(t, err)
	assert.Zero(t, out.Len())
}

func TestLoadConfigFromFlagsOnlyIgnoresConfigFile(t *testing.T) {
	t.Parallel()

	configYAML := `spec:
  domain: file.example.com
`
	manager, out := newManagerWithDir(t, configYAML, configmanager.DefaultDeploymentFieldSelectors()...)

	config, err := manager.LoadConfigFromFlagsOnly()
	require.NoError(t, err)

	assert.Empty(t, config.Spec.Domain)
	assert.Equal(t, v1alpha1.TLSModeAuto, config.Spec.TLS.Mode)
	assert.False(t, manager.ConfigFileFound())
	assert.Zero(t, out.Len())
}

func TestLoadConfigMalformedFileFails(t *testing.T) {
	t.Parallel()

	manager, _ := newManagerWithDir(t, "spec: [broken")

	_, err := manager.LoadConfig(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
