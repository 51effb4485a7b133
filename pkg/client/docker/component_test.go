package docker_test

import (
	"context"
	"testing"

	docker "github.com/Jaydooooooo/happy-code/pkg/client/docker"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComponentManager_Success(t *testing.T) {
	t.Parallel()

	manager, err := docker.NewComponentManager(&fakeAPIClient{})

	require.NoError(t, err)
	assert.NotNil(t, manager)
}

func TestNewComponentManager_NilClient(t *testing.T) {
	t.Parallel()

	manager, err := docker.NewComponentManager(nil)

	require.Error(t, err)
	assert.Nil(t, manager)
	assert.ErrorIs(t, err, docker.ErrAPIClientNil)
}

func TestCreateComponent_CreatesAndStarts(t *testing.T) {
	t.Parallel()

	fake := &fakeAPIClient{}
	manager, err := docker.NewComponentManager(fake)
	require.NoError(t, err)

	config := docker.ComponentConfig{
		Name:       "happy-db",
		Image:      "postgres:16-alpine",
		Deployment: "happy.example.com",
		Component:  "happy-db",
		Env:        []string{"POSTGRES_DB=happy"},
		Ports: []docker.PortBinding{
			{HostIP: "127.0.0.1", HostPort: 5432, ContainerPort: 5432},
		},
		Volumes: []docker.VolumeMount{
			{Name: "happy-db-data", Target: "/var/lib/postgresql/data"},
		},
		Binds: []docker.BindMount{
			{Source: "/etc/happy/Caddyfile", Target: "/etc/caddy/Caddyfile", ReadOnly: true},
		},
		NetworkName: "happy",
		Healthcheck: &container.HealthConfig{Test: []string{"CMD-SHELL", "pg_isready"}},
		Platform:    "linux/amd64",
	}

	containerID, err := manager.CreateComponent(context.Background(), config)

	require.NoError(t, err)
	assert.Equal(t, "id-happy-db", containerID)
	assert.Equal(t, []string{"happy-db"}, fake.created)
	assert.Equal(t, []string{"id-happy-db"}, fake.started)

	require.NotNil(t, fake.lastContainerConfig)
	assert.Equal(t, "postgres:16-alpine", fake.lastContainerConfig.Image)
	assert.Equal(t, "happy.example.com", fake.lastContainerConfig.Labels[docker.DeploymentLabelKey])
	assert.Equal(t, "happy-db", fake.lastContainerConfig.Labels[docker.ComponentLabelKey])
	assert.Contains(t, fake.lastContainerConfig.ExposedPorts, nat.Port("5432/tcp"))
	assert.NotNil(t, fake.lastContainerConfig.Healthcheck)

	require.NotNil(t, fake.lastHostConfig)
	bindings := fake.lastHostConfig.PortBindings[nat.Port("5432/tcp")]
	require.Len(t, bindings, 1)
	assert.Equal(t, "127.0.0.1", bindings[0].HostIP)
	assert.Equal(t, "5432", bindings[0].HostPort)
	assert.Equal(t, "unless-stopped", string(fake.lastHostConfig.RestartPolicy.Name))
	require.Len(t, fake.lastHostConfig.Mounts, 2)

	require.NotNil(t, fake.lastNetworkConfig)
	assert.Contains(t, fake.lastNetworkConfig.EndpointsConfig, "happy")

	require.NotNil(t, fake.lastPlatform)
	assert.Equal(t, "linux", fake.lastPlatform.OS)
	assert.Equal(t, "amd64", fake.lastPlatform.Architecture)
}

func TestCreateComponent_ExistingStoppedContainerIsStarted(t *testing.T) {
	t.Parallel()

	fake := &fakeAPIClient{
		containers: []container.Summary{
			{ID: "abc123", Names: []string{"/happy-db"}, State: "exited"},
		},
	}
	manager, err := docker.NewComponentManager(fake)
	require.NoError(t, err)

	containerID, err := manager.CreateComponent(context.Background(), docker.ComponentConfig{
		Name:  "happy-db",
		Image: "postgres:16-alpine",
	})

	require.NoError(t, err)
	assert.Equal(t, "abc123", containerID)
	assert.Empty(t, fake.created)
	assert.Equal(t, []string{"abc123"}, fake.started)
}

func TestCreateComponent_ExistingRunningContainerIsLeftAlone(t *testing.T) {
	t.Parallel()

	fake := &fakeAPIClient{
		containers: []container.Summary{
			{ID: "abc123", Names: []string{"/happy-db"}, State: "running"},
		},
	}
	manager, err := docker.NewComponentManager(fake)
	require.NoError(t, err)

	containerID, err := manager.CreateComponent(context.Background(), docker.ComponentConfig{
		Name:  "happy-db",
		Image: "postgres:16-alpine",
	})

	require.NoError(t, err)
	assert.Equal(t, "abc123", containerID)
	assert.Empty(t, fake.created)
	assert.Empty(t, fake.started)
}

func TestCreateComponent_InvalidPlatform(t *testing.T) {
	t.Parallel()

	manager, err := docker.NewComponentManager(&fakeAPIClient{})
	require.NoError(t, err)

	_, err = manager.CreateComponent(context.Background(), docker.ComponentConfig{
		Name:     "happy-server",
		Image:    "happy-server:local",
		Platform: "not-a-platform",
	})

	require.ErrorIs(t, err, docker.ErrInvalidPlatform)
}

func TestEnsureNetwork_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	fake := &fakeAPIClient{}
	manager, err := docker.NewComponentManager(fake)
	require.NoError(t, err)

	err = manager.EnsureNetwork(context.Background(), "happy", "happy.example.com")

	require.NoError(t, err)
	assert.Equal(t, []string{"happy"}, fake.createdNetworks)
	assert.Equal(t, "bridge", fake.lastNetworkOptions.Driver)
	assert.Equal(t,
		"happy.example.com",
		fake.lastNetworkOptions.Labels[docker.DeploymentLabelKey],
	)
}

func TestEnsureNetwork_SkipsWhenPresent(t *testing.T) {
	t.Parallel()

	fake := &fakeAPIClient{networkExists: true}
	manager, err := docker.NewComponentManager(fake)
	require.NoError(t, err)

	err = manager.EnsureNetwork(context.Background(), "happy", "happy.example.com")

	require.NoError(t, err)
	assert.Empty(t, fake.createdNetworks)
}

func TestEnsureVolume_CreatesWhenMissing(t *testing.T) {
	t.Parallel()

	fake := &fakeAPIClient{}
	manager, err := docker.NewComponentManager(fake)
	require.NoError(t, err)

	err = manager.EnsureVolume(
		context.Background(), "happy-db-data", "happy.example.com", "happy-db",
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"happy-db-data"}, fake.createdVolumes)
	assert.Equal(t,
		"happy.example.com",
		fake.lastVolumeOptions.Labels[docker.DeploymentLabelKey],
	)
	assert.Equal(t, "happy-db", fake.lastVolumeOptions.Labels[docker.ComponentLabelKey])
}

func TestEnsureVolume_SkipsWhenPresent(t *testing.T) {
	t.Parallel()

	fake := &fakeAPIClient{volumeExists: true}
	manager, err := docker.NewComponentManager(fake)
	require.NoError(t, err)

	err = manager.EnsureVolume(
		context.Background(), "happy-db-data", "happy.example.com", "happy-db",
	)

	require.NoError(t, err)
	assert.Empty(t, fake.createdVolumes)
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		input        string
		expectNil    bool
		expectErr    bool
		os           string
		architecture string
		variant      string
	}{
		{name: "empty selects host platform", input: "", expectNil: true},
		{name: "whitespace only", input: "   ", expectNil: true},
		{name: "os and arch", input: "linux/amd64", os: "linux", architecture: "amd64"},
		{
			name:         "os arch and variant",
			input:        "linux/arm64/v8",
			os:           "linux",
			architecture: "arm64",
			variant:      "v8",
		},
		{name: "missing arch", input: "linux", expectErr: true},
		{name: "too many parts", input: "linux/arm/v8/extra", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			platform, err := docker.ParsePlatform(tt.input)

			if tt.expectErr {
				require.ErrorIs(t, err, docker.ErrInvalidPlatform)

				return
			}

			require.NoError(t, err)

			if tt.expectNil {
				assert.Nil(t, platform)

				return
			}

			require.NotNil(t, platform)
			assert.Equal(t, tt.os, platform.OS)
			assert.Equal(t, tt.architecture, platform.Architecture)
			assert.Equal(t, tt.variant, platform.Variant)
		})
	}
}

func TestConstants_ComponentDefaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "dev.happy.deployment", docker.DeploymentLabelKey)
	assert.Equal(t, "dev.happy.component", docker.ComponentLabelKey)
	assert.Equal(t, "unless-stopped", docker.ComponentRestartPolicy)
	assert.Equal(t, "bridge", docker.NetworkDriver)
}

func TestErrConstants(t *testing.T) {
	t.Parallel()

	assert.NotNil(t, docker.ErrAPIClientNil)
	assert.NotNil(t, docker.ErrComponentNotFound)
	assert.NotNil(t, docker.ErrComponentNotReady)
	assert.NotNil(t, docker.ErrHealthCheckCancelled)

	assert.Contains(t, docker.ErrAPIClientNil.Error(), "apiClient")
	assert.Contains(t, docker.ErrComponentNotFound.Error(), "not found")
	assert.Contains(t, docker.ErrComponentNotReady.Error(), "timeout")
}
