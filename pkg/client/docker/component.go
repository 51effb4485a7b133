package docker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Component error definitions.
var (
	// ErrAPIClientNil is returned when apiClient is nil.
	ErrAPIClientNil = errors.New("apiClient cannot be nil")
	// ErrComponentNotFound is returned when a component container is not found.
	ErrComponentNotFound = errors.New("component container not found")
	// ErrComponentNotReady is returned when a component fails to become healthy within the timeout.
	ErrComponentNotReady = errors.New("component not ready within timeout")
	// ErrHealthCheckCancelled is returned when the health wait is cancelled via context.
	ErrHealthCheckCancelled = errors.New("component health check cancelled")
	// ErrInvalidPlatform is returned when a platform string cannot be parsed.
	ErrInvalidPlatform = errors.New("invalid platform")
)

const (
	// Component labeling and identification.

	// DeploymentLabelKey marks Docker objects as managed by happyctl,
	// valued with the deployment domain.
	DeploymentLabelKey = "dev.happy.deployment"
	// ComponentLabelKey records which deployment component an object belongs to.
	ComponentLabelKey = "dev.happy.component"

	// Component container configuration.

	// ComponentRestartPolicy defines the container restart policy.
	ComponentRestartPolicy = "unless-stopped"
	// NetworkDriver is the driver used for the deployment network.
	NetworkDriver = "bridge"

	// Component health check configuration.

	// HealthPollInterval is the interval between container health inspections.
	HealthPollInterval = 1 * time.Second
	// DefaultReadyTimeout is the maximum time to wait for a component to report healthy.
	DefaultReadyTimeout = 2 * time.Minute

	containerRunningState = "running"
)

// ComponentManager manages the containers, network, and volumes of a Happy
// deployment through the Docker Engine API.
type ComponentManager struct {
	client client.APIClient
}

// NewComponentManager creates a new ComponentManager.
func NewComponentManager(apiClient client.APIClient) (*ComponentManager, error) {
	if apiClient == nil {
		return nil, ErrAPIClientNil
	}

	return &ComponentManager{
		client: apiClient,
	}, nil
}

// PortBinding publishes a container port on a host interface.
type PortBinding struct {
	// HostIP is the host interface to bind. Empty binds all interfaces.
	HostIP string
	// HostPort is the port published on the host.
	HostPort int32
	// ContainerPort is the TCP port inside the container.
	ContainerPort int32
}

// VolumeMount mounts a named volume into the container.
type VolumeMount struct {
	Name   string
	Target string
}

// BindMount mounts a host path into the container.
type BindMount struct {
	Source   string
	Target   string
	ReadOnly bool
}

// ComponentConfig holds configuration for creating a component container.
type ComponentConfig struct {
	Name        string
	Image       string
	Deployment  string
	Component   string
	Env         []string
	Cmd         []string
	Ports       []PortBinding
	Volumes     []VolumeMount
	Binds       []BindMount
	NetworkName string
	Healthcheck *container.HealthConfig
	Platform    string
}

// CreateComponent creates and starts a component container. If a container
// with the same name already exists it is started when stopped and its ID
// returned, so repeated installs converge instead of failing.
func (cm *ComponentManager) CreateComponent(
	ctx context.Context,
	config ComponentConfig,
) (string, error) {
	existing, err := cm.FindContainer(ctx, config.Name)
	if err == nil {
		return existing.ID, cm.startIfStopped(ctx, existing.ID, existing.State)
	}

	if !errors.Is(err, ErrComponentNotFound) {
		return "", err
	}

	platform, err := parsePlatform(config.Platform)
	if err != nil {
		return "", err
	}

	resp, err := cm.client.ContainerCreate(
		ctx,
		buildContainerConfig(config),
		buildHostConfig(config),
		buildNetworkConfig(config),
		platform,
		config.Name,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create container %s: %w", config.Name, err)
	}

	err = cm.client.ContainerStart(ctx, resp.ID, container.StartOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to start container %s: %w", config.Name, err)
	}

	return resp.ID, nil
}

// startIfStopped starts an existing container unless it is already running.
func (cm *ComponentManager) startIfStopped(
	ctx context.Context,
	containerID, state string,
) error {
	if strings.EqualFold(state, containerRunningState) {
		return nil
	}

	err := cm.client.ContainerStart(ctx, containerID, container.StartOptions{})
	if err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	return nil
}

// EnsureNetwork creates the deployment bridge network if it doesn't already exist.
func (cm *ComponentManager) EnsureNetwork(ctx context.Context, name, deployment string) error {
	_, err := cm.client.NetworkInspect(ctx, name, network.InspectOptions{})
	if err == nil {
		return nil
	}

	if !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to inspect network %s: %w", name, err)
	}

	_, err = cm.client.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: NetworkDriver,
		Labels: map[string]string{
			DeploymentLabelKey: deployment,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create network %s: %w", name, err)
	}

	return nil
}

// EnsureVolume creates a named volume if it doesn't already exist.
func (cm *ComponentManager) EnsureVolume(
	ctx context.Context,
	name, deployment, component string,
) error {
	_, err := cm.client.VolumeInspect(ctx, name)
	if err == nil {
		return nil
	}

	if !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to inspect volume %s: %w", name, err)
	}

	_, err = cm.client.VolumeCreate(ctx, volume.CreateOptions{
		Name: name,
		Labels: map[string]string{
			DeploymentLabelKey: deployment,
			ComponentLabelKey:  component,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create volume %s: %w", name, err)
	}

	return nil
}

// Configuration builders.

// buildContainerConfig builds the container configuration for a component.
func buildContainerConfig(config ComponentConfig) *container.Config {
	exposed := nat.PortSet{}
	for _, binding := range config.Ports {
		exposed[tcpPort(binding.ContainerPort)] = struct{}{}
	}

	return &container.Config{
		Image:        config.Image,
		Cmd:          config.Cmd,
		Env:          config.Env,
		ExposedPorts: exposed,
		Labels:       buildLabels(config),
		Healthcheck:  config.Healthcheck,
	}
}

// buildHostConfig builds the host configuration including port bindings and mounts.
func buildHostConfig(config ComponentConfig) *container.HostConfig {
	portBindings := nat.PortMap{}

	for _, binding := range config.Ports {
		portBindings[tcpPort(binding.ContainerPort)] = []nat.PortBinding{
			{
				HostIP:   binding.HostIP,
				HostPort: strconv.Itoa(int(binding.HostPort)),
			},
		}
	}

	mounts := make([]mount.Mount, 0, len(config.Volumes)+len(config.Binds))
	for _, volumeMount := range config.Volumes {
		mounts = append(mounts, mount.Mount{
			Type:   mount.TypeVolume,
			Source: volumeMount.Name,
			Target: volumeMount.Target,
		})
	}

	for _, bindMount := range config.Binds {
		mounts = append(mounts, mount.Mount{
			Type:     mount.TypeBind,
			Source:   bindMount.Source,
			Target:   bindMount.Target,
			ReadOnly: bindMount.ReadOnly,
		})
	}

	return &container.HostConfig{
		PortBindings: portBindings,
		RestartPolicy: container.RestartPolicy{
			Name: ComponentRestartPolicy,
		},
		Mounts: mounts,
	}
}

// buildNetworkConfig builds the network configuration attaching the component
// to the deployment network.
func buildNetworkConfig(config ComponentConfig) *network.NetworkingConfig {
	if config.NetworkName == "" {
		return nil
	}

	return &network.NetworkingConfig{
		EndpointsConfig: map[string]*network.EndpointSettings{
			config.NetworkName: {},
		},
	}
}

// buildLabels builds the ownership labels for a component container.
func buildLabels(config ComponentConfig) map[string]string {
	labels := map[string]string{}
	if config.Deployment != "" {
		labels[DeploymentLabelKey] = config.Deployment
	}

	if config.Component != "" {
		labels[ComponentLabelKey] = config.Component
	}

	return labels
}

// tcpPort formats a container port as a nat.Port.
func tcpPort(port int32) nat.Port {
	return nat.Port(strconv.Itoa(int(port)) + "/tcp")
}

// parsePlatform converts an "os/arch" string into an OCI platform.
// Empty input selects the host platform.
func parsePlatform(value string) (*ocispec.Platform, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}

	parts := strings.Split(trimmed, "/")
	switch len(parts) {
	case 2:
		return &ocispec.Platform{OS: parts[0], Architecture: parts[1]}, nil
	case 3:
		return &ocispec.Platform{OS: parts[0], Architecture: parts[1], Variant: parts[2]}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPlatform, value)
	}
}
