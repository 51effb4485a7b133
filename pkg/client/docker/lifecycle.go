package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
)

// Query operations for component containers.

// FindContainer finds the deployment container with the given exact name.
// Returns ErrComponentNotFound when no such container exists.
func (cm *ComponentManager) FindContainer(
	ctx context.Context,
	name string,
) (container.Summary, error) {
	filterArgs := filters.NewArgs()
	// Use exact name match with regex anchor to avoid partial matches
	filterArgs.Add("name", "^/"+name+"$")
	filterArgs.Add("label", DeploymentLabelKey)

	containers, err := cm.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return container.Summary{}, fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return container.Summary{}, fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}

	return containers[0], nil
}

// ListComponents returns all containers belonging to the deployment.
func (cm *ComponentManager) ListComponents(ctx context.Context) ([]container.Summary, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("label", DeploymentLabelKey)

	containers, err := cm.client.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list deployment containers: %w", err)
	}

	return containers, nil
}

// IsComponentRunning checks whether the named component container is running.
// A missing container is reported as not running, not as an error.
func (cm *ComponentManager) IsComponentRunning(ctx context.Context, name string) (bool, error) {
	found, err := cm.FindContainer(ctx, name)
	if errors.Is(err, ErrComponentNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return strings.EqualFold(found.State, containerRunningState), nil
}

// Lifecycle operations.

// StartComponent starts the named component container if it isn't running.
func (cm *ComponentManager) StartComponent(ctx context.Context, name string) error {
	found, err := cm.FindContainer(ctx, name)
	if err != nil {
		return err
	}

	return cm.startIfStopped(ctx, found.ID, found.State)
}

// StopComponent stops the named component container if it is running.
// A missing container is tolerated so teardown stays idempotent.
func (cm *ComponentManager) StopComponent(ctx context.Context, name string) error {
	found, err := cm.FindContainer(ctx, name)
	if errors.Is(err, ErrComponentNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	if !strings.EqualFold(found.State, containerRunningState) {
		return nil
	}

	err = cm.client.ContainerStop(ctx, found.ID, container.StopOptions{})
	if err != nil {
		return fmt.Errorf("failed to stop container %s: %w", name, err)
	}

	return nil
}

// RemoveComponent stops and removes the named component container.
// A missing container is tolerated so teardown stays idempotent.
func (cm *ComponentManager) RemoveComponent(ctx context.Context, name string) error {
	found, err := cm.FindContainer(ctx, name)
	if errors.Is(err, ErrComponentNotFound) {
		return nil
	}

	if err != nil {
		return err
	}

	err = cm.StopComponent(ctx, name)
	if err != nil {
		return err
	}

	err = cm.client.ContainerRemove(ctx, found.ID, container.RemoveOptions{})
	if err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove container %s: %w", name, err)
	}

	return nil
}

// RemoveNetwork removes the deployment network. Missing networks are tolerated.
func (cm *ComponentManager) RemoveNetwork(ctx context.Context, name string) error {
	err := cm.client.NetworkRemove(ctx, name)
	if err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove network %s: %w", name, err)
	}

	return nil
}

// RemoveVolume removes a named volume. Missing volumes are tolerated.
func (cm *ComponentManager) RemoveVolume(ctx context.Context, name string) error {
	err := cm.client.VolumeRemove(ctx, name, false)
	if err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove volume %s: %w", name, err)
	}

	return nil
}
