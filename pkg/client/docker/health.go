package docker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
)

// WaitForComponentReady waits for a component container to report healthy by
// polling container inspection. Containers without a configured healthcheck
// count as ready once running.
func (cm *ComponentManager) WaitForComponentReady(
	ctx context.Context,
	name string,
	timeout time.Duration,
) error {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}

	deadline := time.Now().Add(timeout)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrHealthCheckCancelled, err)
	}

	// Check once up front so an already-healthy container doesn't pay the
	// poll interval.
	ready, lastState, err := cm.checkComponentHealth(ctx, name)
	if err != nil {
		return err
	}

	if ready {
		return nil
	}

	ticker := time.NewTicker(HealthPollInterval)

	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrHealthCheckCancelled, ctx.Err())
		case <-ticker.C:
			if time.Now().After(deadline) {
				return cm.buildReadyTimeoutError(name, lastState)
			}

			ready, state, err := cm.checkComponentHealth(ctx, name)
			if err != nil {
				return err
			}

			lastState = state

			if ready {
				return nil
			}
		}
	}
}

// checkComponentHealth inspects the container once. Returns readiness, a
// state description for error context, and a hard error when the container
// is gone or has permanently failed.
func (cm *ComponentManager) checkComponentHealth(
	ctx context.Context,
	name string,
) (bool, string, error) {
	found, err := cm.FindContainer(ctx, name)
	if err != nil {
		return false, "", err
	}

	inspect, err := cm.client.ContainerInspect(ctx, found.ID)
	if err != nil {
		return false, "", fmt.Errorf("failed to inspect container %s: %w", name, err)
	}

	state := inspect.State
	if state == nil {
		return false, "unknown", nil
	}

	if state.Health != nil {
		return cm.evaluateHealthStatus(name, state.Health)
	}

	if state.Running {
		return true, containerRunningState, nil
	}

	if state.Status == "exited" && state.ExitCode != 0 {
		return false, state.Status, fmt.Errorf(
			"%w: %s exited with code %d",
			ErrComponentNotReady,
			name,
			state.ExitCode,
		)
	}

	return false, state.Status, nil
}

// evaluateHealthStatus maps a Docker health status to readiness.
// An unhealthy container fails fast with the last probe output attached.
func (cm *ComponentManager) evaluateHealthStatus(
	name string,
	health *container.Health,
) (bool, string, error) {
	status := string(health.Status)

	switch status {
	case "healthy":
		return true, status, nil
	case "unhealthy":
		return false, status, fmt.Errorf(
			"%w: %s is unhealthy%s",
			ErrComponentNotReady,
			name,
			lastProbeOutput(health),
		)
	default:
		// "starting" or "none"; keep polling.
		return false, status, nil
	}
}

// lastProbeOutput formats the most recent health probe output for error context.
func lastProbeOutput(health *container.Health) string {
	if len(health.Log) == 0 {
		return ""
	}

	last := health.Log[len(health.Log)-1]
	if last == nil {
		return ""
	}

	output := strings.TrimSpace(last.Output)
	if output == "" {
		return ""
	}

	return fmt.Sprintf(" (last probe: %s)", output)
}

// buildReadyTimeoutError creates the timeout error with optional last state context.
func (cm *ComponentManager) buildReadyTimeoutError(name, lastState string) error {
	if lastState != "" {
		return fmt.Errorf("%w: %s (last state: %s)", ErrComponentNotReady, name, lastState)
	}

	return fmt.Errorf("%w: %s", ErrComponentNotReady, name)
}
