//nolint:gochecknoglobals // export_test.go pattern requires global variables to expose internal functions
package docker

import (
	"context"

	"github.com/docker/docker/api/types/container"
)

// Export unexported functions for testing.

// ParsePlatform exports parsePlatform for testing.
var ParsePlatform = parsePlatform

// BuildContainerConfig exports buildContainerConfig for testing.
var BuildContainerConfig = buildContainerConfig

// BuildHostConfig exports buildHostConfig for testing.
var BuildHostConfig = buildHostConfig

// BuildNetworkConfig exports buildNetworkConfig for testing.
var BuildNetworkConfig = buildNetworkConfig

// BuildLabels exports buildLabels for testing.
var BuildLabels = buildLabels

// TCPPortString exports tcpPort for testing.
var TCPPortString = tcpPort

// LastProbeOutput exports lastProbeOutput for testing.
var LastProbeOutput = lastProbeOutput

// CheckComponentHealth exports checkComponentHealth for testing.
func (cm *ComponentManager) CheckComponentHealth(
	ctx context.Context,
	name string,
) (bool, string, error) {
	return cm.checkComponentHealth(ctx, name)
}

// EvaluateHealthStatus exports evaluateHealthStatus for testing.
func (cm *ComponentManager) EvaluateHealthStatus(
	name string,
	health *container.Health,
) (bool, string, error) {
	return cm.evaluateHealthStatus(name, health)
}
