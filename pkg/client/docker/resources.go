package docker

import (
	"fmt"

	"github.com/docker/docker/client"
)

// Resources holds the Docker client and component manager for cleanup.
// Use NewResources to create an instance.
type Resources struct {
	Client           client.APIClient
	ComponentManager *ComponentManager
}

// NewResources creates a Docker client and component manager.
// The caller is responsible for calling Close() on the returned Resources.
func NewResources() (*Resources, error) {
	dockerClient, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}

	componentManager, err := NewComponentManager(dockerClient)
	if err != nil {
		_ = dockerClient.Close()

		return nil, fmt.Errorf("create component manager: %w", err)
	}

	return &Resources{
		Client:           dockerClient,
		ComponentManager: componentManager,
	}, nil
}

// Close releases the Docker client resources.
func (r *Resources) Close() {
	if r.Client != nil {
		_ = r.Client.Close()
	}
}

// Shutdown closes the Docker client when the owning injector shuts down.
func (r *Resources) Shutdown() error {
	r.Close()

	return nil
}
