package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// LogsOptions control how component logs are streamed.
type LogsOptions struct {
	// Follow keeps the stream open and tails new output.
	Follow bool
	// Tail limits output to the last N lines ("all" for everything).
	Tail string
}

// ComponentLogs streams a component's stdout and stderr to the given writers.
// The Docker log stream multiplexes both onto one connection, so it is
// demultiplexed here.
func (cm *ComponentManager) ComponentLogs(
	ctx context.Context,
	name string,
	opts LogsOptions,
	stdout, stderr io.Writer,
) error {
	found, err := cm.FindContainer(ctx, name)
	if err != nil {
		return err
	}

	tail := opts.Tail
	if tail == "" {
		tail = "all"
	}

	reader, err := cm.client.ContainerLogs(ctx, found.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     opts.Follow,
		Tail:       tail,
	})
	if err != nil {
		return fmt.Errorf("failed to read logs for %s: %w", name, err)
	}

	defer func() { _ = reader.Close() }()

	_, err = stdcopy.StdCopy(stdout, stderr, reader)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to demultiplex logs for %s: %w", name, err)
	}

	return nil
}
