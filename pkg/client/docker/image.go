package docker

import (
	"context"
	"fmt"
	"io"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/archive"
	"github.com/docker/docker/pkg/jsonmessage"
)

// Image management.

// EnsureImage pulls the image if not already present locally. Pull progress
// is streamed to out when provided and discarded otherwise.
func (cm *ComponentManager) EnsureImage(ctx context.Context, ref string, out io.Writer) error {
	// Check if image exists
	_, err := cm.client.ImageInspect(ctx, ref)
	if err == nil {
		return nil
	}

	reader, err := cm.client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}

	err = consumeDockerStream(reader, out)
	closeErr := reader.Close()

	if err != nil {
		return fmt.Errorf("failed to read image pull output: %w", err)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close image pull reader: %w", closeErr)
	}

	return nil
}

// PullImage pulls the image even when a local copy exists, refreshing
// mutable tags like latest. Pull progress is streamed to out when provided.
func (cm *ComponentManager) PullImage(ctx context.Context, ref string, out io.Writer) error {
	reader, err := cm.client.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}

	err = consumeDockerStream(reader, out)
	closeErr := reader.Close()

	if err != nil {
		return fmt.Errorf("failed to read image pull output: %w", err)
	}

	if closeErr != nil {
		return fmt.Errorf("failed to close image pull reader: %w", closeErr)
	}

	return nil
}

// ImageID returns the local content ID of an image, or "" when the image is
// not present. Comparing IDs across a pull detects whether a mutable tag
// moved.
func (cm *ComponentManager) ImageID(ctx context.Context, ref string) (string, error) {
	inspect, err := cm.client.ImageInspect(ctx, ref)
	if err != nil {
		if cerrdefs.IsNotFound(err) {
			return "", nil
		}

		return "", fmt.Errorf("failed to inspect image %s: %w", ref, err)
	}

	return inspect.ID, nil
}

// BuildImage builds an image from the given context directory under the given
// tag. Build output is streamed to out; errors emitted by the builder surface
// as errors.
func (cm *ComponentManager) BuildImage(
	ctx context.Context,
	contextDir, dockerfile, tag string,
	buildArgs map[string]*string,
	out io.Writer,
) error {
	buildContext, err := archive.TarWithOptions(contextDir, &archive.TarOptions{})
	if err != nil {
		return fmt.Errorf("failed to tar build context %s: %w", contextDir, err)
	}

	defer func() { _ = buildContext.Close() }()

	resp, err := cm.client.ImageBuild(ctx, buildContext, build.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: dockerfile,
		BuildArgs:  buildArgs,
		Remove:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to start image build for %s: %w", tag, err)
	}

	defer func() { _ = resp.Body.Close() }()

	err = consumeDockerStream(resp.Body, out)
	if err != nil {
		return fmt.Errorf("image build for %s failed: %w", tag, err)
	}

	return nil
}

// RemoveImage removes a locally built image. Missing images are tolerated.
func (cm *ComponentManager) RemoveImage(ctx context.Context, ref string) error {
	_, err := cm.client.ImageRemove(ctx, ref, image.RemoveOptions{PruneChildren: true})
	if err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("failed to remove image %s: %w", ref, err)
	}

	return nil
}

// consumeDockerStream decodes the JSON progress stream emitted by image pull
// and build operations, forwarding readable progress to out. Errors embedded
// in the stream are returned as errors.
func consumeDockerStream(reader io.Reader, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}

	return jsonmessage.DisplayJSONMessagesStream(reader, out, 0, false, nil)
}
