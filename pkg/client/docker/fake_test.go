package docker_test

import (
	"bytes"
	"context"
	"fmt"
	"io"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// fakeAPIClient implements the slice of client.APIClient the component
// manager uses. The embedded nil interface panics on anything unexpected,
// which keeps the fake honest about what the manager actually calls.
type fakeAPIClient struct {
	client.APIClient

	containers []container.Summary
	inspect    map[string]container.InspectResponse

	created []string
	started []string
	stopped []string
	removed []string

	networkExists   bool
	createdNetworks []string
	removedNetworks []string
	networkRemoveErr error

	volumeExists   bool
	createdVolumes []string
	removedVolumes []string
	volumeRemoveErr error

	imageExists bool
	imageID     string
	pulled      []string
	pullBody    string
	buildBody   string
	removedImages []string
	imageRemoveErr error

	logsBody []byte

	lastContainerConfig *container.Config
	lastHostConfig      *container.HostConfig
	lastNetworkConfig   *network.NetworkingConfig
	lastPlatform        *ocispec.Platform
	lastVolumeOptions   volume.CreateOptions
	lastNetworkOptions  network.CreateOptions
	lastBuildOptions    build.ImageBuildOptions
}

func (f *fakeAPIClient) ContainerList(
	_ context.Context,
	_ container.ListOptions,
) ([]container.Summary, error) {
	return f.containers, nil
}

func (f *fakeAPIClient) ContainerCreate(
	_ context.Context,
	config *container.Config,
	hostConfig *container.HostConfig,
	networkingConfig *network.NetworkingConfig,
	platform *ocispec.Platform,
	containerName string,
) (container.CreateResponse, error) {
	f.created = append(f.created, containerName)
	f.lastContainerConfig = config
	f.lastHostConfig = hostConfig
	f.lastNetworkConfig = networkingConfig
	f.lastPlatform = platform

	return container.CreateResponse{ID: "id-" + containerName}, nil
}

func (f *fakeAPIClient) ContainerStart(
	_ context.Context,
	containerID string,
	_ container.StartOptions,
) error {
	f.started = append(f.started, containerID)

	return nil
}

func (f *fakeAPIClient) ContainerStop(
	_ context.Context,
	containerID string,
	_ container.StopOptions,
) error {
	f.stopped = append(f.stopped, containerID)

	return nil
}

func (f *fakeAPIClient) ContainerRemove(
	_ context.Context,
	containerID string,
	_ container.RemoveOptions,
) error {
	f.removed = append(f.removed, containerID)

	return nil
}

func (f *fakeAPIClient) ContainerInspect(
	_ context.Context,
	containerID string,
) (container.InspectResponse, error) {
	resp, ok := f.inspect[containerID]
	if !ok {
		return container.InspectResponse{}, fmt.Errorf(
			"no such container: %w", cerrdefs.ErrNotFound,
		)
	}

	return resp, nil
}

func (f *fakeAPIClient) ContainerLogs(
	_ context.Context,
	_ string,
	_ container.LogsOptions,
) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.logsBody)), nil
}

func (f *fakeAPIClient) NetworkInspect(
	_ context.Context,
	_ string,
	_ network.InspectOptions,
) (network.Inspect, error) {
	if f.networkExists {
		return network.Inspect{}, nil
	}

	return network.Inspect{}, fmt.Errorf("no such network: %w", cerrdefs.ErrNotFound)
}

func (f *fakeAPIClient) NetworkCreate(
	_ context.Context,
	name string,
	options network.CreateOptions,
) (network.CreateResponse, error) {
	f.createdNetworks = append(f.createdNetworks, name)
	f.lastNetworkOptions = options

	return network.CreateResponse{ID: "net-" + name}, nil
}

func (f *fakeAPIClient) NetworkRemove(_ context.Context, name string) error {
	if f.networkRemoveErr != nil {
		return f.networkRemoveErr
	}

	f.removedNetworks = append(f.removedNetworks, name)

	return nil
}

func (f *fakeAPIClient) VolumeInspect(
	_ context.Context,
	volumeID string,
) (volume.Volume, error) {
	if f.volumeExists {
		return volume.Volume{Name: volumeID}, nil
	}

	return volume.Volume{}, fmt.Errorf("no such volume: %w", cerrdefs.ErrNotFound)
}

func (f *fakeAPIClient) VolumeCreate(
	_ context.Context,
	options volume.CreateOptions,
) (volume.Volume, error) {
	f.createdVolumes = append(f.createdVolumes, options.Name)
	f.lastVolumeOptions = options

	return volume.Volume{Name: options.Name}, nil
}

func (f *fakeAPIClient) VolumeRemove(_ context.Context, volumeID string, _ bool) error {
	if f.volumeRemoveErr != nil {
		return f.volumeRemoveErr
	}

	f.removedVolumes = append(f.removedVolumes, volumeID)

	return nil
}

func (f *fakeAPIClient) ImageInspect(
	_ context.Context,
	_ string,
	_ ...client.ImageInspectOption,
) (image.InspectResponse, error) {
	if f.imageExists {
		return image.InspectResponse{ID: f.imageID}, nil
	}

	return image.InspectResponse{}, fmt.Errorf("no such image: %w", cerrdefs.ErrNotFound)
}

func (f *fakeAPIClient) ImagePull(
	_ context.Context,
	refStr string,
	_ image.PullOptions,
) (io.ReadCloser, error) {
	f.pulled = append(f.pulled, refStr)

	body := f.pullBody
	if body == "" {
		body = `{"status":"Pulling from library/test"}` + "\n"
	}

	return io.NopCloser(bytes.NewReader([]byte(body))), nil
}

func (f *fakeAPIClient) ImageBuild(
	_ context.Context,
	buildContext io.Reader,
	options build.ImageBuildOptions,
) (build.ImageBuildResponse, error) {
	// Drain the tar stream the way the daemon would.
	_, _ = io.Copy(io.Discard, buildContext)
	f.lastBuildOptions = options

	body := f.buildBody
	if body == "" {
		body = `{"stream":"Step 1/1 : FROM scratch"}` + "\n"
	}

	return build.ImageBuildResponse{
		Body:   io.NopCloser(bytes.NewReader([]byte(body))),
		OSType: "linux",
	}, nil
}

func (f *fakeAPIClient) ImageRemove(
	_ context.Context,
	imageID string,
	_ image.RemoveOptions,
) ([]image.DeleteResponse, error) {
	if f.imageRemoveErr != nil {
		return nil, f.imageRemoveErr
	}

	f.removedImages = append(f.removedImages, imageID)

	return []image.DeleteResponse{{Deleted: imageID}}, nil
}
