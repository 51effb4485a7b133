// Package provisioner converges the deployment's Docker resources on the
// state described by a Deployment config: the shared network, named volumes,
// component images, and the four containers in dependency order.
package provisioner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/client/docker"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/docker/docker/api/types/container"
	"github.com/joho/godotenv"
)

var (
	// ErrConfigNil is returned when a provisioner is constructed without a config.
	ErrConfigNil = errors.New("deployment config cannot be nil")

	// ErrComponentAPINil is returned when a provisioner is constructed without
	// a component manager.
	ErrComponentAPINil = errors.New("component manager cannot be nil")

	// ErrProxyClientNil is returned by ReloadProxy when no admin client was
	// provided at construction.
	ErrProxyClientNil = errors.New("proxy admin client cannot be nil")

	// ErrUnknownComponent is returned when a component name is not part of the
	// deployment.
	ErrUnknownComponent = errors.New("unknown component")
)

// ComponentAPI is the slice of the Docker component manager the provisioner
// drives. *docker.ComponentManager satisfies it.
type ComponentAPI interface {
	EnsureNetwork(ctx context.Context, name, deployment string) error
	EnsureVolume(ctx context.Context, name, deployment, component string) error
	EnsureImage(ctx context.Context, ref string, out io.Writer) error
	PullImage(ctx context.Context, ref string, out io.Writer) error
	ImageID(ctx context.Context, ref string) (string, error)
	BuildImage(ctx context.Context, contextDir, dockerfile, tag string, buildArgs map[string]*string, out io.Writer) error
	RemoveImage(ctx context.Context, ref string) error
	CreateComponent(ctx context.Context, config docker.ComponentConfig) (string, error)
	WaitForComponentReady(ctx context.Context, name string, timeout time.Duration) error
	FindContainer(ctx context.Context, name string) (container.Summary, error)
	ListComponents(ctx context.Context) ([]container.Summary, error)
	RemoveComponent(ctx context.Context, name string) error
	RemoveNetwork(ctx context.Context, name string) error
	RemoveVolume(ctx context.Context, name string) error
}

// ProxyReloader pushes a new Caddyfile to the proxy's admin API.
// *caddy.Client satisfies it.
type ProxyReloader interface {
	Load(ctx context.Context, caddyfile []byte) error
}

// TeardownOptions controls how much of the deployment Teardown removes.
// Containers and the network always go; volumes and the locally built server
// image only when asked.
type TeardownOptions struct {
	Volumes bool
	Purge   bool
}

// ComponentStatus is the observed state of a single component.
type ComponentStatus struct {
	Name   string
	State  string
	Health string
	Image  string
}

// DeploymentProvisioner creates, inspects, and removes the Docker resources
// of a deployment.
type DeploymentProvisioner struct {
	config     *v1alpha1.Deployment
	components ComponentAPI
	proxy      ProxyReloader
	writer     io.Writer
	timer      timer.Timer
}

// NewDeploymentProvisioner creates a provisioner for the given deployment
// config. The proxy client and timer may be nil; writer defaults to
// os.Stdout.
func NewDeploymentProvisioner(
	config *v1alpha1.Deployment,
	components ComponentAPI,
	proxy ProxyReloader,
	writer io.Writer,
	tmr timer.Timer,
) (*DeploymentProvisioner, error) {
	if config == nil {
		return nil, ErrConfigNil
	}

	if components == nil {
		return nil, ErrComponentAPINil
	}

	if writer == nil {
		writer = os.Stdout
	}

	return &DeploymentProvisioner{
		config:     config,
		components: components,
		proxy:      proxy,
		writer:     writer,
		timer:      tmr,
	}, nil
}

// Deploy converges the whole stack: network and volumes first, then images,
// then the components in dependency order, waiting for each to report
// healthy before starting the next. Existing containers whose image ref
// still matches the config are reused; a reused proxy gets the current
// Caddyfile pushed through the admin API so config edits still apply.
func (p *DeploymentProvisioner) Deploy(ctx context.Context) error {
	env, err := p.loadEnv()
	if err != nil {
		return err
	}

	err = p.ensureFoundation(ctx)
	if err != nil {
		return err
	}

	err = p.pullImages(ctx)
	if err != nil {
		return err
	}

	if p.sourceStrategy() == v1alpha1.SourceStrategyGit {
		err = p.BuildServerImage(ctx)
		if err != nil {
			return err
		}
	}

	proxyReused, err := p.startComponents(ctx, env)
	if err != nil {
		return err
	}

	if proxyReused && p.proxy != nil {
		return p.ReloadProxy(ctx)
	}

	return nil
}

// BuildServerImage builds the server image from the source checkout. It is
// exposed separately so update flows can rebuild without re-running the
// full deploy.
func (p *DeploymentProvisioner) BuildServerImage(ctx context.Context) error {
	contextDir := p.sourceDir()

	notify.Activityf(p.writer, "building '%s' from '%s'", v1alpha1.ServerImageName, contextDir)

	err := p.components.BuildImage(ctx, contextDir, "Dockerfile", v1alpha1.ServerImageName, nil, p.writer)
	if err != nil {
		return fmt.Errorf("build server image: %w", err)
	}

	return nil
}

// PullServerImage pulls the configured server image and reports whether the
// local image changed. Update flows use the result to decide whether the
// server container needs recreating.
func (p *DeploymentProvisioner) PullServerImage(ctx context.Context) (bool, error) {
	ref := p.serverImageRef()

	before, err := p.components.ImageID(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("inspect server image: %w", err)
	}

	notify.Activityf(p.writer, "pulling '%s'", ref)

	err = p.components.PullImage(ctx, ref, p.writer)
	if err != nil {
		return false, fmt.Errorf("pull server image: %w", err)
	}

	after, err := p.components.ImageID(ctx, ref)
	if err != nil {
		return false, fmt.Errorf("inspect server image: %w", err)
	}

	return before != after, nil
}

// Recreate replaces a single component's container and waits for it to
// report healthy again. The new container picks up the current config,
// secrets, and image.
func (p *DeploymentProvisioner) Recreate(ctx context.Context, component string) error {
	err := ValidateComponent(component)
	if err != nil {
		return err
	}

	env, err := p.loadEnv()
	if err != nil {
		return err
	}

	config, err := p.componentConfig(component, env)
	if err != nil {
		return err
	}

	notify.Activityf(p.writer, "recreating '%s'", component)

	err = p.components.RemoveComponent(ctx, component)
	if err != nil {
		return fmt.Errorf("remove %s: %w", component, err)
	}

	_, err = p.components.CreateComponent(ctx, config)
	if err != nil {
		return fmt.Errorf("create %s: %w", component, err)
	}

	err = p.components.WaitForComponentReady(ctx, component, p.readyTimeout())
	if err != nil {
		return fmt.Errorf("wait for %s: %w", component, err)
	}

	return nil
}

// Teardown removes the deployment's containers in reverse dependency order,
// then the network, then optionally the volumes and the locally built server
// image. Resources that are already gone are skipped.
func (p *DeploymentProvisioner) Teardown(ctx context.Context, opts TeardownOptions) error {
	order := v1alpha1.ComponentOrder()

	for i := len(order) - 1; i >= 0; i-- {
		component := order[i]

		notify.Activityf(p.writer, "removing '%s'", component)

		err := p.components.RemoveComponent(ctx, component)
		if err != nil {
			return fmt.Errorf("remove %s: %w", component, err)
		}
	}

	err := p.components.RemoveNetwork(ctx, v1alpha1.NetworkName)
	if err != nil {
		return fmt.Errorf("remove network %s: %w", v1alpha1.NetworkName, err)
	}

	if opts.Volumes || opts.Purge {
		for _, component := range order {
			for _, volume := range v1alpha1.VolumeNames(component) {
				err := p.components.RemoveVolume(ctx, volume)
				if err != nil {
					return fmt.Errorf("remove volume %s: %w", volume, err)
				}
			}
		}
	}

	if opts.Purge {
		err := p.components.RemoveImage(ctx, v1alpha1.ServerImageName)
		if err != nil {
			return fmt.Errorf("remove image %s: %w", v1alpha1.ServerImageName, err)
		}
	}

	return nil
}

// Status reports the observed state of every component in dependency order.
// Components without a container are reported with state "missing".
func (p *DeploymentProvisioner) Status(ctx context.Context) ([]ComponentStatus, error) {
	containers, err := p.components.ListComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}

	byComponent := make(map[string]container.Summary, len(containers))

	for _, summary := range containers {
		if component, ok := summary.Labels[docker.ComponentLabelKey]; ok {
			byComponent[component] = summary
		}
	}

	statuses := make([]ComponentStatus, 0, len(v1alpha1.ComponentOrder()))

	for _, component := range v1alpha1.ComponentOrder() {
		summary, found := byComponent[component]
		if !found {
			statuses = append(statuses, ComponentStatus{Name: component, State: "missing", Health: "-"})

			continue
		}

		statuses = append(statuses, ComponentStatus{
			Name:   component,
			State:  summary.State,
			Health: healthFromStatus(summary.Status),
			Image:  summary.Image,
		})
	}

	return statuses, nil
}

// ReloadProxy pushes the current Caddyfile to the proxy's admin API so
// config and certificate changes apply without a container restart. When
// the admin API rejects the load, the proxy container is recreated instead
// and picks the file up from its mount.
func (p *DeploymentProvisioner) ReloadProxy(ctx context.Context) error {
	if p.proxy == nil {
		return ErrProxyClientNil
	}

	path := filepath.Join(p.configDir(), v1alpha1.CaddyfileName)

	caddyfile, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read Caddyfile: %w", err)
	}

	err = p.proxy.Load(ctx, caddyfile)
	if err == nil {
		return nil
	}

	notify.Warningf(p.writer, "proxy admin reload failed (%v), falling back to recreate", err)

	err = p.Recreate(ctx, v1alpha1.ComponentProxy)
	if err != nil {
		return fmt.Errorf("reload proxy: %w", err)
	}

	return nil
}

// ValidateComponent checks that the given name is one of the deployment's
// components.
func ValidateComponent(component string) error {
	if slices.Contains(v1alpha1.ComponentOrder(), component) {
		return nil
	}

	return fmt.Errorf("%w: '%s', valid components are %s",
		ErrUnknownComponent, component, strings.Join(v1alpha1.ComponentOrder(), ", "))
}

func (p *DeploymentProvisioner) loadEnv() (map[string]string, error) {
	path := filepath.Join(p.configDir(), v1alpha1.EnvFileName)

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read secrets file %s, run 'happyctl init' to scaffold it: %w", path, err)
	}

	return env, nil
}

func (p *DeploymentProvisioner) ensureFoundation(ctx context.Context) error {
	err := p.components.EnsureNetwork(ctx, v1alpha1.NetworkName, p.deploymentName())
	if err != nil {
		return fmt.Errorf("ensure network %s: %w", v1alpha1.NetworkName, err)
	}

	for _, component := range v1alpha1.ComponentOrder() {
		for _, volume := range v1alpha1.VolumeNames(component) {
			err := p.components.EnsureVolume(ctx, volume, p.deploymentName(), component)
			if err != nil {
				return fmt.Errorf("ensure volume %s: %w", volume, err)
			}
		}
	}

	return nil
}

func (p *DeploymentProvisioner) pullImages(ctx context.Context) error {
	refs := []string{p.databaseImage(), p.cacheImage(), p.proxyImage()}

	if p.sourceStrategy() == v1alpha1.SourceStrategyImage {
		refs = append(refs, p.serverImageRef())
	}

	group := notify.NewProgressGroup("Pull images", "🐳", p.writer,
		notify.WithLabels(notify.PullingLabels()),
		notify.WithTimer(p.timer),
	)

	tasks := make([]notify.ProgressTask, 0, len(refs))

	for _, ref := range refs {
		tasks = append(tasks, notify.ProgressTask{
			Name: ref,
			Fn: func(ctx context.Context) error {
				return p.components.EnsureImage(ctx, ref, nil)
			},
		})
	}

	return group.Run(ctx, tasks...)
}

// startComponents converges every component in dependency order and reports
// whether the proxy container was reused rather than created.
func (p *DeploymentProvisioner) startComponents(ctx context.Context, env map[string]string) (bool, error) {
	proxyReused := false

	for _, component := range v1alpha1.ComponentOrder() {
		config, err := p.componentConfig(component, env)
		if err != nil {
			return false, err
		}

		notify.Activityf(p.writer, "starting '%s'", component)

		reused, err := p.ensureComponent(ctx, config)
		if err != nil {
			return false, fmt.Errorf("start %s: %w", component, err)
		}

		if component == v1alpha1.ComponentProxy {
			proxyReused = reused
		}

		err = p.components.WaitForComponentReady(ctx, component, p.readyTimeout())
		if err != nil {
			return false, fmt.Errorf("wait for %s: %w", component, err)
		}
	}

	return proxyReused, nil
}

// ensureComponent reuses an existing container when its image ref still
// matches the config, and recreates it when the ref drifted. It reports
// whether an existing container was reused.
func (p *DeploymentProvisioner) ensureComponent(ctx context.Context, config docker.ComponentConfig) (bool, error) {
	reused := false

	existing, err := p.components.FindContainer(ctx, config.Name)

	switch {
	case err == nil && existing.Image != config.Image:
		notify.Activityf(p.writer, "image for '%s' changed from '%s' to '%s', recreating",
			config.Name, existing.Image, config.Image)

		err = p.components.RemoveComponent(ctx, config.Name)
		if err != nil {
			return false, err
		}
	case err == nil:
		reused = true
	case !errors.Is(err, docker.ErrComponentNotFound):
		return false, err
	}

	_, err = p.components.CreateComponent(ctx, config)

	return reused, err
}

func healthFromStatus(status string) string {
	switch {
	case strings.Contains(status, "(healthy)"):
		return "healthy"
	case strings.Contains(status, "(unhealthy)"):
		return "unhealthy"
	case strings.Contains(status, "health: starting"):
		return "starting"
	default:
		return "-"
	}
}
