// Package dockerengineinstaller installs the Docker engine from Docker's
// official apt repository.
package dockerengineinstaller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jaydooooooo/happy-code/pkg/svc/installer/osrelease"
	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
	"github.com/docker/docker/api/types"
)

// Name identifies the installer in progress output.
const Name = "docker-engine"

const (
	aptRepositoryBase      = "https://download.docker.com/linux"
	defaultKeyringPath     = "/etc/apt/keyrings/docker.asc"
	defaultSourcesListPath = "/etc/apt/sources.list.d/docker.list"
	sourcesListPerm        = 0o644
)

// ErrUnsupportedOS indicates the host cannot install Docker through apt.
var ErrUnsupportedOS = errors.New("docker engine installation requires an apt-based distribution")

// enginePackages are installed together. The buildx plugin is required for
// building the server image; compose is installed for operator convenience.
var enginePackages = []string{
	"docker-ce",
	"docker-ce-cli",
	"containerd.io",
	"docker-buildx-plugin",
	"docker-compose-plugin",
}

// EnginePinger reports whether a Docker daemon is reachable. The Docker SDK
// client satisfies it.
type EnginePinger interface {
	Ping(ctx context.Context) (types.Ping, error)
}

// DockerEngineInstaller installs the Docker engine packages and enables the
// docker service.
type DockerEngineInstaller struct {
	runner    runner.CommandRunner
	pinger    EnginePinger
	osRelease osrelease.OSRelease

	// KeyringPath and SourcesListPath exist as fields so tests can redirect
	// the file writes.
	KeyringPath     string
	SourcesListPath string
}

// NewDockerEngineInstaller creates a Docker engine installer. A nil pinger
// means no daemon client could be constructed, which is the normal state on
// a host without Docker.
func NewDockerEngineInstaller(
	commandRunner runner.CommandRunner,
	pinger EnginePinger,
	osRelease osrelease.OSRelease,
) *DockerEngineInstaller {
	return &DockerEngineInstaller{
		runner:          commandRunner,
		pinger:          pinger,
		osRelease:       osRelease,
		KeyringPath:     defaultKeyringPath,
		SourcesListPath: defaultSourcesListPath,
	}
}

// Name returns the installer name.
func (d *DockerEngineInstaller) Name() string { return Name }

// Install sets up Docker's apt repository and installs the engine packages.
// A reachable daemon short-circuits the whole sequence.
func (d *DockerEngineInstaller) Install(ctx context.Context) error {
	if d.engineReachable(ctx) {
		return nil
	}

	if !d.osRelease.IsDebianLike() {
		return fmt.Errorf("%w, got %s", ErrUnsupportedOS, d.osRelease.Describe())
	}

	if d.osRelease.VersionCodename == "" {
		return fmt.Errorf("%w: missing VERSION_CODENAME in os-release", ErrUnsupportedOS)
	}

	err := d.configureAptRepository(ctx)
	if err != nil {
		return err
	}

	err = d.installPackages(ctx)
	if err != nil {
		return err
	}

	return d.enableService(ctx)
}

// Uninstall removes the engine packages and the repository configuration.
func (d *DockerEngineInstaller) Uninstall(ctx context.Context) error {
	args := append([]string{"remove", "-y"}, enginePackages...)

	_, err := d.runner.Run(ctx, "apt-get", args...)
	if err != nil {
		return fmt.Errorf("remove engine packages: %w", err)
	}

	for _, path := range []string{d.SourcesListPath, d.KeyringPath} {
		removeErr := os.Remove(path)
		if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, removeErr)
		}
	}

	return nil
}

func (d *DockerEngineInstaller) engineReachable(ctx context.Context) bool {
	if d.pinger == nil {
		return false
	}

	_, err := d.pinger.Ping(ctx)

	return err == nil
}

// configureAptRepository trusts Docker's signing key and registers the
// distribution-specific package source.
func (d *DockerEngineInstaller) configureAptRepository(ctx context.Context) error {
	steps := [][]string{
		{"apt-get", "update"},
		{"apt-get", "install", "-y", "ca-certificates", "curl"},
		{"install", "-m", "0755", "-d", filepath.Dir(d.KeyringPath)},
		{"curl", "-fsSL", d.signingKeyURL(), "-o", d.KeyringPath},
		{"chmod", "a+r", d.KeyringPath},
	}

	for _, step := range steps {
		_, err := d.runner.Run(ctx, step[0], step[1:]...)
		if err != nil {
			return fmt.Errorf("configure apt repository: %w", err)
		}
	}

	line, err := d.sourcesListLine(ctx)
	if err != nil {
		return err
	}

	err = os.WriteFile(d.SourcesListPath, []byte(line+"\n"), sourcesListPerm)
	if err != nil {
		return fmt.Errorf("write apt source %s: %w", d.SourcesListPath, err)
	}

	_, err = d.runner.Run(ctx, "apt-get", "update")
	if err != nil {
		return fmt.Errorf("refresh package index: %w", err)
	}

	return nil
}

func (d *DockerEngineInstaller) signingKeyURL() string {
	return fmt.Sprintf("%s/%s/gpg", aptRepositoryBase, d.repositoryID())
}

// repositoryID picks the Docker repository matching the distribution.
// Debian derivatives without their own repository use the debian one.
func (d *DockerEngineInstaller) repositoryID() string {
	if d.osRelease.ID == "ubuntu" {
		return "ubuntu"
	}

	return "debian"
}

func (d *DockerEngineInstaller) sourcesListLine(ctx context.Context) (string, error) {
	result, err := d.runner.Run(ctx, "dpkg", "--print-architecture")
	if err != nil {
		return "", fmt.Errorf("detect architecture: %w", err)
	}

	arch := strings.TrimSpace(result.Stdout)

	return fmt.Sprintf(
		"deb [arch=%s signed-by=%s] %s/%s %s stable",
		arch,
		d.KeyringPath,
		aptRepositoryBase,
		d.repositoryID(),
		d.osRelease.VersionCodename,
	), nil
}

func (d *DockerEngineInstaller) installPackages(ctx context.Context) error {
	args := append([]string{"install", "-y"}, enginePackages...)

	_, err := d.runner.Run(ctx, "apt-get", args...)
	if err != nil {
		return fmt.Errorf("install engine packages: %w", err)
	}

	return nil
}

func (d *DockerEngineInstaller) enableService(ctx context.Context) error {
	_, err := d.runner.Run(ctx, "systemctl", "enable", "--now", "docker")
	if err != nil {
		return fmt.Errorf("enable docker service: %w", err)
	}

	return nil
}
