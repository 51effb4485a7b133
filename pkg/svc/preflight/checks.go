package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/svc/installer"
	"github.com/Masterminds/semver/v3"
	"github.com/docker/docker/api/types"
)

// Check error definitions.
var (
	// ErrNotRoot is returned when happyctl is not running as root.
	ErrNotRoot = errors.New("root privileges required")
	// ErrUnsupportedDistribution is returned on hosts without apt.
	ErrUnsupportedDistribution = errors.New("unsupported distribution")
	// ErrUnsupportedArchitecture is returned on architectures without server images.
	ErrUnsupportedArchitecture = errors.New("unsupported architecture")
	// ErrDockerVersionTooOld is returned when the engine predates the minimum.
	ErrDockerVersionTooOld = errors.New("docker engine too old")
	// ErrPortBusy is returned when a required port cannot be bound.
	ErrPortBusy = errors.New("port is busy")
	// ErrDomainUnresolved is returned when certbot mode cannot resolve the domain.
	ErrDomainUnresolved = errors.New("domain does not resolve")
	// ErrConfigDirNotWritable is returned when the config directory rejects writes.
	ErrConfigDirNotWritable = errors.New("config directory is not writable")
)

// MinDockerVersion is the oldest engine the deployment supports. Older
// engines lack the compose-era buildx and healthcheck behavior the
// provisioner relies on.
const MinDockerVersion = "20.10.0"

var minDockerVersion = semver.MustParse(MinDockerVersion)

// DaemonClient is the slice of the Docker API the daemon check needs. The
// SDK client satisfies it.
type DaemonClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ServerVersion(ctx context.Context) (types.Version, error)
}

// ProxyProber reports whether a deployment component is running. The
// component manager satisfies it.
type ProxyProber interface {
	IsComponentRunning(ctx context.Context, name string) (bool, error)
}

// LookupHostFunc resolves a hostname to addresses.
type LookupHostFunc func(ctx context.Context, host string) ([]string, error)

// HostAddrsFunc lists the host's interface addresses.
type HostAddrsFunc func() ([]net.Addr, error)

// DefaultChecks assembles the install-time check list for a deployment.
// daemon and proxy may be nil on hosts where Docker is not installed yet.
func DefaultChecks(
	cfg *v1alpha1.Deployment,
	daemon DaemonClient,
	proxy ProxyProber,
) []Check {
	proxyOwnsPorts := func(ctx context.Context) (bool, error) {
		if proxy == nil {
			return false, nil
		}

		return proxy.IsComponentRunning(ctx, v1alpha1.ComponentProxy)
	}

	httpPort := cfg.Spec.Proxy.HTTPPort
	if httpPort == 0 {
		httpPort = v1alpha1.DefaultProxyHTTPPort
	}

	httpsPort := cfg.Spec.Proxy.HTTPSPort
	if httpsPort == 0 {
		httpsPort = v1alpha1.DefaultProxyHTTPSPort
	}

	configDir := cfg.Spec.Paths.ConfigDir
	if configDir == "" {
		configDir = v1alpha1.DefaultConfigDir
	}

	return []Check{
		NewPrivilegeCheck(nil),
		NewOSReleaseCheck(""),
		NewArchitectureCheck(runtime.GOARCH),
		NewDockerCheck(daemon),
		NewPortCheck(httpPort, proxyOwnsPorts),
		NewPortCheck(httpsPort, proxyOwnsPorts),
		NewDNSCheck(cfg.Spec.Domain, cfg.Spec.TLS.Mode, nil, nil),
		NewConfigDirCheck(configDir),
	}
}

// NewPrivilegeCheck verifies happyctl runs as root. A nil euid func uses the
// process euid.
func NewPrivilegeCheck(euid func() int) Check {
	if euid == nil {
		euid = os.Geteuid
	}

	return Check{
		Name: "root-privileges",
		Run: func(_ context.Context) error {
			if euid() != 0 {
				return fmt.Errorf("%w: rerun with sudo", ErrNotRoot)
			}

			return nil
		},
	}
}

// NewOSReleaseCheck verifies the host is a Debian or Ubuntu system. An empty
// path uses /etc/os-release.
func NewOSReleaseCheck(path string) Check {
	if path == "" {
		path = installer.DefaultOSReleasePath
	}

	return Check{
		Name: "operating-system",
		Run: func(_ context.Context) error {
			release, err := installer.ReadOSRelease(path)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrUnsupportedDistribution, err)
			}

			if !release.IsDebianLike() {
				return fmt.Errorf(
					"%w: detected %s, need Debian or Ubuntu", ErrUnsupportedDistribution, release.Describe(),
				)
			}

			return nil
		},
	}
}

// NewArchitectureCheck verifies server images exist for the host architecture.
func NewArchitectureCheck(arch string) Check {
	return Check{
		Name: "architecture",
		Run: func(_ context.Context) error {
			if arch != "amd64" && arch != "arm64" {
				return fmt.Errorf("%w: %s, need amd64 or arm64", ErrUnsupportedArchitecture, arch)
			}

			return nil
		},
	}
}

// NewDockerCheck verifies a reachable Docker daemon meets the minimum
// version. An unreachable daemon is a warning, not a failure, because the
// engine installer runs after preflight on fresh hosts.
func NewDockerCheck(daemon DaemonClient) Check {
	return Check{
		Name: "docker-daemon",
		Run: func(ctx context.Context) error {
			if daemon == nil {
				return NewWarning("docker daemon not reachable yet, the engine installer will set it up")
			}

			_, err := daemon.Ping(ctx)
			if err != nil {
				return NewWarning("docker daemon not reachable yet, the engine installer will set it up")
			}

			version, err := daemon.ServerVersion(ctx)
			if err != nil {
				return fmt.Errorf("query docker version: %w", err)
			}

			current, err := semver.NewVersion(version.Version)
			if err != nil {
				return fmt.Errorf("parse docker version %q: %w", version.Version, err)
			}

			if current.LessThan(minDockerVersion) {
				return fmt.Errorf(
					"%w: have %s, need at least %s", ErrDockerVersionTooOld, version.Version, MinDockerVersion,
				)
			}

			return nil
		},
	}
}

// NewPortCheck verifies a host port can be bound. The check passes without
// probing when the deployment's own proxy holds the ports.
func NewPortCheck(port int32, proxyOwnsPorts func(ctx context.Context) (bool, error)) Check {
	return Check{
		Name: fmt.Sprintf("port-%d", port),
		Run: func(ctx context.Context) error {
			if proxyOwnsPorts != nil {
				owned, err := proxyOwnsPorts(ctx)
				if err == nil && owned {
					return nil
				}
			}

			listener, err := net.Listen("tcp", ":"+strconv.Itoa(int(port)))
			if err != nil {
				return fmt.Errorf(
					"%w: cannot bind port %d (%v), stop the process that owns it (try 'ss -tlnp sport = :%d')",
					ErrPortBusy, port, err, port,
				)
			}

			return listener.Close()
		},
	}
}

// NewDNSCheck verifies the domain resolves. Missing records fail in certbot
// mode, where standalone issuance needs working DNS, and warn otherwise. A
// record pointing away from this host warns in every mode, since NAT can
// hide the public address from the interfaces. Nil funcs use the default
// resolver and net.InterfaceAddrs.
func NewDNSCheck(
	domain string,
	mode v1alpha1.TLSMode,
	lookup LookupHostFunc,
	hostAddrs HostAddrsFunc,
) Check {
	if lookup == nil {
		lookup = net.DefaultResolver.LookupHost
	}

	if hostAddrs == nil {
		hostAddrs = net.InterfaceAddrs
	}

	return Check{
		Name: "dns-record",
		Run: func(ctx context.Context) error {
			resolved, err := lookup(ctx, domain)
			if err != nil || len(resolved) == 0 {
				if mode == v1alpha1.TLSModeCertbot {
					return fmt.Errorf(
						"%w: %s has no address record, certbot standalone issuance needs one", ErrDomainUnresolved, domain,
					)
				}

				return NewWarning(
					"%s does not resolve yet, certificate issuance will retry once DNS propagates", domain,
				)
			}

			local, err := hostAddrs()
			if err != nil {
				return nil
			}

			if !anyAddressLocal(resolved, local) {
				return NewWarning(
					"%s resolves to %s, which is not an address of this host", domain, resolved[0],
				)
			}

			return nil
		},
	}
}

// NewConfigDirCheck verifies the config directory exists and accepts writes.
func NewConfigDirCheck(dir string) Check {
	return Check{
		Name: "config-dir",
		Run: func(_ context.Context) error {
			err := os.MkdirAll(dir, 0o750)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrConfigDirNotWritable, err)
			}

			probe, err := os.CreateTemp(dir, ".happyctl-*")
			if err != nil {
				return fmt.Errorf("%w: %w", ErrConfigDirNotWritable, err)
			}

			name := probe.Name()

			err = probe.Close()
			if err != nil {
				return fmt.Errorf("%w: %w", ErrConfigDirNotWritable, err)
			}

			return os.Remove(name)
		},
	}
}

func anyAddressLocal(resolved []string, local []net.Addr) bool {
	for _, raw := range resolved {
		ip := net.ParseIP(raw)
		if ip == nil {
			continue
		}

		for _, addr := range local {
			ipNet, ok := addr.(*net.IPNet)
			if ok && ipNet.IP.Equal(ip) {
				return true
			}
		}
	}

	return false
}
