package provisioner

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/client/certbot"
	"github.com/Jaydooooooo/happy-code/pkg/client/docker"
	dotenvgenerator "github.com/Jaydooooooo/happy-code/pkg/io/generator/dotenv"
	"github.com/docker/docker/api/types/container"
)

// Container mount targets.
const (
	databaseDataTarget = "/var/lib/postgresql/data"
	cacheDataTarget    = "/data"
	proxyDataTarget    = "/data"
	proxyConfigTarget  = "/config"
	caddyfileTarget    = "/etc/caddy/Caddyfile"
)

// Healthcheck cadence shared by all components. Per-component start periods
// cover slow first boots (initdb, npm bootstrap).
const (
	healthInterval = 5 * time.Second
	healthTimeout  = 5 * time.Second
	healthRetries  = 12

	databaseStartPeriod = 10 * time.Second
	serverStartPeriod   = 15 * time.Second
)

func (p *DeploymentProvisioner) componentConfig(
	component string,
	env map[string]string,
) (docker.ComponentConfig, error) {
	switch component {
	case v1alpha1.ComponentDatabase:
		return p.databaseConfig(env), nil
	case v1alpha1.ComponentCache:
		return p.cacheConfig(), nil
	case v1alpha1.ComponentServer:
		return p.serverConfig(env), nil
	case v1alpha1.ComponentProxy:
		return p.proxyConfig(), nil
	default:
		return docker.ComponentConfig{}, ValidateComponent(component)
	}
}

func (p *DeploymentProvisioner) databaseConfig(env map[string]string) docker.ComponentConfig {
	return docker.ComponentConfig{
		Name:       v1alpha1.ComponentDatabase,
		Image:      p.databaseImage(),
		Deployment: p.deploymentName(),
		Component:  v1alpha1.ComponentDatabase,
		Env: []string{
			"POSTGRES_DB=" + p.databaseName(),
			"POSTGRES_USER=" + p.databaseUser(),
			dotenvgenerator.DatabasePasswordKey + "=" + env[dotenvgenerator.DatabasePasswordKey],
		},
		Volumes: []docker.VolumeMount{
			{Name: v1alpha1.VolumeNames(v1alpha1.ComponentDatabase)[0], Target: databaseDataTarget},
		},
		NetworkName: v1alpha1.NetworkName,
		Healthcheck: &container.HealthConfig{
			Test: []string{
				"CMD-SHELL",
				fmt.Sprintf("pg_isready -U %s -d %s", p.databaseUser(), p.databaseName()),
			},
			Interval:    healthInterval,
			Timeout:     healthTimeout,
			Retries:     healthRetries,
			StartPeriod: databaseStartPeriod,
		},
	}
}

func (p *DeploymentProvisioner) cacheConfig() docker.ComponentConfig {
	return docker.ComponentConfig{
		Name:       v1alpha1.ComponentCache,
		Image:      p.cacheImage(),
		Deployment: p.deploymentName(),
		Component:  v1alpha1.ComponentCache,
		Cmd:        []string{"redis-server", "--appendonly", "yes"},
		Volumes: []docker.VolumeMount{
			{Name: v1alpha1.VolumeNames(v1alpha1.ComponentCache)[0], Target: cacheDataTarget},
		},
		NetworkName: v1alpha1.NetworkName,
		Healthcheck: &container.HealthConfig{
			Test:     []string{"CMD", "redis-cli", "ping"},
			Interval: healthInterval,
			Timeout:  healthTimeout,
			Retries:  healthRetries,
		},
	}
}

func (p *DeploymentProvisioner) serverConfig(env map[string]string) docker.ComponentConfig {
	port := p.serverPort()

	return docker.ComponentConfig{
		Name:       v1alpha1.ComponentServer,
		Image:      p.serverImageRef(),
		Deployment: p.deploymentName(),
		Component:  v1alpha1.ComponentServer,
		Env:        envAsList(env),
		Ports: []docker.PortBinding{
			{HostIP: "127.0.0.1", HostPort: p.serverLocalPort(), ContainerPort: port},
		},
		NetworkName: v1alpha1.NetworkName,
		Healthcheck: &container.HealthConfig{
			// The server image ships no curl or wget, node is always there.
			Test: []string{
				"CMD-SHELL",
				fmt.Sprintf(
					"node -e \"fetch('http://127.0.0.1:%d/').then((res) => process.exit(res.ok ? 0 : 1)).catch(() => process.exit(1))\"",
					port,
				),
			},
			Interval:    healthInterval,
			Timeout:     healthTimeout,
			Retries:     healthRetries,
			StartPeriod: serverStartPeriod,
		},
		Platform: p.config.Spec.Server.Source.Platform,
	}
}

func (p *DeploymentProvisioner) proxyConfig() docker.ComponentConfig {
	httpPort := p.proxyHTTPPort()
	httpsPort := p.proxyHTTPSPort()
	adminPort := p.proxyAdminPort()
	volumes := v1alpha1.VolumeNames(v1alpha1.ComponentProxy)

	return docker.ComponentConfig{
		Name:       v1alpha1.ComponentProxy,
		Image:      p.proxyImage(),
		Deployment: p.deploymentName(),
		Component:  v1alpha1.ComponentProxy,
		Ports: []docker.PortBinding{
			{HostPort: httpPort, ContainerPort: httpPort},
			{HostPort: httpsPort, ContainerPort: httpsPort},
			{HostIP: "127.0.0.1", HostPort: adminPort, ContainerPort: adminPort},
		},
		Volumes: []docker.VolumeMount{
			{Name: volumes[0], Target: proxyDataTarget},
			{Name: volumes[1], Target: proxyConfigTarget},
		},
		Binds:       p.proxyBinds(),
		NetworkName: v1alpha1.NetworkName,
		Healthcheck: &container.HealthConfig{
			Test: []string{
				"CMD", "wget", "-q", "--spider",
				fmt.Sprintf("http://127.0.0.1:%d/config/", adminPort),
			},
			Interval: healthInterval,
			Timeout:  healthTimeout,
			Retries:  healthRetries,
		},
	}
}

// proxyBinds mounts the Caddyfile and, for file-based TLS modes, the
// certificate material at the same paths the Caddyfile references.
func (p *DeploymentProvisioner) proxyBinds() []docker.BindMount {
	binds := []docker.BindMount{
		{
			Source:   filepath.Join(p.configDir(), v1alpha1.CaddyfileName),
			Target:   caddyfileTarget,
			ReadOnly: true,
		},
	}

	switch p.config.Spec.TLS.Mode {
	case v1alpha1.TLSModeCertbot:
		// live/ holds symlinks into archive/, so the whole letsencrypt tree
		// is mounted rather than the live directory alone.
		letsencryptDir := filepath.Dir(certbot.LiveDir)
		binds = append(binds, docker.BindMount{
			Source:   letsencryptDir,
			Target:   letsencryptDir,
			ReadOnly: true,
		})
	case v1alpha1.TLSModeCustom:
		binds = append(binds,
			docker.BindMount{
				Source:   p.config.Spec.TLS.CertFile,
				Target:   p.config.Spec.TLS.CertFile,
				ReadOnly: true,
			},
			docker.BindMount{
				Source:   p.config.Spec.TLS.KeyFile,
				Target:   p.config.Spec.TLS.KeyFile,
				ReadOnly: true,
			},
		)
	case v1alpha1.TLSModeAuto, v1alpha1.TLSModeInternal:
	}

	return binds
}

func envAsList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	list := make([]string, 0, len(keys))
	for _, key := range keys {
		list = append(list, key+"="+env[key])
	}

	return list
}

// --- effective config values, falling back to defaults ---

func (p *DeploymentProvisioner) deploymentName() string {
	if domain := strings.TrimSpace(p.config.Spec.Domain); domain != "" {
		return domain
	}

	return v1alpha1.NetworkName
}

func (p *DeploymentProvisioner) configDir() string {
	if dir := p.config.Spec.Paths.ConfigDir; dir != "" {
		return dir
	}

	return v1alpha1.DefaultConfigDir
}

func (p *DeploymentProvisioner) sourceDir() string {
	if dir := p.config.Spec.Paths.SourceDir; dir != "" {
		return dir
	}

	return v1alpha1.DefaultSourceDir
}

func (p *DeploymentProvisioner) sourceStrategy() v1alpha1.SourceStrategy {
	if strategy := p.config.Spec.Server.Source.Strategy; strategy != "" {
		return strategy
	}

	return v1alpha1.SourceStrategyGit
}

func (p *DeploymentProvisioner) serverImageRef() string {
	if p.sourceStrategy() == v1alpha1.SourceStrategyGit {
		return v1alpha1.ServerImageName
	}

	if image := p.config.Spec.Server.Source.Image; image != "" {
		return image
	}

	return v1alpha1.DefaultServerImage
}

func (p *DeploymentProvisioner) serverPort() int32 {
	if port := p.config.Spec.Server.Port; port != 0 {
		return port
	}

	return v1alpha1.DefaultServerPort
}

func (p *DeploymentProvisioner) serverLocalPort() int32 {
	if port := p.config.Spec.Server.LocalPort; port != 0 {
		return port
	}

	return v1alpha1.DefaultServerLocalPort
}

func (p *DeploymentProvisioner) databaseImage() string {
	if image := p.config.Spec.Database.Image; image != "" {
		return image
	}

	return v1alpha1.DefaultDatabaseImage
}

func (p *DeploymentProvisioner) databaseName() string {
	if name := p.config.Spec.Database.Name; name != "" {
		return name
	}

	return v1alpha1.DefaultDatabaseName
}

func (p *DeploymentProvisioner) databaseUser() string {
	if user := p.config.Spec.Database.User; user != "" {
		return user
	}

	return v1alpha1.DefaultDatabaseUser
}

func (p *DeploymentProvisioner) cacheImage() string {
	if image := p.config.Spec.Cache.Image; image != "" {
		return image
	}

	return v1alpha1.DefaultCacheImage
}

func (p *DeploymentProvisioner) proxyImage() string {
	if image := p.config.Spec.Proxy.Image; image != "" {
		return image
	}

	return v1alpha1.DefaultProxyImage
}

func (p *DeploymentProvisioner) proxyHTTPPort() int32 {
	if port := p.config.Spec.Proxy.HTTPPort; port != 0 {
		return port
	}

	return v1alpha1.DefaultProxyHTTPPort
}

func (p *DeploymentProvisioner) proxyHTTPSPort() int32 {
	if port := p.config.Spec.Proxy.HTTPSPort; port != 0 {
		return port
	}

	return v1alpha1.DefaultProxyHTTPSPort
}

func (p *DeploymentProvisioner) proxyAdminPort() int32 {
	if port := p.config.Spec.Proxy.AdminPort; port != 0 {
		return port
	}

	return v1alpha1.DefaultProxyAdminPort
}

func (p *DeploymentProvisioner) readyTimeout() time.Duration {
	if timeout := p.config.Spec.Timeouts.Ready.Duration; timeout > 0 {
		return timeout
	}

	return v1alpha1.DefaultReadyTimeout
}
