package v1alpha1

import "time"

const (
	// DefaultServerRepository is the upstream Happy server repository.
	DefaultServerRepository = "https://github.com/slopus/happy-server.git"
	// DefaultServerRef is the git ref checked out when none is configured.
	DefaultServerRef = "main"
	// DefaultServerImage is the image reference used by the image source strategy.
	DefaultServerImage = "ghcr.io/slopus/happy-server:latest"
	// DefaultServerPort is the port the Happy server listens on.
	DefaultServerPort int32 = 3005
	// DefaultServerLocalPort is the host loopback port published for verification.
	DefaultServerLocalPort int32 = 3005

	// DefaultDatabaseImage is the PostgreSQL image.
	DefaultDatabaseImage = "postgres:16-alpine"
	// DefaultDatabaseName is the database created for the server.
	DefaultDatabaseName = "happy"
	// DefaultDatabaseUser is the database role the server connects as.
	DefaultDatabaseUser = "happy"

	// DefaultCacheImage is the Redis image.
	DefaultCacheImage = "redis:7-alpine"

	// DefaultProxyImage is the Caddy image.
	DefaultProxyImage = "caddy:2-alpine"
	// DefaultProxyHTTPPort is the host port for plain HTTP.
	DefaultProxyHTTPPort int32 = 80
	// DefaultProxyHTTPSPort is the host port serving TLS.
	DefaultProxyHTTPSPort int32 = 443
	// DefaultProxyAdminPort is the loopback port exposing the Caddy admin API.
	DefaultProxyAdminPort int32 = 2019

	// DefaultConfigDir holds generated deployment files.
	DefaultConfigDir = "/etc/happy"
	// DefaultSourceDir holds the Happy server git checkout.
	DefaultSourceDir = "/opt/happy/src"
	// DefaultLogDir holds the install transcript.
	DefaultLogDir = "/var/log/happy"

	// DefaultReadyTimeout bounds each container health wait.
	DefaultReadyTimeout = 2 * time.Minute
	// DefaultVerifyTimeout bounds post-deploy endpoint verification.
	DefaultVerifyTimeout = 5 * time.Minute
)

const (
	// ConfigFileName is the deployment configuration file name.
	ConfigFileName = "config.yaml"
	// CaddyfileName is the generated Caddy configuration file name.
	CaddyfileName = "Caddyfile"
	// EnvFileName is the generated secrets environment file name.
	EnvFileName = "happy.env"
)

// Component names. Containers, the built server image, and volumes derive
// their names from these.
const (
	// ComponentServer is the Happy sync server.
	ComponentServer = "happy-server"
	// ComponentDatabase is the PostgreSQL database.
	ComponentDatabase = "happy-db"
	// ComponentCache is the Redis cache.
	ComponentCache = "happy-cache"
	// ComponentProxy is the Caddy reverse proxy.
	ComponentProxy = "happy-proxy"

	// NetworkName is the bridge network joining all components.
	NetworkName = "happy"

	// ServerImageName is the tag given to server images built from source.
	ServerImageName = "happy-server:local"
)

// Internal service ports. These are only reachable on the deployment network,
// so they are fixed rather than configurable.
const (
	// DatabasePort is the PostgreSQL port inside the deployment network.
	DatabasePort int32 = 5432
	// CachePort is the Redis port inside the deployment network.
	CachePort int32 = 6379
)

// ComponentOrder returns the components in dependency order: data stores
// first, the server next, and the proxy last. Teardown uses the reverse.
func ComponentOrder() []string {
	return []string{ComponentDatabase, ComponentCache, ComponentServer, ComponentProxy}
}

// VolumeNames returns the named volumes a component mounts.
func VolumeNames(component string) []string {
	switch component {
	case ComponentDatabase:
		return []string{"happy-db-data"}
	case ComponentCache:
		return []string{"happy-cache-data"}
	case ComponentProxy:
		return []string{"happy-proxy-data", "happy-proxy-config"}
	default:
		return nil
	}
}
