package v1alpha1

import "time"

const (
	// Group is the API group for Happy deployments.
	Group = "happy.dev"
	// Version is the API version for Happy deployments.
	Version = "v1alpha1"
	// Kind is the kind for Happy deployments.
	Kind = "Deployment"
	// APIVersion is the full API version for Happy deployments.
	APIVersion = Group + "/" + Version
)

// --- Core Types ---

// TypeMeta describes the kind and API version of a configuration document.
type TypeMeta struct {
	Kind       string `json:"kind,omitzero"       yaml:"kind,omitempty"       mapstructure:"kind"`
	APIVersion string `json:"apiVersion,omitzero" yaml:"apiVersion,omitempty" mapstructure:"apiVersion"`
}

// Deployment represents a Happy deployment configuration including API metadata
// and desired state. It contains TypeMeta for API versioning information and
// Spec for the deployment specification.
type Deployment struct {
	TypeMeta `json:",inline" yaml:",inline" mapstructure:",squash"`

	Spec Spec `json:"spec,omitzero" yaml:"spec,omitempty" mapstructure:"spec,omitempty"`
}

// Spec defines the desired state of a Happy deployment.
type Spec struct {
	// Domain is the public hostname the deployment serves (e.g. "happy.example.com").
	Domain string `json:"domain,omitzero" yaml:"domain,omitempty" validate:"required,fqdn"`
	// Email is the contact address used for ACME certificate registration.
	Email string `json:"email,omitzero" yaml:"email,omitempty" validate:"omitempty,email"`

	TLS      TLSSpec      `json:"tls,omitzero"      yaml:"tls,omitempty"`
	Server   ServerSpec   `json:"server,omitzero"   yaml:"server,omitempty"`
	Database DatabaseSpec `json:"database,omitzero" yaml:"database,omitempty"`
	Cache    CacheSpec    `json:"cache,omitzero"    yaml:"cache,omitempty"`
	Proxy    ProxySpec    `json:"proxy,omitzero"    yaml:"proxy,omitempty"`
	Paths    PathsSpec    `json:"paths,omitzero"    yaml:"paths,omitempty"`
	Timeouts TimeoutsSpec `json:"timeouts,omitzero" yaml:"timeouts,omitempty"`
}

// TLSSpec defines how the deployment obtains its TLS certificate.
type TLSSpec struct {
	// Mode selects the certificate source. Defaults to TLSModeAuto.
	Mode TLSMode `json:"mode,omitzero" yaml:"mode,omitempty"`
	// CertFile is the certificate path for TLSModeCustom.
	CertFile string `json:"certFile,omitzero" yaml:"certFile,omitempty"`
	// KeyFile is the private key path for TLSModeCustom.
	KeyFile string `json:"keyFile,omitzero" yaml:"keyFile,omitempty"`
}

// ServerSpec defines the Happy server component.
type ServerSpec struct {
	Source SourceSpec `json:"source,omitzero" yaml:"source,omitempty"`
	// Port is the port the server listens on inside the container network.
	Port int32 `json:"port,omitzero" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	// LocalPort is the loopback port published on the host for local verification.
	LocalPort int32 `json:"localPort,omitzero" yaml:"localPort,omitempty" validate:"omitempty,min=1,max=65535"`
}

// SourceSpec defines where the Happy server image comes from.
type SourceSpec struct {
	// Strategy selects between building from a git checkout and pulling a
	// published image. Defaults to SourceStrategyGit.
	Strategy SourceStrategy `json:"strategy,omitzero" yaml:"strategy,omitempty"`
	// Repository is the git URL cloned when Strategy is SourceStrategyGit.
	Repository string `json:"repository,omitzero" yaml:"repository,omitempty"`
	// Ref is the git branch, tag, or commit checked out. Defaults to "main".
	Ref string `json:"ref,omitzero" yaml:"ref,omitempty"`
	// Image is the image reference pulled when Strategy is SourceStrategyImage.
	Image string `json:"image,omitzero" yaml:"image,omitempty"`
	// Platform pins the server image platform (e.g. "linux/amd64"). Empty
	// follows the host platform.
	Platform string `json:"platform,omitzero" yaml:"platform,omitempty"`
}

// DatabaseSpec defines the PostgreSQL component.
type DatabaseSpec struct {
	Image string `json:"image,omitzero" yaml:"image,omitempty"`
	// Name is the database created for the server. Defaults to "happy".
	Name string `json:"name,omitzero" yaml:"name,omitempty"`
	// User is the database role the server connects as. Defaults to "happy".
	User string `json:"user,omitzero" yaml:"user,omitempty"`
}

// CacheSpec defines the Redis component.
type CacheSpec struct {
	Image string `json:"image,omitzero" yaml:"image,omitempty"`
}

// ProxySpec defines the Caddy reverse proxy component.
type ProxySpec struct {
	Image string `json:"image,omitzero" yaml:"image,omitempty"`
	// HTTPPort is the host port for plain HTTP (ACME challenges and redirects).
	HTTPPort int32 `json:"httpPort,omitzero" yaml:"httpPort,omitempty" validate:"omitempty,min=1,max=65535"`
	// HTTPSPort is the host port serving TLS.
	HTTPSPort int32 `json:"httpsPort,omitzero" yaml:"httpsPort,omitempty" validate:"omitempty,min=1,max=65535"`
	// AdminPort is the loopback port exposing the Caddy admin API.
	AdminPort int32 `json:"adminPort,omitzero" yaml:"adminPort,omitempty" validate:"omitempty,min=1,max=65535"`
}

// PathsSpec defines the host directories the deployment uses.
type PathsSpec struct {
	// ConfigDir holds generated files (config.yaml, Caddyfile, happy.env).
	ConfigDir string `json:"configDir,omitzero" yaml:"configDir,omitempty"`
	// SourceDir holds the git checkout of the Happy server.
	SourceDir string `json:"sourceDir,omitzero" yaml:"sourceDir,omitempty"`
	// LogDir holds the install transcript.
	LogDir string `json:"logDir,omitzero" yaml:"logDir,omitempty"`
}

// TimeoutsSpec defines how long the installer waits on external systems.
type TimeoutsSpec struct {
	// Ready bounds each container health wait. Defaults to 2m.
	Ready Duration `json:"ready,omitzero" yaml:"ready,omitempty"`
	// Verify bounds the post-deploy endpoint verification. Defaults to 5m.
	Verify Duration `json:"verify,omitzero" yaml:"verify,omitempty"`
}

// Duration wraps time.Duration so it round-trips as a duration string
// ("2m30s") in YAML and JSON documents.
type Duration struct {
	time.Duration
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.Duration.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string

	err := unmarshal(&raw)
	if err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}

	d.Duration = parsed

	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Duration.String() + `"`), nil
}
