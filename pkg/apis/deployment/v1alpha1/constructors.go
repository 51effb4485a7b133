package v1alpha1

// NewDeployment creates a new Deployment instance with defaults applied.
// Options override individual fields.
func NewDeployment(opts ...Option) *Deployment {
	deployment := &Deployment{
		TypeMeta: TypeMeta{
			Kind:       Kind,
			APIVersion: APIVersion,
		},
		Spec: NewSpec(),
	}

	for _, opt := range opts {
		opt(deployment)
	}

	return deployment
}

// NewSpec creates a new Spec with default values.
func NewSpec() Spec {
	return Spec{
		Domain: "",
		Email:  "",
		TLS: TLSSpec{
			Mode: TLSModeAuto,
		},
		Server: ServerSpec{
			Source: SourceSpec{
				Strategy:   SourceStrategyGit,
				Repository: DefaultServerRepository,
				Ref:        DefaultServerRef,
				Image:      DefaultServerImage,
			},
			Port:      DefaultServerPort,
			LocalPort: DefaultServerLocalPort,
		},
		Database: DatabaseSpec{
			Image: DefaultDatabaseImage,
			Name:  DefaultDatabaseName,
			User:  DefaultDatabaseUser,
		},
		Cache: CacheSpec{
			Image: DefaultCacheImage,
		},
		Proxy: ProxySpec{
			Image:     DefaultProxyImage,
			HTTPPort:  DefaultProxyHTTPPort,
			HTTPSPort: DefaultProxyHTTPSPort,
			AdminPort: DefaultProxyAdminPort,
		},
		Paths: PathsSpec{
			ConfigDir: DefaultConfigDir,
			SourceDir: DefaultSourceDir,
			LogDir:    DefaultLogDir,
		},
		Timeouts: TimeoutsSpec{
			Ready:  Duration{DefaultReadyTimeout},
			Verify: Duration{DefaultVerifyTimeout},
		},
	}
}

// Option mutates a Deployment during construction.
type Option func(*Deployment)

// WithDomain sets the public hostname.
func WithDomain(domain string) Option {
	return func(d *Deployment) {
		d.Spec.Domain = domain
	}
}

// WithEmail sets the ACME contact address.
func WithEmail(email string) Option {
	return func(d *Deployment) {
		d.Spec.Email = email
	}
}

// WithTLSMode sets the certificate source.
func WithTLSMode(mode TLSMode) Option {
	return func(d *Deployment) {
		d.Spec.TLS.Mode = mode
	}
}

// WithSourceStrategy sets where the server image comes from.
func WithSourceStrategy(strategy SourceStrategy) Option {
	return func(d *Deployment) {
		d.Spec.Server.Source.Strategy = strategy
	}
}

// WithConfigDir overrides the generated file directory.
func WithConfigDir(dir string) Option {
	return func(d *Deployment) {
		d.Spec.Paths.ConfigDir = dir
	}
}
