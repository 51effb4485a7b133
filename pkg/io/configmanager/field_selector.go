package configmanager

import (
	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
)

// FieldSelector defines a field and its metadata for configuration management.
type FieldSelector[T any] struct {
	Selector     func(*T) any // Function that returns a pointer to the field
	Description  string       // Human-readable description for CLI flags
	DefaultValue any          // Default value for the field
}

// DefaultDomainFieldSelector creates a standard field selector for the public domain.
// No default value is set as the domain is deployment-specific and must be
// provided by the user.
func DefaultDomainFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:    func(d *v1alpha1.Deployment) any { return &d.Spec.Domain },
		Description: "Public domain the deployment serves (e.g. happy.example.com)",
	}
}

// DefaultEmailFieldSelector creates a standard field selector for the certificate contact email.
func DefaultEmailFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:    func(d *v1alpha1.Deployment) any { return &d.Spec.Email },
		Description: "Contact email for TLS certificate registration",
	}
}

// DefaultTLSModeFieldSelector creates a standard field selector for the TLS mode.
func DefaultTLSModeFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector: func(d *v1alpha1.Deployment) any { return &d.Spec.TLS.Mode },
		Description: "TLS mode (Auto: Caddy obtains certificates, Certbot: host certbot manages them, " +
			"Internal: self-signed CA, Custom: bring your own certificate)",
		DefaultValue: v1alpha1.TLSModeAuto,
	}
}

// DefaultTLSCertFileFieldSelector creates a standard field selector for the custom certificate path.
func DefaultTLSCertFileFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:    func(d *v1alpha1.Deployment) any { return &d.Spec.TLS.CertFile },
		Description: "Path to the certificate chain for the Custom TLS mode",
	}
}

// DefaultTLSKeyFileFieldSelector creates a standard field selector for the custom key path.
func DefaultTLSKeyFileFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:    func(d *v1alpha1.Deployment) any { return &d.Spec.TLS.KeyFile },
		Description: "Path to the private key for the Custom TLS mode",
	}
}

// DefaultSourceStrategyFieldSelector creates a standard field selector for the server source strategy.
func DefaultSourceStrategyFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector: func(d *v1alpha1.Deployment) any { return &d.Spec.Server.Source.Strategy },
		Description: "Server source strategy (Git: build the server image from a git checkout, " +
			"Image: pull a prebuilt image)",
		DefaultValue: v1alpha1.SourceStrategyGit,
	}
}

// DefaultSourceRepositoryFieldSelector creates a standard field selector for the server git repository.
func DefaultSourceRepositoryFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:     func(d *v1alpha1.Deployment) any { return &d.Spec.Server.Source.Repository },
		Description:  "Git repository the server is built from",
		DefaultValue: v1alpha1.DefaultServerRepository,
	}
}

// DefaultSourceRefFieldSelector creates a standard field selector for the server git ref.
func DefaultSourceRefFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:     func(d *v1alpha1.Deployment) any { return &d.Spec.Server.Source.Ref },
		Description:  "Git branch, tag, or commit to build",
		DefaultValue: v1alpha1.DefaultServerRef,
	}
}

// DefaultSourceImageFieldSelector creates a standard field selector for the prebuilt server image.
func DefaultSourceImageFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:     func(d *v1alpha1.Deployment) any { return &d.Spec.Server.Source.Image },
		Description:  "Prebuilt server image for the Image source strategy",
		DefaultValue: v1alpha1.DefaultServerImage,
	}
}

// DefaultConfigDirFieldSelector creates a standard field selector for the config directory.
func DefaultConfigDirFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:     func(d *v1alpha1.Deployment) any { return &d.Spec.Paths.ConfigDir },
		Description:  "Directory holding generated deployment files",
		DefaultValue: v1alpha1.DefaultConfigDir,
	}
}

// DefaultLocalPortFieldSelector creates a standard field selector for the loopback verification port.
func DefaultLocalPortFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:     func(d *v1alpha1.Deployment) any { return &d.Spec.Server.LocalPort },
		Description:  "Host loopback port the server is published on",
		DefaultValue: v1alpha1.DefaultServerLocalPort,
	}
}

// DefaultReadyTimeoutFieldSelector creates a standard field selector for the container ready timeout.
func DefaultReadyTimeoutFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:     func(d *v1alpha1.Deployment) any { return &d.Spec.Timeouts.Ready },
		Description:  "Timeout for each container to become healthy",
		DefaultValue: v1alpha1.DefaultReadyTimeout,
	}
}

// DefaultVerifyTimeoutFieldSelector creates a standard field selector for the verification timeout.
func DefaultVerifyTimeoutFieldSelector() FieldSelector[v1alpha1.Deployment] {
	return FieldSelector[v1alpha1.Deployment]{
		Selector:     func(d *v1alpha1.Deployment) any { return &d.Spec.Timeouts.Verify },
		Description:  "Timeout for post-install endpoint verification",
		DefaultValue: v1alpha1.DefaultVerifyTimeout,
	}
}

// DefaultDeploymentFieldSelectors returns the default field selectors shared by deployment commands.
func DefaultDeploymentFieldSelectors() []FieldSelector[v1alpha1.Deployment] {
	return []FieldSelector[v1alpha1.Deployment]{
		DefaultDomainFieldSelector(),
		DefaultEmailFieldSelector(),
		DefaultTLSModeFieldSelector(),
		DefaultSourceStrategyFieldSelector(),
		DefaultConfigDirFieldSelector(),
	}
}
