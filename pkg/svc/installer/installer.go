// Package installer manages the host packages a Happy deployment depends
// on: the Docker engine, and certbot when the certbot TLS mode is
// configured. Installers probe before installing so re-runs converge
// instead of reinstalling.
package installer

import "context"

// Installer defines methods for installing and uninstalling host packages.
type Installer interface {
	// Name identifies the package for progress reporting.
	Name() string

	// Install installs the package unless it is already present.
	Install(ctx context.Context) error

	// Uninstall removes the package.
	Uninstall(ctx context.Context) error
}
