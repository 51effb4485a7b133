package installer

import "github.com/Jaydooooooo/happy-code/pkg/svc/installer/osrelease"

// The implementation lives in the osrelease subpackage so that concrete
// installers can depend on it without importing this package, which would
// close an import cycle through the factory. The names below keep the
// installer-package API unchanged.

// DefaultOSReleasePath is where Linux distributions describe themselves.
const DefaultOSReleasePath = osrelease.DefaultPath

// OSRelease holds the distribution fields installers and preflight checks
// care about.
type OSRelease = osrelease.OSRelease

// ReadOSRelease parses an os-release file. The format is the same KEY=VALUE
// shape as an env file, quoting included.
func ReadOSRelease(path string) (OSRelease, error) {
	return osrelease.Read(path)
}
