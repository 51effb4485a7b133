// Package osrelease parses /etc/os-release for distribution detection. It
// lives below the installer package so concrete installers can use it
// without importing the installer package itself, whose factory imports
// them back.
package osrelease

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultPath is where Linux distributions describe themselves.
const DefaultPath = "/etc/os-release"

// OSRelease holds the distribution fields installers and preflight checks
// care about.
type OSRelease struct {
	// ID is the lowercase distribution identifier ("debian", "ubuntu").
	ID string
	// IDLike lists space-separated parent distributions ("debian" on Ubuntu
	// derivatives).
	IDLike string
	// VersionCodename is the release codename the apt repository line uses
	// ("bookworm", "noble").
	VersionCodename string
	// PrettyName is the human-readable distribution name for error messages.
	PrettyName string
}

// Read parses an os-release file. The format is the same KEY=VALUE shape as
// an env file, quoting included.
func Read(path string) (OSRelease, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return OSRelease{}, fmt.Errorf("read os-release: %w", err)
	}

	return OSRelease{
		ID:              values["ID"],
		IDLike:          values["ID_LIKE"],
		VersionCodename: values["VERSION_CODENAME"],
		PrettyName:      values["PRETTY_NAME"],
	}, nil
}

// IsDebianLike reports whether the distribution installs packages with apt.
func (o OSRelease) IsDebianLike() bool {
	if o.ID == "debian" || o.ID == "ubuntu" {
		return true
	}

	for _, like := range strings.Fields(o.IDLike) {
		if like == "debian" || like == "ubuntu" {
			return true
		}
	}

	return false
}

// Describe returns a name for error messages, preferring the pretty name.
func (o OSRelease) Describe() string {
	if o.PrettyName != "" {
		return o.PrettyName
	}

	if o.ID != "" {
		return o.ID
	}

	return "unknown distribution"
}
