// Package certbotinstaller installs the certbot CLI for deployments that
// manage Let's Encrypt certificates outside the proxy.
package certbotinstaller

import (
	"context"
	"fmt"

	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
)

// Name identifies the installer in progress output.
const Name = "certbot"

// InstallProber reports whether certbot is already present on the host. The
// certbot client satisfies it.
type InstallProber interface {
	IsInstalled() bool
}

// CertbotInstaller installs the distribution certbot package.
type CertbotInstaller struct {
	runner runner.CommandRunner
	prober InstallProber
}

// NewCertbotInstaller creates a certbot installer.
func NewCertbotInstaller(commandRunner runner.CommandRunner, prober InstallProber) *CertbotInstaller {
	return &CertbotInstaller{
		runner: commandRunner,
		prober: prober,
	}
}

// Name returns the installer name.
func (c *CertbotInstaller) Name() string { return Name }

// Install installs certbot through apt. An existing binary on PATH
// short-circuits the installation.
func (c *CertbotInstaller) Install(ctx context.Context) error {
	if c.prober != nil && c.prober.IsInstalled() {
		return nil
	}

	_, err := c.runner.Run(ctx, "apt-get", "update")
	if err != nil {
		return fmt.Errorf("refresh package index: %w", err)
	}

	_, err = c.runner.Run(ctx, "apt-get", "install", "-y", "certbot")
	if err != nil {
		return fmt.Errorf("install certbot: %w", err)
	}

	return nil
}

// Uninstall removes the certbot package. Issued certificates under
// /etc/letsencrypt are left in place.
func (c *CertbotInstaller) Uninstall(ctx context.Context) error {
	_, err := c.runner.Run(ctx, "apt-get", "remove", "-y", "certbot")
	if err != nil {
		return fmt.Errorf("remove certbot: %w", err)
	}

	return nil
}
