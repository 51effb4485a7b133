// Package certbot wraps the certbot CLI for Let's Encrypt certificate
// issuance and renewal when the deployment runs in certbot TLS mode.
package certbot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
)

// Certbot error definitions.
var (
	// ErrRunnerNil is returned when the command runner is nil.
	ErrRunnerNil = errors.New("command runner cannot be nil")
	// ErrNotInstalled is returned when the certbot binary is not on PATH.
	ErrNotInstalled = errors.New("certbot is not installed")
	// ErrDomainEmpty is returned when a certificate operation is missing its domain.
	ErrDomainEmpty = errors.New("domain cannot be empty")
	// ErrEmailEmpty is returned when issuance is missing the ACME account email.
	ErrEmailEmpty = errors.New("acme email cannot be empty")
	// ErrHookScriptEmpty is returned when a deploy hook script is empty.
	ErrHookScriptEmpty = errors.New("deploy hook script cannot be empty")
)

const (
	// BinaryName is the certbot executable probed on PATH.
	BinaryName = "certbot"
	// LiveDir is where certbot keeps the active certificate for each domain.
	LiveDir = "/etc/letsencrypt/live"
	// DeployHookDir is where certbot picks up scripts to run after each renewal.
	DeployHookDir = "/etc/letsencrypt/renewal-hooks/deploy"
	// HookFileName is the deploy hook installed to reload the proxy after renewals.
	HookFileName = "happy-reload-proxy.sh"
	// FullchainFileName is the certificate chain file inside a live directory.
	FullchainFileName = "fullchain.pem"
	// PrivkeyFileName is the private key file inside a live directory.
	PrivkeyFileName = "privkey.pem"

	hookDirPerm  = 0o755
	hookFilePerm = 0o755
)

// CertPaths locates the live certificate material for a domain.
type CertPaths struct {
	// CertPath is the full certificate chain (fullchain.pem).
	CertPath string
	// KeyPath is the private key (privkey.pem).
	KeyPath string
}

// Client drives the certbot CLI through the command runner.
type Client struct {
	runner   runner.CommandRunner
	lookPath func(file string) (string, error)
	hookDir  string
}

// NewClient creates a certbot client over the given command runner.
func NewClient(commandRunner runner.CommandRunner) (*Client, error) {
	if commandRunner == nil {
		return nil, ErrRunnerNil
	}

	return &Client{
		runner:   commandRunner,
		lookPath: exec.LookPath,
		hookDir:  DeployHookDir,
	}, nil
}

// IsInstalled reports whether the certbot binary is available on PATH.
func (c *Client) IsInstalled() bool {
	_, err := c.lookPath(BinaryName)

	return err == nil
}

// Issue obtains a certificate for the domain using the standalone HTTP
// challenge. Port 80 must be free while this runs, so issuance happens
// before the proxy starts. Existing unexpired certificates are kept, which
// makes repeated installs converge without hitting rate limits.
func (c *Client) Issue(ctx context.Context, domain, email string) error {
	if strings.TrimSpace(domain) == "" {
		return ErrDomainEmpty
	}

	if strings.TrimSpace(email) == "" {
		return ErrEmailEmpty
	}

	if !c.IsInstalled() {
		return ErrNotInstalled
	}

	_, err := c.runner.Run(ctx, BinaryName,
		"certonly",
		"--standalone",
		"-n",
		"--agree-tos",
		"--keep-until-expiring",
		"-m", email,
		"-d", domain,
	)
	if err != nil {
		return fmt.Errorf("failed to issue certificate for %s: %w", domain, err)
	}

	return nil
}

// Renew renews the certificate for a single domain when it is due.
func (c *Client) Renew(ctx context.Context, domain string) error {
	if strings.TrimSpace(domain) == "" {
		return ErrDomainEmpty
	}

	if !c.IsInstalled() {
		return ErrNotInstalled
	}

	_, err := c.runner.Run(ctx, BinaryName, "renew", "--cert-name", domain)
	if err != nil {
		return fmt.Errorf("failed to renew certificate for %s: %w", domain, err)
	}

	return nil
}

// RenewAll renews every certbot-managed certificate that is due.
func (c *Client) RenewAll(ctx context.Context) error {
	if !c.IsInstalled() {
		return ErrNotInstalled
	}

	_, err := c.runner.Run(ctx, BinaryName, "renew")
	if err != nil {
		return fmt.Errorf("failed to renew certificates: %w", err)
	}

	return nil
}

// LivePaths returns where certbot stores the live certificate for a domain.
// The paths exist only after a successful Issue.
func LivePaths(domain string) CertPaths {
	return CertPaths{
		CertPath: filepath.Join(LiveDir, domain, FullchainFileName),
		KeyPath:  filepath.Join(LiveDir, domain, PrivkeyFileName),
	}
}

// CertPaths returns where certbot stores the live certificate for a domain.
func (c *Client) CertPaths(domain string) CertPaths {
	return LivePaths(domain)
}

// InstallDeployHook writes an executable script into the certbot deploy hook
// directory so certbot runs it after each successful renewal. Returns the
// installed hook path.
func (c *Client) InstallDeployHook(script string) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", ErrHookScriptEmpty
	}

	err := os.MkdirAll(c.hookDir, hookDirPerm)
	if err != nil {
		return "", fmt.Errorf("failed to create deploy hook directory: %w", err)
	}

	hookPath := filepath.Join(c.hookDir, HookFileName)

	err = os.WriteFile(hookPath, []byte(script), hookFilePerm)
	if err != nil {
		return "", fmt.Errorf("failed to write deploy hook: %w", err)
	}

	return hookPath, nil
}
