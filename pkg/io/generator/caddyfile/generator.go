// Package caddyfilegenerator renders the proxy Caddyfile for a deployment.
package caddyfilegenerator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/client/certbot"
	"github.com/Jaydooooooo/happy-code/pkg/fsutil"
	yamlgenerator "github.com/Jaydooooooo/happy-code/pkg/io/generator/yaml"
)

// ErrDomainRequired is returned when the deployment has no domain to serve.
var ErrDomainRequired = errors.New("cannot generate Caddyfile without a domain")

// CaddyfileGenerator generates the Caddy configuration for the proxy
// component from a deployment.
type CaddyfileGenerator struct{}

// NewCaddyfileGenerator creates and returns a new CaddyfileGenerator instance.
func NewCaddyfileGenerator() *CaddyfileGenerator {
	return &CaddyfileGenerator{}
}

// Generate renders the Caddyfile and writes it to the specified output.
func (g *CaddyfileGenerator) Generate(
	deployment *v1alpha1.Deployment,
	opts yamlgenerator.Options,
) (string, error) {
	domain := strings.TrimSpace(deployment.Spec.Domain)
	if domain == "" {
		return "", ErrDomainRequired
	}

	var builder strings.Builder

	writeGlobalOptions(&builder, deployment)
	builder.WriteString("\n")
	writeSiteBlock(&builder, deployment, domain)

	content := builder.String()

	if opts.Output != "" {
		result, err := fsutil.TryWriteFile(content, opts.Output, opts.Force)
		if err != nil {
			return "", fmt.Errorf("failed to write Caddyfile: %w", err)
		}

		return result, nil
	}

	return content, nil
}

// writeGlobalOptions renders the global options block. The admin endpoint
// binds all container interfaces; the host port publish pins it to loopback.
func writeGlobalOptions(builder *strings.Builder, deployment *v1alpha1.Deployment) {
	adminPort := deployment.Spec.Proxy.AdminPort
	if adminPort == 0 {
		adminPort = v1alpha1.DefaultProxyAdminPort
	}

	builder.WriteString("{\n")
	fmt.Fprintf(builder, "\tadmin :%d\n", adminPort)

	if deployment.Spec.TLS.Mode == v1alpha1.TLSModeAuto && deployment.Spec.Email != "" {
		fmt.Fprintf(builder, "\temail %s\n", deployment.Spec.Email)
	}

	if port := deployment.Spec.Proxy.HTTPPort; port != 0 && port != v1alpha1.DefaultProxyHTTPPort {
		fmt.Fprintf(builder, "\thttp_port %d\n", port)
	}

	if port := deployment.Spec.Proxy.HTTPSPort; port != 0 && port != v1alpha1.DefaultProxyHTTPSPort {
		fmt.Fprintf(builder, "\thttps_port %d\n", port)
	}

	builder.WriteString("}\n")
}

// writeSiteBlock renders the site serving the deployment domain.
func writeSiteBlock(builder *strings.Builder, deployment *v1alpha1.Deployment, domain string) {
	fmt.Fprintf(builder, "%s {\n", domain)

	if directive := tlsDirective(deployment, domain); directive != "" {
		fmt.Fprintf(builder, "\t%s\n\n", directive)
	}

	builder.WriteString("\tencode zstd gzip\n\n")

	builder.WriteString("\theader {\n")
	builder.WriteString("\t\tStrict-Transport-Security \"max-age=31536000; includeSubDomains\"\n")
	builder.WriteString("\t\tX-Content-Type-Options nosniff\n")
	builder.WriteString("\t\tX-Frame-Options DENY\n")
	builder.WriteString("\t\tReferrer-Policy strict-origin-when-cross-origin\n")
	builder.WriteString("\t\t-Server\n")
	builder.WriteString("\t}\n\n")

	serverPort := deployment.Spec.Server.Port
	if serverPort == 0 {
		serverPort = v1alpha1.DefaultServerPort
	}

	fmt.Fprintf(builder, "\treverse_proxy %s:%d\n", v1alpha1.ComponentServer, serverPort)
	builder.WriteString("}\n")
}

// tlsDirective returns the site tls directive for the deployment's TLS mode.
// Auto mode returns "" because Caddy manages issuance itself. Certbot and
// custom paths are valid inside the proxy container because the provisioner
// bind-mounts the certificate directories at their host paths.
func tlsDirective(deployment *v1alpha1.Deployment, domain string) string {
	switch deployment.Spec.TLS.Mode {
	case v1alpha1.TLSModeInternal:
		return "tls internal"
	case v1alpha1.TLSModeCertbot:
		paths := certbot.LivePaths(domain)

		return fmt.Sprintf("tls %s %s", paths.CertPath, paths.KeyPath)
	case v1alpha1.TLSModeCustom:
		return fmt.Sprintf("tls %s %s", deployment.Spec.TLS.CertFile, deployment.Spec.TLS.KeyFile)
	case v1alpha1.TLSModeAuto:
		return ""
	default:
		return ""
	}
}
