// Package verifier probes a deployed stack from the outside: the server's
// loopback port, the public HTTPS endpoint, the plain-HTTP redirect, and
// the served certificate's remaining lifetime.
package verifier

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/client/netretry"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
)

var (
	// ErrConfigNil is returned when a verifier is constructed without a config.
	ErrConfigNil = errors.New("deployment config cannot be nil")

	// ErrVerificationFailed aggregates the probes that failed.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrNoRedirect is returned when the plain HTTP endpoint does not
	// redirect to HTTPS.
	ErrNoRedirect = errors.New("http endpoint does not redirect to https")

	// ErrNoCertificate is returned when the TLS handshake yields no peer
	// certificate.
	ErrNoCertificate = errors.New("no certificate presented")
)

const (
	// DefaultProbeAttempts is how often each endpoint probe retries before
	// giving up.
	DefaultProbeAttempts = 8

	// ExpiryWarningDays is the remaining certificate lifetime below which
	// verification warns.
	ExpiryWarningDays = 14

	probeTimeout    = 10 * time.Second
	defaultBaseWait = 500 * time.Millisecond
	defaultMaxWait  = 10 * time.Second
)

// CertInfo describes the leaf certificate served on the HTTPS endpoint.
type CertInfo struct {
	Subject  string
	Issuer   string
	NotAfter time.Time
	DaysLeft int
}

// Verifier probes a deployment's endpoints.
type Verifier struct {
	// Probe endpoints, derived from the config. Exported so tests can point
	// probes at local listeners.
	LocalURL    string
	PublicURL   string
	RedirectURL string
	TLSAddr     string

	// Attempts is the retry budget per endpoint probe. Status checks set it
	// to 1 for a single snapshot.
	Attempts int

	config       *v1alpha1.Deployment
	writer       io.Writer
	localClient  *http.Client
	publicClient *http.Client
	baseWait     time.Duration
	maxWait      time.Duration
}

// NewVerifier creates a verifier for the given deployment config. The
// writer receives probe outcome lines and defaults to os.Stdout.
func NewVerifier(config *v1alpha1.Deployment, writer io.Writer) (*Verifier, error) {
	if config == nil {
		return nil, ErrConfigNil
	}

	if writer == nil {
		writer = os.Stdout
	}

	verifier := &Verifier{
		LocalURL:    fmt.Sprintf("http://127.0.0.1:%d/", effectivePort(config.Spec.Server.LocalPort, v1alpha1.DefaultServerLocalPort)),
		PublicURL:   publicURL(config),
		RedirectURL: redirectURL(config),
		TLSAddr: net.JoinHostPort(config.Spec.Domain,
			strconv.Itoa(int(effectivePort(config.Spec.Proxy.HTTPSPort, v1alpha1.DefaultProxyHTTPSPort)))),
		Attempts:    DefaultProbeAttempts,
		config:      config,
		writer:      writer,
		localClient: &http.Client{Timeout: probeTimeout},
		publicClient: &http.Client{
			Timeout:   probeTimeout,
			Transport: publicTransport(config.Spec.TLS.Mode),
		},
		baseWait: defaultBaseWait,
		maxWait:  defaultMaxWait,
	}

	return verifier, nil
}

// Verify runs every probe within the configured verify timeout and reports
// each outcome. Probes keep running after a failure so the summary names
// everything that is broken.
func (v *Verifier) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, v.verifyTimeout())
	defer cancel()

	var failed []string

	err := v.VerifyLocal(ctx)
	if err != nil {
		failed = append(failed, "server-local")

		notify.Errorf(v.writer, "%v", err)
	} else {
		notify.Successf(v.writer, "server responds on %s", v.LocalURL)
	}

	err = v.VerifyPublic(ctx)
	if err != nil {
		failed = append(failed, "public-endpoint")

		notify.Errorf(v.writer, "%v", err)
	} else {
		notify.Successf(v.writer, "%s serves HTTPS and redirects plain HTTP", v.PublicURL)
	}

	info, err := v.CertExpiry(ctx)

	switch {
	case err != nil:
		failed = append(failed, "certificate")

		notify.Errorf(v.writer, "%v", err)
	case info.DaysLeft < ExpiryWarningDays:
		notify.Warningf(v.writer, "certificate for '%s' expires in %d days (%s)",
			v.config.Spec.Domain, info.DaysLeft, info.NotAfter.Format(time.DateOnly))
	default:
		notify.Successf(v.writer, "certificate valid until %s (%d days left)",
			info.NotAfter.Format(time.DateOnly), info.DaysLeft)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, strings.Join(failed, ", "))
	}

	return nil
}

// VerifyLocal probes the server's loopback port, retrying while the
// container is still warming up.
func (v *Verifier) VerifyLocal(ctx context.Context) error {
	err := netretry.Do(ctx, v.Attempts, v.baseWait, v.maxWait, func(ctx context.Context) error {
		return v.probe(ctx, v.localClient, v.LocalURL)
	})
	if err != nil {
		return fmt.Errorf("local server probe: %w", err)
	}

	return nil
}

// VerifyPublic probes the public HTTPS endpoint and checks that plain HTTP
// redirects to it.
func (v *Verifier) VerifyPublic(ctx context.Context) error {
	err := netretry.Do(ctx, v.Attempts, v.baseWait, v.maxWait, func(ctx context.Context) error {
		return v.probe(ctx, v.publicClient, v.PublicURL)
	})
	if err != nil {
		return fmt.Errorf("public endpoint probe: %w", err)
	}

	return v.verifyRedirect(ctx)
}

// CertExpiry reads the leaf certificate served on the HTTPS port. The
// handshake skips chain verification on purpose: internal and custom CAs
// would fail it, and trust is already covered by the public probe.
func (v *Verifier) CertExpiry(ctx context.Context) (CertInfo, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: probeTimeout},
		Config: &tls.Config{
			InsecureSkipVerify: true,
			ServerName:         v.config.Spec.Domain,
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp", v.TLSAddr)
	if err != nil {
		return CertInfo{}, fmt.Errorf("tls handshake with %s: %w", v.TLSAddr, err)
	}

	defer func() { _ = conn.Close() }()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return CertInfo{}, fmt.Errorf("%w by %s", ErrNoCertificate, v.TLSAddr)
	}

	peers := tlsConn.ConnectionState().PeerCertificates
	if len(peers) == 0 {
		return CertInfo{}, fmt.Errorf("%w by %s", ErrNoCertificate, v.TLSAddr)
	}

	leaf := peers[0]

	return CertInfo{
		Subject:  leaf.Subject.CommonName,
		Issuer:   leaf.Issuer.CommonName,
		NotAfter: leaf.NotAfter,
		DaysLeft: int(time.Until(leaf.NotAfter).Hours() / 24),
	}, nil
}

func (v *Verifier) verifyRedirect(ctx context.Context) error {
	client := &http.Client{
		Timeout:   probeTimeout,
		Transport: v.publicClient.Transport,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.RedirectURL, nil)
	if err != nil {
		return fmt.Errorf("build redirect probe: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("redirect probe %s: %w", v.RedirectURL, err)
	}

	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusMovedPermanently || resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s returned %s", ErrNoRedirect, v.RedirectURL, resp.Status)
	}

	location := resp.Header.Get("Location")
	if !strings.HasPrefix(location, "https://") {
		return fmt.Errorf("%w: %s redirects to %q", ErrNoRedirect, v.RedirectURL, location)
	}

	return nil
}

// probe issues a GET and converts non-2xx/3xx responses into errors so the
// retry layer can tell transient 5xx answers from hard failures.
func (v *Verifier) probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	return fmt.Errorf("%s returned %s", url, resp.Status)
}

func (v *Verifier) verifyTimeout() time.Duration {
	if timeout := v.config.Spec.Timeouts.Verify.Duration; timeout > 0 {
		return timeout
	}

	return v1alpha1.DefaultVerifyTimeout
}

// publicTransport verifies the chain for publicly trusted modes and skips
// it for internal and custom modes, whose CAs are not in the host trust
// store.
func publicTransport(mode v1alpha1.TLSMode) http.RoundTripper {
	if mode == v1alpha1.TLSModeInternal || mode == v1alpha1.TLSModeCustom {
		return &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return http.DefaultTransport
}

func publicURL(config *v1alpha1.Deployment) string {
	port := effectivePort(config.Spec.Proxy.HTTPSPort, v1alpha1.DefaultProxyHTTPSPort)
	if port == v1alpha1.DefaultProxyHTTPSPort {
		return fmt.Sprintf("https://%s/", config.Spec.Domain)
	}

	return fmt.Sprintf("https://%s:%d/", config.Spec.Domain, port)
}

func redirectURL(config *v1alpha1.Deployment) string {
	port := effectivePort(config.Spec.Proxy.HTTPPort, v1alpha1.DefaultProxyHTTPPort)
	if port == v1alpha1.DefaultProxyHTTPPort {
		return fmt.Sprintf("http://%s/", config.Spec.Domain)
	}

	return fmt.Sprintf("http://%s:%d/", config.Spec.Domain, port)
}

func effectivePort(port, fallback int32) int32 {
	if port != 0 {
		return port
	}

	return fallback
}
