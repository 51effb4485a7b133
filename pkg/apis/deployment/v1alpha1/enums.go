package v1alpha1

import (
	"fmt"
	"slices"
	"strings"
)

// --- Enum Interface ---

// EnumValuer is implemented by string-based enum types to provide their valid values.
type EnumValuer interface {
	// ValidValues returns all valid string values for this enum type.
	ValidValues() []string
}

// --- TLS Modes ---

// TLSMode defines how the deployment obtains its TLS certificate.
type TLSMode string

const (
	// TLSModeAuto lets Caddy acquire and renew Let's Encrypt certificates itself.
	TLSModeAuto TLSMode = "Auto"
	// TLSModeCertbot acquires the certificate with certbot before the proxy starts.
	TLSModeCertbot TLSMode = "Certbot"
	// TLSModeInternal uses Caddy's internal CA (self-signed, for staging or air-gapped hosts).
	TLSModeInternal TLSMode = "Internal"
	// TLSModeCustom uses operator-provided certificate and key files.
	TLSModeCustom TLSMode = "Custom"
)

// ValidTLSModes returns all supported TLS modes.
func ValidTLSModes() []TLSMode {
	return []TLSMode{TLSModeAuto, TLSModeCertbot, TLSModeInternal, TLSModeCustom}
}

// RequiresEmail returns true if the mode registers with an ACME CA and needs a
// contact address.
func (m *TLSMode) RequiresEmail() bool {
	switch *m {
	case TLSModeAuto, TLSModeCertbot:
		return true
	case TLSModeInternal, TLSModeCustom:
		return false
	default:
		return false
	}
}

// UsesCertFiles returns true if the generated Caddyfile must reference
// certificate files on disk instead of delegating issuance to Caddy.
func (m *TLSMode) UsesCertFiles() bool {
	switch *m {
	case TLSModeCertbot, TLSModeCustom:
		return true
	case TLSModeAuto, TLSModeInternal:
		return false
	default:
		return false
	}
}

// Set for TLSMode (pflag.Value interface).
func (m *TLSMode) Set(value string) error {
	for _, mode := range ValidTLSModes() {
		if strings.EqualFold(value, string(mode)) {
			*m = mode

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s, %s, %s, %s)",
		ErrInvalidTLSMode,
		value,
		TLSModeAuto,
		TLSModeCertbot,
		TLSModeInternal,
		TLSModeCustom,
	)
}

// IsValid checks if the TLS mode value is supported.
func (m *TLSMode) IsValid() bool {
	return slices.Contains(ValidTLSModes(), *m)
}

// String returns the string representation of the TLSMode.
func (m *TLSMode) String() string {
	return string(*m)
}

// Type returns the type of the TLSMode.
func (m *TLSMode) Type() string {
	return "TLSMode"
}

// Default returns the default value for TLSMode (Auto).
func (m *TLSMode) Default() any {
	return TLSModeAuto
}

// ValidValues returns all valid TLSMode values as strings.
func (m *TLSMode) ValidValues() []string {
	return []string{
		string(TLSModeAuto),
		string(TLSModeCertbot),
		string(TLSModeInternal),
		string(TLSModeCustom),
	}
}

// --- Source Strategies ---

// SourceStrategy defines where the Happy server image comes from.
type SourceStrategy string

const (
	// SourceStrategyGit builds the server image from a git checkout.
	SourceStrategyGit SourceStrategy = "Git"
	// SourceStrategyImage pulls a published server image.
	SourceStrategyImage SourceStrategy = "Image"
)

// ValidSourceStrategies returns all supported source strategies.
func ValidSourceStrategies() []SourceStrategy {
	return []SourceStrategy{SourceStrategyGit, SourceStrategyImage}
}

// Set for SourceStrategy (pflag.Value interface).
func (s *SourceStrategy) Set(value string) error {
	for _, strategy := range ValidSourceStrategies() {
		if strings.EqualFold(value, string(strategy)) {
			*s = strategy

			return nil
		}
	}

	return fmt.Errorf(
		"%w: %s (valid options: %s, %s)",
		ErrInvalidSourceStrategy,
		value,
		SourceStrategyGit,
		SourceStrategyImage,
	)
}

// IsValid checks if the source strategy value is supported.
func (s *SourceStrategy) IsValid() bool {
	return slices.Contains(ValidSourceStrategies(), *s)
}

// String returns the string representation of the SourceStrategy.
func (s *SourceStrategy) String() string {
	return string(*s)
}

// Type returns the type of the SourceStrategy.
func (s *SourceStrategy) Type() string {
	return "SourceStrategy"
}

// Default returns the default value for SourceStrategy (Git).
func (s *SourceStrategy) Default() any {
	return SourceStrategyGit
}

// ValidValues returns all valid SourceStrategy values as strings.
func (s *SourceStrategy) ValidValues() []string {
	return []string{
		string(SourceStrategyGit),
		string(SourceStrategyImage),
	}
}
