package verifier

import (
	"io"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
)

// Factory creates verifiers for a loaded deployment config. Command tests
// swap it to point probes at local listeners.
type Factory interface {
	Create(config *v1alpha1.Deployment, writer io.Writer) (*Verifier, error)
}

// DefaultFactory builds verifiers probing the endpoints the config names.
type DefaultFactory struct{}

// Create builds a verifier for the given config.
func (DefaultFactory) Create(config *v1alpha1.Deployment, writer io.Writer) (*Verifier, error) {
	return NewVerifier(config, writer)
}
