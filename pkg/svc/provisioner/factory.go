package provisioner

import (
	"io"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/client/caddy"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
)

// Factory creates provisioners for a loaded deployment config.
type Factory interface {
	Create(
		config *v1alpha1.Deployment,
		writer io.Writer,
		tmr timer.Timer,
	) (*DeploymentProvisioner, error)
}

// DefaultFactory builds provisioners bound to a component manager and a
// proxy admin client derived from the config's admin port.
type DefaultFactory struct {
	Components ComponentAPI
}

// Create builds a provisioner for the given config.
func (f DefaultFactory) Create(
	config *v1alpha1.Deployment,
	writer io.Writer,
	tmr timer.Timer,
) (*DeploymentProvisioner, error) {
	if config == nil {
		return nil, ErrConfigNil
	}

	adminPort := config.Spec.Proxy.AdminPort
	if adminPort == 0 {
		adminPort = v1alpha1.DefaultProxyAdminPort
	}

	return NewDeploymentProvisioner(config, f.Components, caddy.NewClient(adminPort), writer, tmr)
}
