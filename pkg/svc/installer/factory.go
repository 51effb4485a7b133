package installer

import (
	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	certbotinstaller "github.com/Jaydooooooo/happy-code/pkg/svc/installer/certbot"
	dockerengineinstaller "github.com/Jaydooooooo/happy-code/pkg/svc/installer/dockerengine"
	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
)

// Factory creates installers based on deployment configuration.
// It holds the shared dependencies required by installers.
type Factory struct {
	runner        runner.CommandRunner
	enginePinger  dockerengineinstaller.EnginePinger
	certbotProber certbotinstaller.InstallProber
	osRelease     OSRelease
}

// NewFactory creates a new installer factory with the required dependencies.
// enginePinger and certbotProber may be nil when the corresponding tool is
// not yet present on the host.
func NewFactory(
	commandRunner runner.CommandRunner,
	enginePinger dockerengineinstaller.EnginePinger,
	certbotProber certbotinstaller.InstallProber,
	osRelease OSRelease,
) *Factory {
	return &Factory{
		runner:        commandRunner,
		enginePinger:  enginePinger,
		certbotProber: certbotProber,
		osRelease:     osRelease,
	}
}

// CreateInstallersForConfig creates installers for the host packages the
// deployment needs, in installation order. The Docker engine is always
// required; certbot only when the deployment manages certificates itself.
func (f *Factory) CreateInstallersForConfig(cfg *v1alpha1.Deployment) []Installer {
	installers := []Installer{
		dockerengineinstaller.NewDockerEngineInstaller(f.runner, f.enginePinger, f.osRelease),
	}

	if cfg.Spec.TLS.Mode == v1alpha1.TLSModeCertbot {
		installers = append(installers, certbotinstaller.NewCertbotInstaller(f.runner, f.certbotProber))
	}

	return installers
}
