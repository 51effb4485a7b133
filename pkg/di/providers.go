package di

import (
	"fmt"
	"os"

	"github.com/Jaydooooooo/happy-code/pkg/client/certbot"
	"github.com/Jaydooooooo/happy-code/pkg/client/docker"
	"github.com/Jaydooooooo/happy-code/pkg/svc/installer"
	"github.com/Jaydooooooo/happy-code/pkg/svc/provisioner"
	"github.com/Jaydooooooo/happy-code/pkg/svc/verifier"
	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/samber/do/v2"
)

// Dependency providers.

// NewRuntime constructs the shared runtime container used by the root
// command and tests. Providers are lazy: a dependency is only constructed
// when a command resolves it, so commands that never touch Docker or the
// host package manager work without them.
func NewRuntime() *Runtime {
	return New(
		provideTimer,
		provideCommandRunner,
		provideDockerResources,
		provideComponentManager,
		provideCertbotClient,
		provideInstallerFactory,
		provideProvisionerFactory,
		provideVerifierFactory,
	)
}

// provideTimer registers the timer dependency with the injector.
func provideTimer(injector Injector) error {
	do.Provide(injector, func(Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	return nil
}

// provideCommandRunner registers the exec-backed command runner. Tool
// output streams to the process stdio; callers that capture it construct
// their own runner.
func provideCommandRunner(injector Injector) error {
	do.Provide(injector, func(Injector) (runner.CommandRunner, error) {
		return runner.NewExecCommandRunner(os.Stdout, os.Stderr), nil
	})

	return nil
}

// provideDockerResources registers the Docker client bundle. The client is
// closed when the injector shuts down.
func provideDockerResources(injector Injector) error {
	do.Provide(injector, func(Injector) (*docker.Resources, error) {
		return docker.NewResources()
	})

	return nil
}

// provideComponentManager registers the component manager backed by the
// shared Docker client.
func provideComponentManager(injector Injector) error {
	do.Provide(injector, func(i Injector) (*docker.ComponentManager, error) {
		resources, err := do.Invoke[*docker.Resources](i)
		if err != nil {
			return nil, fmt.Errorf("resolve docker resources dependency: %w", err)
		}

		return resources.ComponentManager, nil
	})

	return nil
}

// provideCertbotClient registers the certbot CLI client.
func provideCertbotClient(injector Injector) error {
	do.Provide(injector, func(i Injector) (*certbot.Client, error) {
		commandRunner, err := ResolveCommandRunner(i)
		if err != nil {
			return nil, err
		}

		return certbot.NewClient(commandRunner)
	})

	return nil
}

// provideInstallerFactory registers the host package installer factory.
func provideInstallerFactory(injector Injector) error {
	do.Provide(injector, func(i Injector) (*installer.Factory, error) {
		commandRunner, err := ResolveCommandRunner(i)
		if err != nil {
			return nil, err
		}

		resources, err := do.Invoke[*docker.Resources](i)
		if err != nil {
			return nil, fmt.Errorf("resolve docker resources dependency: %w", err)
		}

		certbotClient, err := ResolveCertbotClient(i)
		if err != nil {
			return nil, err
		}

		osRelease, err := installer.ReadOSRelease(installer.DefaultOSReleasePath)
		if err != nil {
			return nil, fmt.Errorf("read os-release: %w", err)
		}

		return installer.NewFactory(commandRunner, resources.Client, certbotClient, osRelease), nil
	})

	return nil
}

// provideProvisionerFactory registers the deployment provisioner factory.
func provideProvisionerFactory(injector Injector) error {
	do.Provide(injector, func(i Injector) (provisioner.Factory, error) {
		componentManager, err := ResolveComponentManager(i)
		if err != nil {
			return nil, err
		}

		return provisioner.DefaultFactory{Components: componentManager}, nil
	})

	return nil
}

// provideVerifierFactory registers the endpoint verifier factory.
func provideVerifierFactory(injector Injector) error {
	do.Provide(injector, func(Injector) (verifier.Factory, error) {
		return verifier.DefaultFactory{}, nil
	})

	return nil
}
