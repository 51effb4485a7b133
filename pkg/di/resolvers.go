package di

import (
	"fmt"

	"github.com/Jaydooooooo/happy-code/pkg/client/certbot"
	"github.com/Jaydooooooo/happy-code/pkg/client/docker"
	"github.com/Jaydooooooo/happy-code/pkg/svc/installer"
	"github.com/Jaydooooooo/happy-code/pkg/svc/provisioner"
	"github.com/Jaydooooooo/happy-code/pkg/svc/verifier"
	"github.com/Jaydooooooo/happy-code/pkg/utils/runner"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Dependency resolvers.

// ResolveTimer retrieves the timer dependency from the injector.
func ResolveTimer(injector Injector) (timer.Timer, error) {
	tmr, err := do.Invoke[timer.Timer](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve timer dependency: %w", err)
	}

	return tmr, nil
}

// ResolveCommandRunner retrieves the command runner dependency from the
// injector.
func ResolveCommandRunner(injector Injector) (runner.CommandRunner, error) {
	commandRunner, err := do.Invoke[runner.CommandRunner](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve command runner dependency: %w", err)
	}

	return commandRunner, nil
}

// ResolveDockerResources retrieves the Docker client bundle from the
// injector.
func ResolveDockerResources(injector Injector) (*docker.Resources, error) {
	resources, err := do.Invoke[*docker.Resources](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve docker resources dependency: %w", err)
	}

	return resources, nil
}

// ResolveComponentManager retrieves the Docker component manager dependency
// from the injector.
func ResolveComponentManager(injector Injector) (*docker.ComponentManager, error) {
	componentManager, err := do.Invoke[*docker.ComponentManager](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve component manager dependency: %w", err)
	}

	return componentManager, nil
}

// ResolveCertbotClient retrieves the certbot client dependency from the
// injector.
func ResolveCertbotClient(injector Injector) (*certbot.Client, error) {
	certbotClient, err := do.Invoke[*certbot.Client](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve certbot client dependency: %w", err)
	}

	return certbotClient, nil
}

// ResolveInstallerFactory retrieves the host package installer factory
// dependency from the injector.
func ResolveInstallerFactory(injector Injector) (*installer.Factory, error) {
	factory, err := do.Invoke[*installer.Factory](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve installer factory dependency: %w", err)
	}

	return factory, nil
}

// ResolveProvisionerFactory retrieves the provisioner factory dependency
// from the injector.
func ResolveProvisionerFactory(injector Injector) (provisioner.Factory, error) {
	factory, err := do.Invoke[provisioner.Factory](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve provisioner factory dependency: %w", err)
	}

	return factory, nil
}

// ResolveVerifierFactory retrieves the verifier factory dependency from the
// injector.
func ResolveVerifierFactory(injector Injector) (verifier.Factory, error) {
	factory, err := do.Invoke[verifier.Factory](injector)
	if err != nil {
		return nil, fmt.Errorf("resolve verifier factory dependency: %w", err)
	}

	return factory, nil
}

// Handler decorators.

// WithTimer decorates a handler to automatically resolve the timer
// dependency.
func WithTimer(
	handler func(cmd *cobra.Command, injector Injector, tmr timer.Timer) error,
) func(cmd *cobra.Command, injector Injector) error {
	return func(cmd *cobra.Command, injector Injector) error {
		tmr, err := ResolveTimer(injector)
		if err != nil {
			return err
		}

		return handler(cmd, injector, tmr)
	}
}
