package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/cli/helpers"
	"github.com/Jaydooooooo/happy-code/pkg/client/certbot"
	runtime "github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/Jaydooooooo/happy-code/pkg/io/configmanager"
	"github.com/Jaydooooooo/happy-code/pkg/io/scaffolder"
	"github.com/Jaydooooooo/happy-code/pkg/svc/preflight"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewInstallCmd wires the install command using the shared runtime container.
func NewInstallCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Provision the deployment on this host",
		Long: "Run the full provisioning pipeline: preflight checks, host packages, " +
			"deployment files, certificates, containers, and endpoint verification.",
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd, deploymentFlagSelectors())

	cmd.Flags().Bool("force", false, "Overwrite existing deployment files")
	cmd.Flags().Bool("skip-verify", false, "Skip endpoint verification after deploying")

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return handleInstallRunE(cmd, injector, cfgManager, tmr)
		},
	))

	return cmd
}

// handleInstallRunE runs the install pipeline stage by stage.
func handleInstallRunE(
	cmd *cobra.Command,
	injector runtime.Injector,
	cfgManager *configmanager.ConfigManager,
	tmr timer.Timer,
) error {
	tmr.Start()

	outputTimer := helpers.MaybeTimer(cmd, tmr)
	writer := stageOutput(cmd, cfgManager)

	applyConfigFileFlag(cmd, cfgManager)

	cfg, err := cfgManager.LoadRequiredConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to read force flag: %w", err)
	}

	skipVerify, err := cmd.Flags().GetBool("skip-verify")
	if err != nil {
		return fmt.Errorf("failed to read skip-verify flag: %w", err)
	}

	transcript := openTranscript(cfg)
	defer func() { _ = transcript.Close() }()

	stages := &stageRunner{writer: writer, timer: tmr, transcript: transcript}
	ctx := cmd.Context()

	// The preflight runner prints its own title line.
	err = stages.run("Run preflight checks", "", func() error {
		return runPreflightStage(ctx, cfg, injector, writer, outputTimer)
	})
	if err != nil {
		return err
	}

	err = stages.run("Install host packages", "📦", func() error {
		return runHostPackagesStage(ctx, cfg, injector, writer)
	})
	if err != nil {
		return err
	}

	err = stages.run("Generate deployment files", "📄", func() error {
		return scaffolder.NewScaffolder(*cfg, writer).Scaffold(cfg.Spec.Paths.ConfigDir, force)
	})
	if err != nil {
		return err
	}

	if cfg.Spec.TLS.Mode == v1alpha1.TLSModeCertbot {
		err = stages.run("Acquire certificates", "🔐", func() error {
			return runCertificateStage(ctx, cfg, injector, writer)
		})
		if err != nil {
			return err
		}
	}

	err = stages.run("Deploy containers", "🐳", func() error {
		factory, err := runtime.ResolveProvisionerFactory(injector)
		if err != nil {
			return err
		}

		prov, err := factory.Create(cfg, writer, outputTimer)
		if err != nil {
			return fmt.Errorf("create provisioner: %w", err)
		}

		return prov.Deploy(ctx)
	})
	if err != nil {
		return err
	}

	if !skipVerify {
		err = stages.run("Verify deployment", "🌐", func() error {
			factory, err := runtime.ResolveVerifierFactory(injector)
			if err != nil {
				return err
			}

			vrf, err := factory.Create(cfg, writer)
			if err != nil {
				return fmt.Errorf("create verifier: %w", err)
			}

			return vrf.Verify(ctx)
		})
		if err != nil {
			return err
		}
	}

	notify.Titlef(writer, "🎉", "Deployment ready...")
	notify.SuccessWithTimerf(writer, outputTimer, "Happy is serving at https://%s/", cfg.Spec.Domain)
	notify.Infof(writer, "run 'happyctl status' to inspect the deployment and 'happyctl logs' to follow the server")

	return nil
}

// runPreflightStage assembles and runs the environment checks. The Docker
// client bundle may fail to resolve on hosts without Docker; the daemon
// check then takes its warning path and the engine installer covers it.
func runPreflightStage(
	ctx context.Context,
	cfg *v1alpha1.Deployment,
	injector runtime.Injector,
	writer io.Writer,
	tmr timer.Timer,
) error {
	checks := buildPreflightChecks()(cfg, injector)

	return preflight.NewPreflight(writer, checks...).Run(ctx, tmr)
}

func defaultPreflightChecks(cfg *v1alpha1.Deployment, injector runtime.Injector) []preflight.Check {
	var (
		daemon preflight.DaemonClient
		prober preflight.ProxyProber
	)

	resources, err := runtime.ResolveDockerResources(injector)
	if err == nil {
		daemon = resources.Client
		prober = resources.ComponentManager
	}

	return preflight.DefaultChecks(cfg, daemon, prober)
}

// runHostPackagesStage installs the packages the deployment needs. apt
// serializes on the dpkg lock, so installers run one at a time.
func runHostPackagesStage(
	ctx context.Context,
	cfg *v1alpha1.Deployment,
	injector runtime.Injector,
	writer io.Writer,
) error {
	factory, err := runtime.ResolveInstallerFactory(injector)
	if err != nil {
		return err
	}

	for _, pkg := range factory.CreateInstallersForConfig(cfg) {
		notify.Activityf(writer, "installing '%s'", pkg.Name())

		err = pkg.Install(ctx)
		if err != nil {
			return fmt.Errorf("install %s: %w", pkg.Name(), err)
		}
	}

	return nil
}

// runCertificateStage issues the certificate standalone and installs the
// renewal deploy hook. It runs before containers exist, so port 80 is free
// for the HTTP challenge.
func runCertificateStage(
	ctx context.Context,
	cfg *v1alpha1.Deployment,
	injector runtime.Injector,
	writer io.Writer,
) error {
	client, err := runtime.ResolveCertbotClient(injector)
	if err != nil {
		return err
	}

	notify.Activityf(writer, "requesting certificate for '%s'", cfg.Spec.Domain)

	err = client.Issue(ctx, cfg.Spec.Domain, cfg.Spec.Email)
	if err != nil {
		return err
	}

	hookPath, err := client.InstallDeployHook(proxyReloadHook())
	if err != nil {
		return err
	}

	notify.Successf(writer, "certificate installed at '%s'", certbot.LivePaths(cfg.Spec.Domain).CertPath)
	notify.Activityf(writer, "renewal deploy hook installed at '%s'", hookPath)

	return nil
}

// proxyReloadHook is the script certbot runs after each renewal so the proxy
// picks up the renewed certificate.
func proxyReloadHook() string {
	return fmt.Sprintf(
		"#!/bin/sh\ndocker exec %s caddy reload --config /etc/caddy/Caddyfile\n",
		v1alpha1.ComponentProxy,
	)
}
