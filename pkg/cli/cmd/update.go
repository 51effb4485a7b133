package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/cli/helpers"
	runtime "github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/Jaydooooooo/happy-code/pkg/io/configmanager"
	"github.com/Jaydooooooo/happy-code/pkg/svc/provisioner"
	"github.com/Jaydooooooo/happy-code/pkg/svc/source"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/spf13/cobra"
)

const shortCommitLen = 7

// NewUpdateCmd wires the update command using the shared runtime container.
func NewUpdateCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the deployment to the latest server source",
		Long: "Refresh the server source (git fetch or image pull), rebuild and " +
			"recreate the server when it changed, and re-verify the deployment.",
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd, deploymentFlagSelectors())

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return handleUpdateRunE(cmd, injector, cfgManager, tmr)
		},
	))

	return cmd
}

// handleUpdateRunE refreshes the server source and converges the containers.
// Verification always runs, even when nothing changed.
func handleUpdateRunE(
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

	factory, err := runtime.ResolveProvisionerFactory(injector)
	if err != nil {
		return err
	}

	prov, err := factory.Create(cfg, writer, outputTimer)
	if err != nil {
		return fmt.Errorf("create provisioner: %w", err)
	}

	transcript := openTranscript(cfg)
	defer func() { _ = transcript.Close() }()

	stages := &stageRunner{writer: writer, timer: tmr, transcript: transcript}
	ctx := cmd.Context()

	changed := false

	err = stages.run("Refresh server source", "🔄", func() error {
		var refreshErr error

		changed, refreshErr = refreshServerSource(ctx, cfg, injector, prov, writer)

		return refreshErr
	})
	if err != nil {
		return err
	}

	// Deploy converges every component and rebuilds the server image in the
	// git strategy; a refreshed source keeps its image tag, so the server
	// container only picks it up through an explicit recreate.
	err = stages.run("Update containers", "🐳", func() error {
		deployErr := prov.Deploy(ctx)
		if deployErr != nil {
			return deployErr
		}

		if !changed {
			notify.Infof(writer, "server source unchanged, keeping the running server")

			return nil
		}

		return prov.Recreate(ctx, v1alpha1.ComponentServer)
	})
	if err != nil {
		return err
	}

	err = stages.run("Verify deployment", "🌐", func() error {
		verifierFactory, verifierErr := runtime.ResolveVerifierFactory(injector)
		if verifierErr != nil {
			return verifierErr
		}

		vrf, verifierErr := verifierFactory.Create(cfg, writer)
		if verifierErr != nil {
			return fmt.Errorf("create verifier: %w", verifierErr)
		}

		return vrf.Verify(ctx)
	})
	if err != nil {
		return err
	}

	notify.Titlef(writer, "🎉", "Update complete...")
	notify.SuccessWithTimerf(writer, outputTimer, "Happy is serving at https://%s/", cfg.Spec.Domain)

	return nil
}

// refreshServerSource brings the configured server source up to date and
// reports whether it changed. In the image strategy the provisioner pulls
// the tag and compares image IDs; in the git strategy the checkout is
// fetched and reset when the remote ref moved.
func refreshServerSource(
	ctx context.Context,
	cfg *v1alpha1.Deployment,
	injector runtime.Injector,
	prov *provisioner.DeploymentProvisioner,
	writer io.Writer,
) (bool, error) {
	if cfg.Spec.Server.Source.Strategy == v1alpha1.SourceStrategyImage {
		return prov.PullServerImage(ctx)
	}

	commandRunner, err := runtime.ResolveCommandRunner(injector)
	if err != nil {
		return false, err
	}

	src, err := source.NewManager(
		commandRunner,
		cfg.Spec.Server.Source.Repository,
		cfg.Spec.Server.Source.Ref,
		cfg.Spec.Paths.SourceDir,
	)
	if err != nil {
		return false, fmt.Errorf("create source manager: %w", err)
	}

	// Changed needs an existing checkout; without one the first Ensure is
	// the change.
	changed := true

	_, statErr := os.Stat(filepath.Join(src.Dir(), ".git"))
	if statErr == nil {
		changed, err = src.Changed(ctx)
		if err != nil {
			return false, err
		}
	}

	if !changed {
		notify.Infof(writer, "server source already at '%s'", cfg.Spec.Server.Source.Ref)

		return false, nil
	}

	notify.Activityf(writer, "syncing '%s' to '%s'", cfg.Spec.Server.Source.Repository, cfg.Spec.Server.Source.Ref)

	err = src.Ensure(ctx)
	if err != nil {
		return false, err
	}

	head, err := src.HeadCommit(ctx)
	if err != nil {
		return false, err
	}

	notify.Successf(writer, "server source at commit '%s'", shortCommit(head))

	return true, nil
}

func shortCommit(sha string) string {
	if len(sha) > shortCommitLen {
		return sha[:shortCommitLen]
	}

	return sha
}
