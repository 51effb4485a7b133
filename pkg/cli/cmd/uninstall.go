package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/cli/helpers"
	"github.com/Jaydooooooo/happy-code/pkg/cli/ui/confirm"
	runtime "github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/Jaydooooooo/happy-code/pkg/io/configmanager"
	"github.com/Jaydooooooo/happy-code/pkg/svc/provisioner"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewUninstallCmd wires the uninstall command using the shared runtime
// container.
func NewUninstallCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove the deployment from this host",
		Long: "Stop and remove the deployment's containers and network. " +
			"Data volumes survive unless --volumes is given; --purge also removes " +
			"generated files, the source checkout, and the built server image. " +
			"Interactive runs are asked to confirm first; --force skips the prompt. " +
			"Host packages installed by 'happyctl install' stay installed.",
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(cmd, deploymentFlagSelectors())

	cmd.Flags().Bool("volumes", false, "Also remove data volumes (database and cache contents)")
	cmd.Flags().Bool("purge", false, "Also remove volumes, generated files, the source checkout, and the server image")
	cmd.Flags().Bool("force", false, "Skip the removal confirmation prompt")

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return handleUninstallRunE(cmd, injector, cfgManager, tmr)
		},
	))

	return cmd
}

// handleUninstallRunE tears the deployment down. Configuration loading is
// tolerant here: the defaults are enough to find labeled containers, so
// uninstall works even after the config file is gone.
func handleUninstallRunE(
	cmd *cobra.Command,
	injector runtime.Injector,
	cfgManager *configmanager.ConfigManager,
	tmr timer.Timer,
) error {
	tmr.Start()

	outputTimer := helpers.MaybeTimer(cmd, tmr)
	writer := stageOutput(cmd, cfgManager)

	applyConfigFileFlag(cmd, cfgManager)

	cfg, err := cfgManager.LoadConfig(outputTimer)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	volumes, err := cmd.Flags().GetBool("volumes")
	if err != nil {
		return fmt.Errorf("failed to read volumes flag: %w", err)
	}

	purge, err := cmd.Flags().GetBool("purge")
	if err != nil {
		return fmt.Errorf("failed to read purge flag: %w", err)
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to read force flag: %w", err)
	}

	if !confirm.ShouldSkipPrompt(force) {
		confirm.ShowRemovalPreview(writer, removalPreview(cfg, volumes, purge))

		if !confirm.PromptForConfirmation() {
			return confirm.ErrRemovalCancelled
		}
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

	err = stages.run("Tear down containers", "🔥", func() error {
		return prov.Teardown(ctx, provisioner.TeardownOptions{Volumes: volumes, Purge: purge})
	})
	if err != nil {
		return err
	}

	if purge {
		err = stages.run("Remove generated files", "🗑️", func() error {
			return removeGeneratedFiles(cfg, writer)
		})
		if err != nil {
			return err
		}
	}

	notify.SuccessWithTimerf(writer, outputTimer, "Happy deployment removed")
	notify.Infof(writer, "host packages (docker, certbot) stay installed")

	return nil
}

// removalPreview assembles what the teardown is about to touch, scoped to the
// given flags, so the confirmation prompt shows the real blast radius.
func removalPreview(cfg *v1alpha1.Deployment, volumes, purge bool) *confirm.RemovalPreview {
	order := v1alpha1.ComponentOrder()

	preview := &confirm.RemovalPreview{
		Components: make([]string, 0, len(order)),
		Network:    v1alpha1.NetworkName,
	}

	for i := len(order) - 1; i >= 0; i-- {
		preview.Components = append(preview.Components, order[i])
	}

	if volumes || purge {
		for _, component := range order {
			preview.Volumes = append(preview.Volumes, v1alpha1.VolumeNames(component)...)
		}
	}

	if purge {
		for _, name := range []string{v1alpha1.ConfigFileName, v1alpha1.CaddyfileName, v1alpha1.EnvFileName} {
			preview.Files = append(preview.Files, filepath.Join(cfg.Spec.Paths.ConfigDir, name))
		}

		preview.SourceDir = cfg.Spec.Paths.SourceDir
		preview.Images = []string{v1alpha1.ServerImageName}
	}

	return preview
}

// removeGeneratedFiles deletes the scaffolded files and the source checkout.
// Files already gone are fine; a partial purge should finish the job.
func removeGeneratedFiles(cfg *v1alpha1.Deployment, writer io.Writer) error {
	names := []string{v1alpha1.ConfigFileName, v1alpha1.CaddyfileName, v1alpha1.EnvFileName}

	for _, name := range names {
		path := filepath.Join(cfg.Spec.Paths.ConfigDir, name)

		err := os.Remove(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}

			return fmt.Errorf("remove %s: %w", path, err)
		}

		notify.Activityf(writer, "removed '%s'", path)
	}

	err := os.RemoveAll(cfg.Spec.Paths.SourceDir)
	if err != nil {
		return fmt.Errorf("remove source checkout %s: %w", cfg.Spec.Paths.SourceDir, err)
	}

	notify.Activityf(writer, "removed '%s'", cfg.Spec.Paths.SourceDir)

	return nil
}
