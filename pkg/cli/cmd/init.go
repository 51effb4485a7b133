package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/cli/helpers"
	runtime "github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/Jaydooooooo/happy-code/pkg/io/configmanager"
	"github.com/Jaydooooooo/happy-code/pkg/io/scaffolder"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewInitCmd wires the init command using the shared runtime container.
func NewInitCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold deployment configuration files",
		Long: "Scaffold a starter config.yaml, a happy.env with generated secrets, " +
			"and a matching Caddyfile into the output directory.",
		SilenceUsage: true,
	}

	fieldSelectors := configmanager.DefaultDeploymentFieldSelectors()
	cfgManager := configmanager.NewCommandConfigManager(cmd, fieldSelectors)

	cmd.Flags().StringP("output", "o", v1alpha1.DefaultConfigDir,
		"Directory to scaffold deployment files into")
	cmd.Flags().Bool("force", false, "Overwrite existing files")

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
		func(cmd *cobra.Command, _ runtime.Injector, tmr timer.Timer) error {
			return handleInitRunE(cmd, cfgManager, tmr)
		},
	))

	return cmd
}

// handleInitRunE scaffolds the deployment files from flags and defaults. The
// on-disk config file is deliberately ignored: init produces it.
func handleInitRunE(
	cmd *cobra.Command,
	cfgManager *configmanager.ConfigManager,
	tmr timer.Timer,
) error {
	tmr.Start()

	outputTimer := helpers.MaybeTimer(cmd, tmr)
	writer := stageOutput(cmd, cfgManager)

	cfg, err := cfgManager.LoadConfigFromFlagsOnly()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to read output flag: %w", err)
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return fmt.Errorf("failed to read force flag: %w", err)
	}

	notify.Titlef(writer, "✨", "Initialize Happy deployment...")

	err = scaffolder.NewScaffolder(*cfg, writer).Scaffold(output, force)
	if err != nil {
		return fmt.Errorf("failed to scaffold deployment files: %w", err)
	}

	notify.SuccessWithTimerf(writer, outputTimer, "deployment files ready in '%s'", output)

	if cfg.Spec.Domain == "" {
		notify.Infof(writer, "set spec.domain in '%s' before running 'happyctl install'",
			filepath.Join(output, v1alpha1.ConfigFileName))
	}

	return nil
}
