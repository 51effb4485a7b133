package cmd

import (
	"fmt"

	"github.com/Jaydooooooo/happy-code/pkg/cli/helpers"
	"github.com/Jaydooooooo/happy-code/pkg/cli/ui/errorhandler"
	runtime "github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root command with version info and subcommands.
func NewRootCmd(version, commit, date string) *cobra.Command {
	runtimeContainer := runtime.NewRuntime()

	cmd := &cobra.Command{
		Use:   "happyctl",
		Short: "happyctl provisions and operates a self-hosted Happy deployment",
		Long: "happyctl provisions and operates a self-hosted Happy deployment: " +
			"the Happy server, PostgreSQL, Redis, and a TLS-terminating Caddy proxy, " +
			"all running as Docker containers on a single host.",
		RunE:         handleRootRunE,
		SilenceUsage: true,
	}

	cmd.Version = fmt.Sprintf("%s (Built on %s from Git SHA %s)", version, date, commit)

	cmd.PersistentFlags().Bool(
		helpers.TimingFlagName,
		false,
		"Show per-activity timing output",
	)
	cmd.PersistentFlags().String(
		helpers.ConfigFlagName,
		"",
		"Config file path (default: search /etc/happy, then the working directory)",
	)

	cmd.AddCommand(NewInitCmd(runtimeContainer))
	cmd.AddCommand(NewInstallCmd(runtimeContainer))
	cmd.AddCommand(NewStatusCmd(runtimeContainer))
	cmd.AddCommand(NewUpdateCmd(runtimeContainer))
	cmd.AddCommand(NewLogsCmd(runtimeContainer))
	cmd.AddCommand(NewUninstallCmd(runtimeContainer))

	return cmd
}

// Execute runs the provided root command and handles errors.
func Execute(cmd *cobra.Command) error {
	executor := errorhandler.NewExecutor()

	err := executor.Execute(cmd)
	if err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}

// handleRootRunE handles the root command.
func handleRootRunE(cmd *cobra.Command, _ []string) error {
	// The err can safely be ignored, as it can never fail at runtime.
	_ = cmd.Help()

	return nil
}
