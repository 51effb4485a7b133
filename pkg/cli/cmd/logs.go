package cmd

import (
	"fmt"
	"strconv"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/client/docker"
	runtime "github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/Jaydooooooo/happy-code/pkg/svc/provisioner"
	"github.com/spf13/cobra"
)

// NewLogsCmd wires the logs command using the shared runtime container.
func NewLogsCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs [component]",
		Short: "Stream logs from a deployment component",
		Long: "Stream container logs from one deployment component. " +
			"Defaults to the server when no component is given.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
	}

	cmd.Flags().Bool("follow", false, "Keep the stream open and tail new output")
	cmd.Flags().Int("tail", -1, "Show only the last N lines (negative shows everything)")

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer,
		func(cmd *cobra.Command, injector runtime.Injector) error {
			return handleLogsRunE(cmd, injector)
		},
	)

	return cmd
}

// handleLogsRunE validates the component and streams its logs. The component
// name is checked before touching Docker so typos fail fast.
func handleLogsRunE(cmd *cobra.Command, injector runtime.Injector) error {
	component := v1alpha1.ComponentServer
	if len(cmd.Flags().Args()) > 0 {
		component = cmd.Flags().Args()[0]
	}

	err := provisioner.ValidateComponent(component)
	if err != nil {
		return err
	}

	follow, err := cmd.Flags().GetBool("follow")
	if err != nil {
		return fmt.Errorf("failed to read follow flag: %w", err)
	}

	tail, err := cmd.Flags().GetInt("tail")
	if err != nil {
		return fmt.Errorf("failed to read tail flag: %w", err)
	}

	streamer, err := resolveLogStreamer(injector)
	if err != nil {
		return err
	}

	opts := docker.LogsOptions{Follow: follow, Tail: tailValue(tail)}

	err = streamer.ComponentLogs(cmd.Context(), component, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to stream '%s' logs: %w", component, err)
	}

	return nil
}

// tailValue maps the numeric flag onto the Docker API's tail parameter,
// where "all" lifts the limit.
func tailValue(tail int) string {
	if tail < 0 {
		return "all"
	}

	return strconv.Itoa(tail)
}
