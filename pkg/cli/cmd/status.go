package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Jaydooooooo/happy-code/pkg/cli/helpers"
	runtime "github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/Jaydooooooo/happy-code/pkg/io/configmanager"
	"github.com/Jaydooooooo/happy-code/pkg/svc/provisioner"
	"github.com/Jaydooooooo/happy-code/pkg/svc/verifier"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/spf13/cobra"
)

// NewStatusCmd wires the status command using the shared runtime container.
func NewStatusCmd(runtimeContainer *runtime.Runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show deployment component and endpoint status",
		Long: "Show the state and health of every deployment component, probe the " +
			"endpoints once, and report the served certificate's remaining lifetime.",
		SilenceUsage: true,
	}

	cfgManager := configmanager.NewCommandConfigManager(
		cmd, configmanager.DefaultDeploymentFieldSelectors(),
	)

	cmd.RunE = runtime.RunEWithRuntime(runtimeContainer, runtime.WithTimer(
		func(cmd *cobra.Command, injector runtime.Injector, tmr timer.Timer) error {
			return handleStatusRunE(cmd, injector, cfgManager, tmr)
		},
	))

	return cmd
}

// handleStatusRunE reports observed state. Failed probes are findings, not
// command failures: status is an observation tool and exits zero as long as
// it could observe.
func handleStatusRunE(
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

	ctx := cmd.Context()

	notify.Titlef(writer, "🩺", "Inspect deployment...")

	statuses, err := prov.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to inspect components: %w", err)
	}

	printComponentTable(writer, statuses)

	verifierFactory, err := runtime.ResolveVerifierFactory(injector)
	if err != nil {
		return err
	}

	vrf, err := verifierFactory.Create(cfg, writer)
	if err != nil {
		return fmt.Errorf("create verifier: %w", err)
	}

	probeEndpoints(ctx, vrf, cfg.Spec.Domain, writer)

	notify.SuccessWithTimerf(writer, outputTimer, "status collected")

	return nil
}

// printComponentTable renders the component list as an aligned table.
func printComponentTable(writer io.Writer, statuses []provisioner.ComponentStatus) {
	table := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(table, "COMPONENT\tSTATE\tHEALTH\tIMAGE")

	for _, status := range statuses {
		image := status.Image
		if image == "" {
			image = "-"
		}

		_, _ = fmt.Fprintf(table, "%s\t%s\t%s\t%s\n", status.Name, status.State, status.Health, image)
	}

	_ = table.Flush()
}

// probeEndpoints takes a single snapshot of each endpoint. One attempt per
// probe: status reports the current state rather than waiting for recovery.
func probeEndpoints(ctx context.Context, vrf *verifier.Verifier, domain string, writer io.Writer) {
	vrf.Attempts = 1

	err := vrf.VerifyLocal(ctx)
	if err != nil {
		notify.Errorf(writer, "%v", err)
	} else {
		notify.Successf(writer, "server responds on %s", vrf.LocalURL)
	}

	err = vrf.VerifyPublic(ctx)
	if err != nil {
		notify.Errorf(writer, "%v", err)
	} else {
		notify.Successf(writer, "%s serves HTTPS and redirects plain HTTP", vrf.PublicURL)
	}

	info, err := vrf.CertExpiry(ctx)

	switch {
	case err != nil:
		notify.Errorf(writer, "%v", err)
	case info.DaysLeft < verifier.ExpiryWarningDays:
		notify.Warningf(writer, "certificate for '%s' expires in %d days (%s)",
			domain, info.DaysLeft, info.NotAfter.Format(time.DateOnly))
	default:
		notify.Successf(writer, "certificate valid until %s (%d days left)",
			info.NotAfter.Format(time.DateOnly), info.DaysLeft)
	}
}
