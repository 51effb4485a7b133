package cmd

import (
	"path/filepath"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/cli/helpers"
	"github.com/Jaydooooooo/happy-code/pkg/io/configmanager"
	"github.com/Jaydooooooo/happy-code/pkg/logging"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/spf13/cobra"
)

// transcriptFileName is the install transcript file under the log dir.
const transcriptFileName = "happyctl.log"

// deploymentFlagSelectors returns the full flag set for commands that operate
// on a deployment: the shared selectors plus TLS file paths, server source
// details, and timeouts.
func deploymentFlagSelectors() []configmanager.FieldSelector[v1alpha1.Deployment] {
	selectors := configmanager.DefaultDeploymentFieldSelectors()
	selectors = append(selectors, configmanager.DefaultTLSCertFileFieldSelector())
	selectors = append(selectors, configmanager.DefaultTLSKeyFileFieldSelector())
	selectors = append(selectors, configmanager.DefaultSourceRepositoryFieldSelector())
	selectors = append(selectors, configmanager.DefaultSourceRefFieldSelector())
	selectors = append(selectors, configmanager.DefaultSourceImageFieldSelector())
	selectors = append(selectors, configmanager.DefaultLocalPortFieldSelector())
	selectors = append(selectors, configmanager.DefaultReadyTimeoutFieldSelector())
	selectors = append(selectors, configmanager.DefaultVerifyTimeoutFieldSelector())

	return selectors
}

// stageOutput routes all command output through a stage-separating writer so
// emoji title lines get blank-line separation, and points the config manager
// at the same writer.
func stageOutput(cmd *cobra.Command, cfgManager *configmanager.ConfigManager) *notify.StageSeparatingWriter {
	writer := notify.NewStageSeparatingWriter(cmd.OutOrStdout())
	cmd.SetOut(writer)
	cfgManager.Writer = writer

	return writer
}

// applyConfigFileFlag pins the config manager to the file given via the
// persistent --config flag, when set.
func applyConfigFileFlag(cmd *cobra.Command, cfgManager *configmanager.ConfigManager) {
	cfgManager.SetConfigFile(helpers.ConfigFileOverride(cmd))
}

// openTranscript opens the install transcript under the configured log dir.
// Unwritable dirs yield a discard transcript, so unprivileged runs still work.
func openTranscript(cfg *v1alpha1.Deployment) *logging.Transcript {
	logDir := cfg.Spec.Paths.LogDir
	if logDir == "" {
		logDir = v1alpha1.DefaultLogDir
	}

	return logging.NewTranscript(logging.Options{
		Path: filepath.Join(logDir, transcriptFileName),
	})
}
