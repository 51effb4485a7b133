// Package scaffolder materializes the deployment files happyctl init
// produces: config.yaml, Caddyfile, and happy.env.
package scaffolder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/io/generator"
	caddyfilegenerator "github.com/Jaydooooooo/happy-code/pkg/io/generator/caddyfile"
	dotenvgenerator "github.com/Jaydooooooo/happy-code/pkg/io/generator/dotenv"
	yamlgenerator "github.com/Jaydooooooo/happy-code/pkg/io/generator/yaml"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
)

var (
	// Scaffolding errors.

	// ErrConfigGeneration wraps failures when creating config.yaml.
	ErrConfigGeneration = errors.New("failed to generate deployment configuration")

	// ErrCaddyfileGeneration wraps failures when creating the Caddyfile.
	ErrCaddyfileGeneration = errors.New("failed to generate Caddyfile")

	// ErrEnvFileGeneration wraps failures when creating happy.env.
	ErrEnvFileGeneration = errors.New("failed to generate environment file")
)

// Scaffolder is responsible for generating Happy deployment files.
type Scaffolder struct {
	Config             v1alpha1.Deployment
	ConfigGenerator    generator.Generator[*v1alpha1.Deployment, yamlgenerator.Options]
	CaddyfileGenerator generator.Generator[*v1alpha1.Deployment, yamlgenerator.Options]
	EnvGenerator       generator.Generator[*v1alpha1.Deployment, yamlgenerator.Options]
	Writer             io.Writer
}

// NewScaffolder creates a new Scaffolder instance with the provided
// deployment configuration.
func NewScaffolder(cfg v1alpha1.Deployment, writer io.Writer) *Scaffolder {
	return &Scaffolder{
		Config:             cfg,
		ConfigGenerator:    yamlgenerator.NewYAMLGenerator[*v1alpha1.Deployment](),
		CaddyfileGenerator: caddyfilegenerator.NewCaddyfileGenerator(),
		EnvGenerator:       dotenvgenerator.NewDotenvGenerator(),
		Writer:             writer,
	}
}

// Scaffold generates the deployment files.
//
// This method orchestrates the generation of:
//   - config.yaml deployment configuration
//   - Caddyfile proxy configuration (skipped while spec.domain is unset)
//   - happy.env secrets file (existing secrets survive re-runs)
//
// Parameters:
//   - output: The output directory for generated files
//   - force: If true, overwrites existing files; if false, skips existing files
func (s *Scaffolder) Scaffold(output string, force bool) error {
	err := s.generateConfig(output, force)
	if err != nil {
		return err
	}

	err = s.generateCaddyfile(output, force)
	if err != nil {
		return err
	}

	return s.generateEnvFile(output, force)
}

// Configuration defaults and helpers.

// applyConfigDefaults aligns the scaffolded configuration with the output
// directory so later commands search where init wrote.
func (s *Scaffolder) applyConfigDefaults(output string) v1alpha1.Deployment {
	config := s.Config

	if config.Kind == "" {
		config.Kind = v1alpha1.Kind
	}

	if config.APIVersion == "" {
		config.APIVersion = v1alpha1.APIVersion
	}

	if config.Spec.Paths.ConfigDir == "" || config.Spec.Paths.ConfigDir == v1alpha1.DefaultConfigDir {
		absOutput, err := filepath.Abs(output)
		if err != nil {
			absOutput = output
		}

		config.Spec.Paths.ConfigDir = absOutput
	}

	return config
}

// File handling helpers.

// checkFileExistsAndSkip checks if a file exists and should be skipped based
// on the force flag. Returns skip, existed, and the previous mod time.
// Outputs a warning message when skipping.
func (s *Scaffolder) checkFileExistsAndSkip(
	filePath string,
	fileName string,
	force bool,
) (bool, bool, time.Time) {
	info, statErr := os.Stat(filePath)
	if statErr == nil {
		if !force {
			notify.WriteMessage(notify.Message{
				Type:    notify.WarningType,
				Content: "skipped '%s', file exists use --force to overwrite",
				Args:    []any{fileName},
				Writer:  s.Writer,
			})

			return true, true, info.ModTime()
		}

		return false, true, info.ModTime()
	}

	return false, false, time.Time{}
}

// GenerationParams groups parameters for generateWithFileHandling.
type GenerationParams struct {
	Gen         generator.Generator[*v1alpha1.Deployment, yamlgenerator.Options]
	Model       *v1alpha1.Deployment
	Opts        yamlgenerator.Options
	DisplayName string
	Force       bool
	WrapErr     func(error) error
}

// generateWithFileHandling wraps generation with common file existence
// checks and notifications.
func generateWithFileHandling(scaffolder *Scaffolder, params GenerationParams) error {
	skip, existed, previousModTime := scaffolder.checkFileExistsAndSkip(
		params.Opts.Output,
		params.DisplayName,
		params.Force,
	)

	if skip {
		return nil
	}

	_, err := params.Gen.Generate(params.Model, params.Opts)
	if err != nil {
		if params.WrapErr != nil {
			return params.WrapErr(err)
		}

		return fmt.Errorf("failed to generate %s: %w", params.DisplayName, err)
	}

	if params.Force && existed {
		err := ensureOverwriteModTime(params.Opts.Output, previousModTime)
		if err != nil {
			return fmt.Errorf("failed to update mod time for %s: %w", params.DisplayName, err)
		}
	}

	scaffolder.notifyFileAction(params.DisplayName, existed)

	return nil
}

func ensureOverwriteModTime(path string, previous time.Time) error {
	if path == "" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	current := info.ModTime()
	if previous.IsZero() || current.After(previous) {
		return nil
	}

	// Ensure the new mod time is strictly greater than the previous timestamp.
	newModTime := previous.Add(time.Millisecond)

	now := time.Now()
	if now.After(newModTime) {
		newModTime = now
	}

	err = os.Chtimes(path, newModTime, newModTime)
	if err != nil {
		return fmt.Errorf("failed to update mod time for %s: %w", path, err)
	}

	return nil
}

func (s *Scaffolder) notifyFileAction(displayName string, overwritten bool) {
	action := "created"
	if overwritten {
		action = "overwrote"
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.GenerateType,
		Content: "%s '%s'",
		Args:    []any{action, displayName},
		Writer:  s.Writer,
	})
}

// Configuration file generators.

// generateConfig generates the config.yaml configuration file.
func (s *Scaffolder) generateConfig(output string, force bool) error {
	config := s.applyConfigDefaults(output)

	opts := yamlgenerator.Options{
		Output: filepath.Join(output, v1alpha1.ConfigFileName),
		Force:  force,
	}

	return generateWithFileHandling(
		s,
		GenerationParams{
			Gen:         s.ConfigGenerator,
			Model:       &config,
			Opts:        opts,
			DisplayName: v1alpha1.ConfigFileName,
			Force:       force,
			WrapErr: func(err error) error {
				return fmt.Errorf("%w: %w", ErrConfigGeneration, err)
			},
		},
	)
}

// generateCaddyfile generates the Caddyfile proxy configuration.
// The site block needs a domain, so scaffolding is postponed with a warning
// until spec.domain is set.
func (s *Scaffolder) generateCaddyfile(output string, force bool) error {
	if strings.TrimSpace(s.Config.Spec.Domain) == "" {
		notify.WriteMessage(notify.Message{
			Type:    notify.WarningType,
			Content: "skipped '%s', set spec.domain in %s and rerun 'happyctl init'",
			Args:    []any{v1alpha1.CaddyfileName, v1alpha1.ConfigFileName},
			Writer:  s.Writer,
		})

		return nil
	}

	config := s.applyConfigDefaults(output)

	opts := yamlgenerator.Options{
		Output: filepath.Join(output, v1alpha1.CaddyfileName),
		Force:  force,
	}

	return generateWithFileHandling(
		s,
		GenerationParams{
			Gen:         s.CaddyfileGenerator,
			Model:       &config,
			Opts:        opts,
			DisplayName: v1alpha1.CaddyfileName,
			Force:       force,
			WrapErr: func(err error) error {
				return fmt.Errorf("%w: %w", ErrCaddyfileGeneration, err)
			},
		},
	)
}

// generateEnvFile generates the happy.env secrets file. The generator merges
// with an existing file, so secrets minted on the first run survive --force.
func (s *Scaffolder) generateEnvFile(output string, force bool) error {
	config := s.applyConfigDefaults(output)

	opts := yamlgenerator.Options{
		Output: filepath.Join(output, v1alpha1.EnvFileName),
		Force:  force,
	}

	return generateWithFileHandling(
		s,
		GenerationParams{
			Gen:         s.EnvGenerator,
			Model:       &config,
			Opts:        opts,
			DisplayName: v1alpha1.EnvFileName,
			Force:       force,
			WrapErr: func(err error) error {
				return fmt.Errorf("%w: %w", ErrEnvFileGeneration, err)
			},
		},
	)
}
