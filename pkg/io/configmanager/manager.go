// Package configmanager loads, validates, and binds Happy deployment
// configurations.
//
// Configuration priority follows the usual CLI layering: defaults < config
// file < environment variables < flags. Field selectors describe which config
// fields surface as flags, so commands register flags and apply overrides
// from the same declaration.
package configmanager

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config manager errors.
var (
	// ErrConfigFileNotFound is returned when a command requires an on-disk
	// config file and none was found in the search paths.
	ErrConfigFileNotFound = errors.New("config file not found")
	// ErrConfigInvalid is returned when the loaded configuration fails
	// validation.
	ErrConfigInvalid = errors.New("config validation failed")
)

const (
	// envPrefix is the prefix for environment variable overrides
	// (HAPPY_SPEC_DOMAIN overrides spec.domain).
	envPrefix = "HAPPY"
	// configName is the config file name viper searches for, without extension.
	configName = "config"
	// configType is the config file format.
	configType = "yaml"
)

// ConfigManager implements configuration management for Happy
// v1alpha1.Deployment configurations.
type ConfigManager struct {
	Viper           *viper.Viper
	fieldSelectors  []FieldSelector[v1alpha1.Deployment]
	Config          *v1alpha1.Deployment
	configLoaded    bool           // Track if config has been actually loaded
	configFileFound bool           // Track if a config file was found and read
	Writer          io.Writer      // Writer for output notifications
	command         *cobra.Command // Associated Cobra command for flag introspection
}

// NewConfigManager creates a new configuration manager with the specified
// field selectors. Initializes Viper with search paths and environment
// handling.
func NewConfigManager(
	writer io.Writer,
	fieldSelectors ...FieldSelector[v1alpha1.Deployment],
) *ConfigManager {
	return &ConfigManager{
		Viper:          InitializeViper(),
		fieldSelectors: fieldSelectors,
		Config:         v1alpha1.NewDeployment(),
		configLoaded:   false,
		Writer:         writer,
	}
}

// NewCommandConfigManager constructs a ConfigManager bound to the provided
// Cobra command. It registers the supplied field selectors, binds flags from
// config fields, and writes output to the command's standard output writer.
func NewCommandConfigManager(
	cmd *cobra.Command,
	selectors []FieldSelector[v1alpha1.Deployment],
) *ConfigManager {
	manager := NewConfigManager(cmd.OutOrStdout(), selectors...)
	manager.command = cmd
	manager.AddFlagsFromFields(cmd)

	return manager
}

// InitializeViper creates a Viper instance configured for deployment config
// files. Search order: /etc/happy, then the working directory. Environment
// variables with the HAPPY_ prefix override file values.
func InitializeViper() *viper.Viper {
	viperInstance := viper.New()
	viperInstance.SetConfigName(configName)
	viperInstance.SetConfigType(configType)
	viperInstance.AddConfigPath(v1alpha1.DefaultConfigDir)
	viperInstance.AddConfigPath(".")
	viperInstance.SetEnvPrefix(envPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viperInstance.AutomaticEnv()

	return viperInstance
}

// SetConfigFile pins loading to an explicit config file path instead of the
// search paths. Used by the --config flag.
func (m *ConfigManager) SetConfigFile(path string) {
	if path != "" {
		m.Viper.SetConfigFile(path)
	}
}

// ConfigFileFound reports whether the last load read an on-disk config file.
func (m *ConfigManager) ConfigFileFound() bool {
	return m.configFileFound
}

// loadOptions controls the internal load behavior.
type loadOptions struct {
	silent            bool
	ignoreConfigFile  bool
	requireConfigFile bool
	skipValidation    bool
}

// LoadConfig loads the configuration from files, environment variables, and
// flags. Returns the loaded config (either freshly loaded or previously
// cached) and an error if loading failed. A missing config file is not an
// error; defaults apply.
// If timer is provided, timing information is included in the success
// notification.
func (m *ConfigManager) LoadConfig(tmr timer.Timer) (*v1alpha1.Deployment, error) {
	return m.loadConfigWithOptions(tmr, loadOptions{})
}

// LoadRequiredConfig is LoadConfig for commands that operate on an existing
// deployment: a missing config file is an error.
func (m *ConfigManager) LoadRequiredConfig(tmr timer.Timer) (*v1alpha1.Deployment, error) {
	return m.loadConfigWithOptions(tmr, loadOptions{requireConfigFile: true})
}

// LoadConfigSilent loads the configuration without outputting notifications.
func (m *ConfigManager) LoadConfigSilent() (*v1alpha1.Deployment, error) {
	return m.loadConfigWithOptions(nil, loadOptions{silent: true})
}

// LoadConfigFromFlagsOnly loads configuration from flags and defaults only,
// ignoring on-disk config files. No notifications are emitted and validation
// is skipped; used by commands that scaffold configuration that the user
// completes afterwards.
func (m *ConfigManager) LoadConfigFromFlagsOnly() (*v1alpha1.Deployment, error) {
	return m.loadConfigWithOptions(nil, loadOptions{
		silent:           true,
		ignoreConfigFile: true,
		skipValidation:   true,
	})
}

func (m *ConfigManager) loadConfigWithOptions(
	tmr timer.Timer,
	opts loadOptions,
) (*v1alpha1.Deployment, error) {
	if !opts.silent {
		m.notifyLoadingStart()
	}

	if m.configLoaded {
		if !opts.silent {
			m.notifyConfigReused()
		}

		return m.Config, nil
	}

	if !opts.silent {
		m.notifyLoadingConfig()
	}

	if !opts.ignoreConfigFile {
		err := m.readConfig(opts.silent)
		if err != nil {
			return nil, err
		}

		if opts.requireConfigFile && !m.configFileFound {
			return nil, fmt.Errorf("%w: run 'happyctl init' to scaffold one", ErrConfigFileNotFound)
		}
	}

	flagOverrides := m.captureChangedFlagValues()

	err := m.unmarshalAndApplyDefaults()
	if err != nil {
		return nil, err
	}

	err = m.applyFlagOverrides(flagOverrides)
	if err != nil {
		return nil, err
	}

	if !opts.skipValidation {
		err = m.validateConfig()
		if err != nil {
			return nil, err
		}
	}

	if !opts.silent {
		m.notifyLoadingComplete(tmr)
	}

	m.configLoaded = true

	return m.Config, nil
}

func (m *ConfigManager) readConfig(silent bool) error {
	err := m.Viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("failed to read config file: %w", err)
		}

		m.configFileFound = false
		if !silent {
			m.notifyUsingDefaults()
		}
	} else {
		m.configFileFound = true
		if !silent {
			m.notifyConfigFound()
		}
	}

	return nil
}

func (m *ConfigManager) unmarshalAndApplyDefaults() error {
	decoderConfig := func(dc *mapstructure.DecoderConfig) {
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			durationDecodeHook(),
			tlsModeDecodeHook(),
			sourceStrategyDecodeHook(),
		)
	}

	// Reset TypeMeta fields only if a config file was found.
	// This allows validation to catch incorrect values from config files
	// while preserving defaults when loading from flags only.
	if m.configFileFound {
		m.Config.APIVersion = ""
		m.Config.Kind = ""
	}

	err := m.Viper.Unmarshal(m.Config, decoderConfig)
	if err != nil {
		return fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Apply field selector defaults for empty fields
	for _, fieldSelector := range m.fieldSelectors {
		fieldPtr := fieldSelector.Selector(m.Config)
		if fieldPtr != nil && isFieldEmpty(fieldPtr) {
			setFieldValue(fieldPtr, fieldSelector.DefaultValue)
		}
	}

	return nil
}

// durationDecodeHook decodes "90s" style strings into v1alpha1.Duration.
func durationDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(v1alpha1.Duration{}) {
			return data, nil
		}

		raw, _ := data.(string)

		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", raw, err)
		}

		return v1alpha1.Duration{Duration: parsed}, nil
	}
}

// tlsModeDecodeHook decodes TLS mode strings case-insensitively.
func tlsModeDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(v1alpha1.TLSMode("")) {
			return data, nil
		}

		raw, _ := data.(string)

		var mode v1alpha1.TLSMode

		err := mode.Set(raw)
		if err != nil {
			return nil, err
		}

		return mode, nil
	}
}

// sourceStrategyDecodeHook decodes source strategy strings case-insensitively.
func sourceStrategyDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(v1alpha1.SourceStrategy("")) {
			return data, nil
		}

		raw, _ := data.(string)

		var strategy v1alpha1.SourceStrategy

		err := strategy.Set(raw)
		if err != nil {
			return nil, err
		}

		return strategy, nil
	}
}

func (m *ConfigManager) captureChangedFlagValues() map[string]string {
	if m.command == nil {
		return nil
	}

	flags := m.command.Flags()
	overrides := make(map[string]string)

	flags.Visit(func(f *pflag.Flag) {
		overrides[f.Name] = f.Value.String()
	})

	return overrides
}

func (m *ConfigManager) applyFlagOverrides(overrides map[string]string) error {
	if overrides == nil {
		return nil
	}

	for _, selector := range m.fieldSelectors {
		fieldPtr := selector.Selector(m.Config)
		if fieldPtr == nil {
			continue
		}

		flagName := m.GenerateFlagName(fieldPtr)

		value, ok := overrides[flagName]
		if !ok {
			continue
		}

		err := setFieldValueFromFlag(fieldPtr, value)
		if err != nil {
			return fmt.Errorf("failed to apply flag override for %s: %w", flagName, err)
		}
	}

	return nil
}

// validateConfig runs validation on the loaded configuration and reports
// every issue with its fix suggestion before returning a summary error.
func (m *ConfigManager) validateConfig() error {
	result := v1alpha1.Validate(m.Config)
	if result.Valid() {
		return nil
	}

	notify.WriteMessage(notify.Message{
		Type:    notify.ErrorType,
		Content: "%s",
		Args:    []any{result.Format()},
		Writer:  m.Writer,
	})

	return fmt.Errorf("%w: %d issue(s) found", ErrConfigInvalid, len(result.Issues))
}

func (m *ConfigManager) notifyLoadingStart() {
	notify.WriteMessage(notify.Message{
		Type:    notify.TitleType,
		Content: "Load config...",
		Emoji:   "⏳",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyConfigReused() {
	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "config already loaded, reusing existing config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyLoadingConfig() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "loading deployment config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyUsingDefaults() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "using default config",
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyConfigFound() {
	notify.WriteMessage(notify.Message{
		Type:    notify.ActivityType,
		Content: "'%s' found",
		Args:    []any{m.Viper.ConfigFileUsed()},
		Writer:  m.Writer,
	})
}

func (m *ConfigManager) notifyLoadingComplete(tmr timer.Timer) {
	notify.WriteMessage(notify.Message{
		Type:    notify.SuccessType,
		Content: "config loaded",
		Timer:   tmr,
		Writer:  m.Writer,
	})
}

// isFieldEmpty checks if a field pointer points to an empty/zero value.
func isFieldEmpty(fieldPtr any) bool {
	if fieldPtr == nil {
		return true
	}

	fieldVal := reflect.ValueOf(fieldPtr)
	if fieldVal.Kind() != reflect.Ptr || fieldVal.IsNil() {
		return true
	}

	return fieldVal.Elem().IsZero()
}

// setFieldValue assigns a default value to the field behind fieldPtr,
// converting between compatible types (int to int32, time.Duration to
// Duration) where needed.
func setFieldValue(fieldPtr any, value any) {
	if fieldPtr == nil || value == nil {
		return
	}

	target := reflect.ValueOf(fieldPtr)
	if target.Kind() != reflect.Ptr || target.IsNil() {
		return
	}

	targetField := target.Elem()
	if !targetField.CanSet() {
		return
	}

	// time.Duration defaults fill Duration wrapper fields directly.
	if duration, ok := value.(time.Duration); ok &&
		targetField.Type() == reflect.TypeOf(v1alpha1.Duration{}) {
		targetField.Set(reflect.ValueOf(v1alpha1.Duration{Duration: duration}))

		return
	}

	val := reflect.ValueOf(value)

	switch {
	case val.Type().AssignableTo(targetField.Type()):
		targetField.Set(val)
	case val.Type().ConvertibleTo(targetField.Type()):
		targetField.Set(val.Convert(targetField.Type()))
	}
}
