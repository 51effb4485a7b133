package helpers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// TimingFlagName is the name of the persistent flag that toggles timing output.
const TimingFlagName = "timing"

// ConfigFlagName is the name of the persistent flag that overrides the config
// file location.
const ConfigFlagName = "config"

// ErrNilCommand is returned when a flag lookup receives a nil command.
var ErrNilCommand = errors.New("command is nil")

// IsTimingEnabled reports whether the timing flag is set on the command or any
// of its ancestors. Local flags take precedence over persistent flags.
func IsTimingEnabled(cmd *cobra.Command) (bool, error) {
	flag, err := lookupFlag(cmd, TimingFlagName)
	if err != nil {
		return false, err
	}

	enabled, err := strconv.ParseBool(flag.Value.String())
	if err != nil {
		return false, fmt.Errorf(
			"failed to parse '%s' flag value %q: %w",
			TimingFlagName,
			flag.Value.String(),
			err,
		)
	}

	return enabled, nil
}

// MaybeTimer returns tmr when timing output is enabled on the command and nil
// otherwise. The notify helpers treat a nil timer as "omit timing".
func MaybeTimer(cmd *cobra.Command, tmr timer.Timer) timer.Timer {
	if cmd == nil || tmr == nil {
		return nil
	}

	enabled, err := IsTimingEnabled(cmd)
	if err != nil || !enabled {
		return nil
	}

	return tmr
}

// ConfigFileOverride returns the value of the config flag on the command or
// its ancestors, or an empty string when the flag is unset or absent.
func ConfigFileOverride(cmd *cobra.Command) string {
	flag, err := lookupFlag(cmd, ConfigFlagName)
	if err != nil {
		return ""
	}

	return flag.Value.String()
}

func lookupFlag(cmd *cobra.Command, name string) (*pflag.Flag, error) {
	if cmd == nil {
		return nil, ErrNilCommand
	}

	for current := cmd; current != nil; current = current.Parent() {
		if flag := current.Flags().Lookup(name); flag != nil {
			return flag, nil
		}

		if flag := current.PersistentFlags().Lookup(name); flag != nil {
			return flag, nil
		}
	}

	return nil, fmt.Errorf("'%s' flag not found on %q or its parents", name, cmd.Name())
}
