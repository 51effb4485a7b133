package configmanager

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
)

// flagValueSetter is implemented by enum field types (TLSMode,
// SourceStrategy) that parse their own flag values.
type flagValueSetter interface {
	Set(value string) error
}

// setFieldValueFromFlag writes a captured flag string back into the config
// field it overrides. Unknown field types are ignored.
func setFieldValueFromFlag(fieldPtr any, value string) error {
	if setter, ok := fieldPtr.(flagValueSetter); ok {
		err := setter.Set(value)
		if err != nil {
			return fmt.Errorf("set flag value: %w", err)
		}

		return nil
	}

	switch ptr := fieldPtr.(type) {
	case *string:
		*ptr = value

		return nil
	case *v1alpha1.Duration:
		return setDurationFromFlag(ptr, value)
	case *bool:
		return setBoolFromFlag(ptr, value)
	case *int32:
		return setInt32FromFlag(ptr, value)
	default:
		return nil
	}
}

func setDurationFromFlag(ptr *v1alpha1.Duration, value string) error {
	if value == "" {
		*ptr = v1alpha1.Duration{}

		return nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", value, err)
	}

	*ptr = v1alpha1.Duration{Duration: parsed}

	return nil
}

func setBoolFromFlag(ptr *bool, value string) error {
	if value == "" {
		*ptr = false

		return nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse bool %q: %w", value, err)
	}

	*ptr = parsed

	return nil
}

func setInt32FromFlag(ptr *int32, value string) error {
	if value == "" {
		*ptr = 0

		return nil
	}

	parsed, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return fmt.Errorf("parse int %q: %w", value, err)
	}

	*ptr = int32(parsed)

	return nil
}
