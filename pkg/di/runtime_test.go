package di_test

import (
	"errors"
	"testing"

	"github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errHandler = errors.New("handler error")
	errModule  = errors.New("module error")
)

func TestNew_EmptyModules(t *testing.T) {
	t.Parallel()

	runtime := di.New()

	require.NotNil(t, runtime)
}

func TestRuntime_Invoke_RunsModulesBeforeHandler(t *testing.T) {
	t.Parallel()

	var order []string

	module := func(di.Injector) error {
		order = append(order, "module")

		return nil
	}

	runtime := di.New(module)

	err := runtime.Invoke(func(di.Injector) error {
		order = append(order, "handler")

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"module", "handler"}, order)
}

func TestRuntime_Invoke_HandlerErrorIsReturnedUnwrapped(t *testing.T) {
	t.Parallel()

	runtime := di.New()

	err := runtime.Invoke(func(di.Injector) error {
		return errHandler
	})

	require.Equal(t, errHandler, err)
}

func TestRuntime_Invoke_ModuleErrorSkipsHandler(t *testing.T) {
	t.Parallel()

	failingModule := func(di.Injector) error {
		return errModule
	}

	runtime := di.New(failingModule)

	err := runtime.Invoke(func(di.Injector) error {
		t.Fatal("handler must not run when a module fails")

		return nil
	})

	require.Equal(t, errModule, err)
}

func TestRuntime_Invoke_ExtraModulesRunAfterBaseModules(t *testing.T) {
	t.Parallel()

	var order []int

	base := func(di.Injector) error {
		order = append(order, 1)

		return nil
	}
	extra := func(di.Injector) error {
		order = append(order, 2)

		return nil
	}

	runtime := di.New(base)

	err := runtime.Invoke(func(di.Injector) error {
		order = append(order, 3)

		return nil
	}, extra)

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestRuntime_Invoke_NilModulesAreSkipped(t *testing.T) {
	t.Parallel()

	runtime := di.New(nil)

	err := runtime.Invoke(func(di.Injector) error {
		return nil
	}, nil)

	require.NoError(t, err)
}

func TestRuntime_Invoke_ResolvesProvidedDependencies(t *testing.T) {
	t.Parallel()

	type service struct {
		name string
	}

	module := func(injector di.Injector) error {
		do.Provide(injector, func(di.Injector) (*service, error) {
			return &service{name: "configured"}, nil
		})

		return nil
	}

	runtime := di.New(module)

	var resolved *service

	err := runtime.Invoke(func(injector di.Injector) error {
		var resolveErr error

		resolved, resolveErr = do.Invoke[*service](injector)

		return resolveErr
	})

	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "configured", resolved.name)
}

func TestRuntime_Invoke_EachInvocationGetsAFreshInjector(t *testing.T) {
	t.Parallel()

	type counter struct {
		value int
	}

	instances := 0
	module := func(injector di.Injector) error {
		do.Provide(injector, func(di.Injector) (*counter, error) {
			instances++

			return &counter{value: instances}, nil
		})

		return nil
	}

	runtime := di.New(module)

	for range 2 {
		err := runtime.Invoke(func(injector di.Injector) error {
			_, resolveErr := do.Invoke[*counter](injector)

			return resolveErr
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, instances)
}

func TestRunEWithRuntime_PassesCommandToHandler(t *testing.T) {
	t.Parallel()

	runtime := di.New()

	var receivedCmd *cobra.Command

	runE := di.RunEWithRuntime(runtime, func(cmd *cobra.Command, _ di.Injector) error {
		receivedCmd = cmd

		return nil
	})

	cmd := &cobra.Command{Use: "test"}
	err := runE(cmd, nil)

	require.NoError(t, err)
	assert.Equal(t, cmd, receivedCmd)
}

func TestRunEWithRuntime_ReturnsHandlerError(t *testing.T) {
	t.Parallel()

	runtime := di.New()

	runE := di.RunEWithRuntime(runtime, func(*cobra.Command, di.Injector) error {
		return errHandler
	})

	err := runE(&cobra.Command{Use: "test"}, nil)

	require.Equal(t, errHandler, err)
}
