package di_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/Jaydooooooo/happy-code/pkg/svc/provisioner"
	"github.com/Jaydooooooo/happy-code/pkg/svc/verifier"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errHandlerExecutionFailed = errors.New("handler execution failed")

func TestResolveTimer_Success(t *testing.T) {
	t.Parallel()

	injector := do.New()
	do.Provide(injector, func(do.Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	resolvedTimer, err := di.ResolveTimer(injector)

	require.NoError(t, err)
	require.NotNil(t, resolvedTimer)

	resolvedTimer.Start()
	total, stage := resolvedTimer.GetTiming()
	assert.GreaterOrEqual(t, total.Nanoseconds(), int64(0))
	assert.GreaterOrEqual(t, stage.Nanoseconds(), int64(0))
}

func TestResolveTimer_Error(t *testing.T) {
	t.Parallel()

	injector := do.New()

	resolvedTimer, err := di.ResolveTimer(injector)

	require.Error(t, err)
	assert.Nil(t, resolvedTimer)
	assert.Contains(t, err.Error(), "resolve timer dependency")
}

func TestResolveCommandRunner_Error(t *testing.T) {
	t.Parallel()

	injector := do.New()

	commandRunner, err := di.ResolveCommandRunner(injector)

	require.Error(t, err)
	assert.Nil(t, commandRunner)
	assert.Contains(t, err.Error(), "resolve command runner dependency")
}

func TestResolveComponentManager_Error(t *testing.T) {
	t.Parallel()

	injector := do.New()

	componentManager, err := di.ResolveComponentManager(injector)

	require.Error(t, err)
	assert.Nil(t, componentManager)
	assert.Contains(t, err.Error(), "resolve component manager dependency")
}

func TestResolveCertbotClient_Error(t *testing.T) {
	t.Parallel()

	injector := do.New()

	client, err := di.ResolveCertbotClient(injector)

	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "resolve certbot client dependency")
}

func TestResolveInstallerFactory_Error(t *testing.T) {
	t.Parallel()

	injector := do.New()

	factory, err := di.ResolveInstallerFactory(injector)

	require.Error(t, err)
	assert.Nil(t, factory)
	assert.Contains(t, err.Error(), "resolve installer factory dependency")
}

func TestResolveProvisionerFactory_Success(t *testing.T) {
	t.Parallel()

	injector := do.New()
	do.Provide(injector, func(do.Injector) (provisioner.Factory, error) {
		return provisioner.DefaultFactory{}, nil
	})

	factory, err := di.ResolveProvisionerFactory(injector)

	require.NoError(t, err)
	require.NotNil(t, factory)
}

func TestResolveProvisionerFactory_Error(t *testing.T) {
	t.Parallel()

	injector := do.New()

	factory, err := di.ResolveProvisionerFactory(injector)

	require.Error(t, err)
	assert.Nil(t, factory)
	assert.Contains(t, err.Error(), "resolve provisioner factory dependency")
}

func TestResolveVerifierFactory_Success(t *testing.T) {
	t.Parallel()

	injector := do.New()
	do.Provide(injector, func(do.Injector) (verifier.Factory, error) {
		return verifier.DefaultFactory{}, nil
	})

	factory, err := di.ResolveVerifierFactory(injector)

	require.NoError(t, err)
	require.NotNil(t, factory)
}

func TestWithTimer_Success(t *testing.T) {
	t.Parallel()

	injector := do.New()
	do.Provide(injector, func(do.Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	handlerCalled := false
	handler := func(_ *cobra.Command, _ di.Injector, tmr timer.Timer) error {
		handlerCalled = true

		tmr.Start()

		return nil
	}

	err := di.WithTimer(handler)(&cobra.Command{}, injector)

	require.NoError(t, err)
	assert.True(t, handlerCalled)
}

func TestWithTimer_HandlerError(t *testing.T) {
	t.Parallel()

	injector := do.New()
	do.Provide(injector, func(do.Injector) (timer.Timer, error) {
		return timer.New(), nil
	})

	handler := func(*cobra.Command, di.Injector, timer.Timer) error {
		return fmt.Errorf("handler failed: %w", errHandlerExecutionFailed)
	}

	err := di.WithTimer(handler)(&cobra.Command{}, injector)

	require.ErrorIs(t, err, errHandlerExecutionFailed)
}

func TestWithTimer_TimerResolveError(t *testing.T) {
	t.Parallel()

	injector := do.New()

	handler := func(*cobra.Command, di.Injector, timer.Timer) error {
		return nil
	}

	err := di.WithTimer(handler)(&cobra.Command{}, injector)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolve timer dependency")
}
