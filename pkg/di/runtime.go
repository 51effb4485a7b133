// Package di wires the happyctl services together. A Runtime holds a list
// of provider modules and spins up a fresh injector for every command
// invocation, so each run resolves clean dependencies and shuts them down
// afterwards.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency injector handed to modules and handlers.
type Injector = do.Injector

// Module registers one or more dependencies with an injector.
type Module func(Injector) error

// Runtime owns the base module list used by the root command and tests.
type Runtime struct {
	modules []Module
}

// New creates a runtime with the given base modules.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke creates an injector, applies the base modules followed by the
// extra ones in order, and runs the handler. Nil modules are skipped. The
// injector is shut down when the handler returns.
func (r *Runtime) Invoke(handler func(Injector) error, extra ...Module) error {
	injector := do.New()

	defer injector.Shutdown()

	for _, module := range r.modules {
		err := applyModule(injector, module)
		if err != nil {
			return err
		}
	}

	for _, module := range extra {
		err := applyModule(injector, module)
		if err != nil {
			return err
		}
	}

	return handler(injector)
}

// RunEWithRuntime adapts an injector-aware handler into a cobra RunE.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		})
	}
}

func applyModule(injector Injector, module Module) error {
	if module == nil {
		return nil
	}

	return module(injector)
}
