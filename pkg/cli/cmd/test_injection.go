package cmd

import (
	"context"
	"io"
	"sync"

	"github.com/Jaydooooooo/happy-code/pkg/apis/deployment/v1alpha1"
	"github.com/Jaydooooooo/happy-code/pkg/client/docker"
	runtime "github.com/Jaydooooooo/happy-code/pkg/di"
	"github.com/Jaydooooooo/happy-code/pkg/svc/preflight"
)

// preflightChecksFunc assembles the checks the install pipeline runs.
type preflightChecksFunc func(*v1alpha1.Deployment, runtime.Injector) []preflight.Check

// logStreamer streams one component's container logs.
type logStreamer interface {
	ComponentLogs(ctx context.Context, name string, opts docker.LogsOptions, stdout, stderr io.Writer) error
}

// Test injection for preflight check assembly and the log streamer.
var (
	//nolint:gochecknoglobals // dependency injection for tests
	preflightChecksOverrideMu sync.RWMutex
	//nolint:gochecknoglobals // dependency injection for tests
	preflightChecksOverride preflightChecksFunc
	//nolint:gochecknoglobals // dependency injection for tests
	logStreamerOverrideMu sync.RWMutex
	//nolint:gochecknoglobals // dependency injection for tests
	logStreamerOverride logStreamer
)

// buildPreflightChecks returns the preflight check assembler, allowing test
// override.
func buildPreflightChecks() preflightChecksFunc {
	preflightChecksOverrideMu.RLock()
	defer preflightChecksOverrideMu.RUnlock()

	if preflightChecksOverride != nil {
		return preflightChecksOverride
	}

	return defaultPreflightChecks
}

// resolveLogStreamer returns the log streamer to use, allowing test override.
func resolveLogStreamer(injector runtime.Injector) (logStreamer, error) {
	logStreamerOverrideMu.RLock()
	defer logStreamerOverrideMu.RUnlock()

	if logStreamerOverride != nil {
		return logStreamerOverride, nil
	}

	return runtime.ResolveComponentManager(injector)
}

// SetPreflightChecksForTests overrides preflight check assembly for testing.
func SetPreflightChecksForTests(fn preflightChecksFunc) func() {
	preflightChecksOverrideMu.Lock()

	previous := preflightChecksOverride
	preflightChecksOverride = fn

	preflightChecksOverrideMu.Unlock()

	return func() {
		preflightChecksOverrideMu.Lock()

		preflightChecksOverride = previous

		preflightChecksOverrideMu.Unlock()
	}
}

// SetLogStreamerForTests overrides the log streamer for testing.
func SetLogStreamerForTests(streamer logStreamer) func() {
	logStreamerOverrideMu.Lock()

	previous := logStreamerOverride
	logStreamerOverride = streamer

	logStreamerOverrideMu.Unlock()

	return func() {
		logStreamerOverrideMu.Lock()

		logStreamerOverride = previous

		logStreamerOverrideMu.Unlock()
	}
}
