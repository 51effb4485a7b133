// Package preflight validates a host before the deployment touches it.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
)

// ErrPreflightFailed aggregates the names of failed checks.
var ErrPreflightFailed = errors.New("preflight checks failed")

// Check is a named host validation.
type Check struct {
	// Name identifies the check in progress output.
	Name string
	// Run performs the validation. Returning a *Warning reports a finding
	// without failing the run.
	Run func(ctx context.Context) error
}

// Warning marks a check finding that is reported after the checks finish but
// does not fail the run.
type Warning struct {
	message string
}

// NewWarning creates a warning finding.
func NewWarning(format string, args ...any) *Warning {
	return &Warning{message: fmt.Sprintf(format, args...)}
}

// Error implements error so checks can return a Warning directly.
func (w *Warning) Error() string { return w.message }

// Preflight runs a list of checks in parallel with progress output.
type Preflight struct {
	checks []Check
	writer io.Writer
}

// NewPreflight creates a preflight runner over the given checks.
func NewPreflight(writer io.Writer, checks ...Check) *Preflight {
	return &Preflight{
		checks: checks,
		writer: writer,
	}
}

// Run executes every check in parallel. Warnings are printed once the checks
// finish. On failure the error lists each failed check, and the individual
// errors are reported through notify.
func (p *Preflight) Run(ctx context.Context, tmr timer.Timer) error {
	if len(p.checks) == 0 {
		return nil
	}

	var stateMu sync.Mutex

	warnings := make(map[string]string, len(p.checks))
	failures := make(map[string]error, len(p.checks))

	tasks := make([]notify.ProgressTask, 0, len(p.checks))

	for _, check := range p.checks {
		tasks = append(tasks, notify.ProgressTask{
			Name: check.Name,
			Fn: func(ctx context.Context) error {
				err := check.Run(ctx)

				var warning *Warning
				if errors.As(err, &warning) {
					stateMu.Lock()
					warnings[check.Name] = warning.Error()
					stateMu.Unlock()

					return nil
				}

				if err != nil {
					stateMu.Lock()
					failures[check.Name] = err
					stateMu.Unlock()
				}

				return err
			},
		})
	}

	group := notify.NewProgressGroup("Run preflight checks", "🔍", p.writer,
		notify.WithLabels(notify.ValidatingLabels()),
		notify.WithTimer(tmr),
	)

	groupErr := group.Run(ctx, tasks...)

	for _, check := range p.checks {
		if warning, ok := warnings[check.Name]; ok {
			notify.Warningf(p.writer, "%s: %s", check.Name, warning)
		}
	}

	if groupErr == nil {
		return nil
	}

	failed := make([]string, 0, len(failures))

	for _, check := range p.checks {
		err, ok := failures[check.Name]
		if !ok || errors.Is(err, context.Canceled) {
			continue
		}

		failed = append(failed, check.Name)
		notify.Errorf(p.writer, "%s: %v", check.Name, err)
	}

	if len(failed) == 0 {
		return fmt.Errorf("preflight: %w", groupErr)
	}

	return fmt.Errorf("%w: %s", ErrPreflightFailed, strings.Join(failed, ", "))
}
