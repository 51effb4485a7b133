package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Jaydooooooo/happy-code/pkg/logging"
	"github.com/Jaydooooooo/happy-code/pkg/utils/notify"
	"github.com/Jaydooooooo/happy-code/pkg/utils/timer"
)

// stageRunner executes the named stages of a pipeline command. Each stage
// advances the timer, prints a title line, and records start/outcome in the
// transcript; a failing stage is named in the returned error.
type stageRunner struct {
	writer     io.Writer
	timer      timer.Timer
	transcript *logging.Transcript
}

// run executes one stage. An empty emoji suppresses the title line for
// stages that print their own.
func (r *stageRunner) run(title, emoji string, fn func() error) error {
	r.timer.NewStage()

	stage := strings.ToLower(title)

	if emoji != "" {
		notify.Titlef(r.writer, emoji, "%s...", title)
	}

	r.transcript.WithStage(stage).Info("stage started")

	err := fn()
	if err != nil {
		r.transcript.WithStage(stage).WithError(err).Error("stage failed")

		return fmt.Errorf("failed to %s: %w", stage, err)
	}

	r.transcript.WithStage(stage).Info("stage completed")

	return nil
}
