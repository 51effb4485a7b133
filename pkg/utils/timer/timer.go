// Package timer provides simple timing utilities for tracking command and stage durations.
package timer

import (
	"sync"
	"time"
)

// Timer tracks the total elapsed time of an operation and the elapsed time of
// its current stage. Implementations must be safe for concurrent use.
type Timer interface {
	// Start begins timing. Calling Start again resets both the total and the
	// current stage.
	Start()
	// NewStage marks the beginning of a new stage, resetting the stage clock
	// while leaving the total running.
	NewStage()
	// GetTiming returns the total elapsed time since Start and the elapsed
	// time of the current stage. Both are zero if Start was never called.
	GetTiming() (total, stage time.Duration)
}

// New creates a new Timer. The timer does not run until Start is called.
func New() Timer {
	return &monotonicTimer{}
}

// monotonicTimer implements Timer using the monotonic clock readings embedded
// in time.Time values.
type monotonicTimer struct {
	mu         sync.Mutex
	start      time.Time
	stageStart time.Time
}

func (t *monotonicTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	t.start = now
	t.stageStart = now
}

func (t *monotonicTimer) NewStage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		return
	}

	t.stageStart = time.Now()
}

func (t *monotonicTimer) GetTiming() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		return 0, 0
	}

	now := time.Now()

	return now.Sub(t.start), now.Sub(t.stageStart)
}
