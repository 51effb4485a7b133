package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	defaultMaxSizeMB  = 10
	defaultMaxBackups = 5
	defaultMaxAgeDays = 30

	logDirPerm = 0o750
)

// Options configure the transcript file and rotation policy.
type Options struct {
	// Path is the transcript file location. Empty disables the transcript.
	Path string
	// MaxSizeMB rotates the file once it grows past this size.
	MaxSizeMB int
	// MaxBackups caps how many rotated files are kept.
	MaxBackups int
	// MaxAgeDays removes rotated files older than this.
	MaxAgeDays int
	// Level drops entries below this severity. Zero means logrus.InfoLevel.
	Level logrus.Level
}

// Transcript is a logrus logger bound to a rotating file.
type Transcript struct {
	*logrus.Logger

	rotator *lumberjack.Logger
}

// NewTranscript opens the transcript file described by opts.
//
// Unprivileged commands such as status must keep working when the log
// directory is not writable, so any failure to open the file yields a
// discard transcript instead of an error.
func NewTranscript(opts Options) *Transcript {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	logger.SetLevel(opts.Level)

	if opts.Level == 0 {
		logger.SetLevel(logrus.InfoLevel)
	}

	if opts.Path == "" || !probeWritable(opts.Path) {
		logger.SetOutput(io.Discard)

		return &Transcript{Logger: logger}
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    sizeOrDefault(opts.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: sizeOrDefault(opts.MaxBackups, defaultMaxBackups),
		MaxAge:     sizeOrDefault(opts.MaxAgeDays, defaultMaxAgeDays),
		Compress:   true,
	}
	logger.SetOutput(rotator)

	return &Transcript{Logger: logger, rotator: rotator}
}

// Discard returns a transcript that records nothing.
func Discard() *Transcript {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return &Transcript{Logger: logger}
}

// Enabled reports whether entries reach a file.
func (t *Transcript) Enabled() bool {
	return t.rotator != nil
}

// Close flushes and closes the underlying file.
func (t *Transcript) Close() error {
	if t.rotator == nil {
		return nil
	}

	return t.rotator.Close()
}

// WithStage tags entries with the installation stage they belong to.
func (t *Transcript) WithStage(stage string) *logrus.Entry {
	return t.WithField("stage", stage)
}

// WithComponent tags entries with the deployment component they concern.
func (t *Transcript) WithComponent(component string) *logrus.Entry {
	return t.WithField("component", component)
}

// probeWritable checks that the transcript file can actually be appended to.
// lumberjack opens lazily, which would turn a permission problem into a
// write error on every log call.
func probeWritable(path string) bool {
	if err := os.MkdirAll(filepath.Dir(path), logDirPerm); err != nil {
		return false
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return false
	}

	_ = file.Close()

	return true
}

func sizeOrDefault(value, fallback int) int {
	if value <= 0 {
		return fallback
	}

	return value
}
