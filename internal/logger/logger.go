// Package logger provides the process-wide structured logger.
//
// Warnings and errors are always emitted. Debug, Info and Section output
// only appears in verbose mode (the --verbose flag), which is where the
// per-record pipeline trace goes.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.RWMutex
	verbose bool
	std     = newLogrus(os.Stderr)
)

func newLogrus(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	log.SetLevel(logrus.WarnLevel)
	return log
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		std.SetLevel(logrus.DebugLevel)
	} else {
		std.SetLevel(logrus.WarnLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	std.SetOutput(w)
}

// SetFormat selects "json" or "text" output. Unknown values select text.
func SetFormat(format string) {
	mu.Lock()
	defer mu.Unlock()
	if format == "json" {
		std.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
		return
	}
	std.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// Debug logs a formatted message in verbose mode.
func Debug(format string, args ...any) {
	std.Debugf(format, args...)
}

// Section logs a section header in verbose mode.
func Section(name string) {
	std.WithField("section", name).Info("=== " + name + " ===")
}

// Info logs a formatted message in verbose mode.
func Info(format string, args ...any) {
	std.Infof(format, args...)
}

// Warn logs a formatted warning.
func Warn(format string, args ...any) {
	std.Warnf(format, args...)
}

// Error logs a formatted error.
func Error(format string, args ...any) {
	std.Errorf(format, args...)
}

// WithRecord returns an entry tagged with a record identifier.
func WithRecord(recordID string) *logrus.Entry {
	return std.WithField("record", recordID)
}

// WithRun returns an entry tagged with an export run identifier.
func WithRun(runID string) *logrus.Entry {
	return std.WithField("run_id", runID)
}

// WithFields returns an entry carrying the given fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return std.WithFields(fields)
}
