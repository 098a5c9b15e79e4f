// Package logger provides the structured slog logger for build runs. Logs are
// written in JSON format to a file under the build directory, keeping the
// terminal free for the console reporter.
package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// NewBuildLogger creates a JSON slog.Logger that writes to <logDir>/build.log.
// The directory is created if it does not exist.
func NewBuildLogger(logDir string, level slog.Level) (*slog.Logger, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	f, err := openLogFile(filepath.Join(logDir, "build.log"))
	if err != nil {
		return nil, err
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	return slog.New(handler), nil
}

// openLogFile opens (or creates) a log file with append semantics.
func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", path, err)
	}
	return f, nil
}
