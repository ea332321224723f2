package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// FileName is the run log written under <output>/logs.
const FileName = "fcncmva.log"

// Logger writes structured lines to <output>/logs/fcncmva.log and mirrors
// them to a console writer so failures can be inspected after the run.
type Logger struct {
	*slog.Logger
	file *os.File
	path string
}

// New opens (or appends to) the run log under outputDir. A nil console
// disables mirroring.
func New(outputDir string, verbose bool, console io.Writer) (*Logger, error) {
	logDir := filepath.Join(outputDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	var w io.Writer = f
	if console != nil {
		w = io.MultiWriter(f, console)
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(verbose)})
	return &Logger{Logger: slog.New(handler), file: f, path: path}, nil
}

// Level maps the verbose flag to a slog level.
func Level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
