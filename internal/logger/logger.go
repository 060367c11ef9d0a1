package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that writes to a file
func NewFileLogger(path string) (*Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	cleanup := func() {
		f.Close()
	}

	return &Logger{Logger: l}, cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(writers ...io.Writer) *Logger {
	w := io.MultiWriter(writers...)
	return New(w)
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// BuildStarted logs the start of a build
func (l *Logger) BuildStarted(runID, postsDir, outDir string) {
	l.Info("build started",
		"run_id", runID,
		"posts_dir", postsDir,
		"out_dir", outDir)
}

// BuildCompleted logs the completion of a build
func (l *Logger) BuildCompleted(runID string, extracted, skipped, errors int, duration time.Duration) {
	l.Info("build completed",
		"run_id", runID,
		"posts_extracted", extracted,
		"posts_skipped", skipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// PostExtracted logs a post written as JSON
func (l *Logger) PostExtracted(source, dest string) {
	l.Info("post extracted",
		"source", source,
		"dest", dest)
}

// PostSkipped logs when an unchanged post reuses its previous output
func (l *Logger) PostSkipped(source, reason string) {
	l.Debug("post skipped",
		"source", source,
		"reason", reason)
}

// IndexWritten logs the collection index being written
func (l *Logger) IndexWritten(path string, entries int) {
	l.Info("index written",
		"path", path,
		"entries", entries)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(postsDir, outDir string, highlight bool) {
	l.Debug("config loaded",
		"posts_dir", postsDir,
		"out_dir", outDir,
		"highlight_syntax", highlight)
}

// WatchEvent logs a filesystem change that triggers a rebuild
func (l *Logger) WatchEvent(path, op string) {
	l.Debug("change detected",
		"path", path,
		"op", op)
}
