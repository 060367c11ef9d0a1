package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gerunddev/postbridge/internal/config"
	"github.com/gerunddev/postbridge/internal/logger"
	"github.com/gerunddev/postbridge/internal/state"
	"github.com/gerunddev/postbridge/internal/styles"
)

// loadConfig loads configuration, honouring a --config override
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		config.ConfigPath = func() string {
			return path
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadConfigAndState loads configuration and the build state it points at
func loadConfigAndState(path string) (*config.Config, *state.State, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading config: %w", err)
	}

	st, err := state.Load(cfg.StateFile)
	if err != nil {
		return nil, nil, fmt.Errorf("error loading state: %w", err)
	}

	return cfg, st, nil
}

// setupLogger logs to the configured log file, and to stderr at debug
// level when verbose. The returned cleanup closes the log file.
func setupLogger(cfg *config.Config, verbose bool) (*logger.Logger, func()) {
	noop := func() {}

	if !verbose {
		if cfg.LogFile == "" {
			return logger.Discard(), noop
		}
		l, cleanup, err := logger.NewFileLogger(cfg.LogFile)
		if err != nil {
			return logger.Discard(), noop
		}
		return l, cleanup
	}

	writers := []io.Writer{os.Stderr}
	cleanup := noop
	if cfg.LogFile != "" && os.MkdirAll(filepath.Dir(cfg.LogFile), 0755) == nil {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			writers = append(writers, f)
			cleanup = func() { f.Close() }
		}
	}

	l := logger.NewMultiLogger(writers...)
	l.SetLevel(log.DebugLevel)
	return l, cleanup
}

// fail prints an error and exits
func fail(msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	fmt.Fprintln(os.Stderr, styles.ErrorStyle.Render("✗ "+msg))
	os.Exit(1)
}

// ParseLogFile reads the last N lines from the log file and extracts the
// most recent build
func ParseLogFile(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	// Get last N lines
	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	var lastBuild time.Time
	postsExtracted := 0

	// Look for most recent "build completed" line
	for i := len(recentLines) - 1; i >= 0; i-- {
		line := recentLines[i]
		if strings.Contains(line, "build completed") {
			// Format: 2025-11-27 14:11:57 INFO build completed
			if len(line) > 19 {
				timeStr := line[:19]
				if t, err := time.ParseInLocation(time.DateTime, timeStr, time.Local); err == nil {
					lastBuild = t
				}
			}

			if idx := strings.Index(line, "posts_extracted="); idx != -1 {
				_, _ = fmt.Sscanf(line[idx:], "posts_extracted=%d", &postsExtracted) //nolint:errcheck // best effort parsing
			}
			break
		}
	}

	return recentLines, lastBuild, postsExtracted
}
