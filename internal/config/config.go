package config

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

// Config represents the postbridge configuration
type Config struct {
	PostsDir             string        `json:"posts_dir"`
	OutDir               string        `json:"out_dir"`
	IndexFile            string        `json:"index_file"`
	LogFile              string        `json:"log_file"`
	StateFile            string        `json:"state_file"`
	TitleSeparator       string        `json:"title_separator"`
	TitleCase            string        `json:"title_case"`
	DateLayout           string        `json:"date_layout"`
	HighlightSyntax      bool          `json:"highlight_syntax"`
	HighlightStyle       string        `json:"highlight_style"`
	SanitizeHTML         bool          `json:"sanitize_html"`
	Emoji                bool          `json:"emoji"`
	OmitUnchangedUpdated bool          `json:"omit_unchanged_updated"`
	Locale               string        `json:"locale"`
	Concurrency          int           `json:"concurrency"`
	WatchDebounce        time.Duration `json:"-"` // Custom JSON handling below
}

// rawConfig mirrors Config on disk, with the debounce as a duration string
type rawConfig struct {
	PostsDir             string `json:"posts_dir"`
	OutDir               string `json:"out_dir"`
	IndexFile            string `json:"index_file"`
	LogFile              string `json:"log_file"`
	StateFile            string `json:"state_file"`
	TitleSeparator       string `json:"title_separator"`
	TitleCase            string `json:"title_case"`
	DateLayout           string `json:"date_layout"`
	HighlightSyntax      bool   `json:"highlight_syntax"`
	HighlightStyle       string `json:"highlight_style"`
	SanitizeHTML         bool   `json:"sanitize_html"`
	Emoji                bool   `json:"emoji"`
	OmitUnchangedUpdated bool   `json:"omit_unchanged_updated"`
	Locale               string `json:"locale"`
	Concurrency          int    `json:"concurrency"`
	WatchDebounce        string `json:"watch_debounce"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		PostsDir:       "posts",
		OutDir:         "dist/posts",
		IndexFile:      "dist/posts.json",
		LogFile:        filepath.Join(xdg.StateHome, "postbridge", "postbridge.log"),
		StateFile:      StateFilePath(),
		TitleSeparator: "-",
		TitleCase:      "words",
		DateLayout:     "1/2/2006",
		HighlightStyle: "monokai",
		Locale:         "und",
		Concurrency:    4,
		WatchDebounce:  200 * time.Millisecond,
	}
}

// ConfigPath returns the path to the config file
// Can be overridden for testing or with --config
var ConfigPath = func() string {
	return filepath.Join(xdg.ConfigHome, "postbridge", "config.json")
}

// StateFilePath returns the default path to the build state file
// Can be overridden for testing
var StateFilePath = func() string {
	return filepath.Join(xdg.CacheHome, "postbridge", "state.json")
}

// Load reads configuration from ConfigPath, then applies .env and
// POSTBRIDGE_* environment overrides
func Load() (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	switch {
	case err == nil:
		cfg, err = parse(data)
		if err != nil {
			return nil, err
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Expand paths
	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("failed to expand paths: %w", err)
	}

	return cfg, nil
}

// parse decodes a config file on top of the defaults
func parse(data []byte) (*Config, error) {
	def := DefaultConfig()
	raw := def.toRaw()

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Parse debounce duration
	debounce, err := time.ParseDuration(raw.WatchDebounce)
	if err != nil {
		return nil, fmt.Errorf("invalid watch_debounce format '%s': %w", raw.WatchDebounce, err)
	}

	return &Config{
		PostsDir:             raw.PostsDir,
		OutDir:               raw.OutDir,
		IndexFile:            raw.IndexFile,
		LogFile:              raw.LogFile,
		StateFile:            raw.StateFile,
		TitleSeparator:       raw.TitleSeparator,
		TitleCase:            raw.TitleCase,
		DateLayout:           raw.DateLayout,
		HighlightSyntax:      raw.HighlightSyntax,
		HighlightStyle:       raw.HighlightStyle,
		SanitizeHTML:         raw.SanitizeHTML,
		Emoji:                raw.Emoji,
		OmitUnchangedUpdated: raw.OmitUnchangedUpdated,
		Locale:               raw.Locale,
		Concurrency:          raw.Concurrency,
		WatchDebounce:        debounce,
	}, nil
}

func (c *Config) toRaw() rawConfig {
	return rawConfig{
		PostsDir:             c.PostsDir,
		OutDir:               c.OutDir,
		IndexFile:            c.IndexFile,
		LogFile:              c.LogFile,
		StateFile:            c.StateFile,
		TitleSeparator:       c.TitleSeparator,
		TitleCase:            c.TitleCase,
		DateLayout:           c.DateLayout,
		HighlightSyntax:      c.HighlightSyntax,
		HighlightStyle:       c.HighlightStyle,
		SanitizeHTML:         c.SanitizeHTML,
		Emoji:                c.Emoji,
		OmitUnchangedUpdated: c.OmitUnchangedUpdated,
		Locale:               c.Locale,
		Concurrency:          c.Concurrency,
		WatchDebounce:        c.WatchDebounce.String(),
	}
}

// applyEnv overrides fields from POSTBRIDGE_* variables
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"POSTBRIDGE_POSTS_DIR":       &c.PostsDir,
		"POSTBRIDGE_OUT_DIR":         &c.OutDir,
		"POSTBRIDGE_INDEX_FILE":      &c.IndexFile,
		"POSTBRIDGE_LOG_FILE":        &c.LogFile,
		"POSTBRIDGE_STATE_FILE":      &c.StateFile,
		"POSTBRIDGE_TITLE_SEPARATOR": &c.TitleSeparator,
		"POSTBRIDGE_TITLE_CASE":      &c.TitleCase,
		"POSTBRIDGE_DATE_LAYOUT":     &c.DateLayout,
		"POSTBRIDGE_HIGHLIGHT_STYLE": &c.HighlightStyle,
		"POSTBRIDGE_LOCALE":          &c.Locale,
	}
	for key, field := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}

	bools := map[string]*bool{
		"POSTBRIDGE_HIGHLIGHT_SYNTAX":       &c.HighlightSyntax,
		"POSTBRIDGE_SANITIZE_HTML":          &c.SanitizeHTML,
		"POSTBRIDGE_EMOJI":                  &c.Emoji,
		"POSTBRIDGE_OMIT_UNCHANGED_UPDATED": &c.OmitUnchangedUpdated,
	}
	for key, field := range bools {
		if v, ok := os.LookupEnv(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*field = b
		}
	}

	if v, ok := os.LookupEnv("POSTBRIDGE_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("POSTBRIDGE_CONCURRENCY: %w", err)
		}
		c.Concurrency = n
	}

	if v, ok := os.LookupEnv("POSTBRIDGE_WATCH_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POSTBRIDGE_WATCH_DEBOUNCE: %w", err)
		}
		c.WatchDebounce = d
	}

	return nil
}

// Save writes configuration to ConfigPath
func (c *Config) Save() error {
	configPath := ConfigPath()
	configDir := filepath.Dir(configPath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c.toRaw(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PostsDir, validation.Required),
		validation.Field(&c.OutDir, validation.Required),
		validation.Field(&c.TitleSeparator, validation.Required),
		validation.Field(&c.TitleCase, validation.In("words", "ap", "chicago")),
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&c.WatchDebounce, validation.Required, validation.Min(time.Millisecond)),
	)
}

// OutputFingerprint hashes the settings that shape a post's JSON output.
// Paths, locale and concurrency are left out: they never change the bytes
// written for a single post.
func (c *Config) OutputFingerprint() string {
	data, _ := json.Marshal(struct { //nolint:errcheck // plain fields always marshal
		TitleSeparator       string `json:"title_separator"`
		TitleCase            string `json:"title_case"`
		DateLayout           string `json:"date_layout"`
		HighlightSyntax      bool   `json:"highlight_syntax"`
		SanitizeHTML         bool   `json:"sanitize_html"`
		Emoji                bool   `json:"emoji"`
		OmitUnchangedUpdated bool   `json:"omit_unchanged_updated"`
	}{
		TitleSeparator:       c.TitleSeparator,
		TitleCase:            c.TitleCase,
		DateLayout:           c.DateLayout,
		HighlightSyntax:      c.HighlightSyntax,
		SanitizeHTML:         c.SanitizeHTML,
		Emoji:                c.Emoji,
		OmitUnchangedUpdated: c.OmitUnchangedUpdated,
	})

	return fmt.Sprintf("sha256:%x", sha256.Sum256(data))
}

// ExpandPaths expands any ~ or relative paths to absolute paths
func (c *Config) ExpandPaths() error {
	fields := []struct {
		name string
		ptr  *string
	}{
		{"posts_dir", &c.PostsDir},
		{"out_dir", &c.OutDir},
		{"index_file", &c.IndexFile},
		{"log_file", &c.LogFile},
		{"state_file", &c.StateFile},
	}

	for _, f := range fields {
		expanded, err := expandPath(*f.ptr)
		if err != nil {
			return fmt.Errorf("failed to expand %s: %w", f.name, err)
		}
		*f.ptr = expanded
	}

	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) (string, error) {
	if path == "" {
		return path, nil
	}

	// Expand ~ to home directory
	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if len(path) == 1 {
			return homeDir, nil
		}
		path = filepath.Join(homeDir, path[1:])
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return absPath, nil
}
