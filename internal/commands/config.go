package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/postbridge/internal/config"
	"github.com/gerunddev/postbridge/internal/styles"
)

// Config prints the active configuration, or manages the config file
//
//	postbridge config           show the effective configuration
//	postbridge config path      print the config file location
//	postbridge config init      write the default config file
func Config(args []string) {
	sub := ""
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		sub, args = args[0], args[1:]
	}

	flags := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := flags.String("config", "", "path to config file")
	force := flags.Bool("force", false, "overwrite an existing config file (init)")
	_ = flags.Parse(args) //nolint:errcheck // ExitOnError

	if *configPath != "" {
		config.ConfigPath = func() string {
			return *configPath
		}
	}

	switch sub {
	case "":
		cfg, err := config.Load()
		if err != nil {
			fail("Error loading config", err)
		}
		printConfig(os.Stdout, cfg)
	case "path":
		fmt.Println(config.ConfigPath())
	case "init":
		if err := initConfig(*force); err != nil {
			fail("Failed to write config", err)
		}
		fmt.Println(styles.SuccessStyle.Render("✓ Wrote " + config.ConfigPath()))
	default:
		fail("Unknown config command: "+sub, nil)
	}
}

// initConfig writes the default configuration unless a file already exists
func initConfig(force bool) error {
	path := config.ConfigPath()

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return config.DefaultConfig().Save()
}

func printConfig(w io.Writer, cfg *config.Config) {
	rows := []string{
		styles.TitleStyle.Render("postbridge configuration"),
		styles.Row("config file", config.ConfigPath()),
		styles.Row("posts_dir", cfg.PostsDir),
		styles.Row("out_dir", cfg.OutDir),
		styles.Row("index_file", cfg.IndexFile),
		styles.Row("state_file", cfg.StateFile),
		styles.Row("log_file", cfg.LogFile),
		styles.Row("title_separator", strconv.Quote(cfg.TitleSeparator)),
		styles.Row("title_case", cfg.TitleCase),
		styles.Row("date_layout", cfg.DateLayout),
		styles.Row("highlight_syntax", strconv.FormatBool(cfg.HighlightSyntax)),
		styles.Row("highlight_style", cfg.HighlightStyle),
		styles.Row("sanitize_html", strconv.FormatBool(cfg.SanitizeHTML)),
		styles.Row("emoji", strconv.FormatBool(cfg.Emoji)),
		styles.Row("omit_unchanged_updated", strconv.FormatBool(cfg.OmitUnchangedUpdated)),
		styles.Row("locale", cfg.Locale),
		styles.Row("concurrency", strconv.Itoa(cfg.Concurrency)),
		styles.Row("watch_debounce", cfg.WatchDebounce.String()),
	}

	fmt.Fprintln(w, styles.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
}
