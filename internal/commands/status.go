package commands

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/postbridge/internal/build"
	"github.com/gerunddev/postbridge/internal/config"
	"github.com/gerunddev/postbridge/internal/state"
	"github.com/gerunddev/postbridge/internal/styles"
)

// StatusData summarises the posts directory against the build state
type StatusData struct {
	Posts   int
	Tracked int
	Pending []string
	LastRun *state.RunInfo
}

// Status displays tracked posts, pending changes and the last build
func Status(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	cfg, st, err := loadConfigAndState(*configPath)
	if err != nil {
		fail("Status failed", err)
	}

	data, err := collectStatus(cfg, st)
	if err != nil {
		fail("Failed to scan "+cfg.PostsDir, err)
	}

	printStatus(os.Stdout, cfg, data)
}

// collectStatus scans the posts directory and compares it with the state
func collectStatus(cfg *config.Config, st *state.State) (*StatusData, error) {
	sources, err := build.ScanDirectory(cfg.PostsDir, ".md")
	if err != nil {
		return nil, err
	}

	data := &StatusData{
		Posts:   len(sources),
		Tracked: len(st.Files),
		LastRun: st.LastRun,
	}

	fingerprint := cfg.OutputFingerprint()
	for _, src := range sources {
		changed, err := st.HasChanged(src)
		if entry, ok := st.Entry(src); ok && entry.Options != fingerprint {
			changed, err = true, nil
		}
		if err == nil && changed {
			rel, _ := filepath.Rel(cfg.PostsDir, src)
			data.Pending = append(data.Pending, rel)
		}
	}

	return data, nil
}

func printStatus(w io.Writer, cfg *config.Config, data *StatusData) {
	rows := []string{
		styles.TitleStyle.Render("postbridge status"),
		styles.Row("posts", styles.PathStyle.Render(cfg.PostsDir)),
		styles.Row("output", styles.PathStyle.Render(cfg.OutDir)),
		styles.Row("markdown files", strconv.Itoa(data.Posts)),
		styles.Row("tracked", strconv.Itoa(data.Tracked)),
	}

	if len(data.Pending) == 0 {
		rows = append(rows, styles.Row("pending", styles.SuccessStyle.Render("up to date")))
	} else {
		rows = append(rows, styles.Row("pending", styles.WarningStyle.Render(strconv.Itoa(len(data.Pending)))))
	}

	if data.LastRun != nil {
		rows = append(rows,
			styles.Row("last build", data.LastRun.Finished.Local().Format("2006-01-02 15:04:05")),
			styles.Row("last run id", styles.DimStyle.Render(data.LastRun.ID)),
		)
		if data.LastRun.Errors > 0 {
			rows = append(rows, styles.Row("last build errors", styles.ErrorStyle.Render(strconv.Itoa(data.LastRun.Errors))))
		}
	} else if cfg.LogFile != "" {
		// State predates run tracking; fall back to the log
		if _, lastBuild, extracted := ParseLogFile(cfg.LogFile, 200); !lastBuild.IsZero() {
			rows = append(rows, styles.Row("last build", fmt.Sprintf("%s (%d extracted)", lastBuild.Format("2006-01-02 15:04:05"), extracted)))
		} else {
			rows = append(rows, styles.Row("last build", styles.DimStyle.Render("never")))
		}
	} else {
		rows = append(rows, styles.Row("last build", styles.DimStyle.Render("never")))
	}

	fmt.Fprintln(w, styles.PanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))

	for _, p := range data.Pending {
		fmt.Fprintln(w, styles.WarningStyle.Render("  • "+p))
	}
}
