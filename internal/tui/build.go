package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/postbridge/internal/build"
	"github.com/gerunddev/postbridge/internal/styles"
)

// buildModel is the Bubble Tea model for the build progress display
type buildModel struct {
	spinner  spinner.Model
	status   string
	complete bool
	result   *build.Result
	err      error
}

// BuildMsg is sent when a build completes
type BuildMsg struct {
	Result *build.Result
	Err    error
}

// InitBuildModel creates a new build progress model
func InitBuildModel(status string) buildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return buildModel{
		spinner: s,
		status:  status,
	}
}

func (m buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case BuildMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m buildModel) View() string {
	if !m.complete {
		return fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), m.status)
	}

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Build failed: "+m.err.Error()) + "\n"
	}

	return Summary(m.result)
}

// Summary renders a finished build for the terminal
func Summary(r *build.Result) string {
	var b strings.Builder

	if r.PostsExtracted == 0 && len(r.Errors) == 0 {
		b.WriteString(styles.SuccessStyle.Render("✓ Nothing to rebuild"))
	} else {
		b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("✓ Extracted %d post(s)", r.PostsExtracted)))
	}
	if r.PostsSkipped > 0 {
		b.WriteString(", " + styles.DimStyle.Render(fmt.Sprintf("%d unchanged", r.PostsSkipped)))
	}
	if len(r.Removed) > 0 {
		b.WriteString(", " + styles.WarningStyle.Render(fmt.Sprintf("%d removed", len(r.Removed))))
	}
	if len(r.Errors) > 0 {
		b.WriteString(", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(r.Errors))))
	}
	b.WriteString("\n")

	for _, err := range r.Errors {
		b.WriteString(styles.ErrorStyle.Render("  ✗ "+err.Error()) + "\n")
	}

	b.WriteString(styles.HelpStyle.Render(fmt.Sprintf("Index: %d entries, completed in %v",
		r.IndexEntries, r.EndTime.Sub(r.StartTime).Round(time.Millisecond))) + "\n")

	return b.String()
}
