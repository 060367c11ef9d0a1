package diff

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Unified returns a unified diff from before to after, or "" when they match
func Unified(name, before, after string) string {
	if before == after {
		return ""
	}

	edits := myers.ComputeEdits(span.URIFromPath(name), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("a/"+name, "b/"+name, before, edits))
}

// Markdown wraps a unified diff in a diff code fence
func Markdown(unified string) string {
	return fmt.Sprintf("```diff\n%s```\n", unified)
}

// Render formats a unified diff for the terminal
func Render(unified string) string {
	if unified == "" {
		return ""
	}

	diffMarkdown := Markdown(unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		// Fallback to plain diff if glamour fails
		return diffMarkdown
	}

	rendered, err := renderer.Render(diffMarkdown)
	if err != nil {
		return diffMarkdown
	}

	return rendered
}
