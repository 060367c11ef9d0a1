package post

import (
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/gerunddev/postbridge/internal/highlight"
	"github.com/gerunddev/postbridge/internal/markdown"
)

const (
	// DefaultDateLayout renders M/D/YYYY without zero padding
	DefaultDateLayout = "1/2/2006"

	// DefaultTitleSeparator splits file names into title words
	DefaultTitleSeparator = "-"
)

// Renderer converts Markdown text to HTML
type Renderer interface {
	Render(src string) (string, error)
}

// Highlighter produces highlighted markup for a code block's contents
type Highlighter interface {
	Highlight(code, language string) (string, error)
}

// Options controls extraction and reduction. It is passed by value to every
// call; zero fields fall back to the package defaults for that call only.
type Options struct {
	// FormatDate renders created/updated dates
	FormatDate func(time.Time) string

	// TitleSeparator splits a file name into words when deriving a title
	TitleSeparator string

	// TitleCase is applied to titles derived from file names
	TitleCase func(string) string

	// HighlightSyntax enables syntax highlighting of <pre><code> blocks
	HighlightSyntax bool

	// OmitUnchangedUpdated blanks a file-derived updated date equal to created
	OmitUnchangedUpdated bool

	Markdown    Renderer
	Highlighter Highlighter

	// Compare orders posts in an index. Defaults to NewComparator(Locale).
	Compare func(a, b *Post) int

	// Locale selects collation for the default comparator
	Locale language.Tag
}

var (
	defaultRenderer    = sync.OnceValue(func() *markdown.Renderer { return markdown.New() })
	defaultHighlighter = sync.OnceValue(func() *highlight.Highlighter { return highlight.New("") })
)

// FormatDate is the default date formatter: M/D/YYYY in local time
func FormatDate(t time.Time) string {
	return t.Local().Format(DefaultDateLayout)
}

// DateFormatter returns a formatter for a Go time layout
func DateFormatter(layout string) func(time.Time) string {
	if layout == "" || layout == DefaultDateLayout {
		return FormatDate
	}
	return func(t time.Time) string {
		return t.Local().Format(layout)
	}
}

func (o Options) withDefaults() Options {
	if o.FormatDate == nil {
		o.FormatDate = FormatDate
	}
	if o.TitleSeparator == "" {
		o.TitleSeparator = DefaultTitleSeparator
	}
	if o.TitleCase == nil {
		o.TitleCase = CapitalizeWords
	}
	if o.Markdown == nil {
		o.Markdown = defaultRenderer()
	}
	if o.Highlighter == nil && o.HighlightSyntax {
		o.Highlighter = defaultHighlighter()
	}
	return o
}
