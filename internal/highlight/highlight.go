package highlight

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is the chroma style used for generated stylesheets
const DefaultStyle = "monokai"

// Highlighter turns source code into class-annotated HTML spans
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// New creates a highlighter. Unknown style names fall back to chroma's default.
func New(style string) *Highlighter {
	if style == "" {
		style = DefaultStyle
	}

	return &Highlighter{
		style: styles.Get(style),
		formatter: chromahtml.New(
			chromahtml.WithClasses(true),
			chromahtml.PreventSurroundingPre(true),
			chromahtml.TabWidth(4),
		),
	}
}

// Highlight returns the markup that replaces the children of a <code> element.
// An empty language triggers content-based detection.
func (h *Highlighter) Highlight(code, language string) (string, error) {
	lexer := lexerFor(code, language)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if err := h.formatter.Format(&b, h.style, iterator); err != nil {
		return "", err
	}

	return b.String(), nil
}

// WriteCSS writes the stylesheet matching the emitted class names
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}

// StyleName returns the resolved style name
func (h *Highlighter) StyleName() string {
	return h.style.Name
}

func lexerFor(code, language string) chroma.Lexer {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
