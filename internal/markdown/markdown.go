package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts Markdown to HTML
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option configures a Renderer
type Option func(*settings)

type settings struct {
	emoji    bool
	sanitize bool
}

// WithEmoji enables :shortcode: emoji replacement
func WithEmoji(enabled bool) Option {
	return func(s *settings) { s.emoji = enabled }
}

// WithSanitize strips unsafe HTML from the rendered output.
// Class attributes on code blocks survive so highlighting still works.
func WithSanitize(enabled bool) Option {
	return func(s *settings) { s.sanitize = enabled }
}

// New creates a renderer with GitHub-flavoured Markdown enabled.
// Raw HTML in the source is passed through unless sanitizing is on.
func New(opts ...Option) *Renderer {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	extensions := []goldmark.Extender{extension.GFM}
	if s.emoji {
		extensions = append(extensions, emoji.Emoji)
	}

	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extensions...),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
		),
	}

	if s.sanitize {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")
		r.policy = policy
	}

	return r
}

// Render converts Markdown source to an HTML string
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}

	if r.policy != nil {
		return r.policy.Sanitize(buf.String()), nil
	}

	return buf.String(), nil
}
