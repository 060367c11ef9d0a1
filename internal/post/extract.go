package post

import (
	"fmt"
	"math"
	"time"

	"github.com/araddon/dateparse"

	"github.com/gerunddev/postbridge/internal/frontmatter"
)

// Source is the raw input for one post
type Source struct {
	Path     string
	Contents []byte
	Ctime    time.Time
	Mtime    time.Time
}

// Extract builds a Post from a Markdown file.
//
// Front matter supplies fields first. Whatever is still empty is derived in
// order: category from the path, created from ctime, excerpt from the first
// paragraph, title from the file name, updated from mtime.
func Extract(src Source, opts Options) (*Post, error) {
	opts = opts.withDefaults()

	doc, err := frontmatter.Parse(string(src.Contents))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Path, err)
	}

	p := &Post{}
	if doc.Attributes != nil {
		if err := p.applyAttributes(doc.Attributes, opts); err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
	}

	if doc.Body != "" {
		p.Content, err = opts.Markdown.Render(doc.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: render content: %w", src.Path, err)
		}
	}

	var frag *fragment
	if opts.HighlightSyntax && p.Content != "" {
		frag, err = parseFragment(p.Content)
		if err != nil {
			return nil, fmt.Errorf("%s: parse content: %w", src.Path, err)
		}

		changed, err := frag.highlight(opts.Highlighter)
		if err != nil {
			return nil, fmt.Errorf("%s: highlight: %w", src.Path, err)
		}
		if changed {
			if p.Content, err = frag.render(); err != nil {
				return nil, fmt.Errorf("%s: render highlighted content: %w", src.Path, err)
			}
		}
	}

	if p.Category == "" {
		p.Category = categoryFromPath(src.Path)
	}

	if p.Created == "" {
		p.Created = opts.FormatDate(src.Ctime)
	}

	if p.Excerpt == "" && p.Content != "" {
		if frag == nil {
			if frag, err = parseFragment(p.Content); err != nil {
				return nil, fmt.Errorf("%s: parse content: %w", src.Path, err)
			}
		}
		if p.Excerpt, err = frag.excerpt(); err != nil {
			return nil, fmt.Errorf("%s: excerpt: %w", src.Path, err)
		}
	}

	if p.Title == "" {
		p.Title = titleFromPath(src.Path, opts)
	}

	if p.Updated == "" {
		p.Updated = opts.FormatDate(src.Mtime)
		if opts.OmitUnchangedUpdated && p.Updated == p.Created {
			p.Updated = ""
		}
	}

	return p, nil
}

// ExtractJSON extracts a post and serializes it
func ExtractJSON(src Source, opts Options) ([]byte, error) {
	p, err := Extract(src, opts)
	if err != nil {
		return nil, err
	}
	return p.MarshalJSON()
}

func (p *Post) applyAttributes(attrs *frontmatter.Attributes, opts Options) error {
	for _, key := range attrs.Keys() {
		value, _ := attrs.Get(key)

		if !IsReserved(key) {
			p.Custom.Set(key, value)
			continue
		}

		switch key {
		case "category":
			p.Category = scalarString(value)
		case "title":
			p.Title = scalarString(value)
		case "created":
			p.Created = formatDateValue(value, opts.FormatDate)
		case "updated":
			p.Updated = formatDateValue(value, opts.FormatDate)
		case "excerpt":
			if !truthy(value) {
				continue
			}
			excerpt, err := opts.Markdown.Render(scalarString(value))
			if err != nil {
				return fmt.Errorf("render excerpt: %w", err)
			}
			p.Excerpt = excerpt
		}
		// "content" always comes from the body
	}

	return nil
}

// formatDateValue formats a front-matter date. Strings that do not parse as
// dates are kept as written.
func formatDateValue(value any, format func(time.Time) string) string {
	if !truthy(value) {
		return ""
	}

	switch v := value.(type) {
	case time.Time:
		return format(v)
	case string:
		t, err := dateparse.ParseIn(v, time.Local)
		if err != nil {
			return v
		}
		return format(t)
	default:
		return fmt.Sprint(v)
	}
}

// scalarString renders an attribute as a string; falsy values become ""
func scalarString(value any) string {
	if !truthy(value) {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0 && !math.IsNaN(v)
	default:
		return true
	}
}
