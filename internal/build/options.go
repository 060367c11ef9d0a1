package build

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/gerunddev/postbridge/internal/config"
	"github.com/gerunddev/postbridge/internal/highlight"
	"github.com/gerunddev/postbridge/internal/markdown"
	"github.com/gerunddev/postbridge/internal/post"
)

// OptionsFromConfig builds extraction options from the configuration
func OptionsFromConfig(cfg *config.Config) (post.Options, error) {
	titleCase, err := post.TitleCaser(cfg.TitleCase)
	if err != nil {
		return post.Options{}, err
	}

	locale := language.Und
	if cfg.Locale != "" {
		locale, err = language.Parse(cfg.Locale)
		if err != nil {
			return post.Options{}, fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
		}
	}

	opts := post.Options{
		FormatDate:           post.DateFormatter(cfg.DateLayout),
		TitleSeparator:       cfg.TitleSeparator,
		TitleCase:            titleCase,
		HighlightSyntax:      cfg.HighlightSyntax,
		OmitUnchangedUpdated: cfg.OmitUnchangedUpdated,
		Markdown: markdown.New(
			markdown.WithEmoji(cfg.Emoji),
			markdown.WithSanitize(cfg.SanitizeHTML),
		),
		Locale: locale,
	}
	if cfg.HighlightSyntax {
		opts.Highlighter = highlight.New(cfg.HighlightStyle)
	}

	return opts, nil
}
