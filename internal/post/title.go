package post

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/transform"
)

// Title case styles accepted by TitleCaser
const (
	TitleCaseWords   = "words"
	TitleCaseAP      = "ap"
	TitleCaseChicago = "chicago"
)

// CapitalizeWords upper-cases the first letter of every space-separated word
// and leaves the rest of each word untouched.
func CapitalizeWords(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToTitle(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// TitleCaser returns the title-case function for a named style.
// The AP and Chicago styles keep minor words such as "of" lower case.
func TitleCaser(style string) (func(string) string, error) {
	switch style {
	case "", TitleCaseWords:
		return CapitalizeWords, nil
	case TitleCaseAP:
		return transform.NewTitleConverter(transform.APStyle).Title, nil
	case TitleCaseChicago:
		return transform.NewTitleConverter(transform.ChicagoStyle).Title, nil
	default:
		return nil, fmt.Errorf("unknown title case style %q", style)
	}
}

// titleFromPath derives a title from the file name stem
// "posts/hello-world.md" → "Hello World"
func titleFromPath(path string, opts Options) string {
	name := lastSegment(path)
	stem, _, _ := strings.Cut(name, ".")
	words := strings.Split(stem, opts.TitleSeparator)
	return opts.TitleCase(strings.Join(words, " "))
}

// categoryFromPath returns the directory directly below a "posts" directory.
// "blog/posts/travel/rome.md" → "travel"; "blog/posts/rome.md" → ""
func categoryFromPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	last := len(parts) - 1

	for i := 1; i < len(parts); i++ {
		if parts[i-1] == "posts" && i != last {
			return parts[i]
		}
	}

	return ""
}

func lastSegment(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	return parts[len(parts)-1]
}
