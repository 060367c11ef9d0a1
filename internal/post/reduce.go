package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrMalformedCollection is returned when concatenated post records cannot be parsed
var ErrMalformedCollection = errors.New("malformed post collection")

// Reduce turns comma-separated post objects into a sorted JSON array of
// summaries. The input is not wrapped in brackets; that is how the upstream
// concatenation step leaves it.
func Reduce(data []byte, opts Options) ([]byte, error) {
	posts, err := ParseCollection(data)
	if err != nil {
		return nil, err
	}

	Sort(posts, opts)

	summaries := make([]Summary, len(posts))
	for i, p := range posts {
		summaries[i] = Summary(*p)
	}

	var buf bytes.Buffer
	if err := encodeJSON(&buf, summaries); err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseCollection parses comma-separated post objects
func ParseCollection(data []byte) ([]*Post, error) {
	wrapped := make([]byte, 0, len(data)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, data...)
	wrapped = append(wrapped, ']')

	var posts []*Post
	if err := json.Unmarshal(wrapped, &posts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCollection, err)
	}

	for i, p := range posts {
		if p == nil {
			return nil, fmt.Errorf("%w: entry %d is null", ErrMalformedCollection, i)
		}
	}

	return posts, nil
}

// Sort orders posts stably with opts.Compare, or the default comparator
func Sort(posts []*Post, opts Options) {
	compare := opts.Compare
	if compare == nil {
		compare = NewComparator(opts.Locale)
	}
	slices.SortStableFunc(posts, compare)
}

// NewComparator orders posts newest first, then by category, then by title,
// comparing text with the collation rules of tag. Posts whose date does not
// parse sort after every dated post and fall through to category and title
// among themselves. The returned function is not safe for concurrent use.
func NewComparator(tag language.Tag) func(a, b *Post) int {
	col := collate.New(tag)

	return func(a, b *Post) int {
		da, okA := parseDate(a.Created)
		db, okB := parseDate(b.Created)
		switch {
		case okA && okB:
			if c := db.Compare(da); c != 0 {
				return c
			}
		case okA:
			return -1
		case okB:
			return 1
		}

		if c := col.CompareString(a.Category, b.Category); c != 0 {
			return c
		}
		return col.CompareString(a.Title, b.Title)
	}
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
