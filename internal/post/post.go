package post

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// reserved holds the attribute names with their own fallback rules.
// Everything else in front matter is copied through as a custom field.
var reserved = map[string]struct{}{
	"category": {},
	"content":  {},
	"created":  {},
	"excerpt":  {},
	"title":    {},
	"updated":  {},
}

// IsReserved reports whether name is one of the six standard post fields
func IsReserved(name string) bool {
	_, ok := reserved[name]
	return ok
}

// Post is a single blog post record
type Post struct {
	Category string
	Content  string
	Created  string
	Excerpt  string
	Title    string
	Updated  string

	// Custom carries front-matter attributes outside the reserved set
	Custom Fields
}

// Summary is a post listed in an index; it serializes without content
type Summary Post

// Fields is an ordered string-keyed mapping of custom values
type Fields struct {
	keys   []string
	values map[string]any
}

// Set stores value under key. Reserved names are ignored.
func (f *Fields) Set(key string, value any) {
	if IsReserved(key) {
		return
	}
	if f.values == nil {
		f.values = make(map[string]any)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value stored under key
func (f *Fields) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns field names in insertion order
func (f *Fields) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Len returns the number of custom fields
func (f *Fields) Len() int {
	return len(f.keys)
}

// MarshalJSON writes the reserved fields in declaration order followed by custom fields
func (p Post) MarshalJSON() ([]byte, error) {
	return p.marshal(true)
}

// MarshalJSON writes the post without its content key
func (s Summary) MarshalJSON() ([]byte, error) {
	return Post(s).marshal(false)
}

func (p Post) marshal(withContent bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		if err := encodeJSON(&buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := encodeJSON(&buf, value); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		return nil
	}

	fields := []struct {
		key   string
		value string
		skip  bool
	}{
		{"category", p.Category, false},
		{"content", p.Content, !withContent},
		{"created", p.Created, false},
		{"excerpt", p.Excerpt, false},
		{"title", p.Title, false},
		{"updated", p.Updated, false},
	}
	for _, f := range fields {
		if f.skip {
			continue
		}
		if err := write(f.key, f.value); err != nil {
			return nil, err
		}
	}

	for _, key := range p.Custom.keys {
		if err := write(key, p.Custom.values[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a post object, keeping unknown keys in document order.
// Reserved keys must hold strings; null reads as empty.
func (p *Post) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("post must be a JSON object, got %v", tok)
	}

	*p = Post{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}

		if !IsReserved(key) {
			p.Custom.Set(key, raw)
			continue
		}

		value, err := reservedString(raw)
		if err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		p.setReserved(key, value)
	}

	_, err = dec.Token()
	return err
}

// reservedString reads a reserved value. Numbers and booleans keep their
// literal text, null reads as empty, objects and arrays are rejected.
func reservedString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "", errors.New("missing value")
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 'n':
		return "", nil
	case '{', '[':
		return "", errors.New("must be a string, number or boolean")
	default:
		return string(raw), nil
	}
}

func (p *Post) setReserved(key, value string) {
	switch key {
	case "category":
		p.Category = value
	case "content":
		p.Content = value
	case "created":
		p.Created = value
	case "excerpt":
		p.Excerpt = value
	case "title":
		p.Title = value
	case "updated":
		p.Updated = value
	}
}

// encodeJSON appends v without HTML escaping and without the encoder's trailing newline
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}
