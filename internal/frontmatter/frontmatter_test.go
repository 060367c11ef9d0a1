package frontmatter

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParseYAML(t *testing.T) {
	text := "---\ntitle: Hello\nlayout: post\ncategory: travel\n---\nBody text\n"

	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Attributes == nil {
		t.Fatal("Expected attributes to be present")
	}

	wantKeys := []string{"title", "layout", "category"}
	if got := doc.Attributes.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}

	title, ok := doc.Attributes.Get("title")
	if !ok || title != "Hello" {
		t.Errorf("title = %v, want Hello", title)
	}

	if !strings.Contains(doc.Body, "Body text") {
		t.Errorf("Body = %q, want it to contain %q", doc.Body, "Body text")
	}
	if strings.Contains(doc.Body, "layout") {
		t.Errorf("Body should not contain front matter, got %q", doc.Body)
	}
}

func TestParseTOML(t *testing.T) {
	text := "+++\ntitle = \"Hello\"\nlayout = \"post\"\n+++\nBody\n"

	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Attributes == nil {
		t.Fatal("Expected attributes to be present")
	}

	wantKeys := []string{"layout", "title"}
	if got := doc.Attributes.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Errorf("Keys() = %v, want %v", got, wantKeys)
	}
}

func TestParseWithoutFrontMatter(t *testing.T) {
	text := "# Just a heading\n\nSome text.\n"

	doc, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Attributes != nil {
		t.Errorf("Expected nil attributes, got %v", doc.Attributes.Keys())
	}
	if doc.Body != text {
		t.Errorf("Body = %q, want %q", doc.Body, text)
	}
}

func TestParseKeepsDateStrings(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"yaml date", "---\ncreated: 2024-03-01\n---\n", "2024-03-01"},
		{"yaml datetime", "---\ncreated: 2024-03-01T09:30:00\n---\n", "2024-03-01T09:30:00"},
		{"toml date", "+++\ncreated = 2024-03-01\n+++\n", "2024-03-01"},
		{"toml datetime", "+++\ncreated = 2024-03-01T09:30:00\n+++\n", "2024-03-01T09:30:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			created, _ := doc.Attributes.Get("created")
			s, ok := created.(string)
			if !ok {
				t.Fatalf("created decoded as %T, want string", created)
			}
			if s != tt.want {
				t.Errorf("created = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestParseNestedValues(t *testing.T) {
	doc, err := Parse("---\ntags:\n  - go\n  - blog\nmeta:\n  1: one\n---\n")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tags, _ := doc.Attributes.Get("tags")
	if !reflect.DeepEqual(tags, []any{"go", "blog"}) {
		t.Errorf("tags = %#v", tags)
	}

	meta, _ := doc.Attributes.Get("meta")
	if _, ok := meta.(map[string]any); !ok {
		t.Errorf("meta decoded as %T, want map[string]any", meta)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "broken yaml",
			text: "---\ntitle: [unclosed\n---\nbody",
		},
		{
			name: "sequence instead of mapping",
			text: "---\n- a\n- b\n---\nbody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Parse() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestAttributesSetKeepsPosition(t *testing.T) {
	a := NewAttributes()
	a.Set("one", 1)
	a.Set("two", 2)
	a.Set("one", 3)

	if got := a.Keys(); !reflect.DeepEqual(got, []string{"one", "two"}) {
		t.Errorf("Keys() = %v", got)
	}
	if v, _ := a.Get("one"); v != 3 {
		t.Errorf("one = %v, want 3", v)
	}
	if a.Len() != 2 {
		t.Errorf("Len() = %d, want 2", a.Len())
	}
}
