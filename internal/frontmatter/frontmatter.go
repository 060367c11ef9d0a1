package frontmatter

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a delimited block exists but cannot be decoded
var ErrInvalid = errors.New("invalid front matter")

// Document is a post split into its metadata block and its body
type Document struct {
	// Attributes is nil when the text has no delimited front-matter block
	Attributes *Attributes
	Body       string
}

// Attributes is a flat, string-keyed mapping that remembers key order
type Attributes struct {
	keys   []string
	values map[string]any
}

// NewAttributes creates an empty attribute set
func NewAttributes() *Attributes {
	return &Attributes{values: make(map[string]any)}
}

// Set stores a value, keeping the position of an existing key
func (a *Attributes) Set(key string, value any) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value stored under key
func (a *Attributes) Get(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns the attribute names in document order
func (a *Attributes) Keys() []string {
	return append([]string(nil), a.keys...)
}

// Len returns the number of attributes
func (a *Attributes) Len() int {
	return len(a.keys)
}

// Parse splits text into front matter and body.
// YAML blocks are delimited by "---", TOML blocks by "+++".
func Parse(text string) (*Document, error) {
	attrs := NewAttributes()

	body, err := frontmatter.MustParse(strings.NewReader(text), attrs,
		frontmatter.NewFormat("---", "---", decodeYAML),
		frontmatter.NewFormat("+++", "+++", decodeTOML),
	)
	if errors.Is(err, frontmatter.ErrNotFound) {
		return &Document{Body: text}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	return &Document{Attributes: attrs, Body: string(body)}, nil
}

// decodeYAML decodes through yaml.Node so keys keep their document order
func decodeYAML(data []byte, v any) error {
	attrs, ok := v.(*Attributes)
	if !ok {
		return fmt.Errorf("unexpected front matter target %T", v)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}

	// Empty block
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("front matter must be a mapping, got %s", kindName(root.Kind))
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		node := root.Content[i+1]

		// Timestamps stay as written; yaml.v3 would pin them to UTC
		if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!timestamp" {
			attrs.Set(key, node.Value)
			continue
		}

		var value any
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("attribute %q: %w", key, err)
		}
		attrs.Set(key, normalize(value))
	}

	return nil
}

// decodeTOML decodes a TOML block; TOML tables carry no order so keys are sorted
func decodeTOML(data []byte, v any) error {
	attrs, ok := v.(*Attributes)
	if !ok {
		return fmt.Errorf("unexpected front matter target %T", v)
	}

	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return err
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		attrs.Set(k, normalize(m[k]))
	}

	return nil
}

// normalize rewrites nested maps with non-string keys so values stay JSON
// encodable. TOML local dates become their literal text.
func normalize(v any) any {
	switch t := v.(type) {
	case toml.LocalDate:
		return t.String()
	case toml.LocalDateTime:
		return t.String()
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
