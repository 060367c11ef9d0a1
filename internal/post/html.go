package post

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fragment is rendered post content parsed once per extraction and shared
// between the highlighting and excerpt steps.
type fragment struct {
	nodes []*html.Node
}

func parseFragment(content string) (*fragment, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := html.ParseFragment(strings.NewReader(content), context)
	if err != nil {
		return nil, err
	}

	return &fragment{nodes: nodes}, nil
}

// walk visits every node depth-first until fn returns false
func (f *fragment) walk(fn func(*html.Node) bool) {
	var visit func(*html.Node) bool
	visit = func(n *html.Node) bool {
		if !fn(n) {
			return false
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if !visit(c) {
				return false
			}
		}
		return true
	}

	for _, n := range f.nodes {
		if !visit(n) {
			return
		}
	}
}

func (f *fragment) render() (string, error) {
	var b strings.Builder
	for _, n := range f.nodes {
		if err := html.Render(&b, n); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// excerpt wraps the first child of the first <p> in a new paragraph.
// Only the first child is kept: "<p>Hi <em>there</em></p>" → "<p>Hi </p>".
func (f *fragment) excerpt() (string, error) {
	if f == nil {
		return "", nil
	}

	var para *html.Node
	f.walk(func(n *html.Node) bool {
		if isElement(n, atom.P) {
			para = n
			return false
		}
		return true
	})
	if para == nil {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("<p>")
	if para.FirstChild != nil {
		if err := html.Render(&b, para.FirstChild); err != nil {
			return "", err
		}
	}
	b.WriteString("</p>")

	return b.String(), nil
}

// highlight rewrites every <pre><code> block in place and reports whether
// any block was found.
func (f *fragment) highlight(h Highlighter) (bool, error) {
	var blocks []*html.Node
	f.walk(func(n *html.Node) bool {
		if isElement(n, atom.Code) && enclosingPre(n) != nil {
			blocks = append(blocks, n)
		}
		return true
	})

	for _, code := range blocks {
		class, _ := attr(code, "class")
		if class != "" {
			class = strings.Replace(class, "lang-", "language-", 1)
			setAttr(code, "class", class)
		}

		highlighted, err := h.Highlight(textContent(code), languageOf(class))
		if err != nil {
			return false, err
		}

		children, err := html.ParseFragment(strings.NewReader(highlighted), code)
		if err != nil {
			return false, err
		}

		for c := code.FirstChild; c != nil; {
			next := c.NextSibling
			code.RemoveChild(c)
			c = next
		}
		for _, c := range children {
			code.AppendChild(c)
		}

		addClass(enclosingPre(code), "chroma")
	}

	return len(blocks) > 0, nil
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}

func enclosingPre(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if isElement(p, atom.Pre) {
			return p
		}
	}
	return nil
}

// languageOf returns the name in a "language-xxx" class token
func languageOf(class string) string {
	for _, token := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(token, "language-"); ok {
			return lang
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func addClass(n *html.Node, class string) {
	if n == nil {
		return
	}
	current, _ := attr(n, "class")
	for _, token := range strings.Fields(current) {
		if token == class {
			return
		}
	}
	setAttr(n, "class", strings.TrimSpace(current+" "+class))
}
