package convert

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Kind distinguishes text from element nodes. Comments, doctypes and other
// parser node types are dropped while building the tree.
type Kind int

const (
	TextNode Kind = iota
	ElementNode
)

// Node is an immutable view of a parsed HTML node. It is built once from the
// parser output and never modified, so a tree can be shared across walks.
type Node struct {
	kind     Kind
	tag      atom.Atom
	name     string
	text     string
	attrs    map[string]string
	children []*Node
}

func (n *Node) Kind() Kind { return n.kind }

// Tag returns the lower-case element name, or "" for text nodes.
func (n *Node) Tag() string { return n.name }

// Atom returns the element's atom, 0 for text or unknown elements.
func (n *Node) Atom() atom.Atom { return n.tag }

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(key string) string { return n.attrs[key] }

// Children returns the node's children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Text returns the concatenated text of n and all its descendants,
// the way DOM textContent does.
func (n *Node) Text() string {
	if n.kind == TextNode {
		return n.text
	}
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *Node) appendText(b *strings.Builder) {
	if n.kind == TextNode {
		b.WriteString(n.text)
		return
	}
	for _, c := range n.children {
		c.appendText(b)
	}
}

// Find returns every descendant element (not n itself) whose atom is in
// tags, in document order.
func (n *Node) Find(tags ...atom.Atom) []*Node {
	var out []*Node
	for _, c := range n.children {
		Walk(c, func(d *Node) bool {
			if d.kind == ElementNode {
				for _, t := range tags {
					if d.tag == t {
						out = append(out, d)
						break
					}
				}
			}
			return true
		})
	}
	return out
}

// Walk visits n and its descendants in pre-order. fn returns whether to
// descend into the visited node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		Walk(c, fn)
	}
}

// Parse reads an HTML document or fragment and returns its body element.
func Parse(r io.Reader) (*Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("convert: parse html: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return &Node{kind: ElementNode, tag: atom.Body, name: "body"}, nil
	}
	return build(body), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func build(h *html.Node) *Node {
	if h.Type == html.TextNode {
		return &Node{kind: TextNode, text: h.Data}
	}
	n := &Node{kind: ElementNode, tag: h.DataAtom, name: strings.ToLower(h.Data)}
	if len(h.Attr) > 0 {
		n.attrs = make(map[string]string, len(h.Attr))
		for _, a := range h.Attr {
			if a.Namespace == "" {
				n.attrs[strings.ToLower(a.Key)] = a.Val
			}
		}
	}
	for c := h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode && c.Type != html.ElementNode {
			continue
		}
		n.children = append(n.children, build(c))
	}
	return n
}
