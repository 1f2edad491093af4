package sanitize

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Br: true, atom.Hr: true,
	atom.Blockquote: true, atom.Pre: true,
}

var manyNewlines = regexp.MustCompile(`\n{3,}`)

// PlainText cleans src and reduces it to text that keeps paragraph and list
// structure: block elements sit on their own lines, ordered items are
// numbered "N. ", unordered items bulleted "• ", rules become "---".
func PlainText(src string) string {
	doc, err := html.Parse(strings.NewReader(Clean(src)))
	if err != nil {
		// html.Parse only fails on reader errors.
		return ""
	}
	body := findBody(doc)
	if body == nil {
		return ""
	}
	out := extractText(body)
	return strings.TrimSpace(manyNewlines.ReplaceAllString(out, "\n\n"))
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

func extractText(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.ElementNode:
	default:
		return ""
	}

	switch n.DataAtom {
	case atom.Script, atom.Template, atom.Noscript:
		return ""
	case atom.Br:
		return "\n"
	case atom.Hr:
		return "\n---\n"
	case atom.Li:
		return listPrefix(n) + strings.TrimSpace(childText(n)) + "\n"
	}

	inner := childText(n)
	if blockAtoms[n.DataAtom] {
		return "\n" + strings.TrimSpace(inner) + "\n"
	}
	return inner
}

func childText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(extractText(c))
	}
	return b.String()
}

// listPrefix numbers an item by its position among the parent's element
// children, so a non-li sibling inside an <ol> shifts the count.
func listPrefix(li *html.Node) string {
	p := li.Parent
	if p == nil || p.DataAtom != atom.Ol {
		return "• "
	}
	idx := 0
	for c := p.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		idx++
		if c == li {
			break
		}
	}
	return strconv.Itoa(idx) + ". "
}
