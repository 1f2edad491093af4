// CLAUDE:SUMMARY Converts an HTML fragment into editor blocks with a pre-order walk and first-match tag dispatch.
// Package convert maps HTML to editor blocks.
//
// Dispatch rules, first match wins:
//
//	text node          → Text (if non-blank)
//	h1..h6             → Heading, literal level
//	p                  → Text
//	img                → Image (if src set)
//	hr                 → Divider
//	ul, ol             → one Text, every descendant li on its own line
//	table              → one Text, cells joined " | ", rows by newline
//	div, section, ...  → recurse, emit nothing
//	anything else      → Text with the element's full text
//
// Only containers are descended into; every other element is consumed whole.
package convert

import (
	"strconv"
	"strings"

	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/blockdoc/block"
	"github.com/hazyhaar/blockdoc/idgen"
)

var containers = map[atom.Atom]bool{
	atom.Div:     true,
	atom.Section: true,
	atom.Article: true,
	atom.Main:    true,
	atom.Header:  true,
	atom.Footer:  true,
	atom.Body:    true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

// HTML parses src and converts the children of its body into blocks in
// document order. gen is called once per emitted block and must not repeat
// itself. The only error is a parse failure.
func HTML(src string, gen idgen.Generator) ([]block.Block, error) {
	body, err := Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return Blocks(body, gen), nil
}

// Blocks converts the children of root. The walk cannot fail: unknown
// elements degrade to the text fallback.
func Blocks(root *Node, gen idgen.Generator) []block.Block {
	out := []block.Block{}
	for _, c := range root.Children() {
		Walk(c, func(n *Node) bool {
			b, descend := dispatch(n, gen)
			if b != nil {
				out = append(out, *b)
			}
			return descend
		})
	}
	return out
}

// dispatch returns the block for n (nil when n yields nothing) and whether
// the walk continues into n's children.
func dispatch(n *Node, gen idgen.Generator) (*block.Block, bool) {
	if n.Kind() == TextNode {
		return textBlock(n.Text(), gen), false
	}

	tag := n.Atom()
	if level, ok := headingLevels[tag]; ok {
		text := strings.TrimSpace(n.Text())
		if text == "" {
			return nil, false
		}
		b := block.Heading(gen(), text, level)
		return &b, false
	}

	switch {
	case tag == atom.P:
		return textBlock(n.Text(), gen), false
	case tag == atom.Img:
		src := n.Attr("src")
		if src == "" {
			return nil, false
		}
		b := block.Image(gen(), src, n.Attr("alt"))
		return &b, false
	case tag == atom.Hr:
		b := block.Divider(gen())
		return &b, false
	case tag == atom.Ul || tag == atom.Ol:
		return listBlock(n, tag == atom.Ol, gen), false
	case tag == atom.Table:
		return tableBlock(n, gen), false
	case containers[tag]:
		return nil, true
	}
	return textBlock(n.Text(), gen), false
}

func textBlock(s string, gen idgen.Generator) *block.Block {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	b := block.Text(gen(), s)
	return &b
}

// listBlock numbers items by position in the collected descendant sequence,
// so nested items continue the outer count and take the outer list's kind.
// A list whose items are all blank yields nothing; otherwise blank items keep
// their line so numbering stays aligned with the source.
func listBlock(list *Node, ordered bool, gen idgen.Generator) *block.Block {
	items := list.Find(atom.Li)
	lines := make([]string, len(items))
	empty := true
	for i, li := range items {
		text := strings.TrimSpace(li.Text())
		if text != "" {
			empty = false
		}
		if ordered {
			lines[i] = strconv.Itoa(i+1) + ". " + text
		} else {
			lines[i] = "• " + text
		}
	}
	if empty {
		return nil
	}
	b := block.Text(gen(), strings.Join(lines, "\n"))
	return &b
}

func tableBlock(table *Node, gen idgen.Generator) *block.Block {
	rows := table.Find(atom.Tr)
	lines := make([]string, len(rows))
	empty := true
	for i, tr := range rows {
		cells := tr.Find(atom.Td, atom.Th)
		texts := make([]string, len(cells))
		for j, c := range cells {
			texts[j] = strings.TrimSpace(c.Text())
			if texts[j] != "" {
				empty = false
			}
		}
		lines[i] = strings.Join(texts, " | ")
	}
	if empty {
		return nil
	}
	b := block.Text(gen(), strings.Join(lines, "\n"))
	return &b
}
