package ooxml

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// renderer writes the HTML for one document. It is discarded after use.
type renderer struct {
	b      strings.Builder
	styles *styleSheet
	nums   *numbering
	rels   relationships
	media  func(relID string) (src string, ok bool)

	// open lists, innermost last
	lists []openList
}

type openList struct {
	level int
	tag   string
}

func (r *renderer) elements(els []element) {
	for _, el := range els {
		if el.table != nil {
			r.closeLists(-1)
			r.table(el.table)
			continue
		}
		p := el.para
		// Heading styles win over numbering: Word's multilevel "1.1" headings
		// carry numPr through their style.
		if r.styles.headingLevel(p) > 0 {
			r.closeLists(-1)
			r.paragraph(p)
			continue
		}
		if numID, ilvl := r.styles.listRef(p); numID != "" {
			r.listItem(p, numID, ilvl)
			continue
		}
		r.closeLists(-1)
		r.paragraph(p)
	}
	r.closeLists(-1)
}

func (r *renderer) paragraph(p *paragraph) {
	if lvl := r.styles.headingLevel(p); lvl > 0 {
		tag := "h" + strconv.Itoa(lvl)
		r.b.WriteString("<" + tag + ">")
		r.inline(p.segs)
		r.b.WriteString("</" + tag + ">")
		return
	}

	// Images leave the paragraph so they become blocks of their own.
	start := 0
	for i, s := range p.segs {
		if s.kind != segImage {
			continue
		}
		r.textParagraph(p.segs[start:i])
		r.image(s)
		start = i + 1
	}
	r.textParagraph(p.segs[start:])
}

func (r *renderer) textParagraph(segs []segment) {
	if !hasText(segs) {
		return
	}
	r.b.WriteString("<p>")
	r.inline(segs)
	r.b.WriteString("</p>")
}

func hasText(segs []segment) bool {
	for _, s := range segs {
		if s.kind == segText && strings.TrimSpace(s.text) != "" {
			return true
		}
	}
	return false
}

// listItem nests list paragraphs by ilvl. A deeper item opens a list inside
// the current <li>; a shallower one closes lists down to its level.
func (r *renderer) listItem(p *paragraph, numID string, ilvl int) {
	tag := "ul"
	if r.nums.ordered(numID, ilvl) {
		tag = "ol"
	}
	r.closeLists(ilvl)

	n := len(r.lists)
	switch {
	case n > 0 && r.lists[n-1].level == ilvl && r.lists[n-1].tag == tag:
		r.b.WriteString("</li>")
	case n > 0 && r.lists[n-1].level == ilvl:
		// Same level, different kind: start a sibling list.
		r.b.WriteString("</li></" + r.lists[n-1].tag + ">")
		r.lists = r.lists[:n-1]
		fallthrough
	default:
		r.b.WriteString("<" + tag + ">")
		r.lists = append(r.lists, openList{level: ilvl, tag: tag})
	}
	r.b.WriteString("<li>")
	r.inline(p.segs)
}

// closeLists closes every open list deeper than level; -1 closes all.
func (r *renderer) closeLists(level int) {
	for len(r.lists) > 0 {
		top := r.lists[len(r.lists)-1]
		if top.level <= level {
			return
		}
		r.b.WriteString("</li></" + top.tag + ">")
		r.lists = r.lists[:len(r.lists)-1]
	}
}

func (r *renderer) table(t *table) {
	r.b.WriteString("<table>")
	for _, row := range t.rows {
		r.b.WriteString("<tr>")
		for _, c := range row.cells {
			r.b.WriteString("<td>")
			saved := r.lists
			r.lists = nil
			r.elements(c.content)
			r.lists = saved
			r.b.WriteString("</td>")
		}
		r.b.WriteString("</tr>")
	}
	r.b.WriteString("</table>")
}

func (r *renderer) image(s segment) {
	src, ok := r.media(s.image)
	if !ok {
		return
	}
	r.b.WriteString(`<img src="`)
	r.b.WriteString(html.EscapeString(src))
	r.b.WriteString(`" alt="`)
	r.b.WriteString(html.EscapeString(s.alt))
	r.b.WriteString(`" />`)
}

// inline writes runs, grouping consecutive segments that share a hyperlink.
func (r *renderer) inline(segs []segment) {
	for i := 0; i < len(segs); {
		link := segs[i].link
		j := i
		for j < len(segs) && segs[j].link == link {
			j++
		}
		href := r.href(link)
		if href != "" {
			r.b.WriteString(`<a href="` + html.EscapeString(href) + `">`)
		}
		for _, s := range segs[i:j] {
			r.segment(s)
		}
		if href != "" {
			r.b.WriteString("</a>")
		}
		i = j
	}
}

// href resolves a hyperlink relationship. Only external targets are kept.
func (r *renderer) href(relID string) string {
	if relID == "" {
		return ""
	}
	t, ok := r.rels[relID]
	if !ok || !t.external {
		return ""
	}
	return t.target
}

func (r *renderer) segment(s segment) {
	switch s.kind {
	case segBreak:
		r.b.WriteString("<br />")
		return
	case segImage:
		r.image(s)
		return
	}
	if s.text == "" {
		return
	}
	open, close := "", ""
	for _, w := range []struct {
		on  bool
		tag string
	}{
		{s.fmt.bold, "strong"},
		{s.fmt.italic, "em"},
		{s.fmt.underline, "u"},
		{s.fmt.strike, "s"},
	} {
		if w.on {
			open += "<" + w.tag + ">"
			close = "</" + w.tag + ">" + close
		}
	}
	r.b.WriteString(open)
	r.b.WriteString(html.EscapeString(s.text))
	r.b.WriteString(close)
}
