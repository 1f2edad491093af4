package ooxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

const nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// maxDepth bounds XML element nesting. Real documents stay well under 64.
const maxDepth = 256

var errDepth = errors.New("xml nesting depth exceeded")

// depthReader fails the token stream once nesting exceeds max, which stops
// deeply nested payloads before they reach the recursive decoders.
type depthReader struct {
	dec   *xml.Decoder
	depth int
	max   int
}

func (r *depthReader) Token() (xml.Token, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return nil, err
	}
	switch tok.(type) {
	case xml.StartElement:
		r.depth++
		if r.depth > r.max {
			return nil, fmt.Errorf("%w (%d)", errDepth, r.max)
		}
	case xml.EndElement:
		r.depth--
	}
	return tok, nil
}

// element is one body-level item: a paragraph or a table, never both.
type element struct {
	para  *paragraph
	table *table
}

type segKind int

const (
	segText segKind = iota
	segBreak
	segImage
)

type format struct {
	bold, italic, underline, strike bool
}

// segment is the smallest rendered unit inside a paragraph. Formatting and
// link are copied from the enclosing run and hyperlink.
type segment struct {
	kind  segKind
	text  string
	fmt   format
	link  string // relationship ID of the enclosing hyperlink
	image string // relationship ID of the embedded picture
	alt   string
}

type paragraph struct {
	style   string
	numID   string
	ilvl    int
	outline int // -1 when absent
	segs    []segment
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func relAttr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local && (a.Name.Space == nsR || a.Name.Space == "r") {
			return a.Value
		}
	}
	return attr(se, local)
}

// toggled reads an OOXML on/off property such as <w:b/> or <w:b w:val="0"/>.
func toggled(se xml.StartElement) bool {
	switch attr(se, "val") {
	case "0", "false", "off", "none":
		return false
	}
	return true
}

// UnmarshalXML walks a <w:p> keeping inline content in document order.
func (p *paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.outline = -1
	var (
		inPPr, inRPr, inText, inRun bool
		cur                         format
		link, alt                   string
	)
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "pPr":
				inPPr = true
			case "pStyle":
				if inPPr {
					p.style = attr(t, "val")
				}
			case "numId":
				if inPPr {
					p.numID = attr(t, "val")
				}
			case "ilvl":
				if inPPr {
					p.ilvl, _ = strconv.Atoi(attr(t, "val"))
				}
			case "outlineLvl":
				if inPPr {
					if n, err := strconv.Atoi(attr(t, "val")); err == nil {
						p.outline = n
					}
				}
			case "rPr":
				inRPr = true
			case "b":
				if inRPr && inRun {
					cur.bold = toggled(t)
				}
			case "i":
				if inRPr && inRun {
					cur.italic = toggled(t)
				}
			case "u":
				if inRPr && inRun {
					cur.underline = toggled(t)
				}
			case "strike", "dstrike":
				if inRPr && inRun {
					cur.strike = toggled(t)
				}
			case "hyperlink":
				link = relAttr(t, "id")
			case "r":
				inRun = true
				cur = format{}
			case "t":
				if inRun {
					inText = true
					p.segs = append(p.segs, segment{kind: segText, fmt: cur, link: link})
				}
			case "tab":
				if inRun && !inPPr {
					p.segs = append(p.segs, segment{kind: segText, text: "\t", fmt: cur, link: link})
				}
			case "br", "cr":
				if inRun {
					p.segs = append(p.segs, segment{kind: segBreak})
				}
			case "docPr":
				alt = attr(t, "descr")
				if alt == "" {
					alt = attr(t, "title")
				}
			case "blip":
				if id := relAttr(t, "embed"); id != "" {
					p.segs = append(p.segs, segment{kind: segImage, image: id, alt: alt})
				} else if id := relAttr(t, "link"); id != "" {
					p.segs = append(p.segs, segment{kind: segImage, image: id, alt: alt})
				}
				alt = ""
			case "Fallback", "del", "instrText", "delText":
				// Alternate renderings and tracked deletions would duplicate text.
				if err := d.Skip(); err != nil {
					return err
				}
				depth--
			}
		case xml.CharData:
			if inText && len(p.segs) > 0 {
				p.segs[len(p.segs)-1].text += string(t)
			}
		case xml.EndElement:
			depth--
			switch t.Name.Local {
			case "pPr":
				inPPr = false
			case "rPr":
				inRPr = false
			case "t":
				inText = false
			case "r":
				inRun = false
			case "hyperlink":
				link = ""
			}
		}
	}
	return nil
}

type cell struct {
	content []element
}

type row struct {
	cells []cell
}

type table struct {
	rows []row
}

// UnmarshalXML walks a <w:tbl>. Cells may hold paragraphs and nested tables.
func (tb *table) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				tb.rows = append(tb.rows, row{})
				depth++
			case "tc":
				if len(tb.rows) == 0 {
					tb.rows = append(tb.rows, row{})
				}
				r := &tb.rows[len(tb.rows)-1]
				r.cells = append(r.cells, cell{})
				depth++
			case "p", "tbl":
				el, err := decodeElement(d, t)
				if err != nil {
					return err
				}
				if c := tb.lastCell(); c != nil {
					c.content = append(c.content, el)
				}
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

func (tb *table) lastCell() *cell {
	if len(tb.rows) == 0 {
		return nil
	}
	r := &tb.rows[len(tb.rows)-1]
	if len(r.cells) == 0 {
		return nil
	}
	return &r.cells[len(r.cells)-1]
}

func decodeElement(d *xml.Decoder, se xml.StartElement) (element, error) {
	if se.Name.Local == "tbl" {
		var tb table
		if err := d.DecodeElement(&tb, &se); err != nil {
			return element{}, err
		}
		return element{table: &tb}, nil
	}
	var p paragraph
	if err := d.DecodeElement(&p, &se); err != nil {
		return element{}, err
	}
	return element{para: &p}, nil
}

// readBody returns the body's paragraphs and tables in order. Wrappers such
// as content controls (<w:sdt>) are transparent.
func readBody(d *xml.Decoder) ([]element, error) {
	var out []element
	inBody := false
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, errDepth) {
				return nil, err
			}
			if inBody {
				return nil, fmt.Errorf("read body: %w", err)
			}
			if errors.Is(err, io.EOF) {
				return nil, errors.New("no document body")
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "p", "tbl":
				if !inBody {
					continue
				}
				el, err := decodeElement(d, t)
				if err != nil {
					return nil, fmt.Errorf("read body: %w", err)
				}
				out = append(out, el)
			case "sectPr":
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				return out, nil
			}
		}
	}
}
