package ooxml

import (
	"encoding/xml"
	"path"
	"regexp"
	"strconv"
	"strings"
)

type valXML struct {
	Val string `xml:"val,attr"`
}

type stylesXML struct {
	Styles []struct {
		Type    string `xml:"type,attr"`
		StyleID string `xml:"styleId,attr"`
		Name    valXML `xml:"name"`
		BasedOn valXML `xml:"basedOn"`
		PPr     struct {
			OutlineLvl *valXML `xml:"outlineLvl"`
			NumPr      struct {
				ILvl  valXML `xml:"ilvl"`
				NumID valXML `xml:"numId"`
			} `xml:"numPr"`
		} `xml:"pPr"`
	} `xml:"style"`
}

type numberingXML struct {
	AbstractNums []struct {
		ID     string `xml:"abstractNumId,attr"`
		Levels []struct {
			ILvl   string `xml:"ilvl,attr"`
			NumFmt valXML `xml:"numFmt"`
		} `xml:"lvl"`
	} `xml:"abstractNum"`
	Nums []struct {
		NumID         string `xml:"numId,attr"`
		AbstractNumID valXML `xml:"abstractNumId"`
	} `xml:"num"`
}

type relsXML struct {
	Relationships []struct {
		ID         string `xml:"Id,attr"`
		Type       string `xml:"Type,attr"`
		Target     string `xml:"Target,attr"`
		TargetMode string `xml:"TargetMode,attr"`
	} `xml:"Relationship"`
}

type styleInfo struct {
	name    string
	basedOn string
	outline int // -1 when absent
	numID   string
	ilvl    int
}

// styleSheet resolves paragraph style IDs to heading levels and list
// numbering. A nil or empty sheet falls back to style ID conventions.
type styleSheet struct {
	styles map[string]styleInfo
}

func parseStyles(data []byte) (*styleSheet, error) {
	ss := &styleSheet{styles: map[string]styleInfo{}}
	if len(data) == 0 {
		return ss, nil
	}
	var sx stylesXML
	if err := xml.Unmarshal(data, &sx); err != nil {
		return nil, err
	}
	for _, s := range sx.Styles {
		if s.Type != "" && s.Type != "paragraph" {
			continue
		}
		info := styleInfo{name: s.Name.Val, basedOn: s.BasedOn.Val, outline: -1, numID: s.PPr.NumPr.NumID.Val}
		if s.PPr.OutlineLvl != nil {
			if n, err := strconv.Atoi(s.PPr.OutlineLvl.Val); err == nil {
				info.outline = n
			}
		}
		info.ilvl, _ = strconv.Atoi(s.PPr.NumPr.ILvl.Val)
		ss.styles[s.StyleID] = info
	}
	return ss, nil
}

var headingName = regexp.MustCompile(`^(?:heading|titre|überschrift|título|titolo)\s*([1-6])$`)

// levelFromName maps "Heading2", "heading 2", "Title" and localised
// variants to a level, 0 when the name is not a heading.
func levelFromName(name string) int {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch lower {
	case "title":
		return 1
	case "subtitle":
		return 2
	}
	if m := headingName.FindStringSubmatch(lower); m != nil {
		return int(m[1][0] - '0')
	}
	return 0
}

// headingLevel returns the heading level of a paragraph, or 0. The style ID
// is tried first, then the style name and its outline level, walking the
// basedOn chain. A paragraph-level outline level is the last resort.
func (ss *styleSheet) headingLevel(p *paragraph) int {
	if lvl := levelFromName(p.style); lvl > 0 {
		return lvl
	}
	id := p.style
	for range 8 {
		info, ok := ss.styles[id]
		if !ok {
			break
		}
		if lvl := levelFromName(info.name); lvl > 0 {
			return lvl
		}
		if info.outline >= 0 && info.outline < 6 {
			return info.outline + 1
		}
		if info.basedOn == "" {
			break
		}
		id = info.basedOn
	}
	if p.outline >= 0 && p.outline < 6 {
		return p.outline + 1
	}
	return 0
}

// listRef returns the numbering instance of a paragraph, taken from the
// paragraph itself or inherited from its style. numId 0 means "no list".
func (ss *styleSheet) listRef(p *paragraph) (numID string, ilvl int) {
	if p.numID != "" {
		if p.numID == "0" {
			return "", 0
		}
		return p.numID, p.ilvl
	}
	if info, ok := ss.styles[p.style]; ok && info.numID != "" && info.numID != "0" {
		return info.numID, info.ilvl
	}
	return "", 0
}

// numbering maps (numId, ilvl) to a number format.
type numbering struct {
	formats map[string]map[int]string
}

func parseNumbering(data []byte) (*numbering, error) {
	nb := &numbering{formats: map[string]map[int]string{}}
	if len(data) == 0 {
		return nb, nil
	}
	var nx numberingXML
	if err := xml.Unmarshal(data, &nx); err != nil {
		return nil, err
	}
	abstract := map[string]map[int]string{}
	for _, an := range nx.AbstractNums {
		lv := map[int]string{}
		for _, l := range an.Levels {
			n, err := strconv.Atoi(l.ILvl)
			if err != nil {
				continue
			}
			lv[n] = l.NumFmt.Val
		}
		abstract[an.ID] = lv
	}
	for _, n := range nx.Nums {
		if lv, ok := abstract[n.AbstractNumID.Val]; ok {
			nb.formats[n.NumID] = lv
		}
	}
	return nb, nil
}

// ordered reports whether the list level is numbered. Unknown definitions
// render as bullets.
func (nb *numbering) ordered(numID string, ilvl int) bool {
	f := nb.formats[numID][ilvl]
	switch f {
	case "", "bullet", "none":
		return false
	}
	return true
}

type relTarget struct {
	target   string
	external bool
	kind     string // last path segment of the relationship type
}

type relationships map[string]relTarget

func parseRels(data []byte) (relationships, error) {
	rels := relationships{}
	if len(data) == 0 {
		return rels, nil
	}
	var rx relsXML
	if err := xml.Unmarshal(data, &rx); err != nil {
		return nil, err
	}
	for _, r := range rx.Relationships {
		rels[r.ID] = relTarget{
			target:   r.Target,
			external: strings.EqualFold(r.TargetMode, "External"),
			kind:     path.Base(r.Type),
		}
	}
	return rels, nil
}

// partPath resolves an internal relationship target against word/.
func partPath(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join("word", target))
}
