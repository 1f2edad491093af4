// CLAUDE:SUMMARY Block/Document model of the editor with Puck-shaped JSON encoding and import-time constructors.
// Package block defines the editor's document model: an ordered list of
// typed content blocks, optional named zones and root properties.
//
// Import code builds blocks only through the constructors in this file so
// that imported content always carries default styling.
package block

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Type identifies a block kind in the editor palette.
type Type string

const (
	TypeHeading     Type = "Heading"
	TypeText        Type = "Text"
	TypeImage       Type = "Image"
	TypeDivider     Type = "Divider"
	TypeButton      Type = "Button"
	TypeSpacer      Type = "Spacer"
	TypeVideo       Type = "Video"
	TypeSocialLinks Type = "SocialLinks"
	TypeMenu        Type = "Menu"
	TypeHtmlEmbed   Type = "HtmlEmbed"
	TypeSection     Type = "Section"
	TypeColumns     Type = "Columns"
)

// Types lists every block kind in palette order.
var Types = []Type{
	TypeHeading, TypeText, TypeImage, TypeDivider, TypeButton, TypeSpacer,
	TypeVideo, TypeSocialLinks, TypeMenu, TypeHtmlEmbed, TypeSection, TypeColumns,
}

// Block is one content unit. Its type is carried by Props.
type Block struct {
	ID    string
	Props Props
}

// Type returns the block kind, or "" when Props is nil.
func (b Block) Type() Type {
	if b.Props == nil {
		return ""
	}
	return b.Props.Kind()
}

// Heading builds an imported heading. level is clamped to 1..6.
func Heading(id, text string, level int) Block {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return Block{ID: id, Props: HeadingProps{
		Text:      text,
		Level:     "h" + strconv.Itoa(level),
		Alignment: "left",
		Color:     "#1a1a2e",
	}}
}

// Text builds an imported text block.
func Text(id, content string) Block {
	return Block{ID: id, Props: TextProps{
		Content:   content,
		Alignment: "left",
		FontSize:  "16px",
		Color:     "#333333",
	}}
}

// Image builds an imported image. Imported images are not rounded.
func Image(id, src, alt string) Block {
	return Block{ID: id, Props: ImageProps{
		Src:          src,
		Alt:          alt,
		Width:        "100%",
		Alignment:    "center",
		BorderRadius: "0px",
	}}
}

// Divider builds a divider with the default style.
func Divider(id string) Block {
	return Block{ID: id, Props: Defaults(TypeDivider)}
}

type wireBlock struct {
	Type  Type            `json:"type"`
	Props json.RawMessage `json:"props"`
}

// MarshalJSON encodes b as {"type":T,"props":{"id":ID,...}}.
func (b Block) MarshalJSON() ([]byte, error) {
	if b.Props == nil {
		return nil, fmt.Errorf("block %q: nil props", b.ID)
	}
	raw, err := json.Marshal(b.Props)
	if err != nil {
		return nil, fmt.Errorf("block %q: %w", b.ID, err)
	}
	id, err := json.Marshal(b.ID)
	if err != nil {
		return nil, err
	}

	// Splice "id" in front of the props object's fields.
	var props bytes.Buffer
	props.WriteString(`{"id":`)
	props.Write(id)
	if body := bytes.TrimSpace(raw[1 : len(raw)-1]); len(body) > 0 {
		props.WriteByte(',')
		props.Write(body)
	}
	props.WriteByte('}')

	return json.Marshal(wireBlock{Type: b.Props.Kind(), Props: props.Bytes()})
}

// UnmarshalJSON decodes the shape produced by MarshalJSON.
func (b *Block) UnmarshalJSON(data []byte) error {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	p, ok := newProps(w.Type)
	if !ok {
		return fmt.Errorf("unknown block type %q", w.Type)
	}
	if len(w.Props) == 0 {
		w.Props = []byte("{}")
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Props, &head); err != nil {
		return fmt.Errorf("block props: %w", err)
	}
	if err := json.Unmarshal(w.Props, p); err != nil {
		return fmt.Errorf("block props: %w", err)
	}
	b.ID = head.ID
	b.Props = reflect.ValueOf(p).Elem().Interface().(Props)
	return nil
}

// Root carries the document-level properties.
type Root struct {
	Props map[string]any `json:"props"`
}

// Document is the editor's data model.
type Document struct {
	Content []Block            `json:"content"`
	Zones   map[string][]Block `json:"zones"`
	Root    Root               `json:"root"`
}

// NewDocument wraps an ordered block list into a document with empty zones
// and empty root props.
func NewDocument(content []Block) *Document {
	if content == nil {
		content = []Block{}
	}
	return &Document{
		Content: content,
		Zones:   map[string][]Block{},
		Root:    Root{Props: map[string]any{}},
	}
}

// Clone returns a deep copy. Props records are values, so copying the
// slices is enough; root props are copied one level deep.
func (d *Document) Clone() *Document {
	out := NewDocument(append([]Block(nil), d.Content...))
	for name, blocks := range d.Zones {
		out.Zones[name] = append([]Block(nil), blocks...)
	}
	for k, v := range d.Root.Props {
		out.Root.Props[k] = v
	}
	return out
}

// Len returns the number of blocks across content and zones.
func (d *Document) Len() int {
	n := len(d.Content)
	for _, z := range d.Zones {
		n += len(z)
	}
	return n
}

var (
	ErrDuplicateID  = errors.New("duplicate block id")
	ErrEmptyID      = errors.New("empty block id")
	ErrEmptyContent = errors.New("block has empty required content")
)

// Validate checks that every block has a unique non-empty ID and that
// blocks with required content are not empty.
func (d *Document) Validate() error {
	seen := make(map[string]bool, d.Len())
	check := func(where string, blocks []Block) error {
		for i, b := range blocks {
			if b.ID == "" {
				return fmt.Errorf("%s[%d]: %w", where, i, ErrEmptyID)
			}
			if seen[b.ID] {
				return fmt.Errorf("%s[%d] %q: %w", where, i, b.ID, ErrDuplicateID)
			}
			seen[b.ID] = true
			if b.Props == nil || !hasContent(b.Props) {
				return fmt.Errorf("%s[%d] %q: %w", where, i, b.ID, ErrEmptyContent)
			}
		}
		return nil
	}
	if err := check("content", d.Content); err != nil {
		return err
	}
	for name, blocks := range d.Zones {
		if err := check("zones."+name, blocks); err != nil {
			return err
		}
	}
	return nil
}

func hasContent(p Props) bool {
	switch v := p.(type) {
	case HeadingProps:
		return strings.TrimSpace(v.Text) != ""
	case TextProps:
		return strings.TrimSpace(v.Content) != ""
	case ImageProps:
		return v.Src != ""
	}
	return true
}
