package pdftext

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFCPU decodes with pdfcpu: the file is validated, then each page's
// content stream is scanned for show-text operators. One operand (a string,
// or a TJ array) is one item.
type PDFCPU struct{}

func readContext(data []byte) (ctx *model.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			ctx = nil
			err = fmt.Errorf("pdfcpu: %v", r)
		}
	}()
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err = api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

func (PDFCPU) Pages(ctx context.Context, data []byte) ([]Page, error) {
	pc, err := readContext(data)
	if err != nil {
		return nil, err
	}
	pages := make([]Page, 0, pc.PageCount)
	for nr := 1; nr <= pc.PageCount; nr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := Page{Number: nr}
		r, err := pdfcpu.ExtractPageContent(pc, nr)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", nr, err)
		}
		if r != nil {
			content, err := io.ReadAll(r)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", nr, err)
			}
			page.Items = ScanContent(content)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// HasImages reports whether the PDF holds image XObjects. It is best
// effort: unreadable files report false.
func HasImages(data []byte) bool {
	pc, err := readContext(data)
	if err != nil {
		return false
	}
	if pc.Optimize != nil {
		for nr := 1; nr <= pc.PageCount; nr++ {
			if len(pdfcpu.ImageObjNrs(pc, nr)) > 0 {
				return true
			}
		}
	}
	for _, entry := range pc.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if st, found := sd.Find("Subtype"); found {
			if name, isName := st.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}

// kernSpace is the TJ displacement (thousandths of text space) beyond which
// two array strings are taken to be separate words.
const kernSpace = -200

// ScanContent returns the text operands of show-text operators (Tj, TJ, '
// and ") in a content stream, in stream order.
func ScanContent(content []byte) []string {
	s := &scanner{data: content}
	var items []string
	var pending []string
	for {
		tok, kind := s.next()
		switch kind {
		case tokEOF:
			return items
		case tokString:
			pending = append(pending, tok)
		case tokArray:
			pending = append(pending, tok)
		case tokOperator:
			switch tok {
			case "Tj", "TJ", "'", `"`:
				if len(pending) > 0 {
					if text := strings.TrimSpace(pending[len(pending)-1]); text != "" {
						items = append(items, text)
					}
				}
			}
			pending = pending[:0]
		}
	}
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokString
	tokArray
	tokOperator
	tokOther
)

type scanner struct {
	data []byte
	pos  int
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func (s *scanner) next() (string, tokKind) {
	for {
		for s.pos < len(s.data) && isSpace(s.data[s.pos]) {
			s.pos++
		}
		if s.pos >= len(s.data) {
			return "", tokEOF
		}
		c := s.data[s.pos]
		switch {
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
			continue
		case c == '(':
			return s.literal(), tokString
		case c == '<' && s.peek(1) == '<':
			s.pos += 2
			return "", tokOther
		case c == '>' && s.peek(1) == '>':
			s.pos += 2
			return "", tokOther
		case c == '<':
			return s.hexString(), tokString
		case c == '[':
			s.pos++
			return s.array(), tokArray
		case c == '/':
			s.pos++
			s.word()
			return "", tokOther
		case isDelim(c):
			s.pos++
			return "", tokOther
		}
		w := s.word()
		if _, err := strconv.ParseFloat(w, 64); err == nil {
			return w, tokOther
		}
		if w == "BI" {
			s.skipInlineImage()
			continue
		}
		return w, tokOperator
	}
}

func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.data) {
		return s.data[s.pos+off]
	}
	return 0
}

func (s *scanner) word() string {
	start := s.pos
	for s.pos < len(s.data) && !isSpace(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

// literal reads a balanced (…) string and decodes its escapes.
func (s *scanner) literal() string {
	s.pos++ // (
	depth := 1
	var raw []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		if c == '\\' && s.pos+1 < len(s.data) {
			raw = append(raw, c, s.data[s.pos+1])
			s.pos += 2
			continue
		}
		s.pos++
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			if depth == 0 {
				break
			}
		}
		raw = append(raw, c)
	}
	return decodeLiteral(raw)
}

func (s *scanner) hexString() string {
	s.pos++ // <
	start := s.pos
	for s.pos < len(s.data) && s.data[s.pos] != '>' {
		s.pos++
	}
	digits := strings.Map(func(r rune) rune {
		if isSpace(byte(r)) {
			return -1
		}
		return r
	}, string(s.data[start:s.pos]))
	s.pos++ // >
	if len(digits)%2 == 1 {
		digits += "0"
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return ""
	}
	return decodeBytes(b)
}

// array reads a TJ operand: strings concatenated, with a space where the
// kerning displacement is wide enough to separate words.
func (s *scanner) array() string {
	var b strings.Builder
	for {
		tok, kind := s.nextInArray()
		switch kind {
		case tokEOF:
			return b.String()
		case tokString:
			b.WriteString(tok)
		case tokOther:
			if n, err := strconv.ParseFloat(tok, 64); err == nil && n < kernSpace {
				b.WriteByte(' ')
			}
		}
	}
}

func (s *scanner) nextInArray() (string, tokKind) {
	for s.pos < len(s.data) && isSpace(s.data[s.pos]) {
		s.pos++
	}
	if s.pos >= len(s.data) {
		return "", tokEOF
	}
	switch c := s.data[s.pos]; {
	case c == ']':
		s.pos++
		return "", tokEOF
	case c == '(':
		return s.literal(), tokString
	case c == '<':
		return s.hexString(), tokString
	case isDelim(c):
		s.pos++
		return "", tokOther
	}
	return s.word(), tokOther
}

func (s *scanner) skipInlineImage() {
	idx := bytes.Index(s.data[s.pos:], []byte("EI"))
	if idx < 0 {
		s.pos = len(s.data)
		return
	}
	s.pos += idx + 2
}

// decodeLiteral handles PDF string escapes: \n \r \t \b \f \\ \( \) and
// octal \ddd. A backslash before a newline continues the line.
func decodeLiteral(raw []byte) string {
	var out []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out = append(out, raw[i])
			continue
		}
		i++
		switch c := raw[i]; c {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\n':
		case '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		default:
			if c >= '0' && c <= '7' {
				val := int(c - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				out = append(out, byte(val))
			} else {
				out = append(out, c)
			}
		}
	}
	return decodeBytes(out)
}

// decodeBytes interprets string bytes: UTF-16BE with a BOM, otherwise
// single-byte (Latin-1 compatible) codes.
func decodeBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		var sb strings.Builder
		for i := 2; i+1 < len(b); i += 2 {
			sb.WriteRune(rune(b[i])<<8 | rune(b[i+1]))
		}
		return sb.String()
	}
	rs := make([]rune, len(b))
	for i, c := range b {
		rs[i] = rune(c)
	}
	return string(rs)
}
