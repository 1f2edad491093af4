// CLAUDE:SUMMARY PDF text decoders (ledongthuc row reader, pdfcpu content-stream scanner) producing ordered per-page text items.
// Package pdftext extracts positioned text from PDF files.
//
// A decoder returns one Page per PDF page, in page order. A page is an
// ordered list of text items; what an item is depends on the engine (a
// visual row for Ledongthuc, a show-text operand for PDFCPU). Callers join
// items themselves.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Page holds the text items of one page in reading order.
type Page struct {
	Number int
	Items  []string
}

// Engine names accepted by New.
const (
	EngineLedongthuc = "ledongthuc"
	EnginePDFCPU     = "pdfcpu"
)

// ErrUnknownEngine is returned by New for an unrecognised engine name.
var ErrUnknownEngine = errors.New("unknown pdf engine")

// Decoder is implemented by every engine in this package.
type Decoder interface {
	Pages(ctx context.Context, data []byte) ([]Page, error)
}

// New returns the decoder for engine; "" selects Ledongthuc.
func New(engine string) (Decoder, error) {
	switch strings.ToLower(engine) {
	case "", EngineLedongthuc:
		return Ledongthuc{}, nil
	case EnginePDFCPU:
		return PDFCPU{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
}

// Ledongthuc decodes with github.com/ledongthuc/pdf. Each visual row of a
// page becomes one item; glyphs in a row are joined, with a space where the
// horizontal gap is wider than a fraction of the font size.
type Ledongthuc struct{}

// gapRatio is the gap, relative to font size, that separates two words.
const gapRatio = 0.2

func (Ledongthuc) Pages(ctx context.Context, data []byte) (pages []Page, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf parser: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	pages = make([]Page, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := Page{Number: i}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, page)
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		// Top of the page first.
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].Position > rows[b].Position })
		for _, row := range rows {
			if text := joinRow(row.Content); text != "" {
				page.Items = append(page.Items, text)
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func joinRow(glyphs pdf.TextHorizontal) string {
	var b strings.Builder
	var prev *pdf.Text
	for i := range glyphs {
		g := &glyphs[i]
		if prev != nil && g.X-(prev.X+prev.W) > gapRatio*g.FontSize {
			b.WriteByte(' ')
		}
		b.WriteString(g.S)
		prev = g
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
