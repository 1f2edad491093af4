package docimport

import (
	"context"
	"strings"

	"github.com/hazyhaar/blockdoc/block"
	"github.com/hazyhaar/blockdoc/classify"
	"github.com/hazyhaar/blockdoc/convert"
	"github.com/hazyhaar/blockdoc/idgen"
	"github.com/hazyhaar/blockdoc/pdftext"
	"github.com/hazyhaar/blockdoc/sanitize"
)

func (imp *Importer) docx(ctx context.Context, data []byte, gen idgen.Generator) ([]block.Block, error) {
	html, err := imp.html.DecodeHTML(ctx, data)
	if err != nil {
		return nil, err
	}
	if *imp.cfg.Sanitize {
		html = sanitize.Safe(html)
	}
	return convert.HTML(html, gen)
}

func (imp *Importer) pdf(ctx context.Context, name string, data []byte, gen idgen.Generator) ([]block.Block, error) {
	pages, err := imp.text.Pages(ctx, data)
	if err != nil {
		return nil, err
	}

	imp.logQuality(name, pdftext.Assess(pages, pdftext.HasImages(data)))

	return classify.Text(PageText(pages), gen), nil
}

// logQuality warns about PDFs whose import will lose content: a text layer
// that needs OCR, or figure references next to images that are dropped.
// Neither fails the import.
func (imp *Importer) logQuality(name string, q pdftext.Quality) {
	attrs := []any{
		"file", name,
		"pages", q.PageCount,
		"chars_per_page", q.CharsPerPage,
		"printable_ratio", q.PrintableRatio,
		"wordlike_ratio", q.WordlikeRatio,
		"has_images", q.HasImageStreams,
	}
	if q.NeedsOCR() {
		imp.logger.Warn("docimport: pdf text layer looks unusable, OCR needed", attrs...)
	}
	if q.HasVisualGap() {
		imp.logger.Warn("docimport: pdf refers to figures that are not imported",
			append(attrs, "visual_refs", q.VisualRefCount)...)
	}
}

// PageText joins each page's items with a space and the pages with a blank
// line.
func PageText(pages []pdftext.Page) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strings.Join(p.Items, " ")
	}
	return strings.Join(parts, "\n\n")
}
