// CLAUDE:SUMMARY Importer engine: detects the upload format, reads it under a size cap and dispatches to the DOCX or PDF adapter.
// Package docimport turns uploaded documents into block documents.
//
// Supported formats:
//   - .docx  Microsoft Word, decoded to HTML then converted to blocks
//   - .pdf   text extraction, then line classification into headings and paragraphs
//
// Usage:
//
//	imp, err := docimport.New(docimport.Config{})
//	doc, err := imp.Import(ctx, docimport.LocalFile("/path/to/report.docx"))
//	fmt.Println(doc.Len(), "blocks")
package docimport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hazyhaar/blockdoc/block"
	"github.com/hazyhaar/blockdoc/idgen"
	"github.com/hazyhaar/blockdoc/ooxml"
	"github.com/hazyhaar/blockdoc/pdftext"
)

// HTMLDecoder turns DOCX bytes into an HTML fragment.
type HTMLDecoder interface {
	DecodeHTML(ctx context.Context, data []byte) (string, error)
}

// TextDecoder turns PDF bytes into per-page text items.
type TextDecoder = pdftext.Decoder

// Option customizes an Importer.
type Option func(*Importer)

// WithHTMLDecoder replaces the DOCX decoder.
func WithHTMLDecoder(d HTMLDecoder) Option {
	return func(i *Importer) { i.html = d }
}

// WithTextDecoder replaces the PDF decoder chosen by Config.PDFEngine.
func WithTextDecoder(d TextDecoder) Option {
	return func(i *Importer) { i.text = d }
}

// WithIDGenerator makes every import draw block IDs from fn. fn is called
// once per import; its generator is wrapped so IDs never repeat within one
// document.
func WithIDGenerator(fn func() idgen.Generator) Option {
	return func(i *Importer) { i.newGen = fn }
}

// Importer is the document import engine. It is safe for concurrent use as
// long as its decoders are.
type Importer struct {
	cfg    Config
	logger *slog.Logger
	html   HTMLDecoder
	text   TextDecoder
	newGen func() idgen.Generator
}

// New creates an Importer. It fails only on an invalid configuration.
func New(cfg Config, opts ...Option) (*Importer, error) {
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	text, _ := pdftext.New(cfg.PDFEngine)
	prefix := cfg.IDPrefix
	imp := &Importer{
		cfg:    cfg,
		logger: cfg.Logger,
		html:   &ooxml.Decoder{},
		text:   text,
		newGen: func() idgen.Generator { return idgen.Import(prefix) },
	}
	for _, o := range opts {
		o(imp)
	}
	return imp, nil
}

// Config returns the effective configuration.
func (imp *Importer) Config() Config { return imp.cfg }

// Result is an import together with the name the editor should give it.
type Result struct {
	Name     string          `json:"name"`
	Format   Format          `json:"format"`
	Document *block.Document `json:"document"`
}

// ImportNamed imports f and derives a document name from its file name.
func (imp *Importer) ImportNamed(ctx context.Context, f File) (*Result, error) {
	format, ok := Detect(f.Name(), f.ContentType())
	if !ok {
		return nil, unsupported(f.Name())
	}
	doc, err := imp.importFormat(ctx, f, format)
	if err != nil {
		return nil, err
	}
	return &Result{Name: DocName(f.Name()), Format: format, Document: doc}, nil
}

// Import converts f into a block document with empty zones and root props.
// Failures are *Error values, except context cancellation which is
// returned unwrapped.
func (imp *Importer) Import(ctx context.Context, f File) (*block.Document, error) {
	format, ok := Detect(f.Name(), f.ContentType())
	if !ok {
		imp.logger.Warn("docimport: unsupported file", "file", f.Name(), "content_type", f.ContentType())
		return nil, unsupported(f.Name())
	}
	return imp.importFormat(ctx, f, format)
}

func (imp *Importer) importFormat(ctx context.Context, f File, format Format) (*block.Document, error) {
	name := f.Name()
	data, err := imp.read(f)
	if err != nil {
		imp.logger.Warn("docimport: read failed", "file", name, "error", err)
		return nil, readFailure(name, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	imp.logger.Debug("docimport: importing", "file", name, "format", format, "size", len(data))

	gen := idgen.Unique(imp.newGen())
	var blocks []block.Block
	switch format {
	case FormatDocx:
		blocks, err = imp.docx(ctx, data, gen)
	case FormatPDF:
		blocks, err = imp.pdf(ctx, name, data, gen)
	default:
		return nil, unsupported(name)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		imp.logger.Warn("docimport: decode failed", "file", name, "format", format, "error", err)
		return nil, decodeFailure(name, err)
	}

	imp.logger.Info("docimport: imported", "file", name, "format", format, "blocks", len(blocks))
	return block.NewDocument(blocks), nil
}

func (imp *Importer) read(f File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, imp.cfg.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > imp.cfg.MaxFileSize {
		return nil, fmt.Errorf("file too large (max %d bytes)", imp.cfg.MaxFileSize)
	}
	return data, nil
}
