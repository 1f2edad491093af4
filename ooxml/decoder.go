// CLAUDE:SUMMARY Decodes a Word (.docx) package into an HTML fragment: headings, nested lists, tables, runs, links, inline images.
// Package ooxml converts WordprocessingML packages to HTML.
//
// The output is a fragment meant for structural conversion, not display:
// headings, paragraphs, lists, tables, basic run formatting, external links
// and embedded images as data URIs. Layout and styling are dropped.
package ooxml

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

var (
	ErrNotPackage = errors.New("not a zip package")
	ErrNoDocument = errors.New("word/document.xml not found in archive")
)

// Decoder reads .docx bytes. The zero value is ready to use.
type Decoder struct {
	// MaxPartSize caps the decompressed size of any single package part.
	// Zero means 64 MiB.
	MaxPartSize int64

	// SkipImages drops embedded pictures instead of inlining them.
	SkipImages bool
}

func (d *Decoder) maxPart() int64 {
	if d.MaxPartSize > 0 {
		return d.MaxPartSize
	}
	return 64 << 20
}

// DecodeHTML converts a .docx package to an HTML fragment.
func (d *Decoder) DecodeHTML(ctx context.Context, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotPackage, err)
	}
	pkg := &pkgReader{zr: zr, max: d.maxPart()}

	docFile := pkg.file("word/document.xml")
	if docFile == nil {
		return "", ErrNoDocument
	}

	stylesData, err := pkg.read("word/styles.xml")
	if err != nil {
		return "", err
	}
	styles, err := parseStyles(stylesData)
	if err != nil {
		return "", fmt.Errorf("parse styles.xml: %w", err)
	}
	numData, err := pkg.read("word/numbering.xml")
	if err != nil {
		return "", err
	}
	nums, err := parseNumbering(numData)
	if err != nil {
		return "", fmt.Errorf("parse numbering.xml: %w", err)
	}
	relsData, err := pkg.read("word/_rels/document.xml.rels")
	if err != nil {
		return "", err
	}
	rels, err := parseRels(relsData)
	if err != nil {
		return "", fmt.Errorf("parse document.xml.rels: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("open document.xml: %w", err)
	}
	defer rc.Close()

	inner := xml.NewDecoder(io.LimitReader(rc, pkg.max))
	dec := xml.NewTokenDecoder(&depthReader{dec: inner, max: maxDepth})
	body, err := readBody(dec)
	if err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	r := &renderer{styles: styles, nums: nums, rels: rels}
	r.media = func(relID string) (string, bool) {
		if d.SkipImages {
			return "", false
		}
		return pkg.imageSrc(rels, relID)
	}
	r.elements(body)
	return r.b.String(), nil
}

type pkgReader struct {
	zr  *zip.Reader
	max int64
}

func (p *pkgReader) file(name string) *zip.File {
	for _, f := range p.zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// read returns a part's bytes, or nil without error when it is absent.
func (p *pkgReader) read(name string) ([]byte, error) {
	f := p.file(name)
	if f == nil {
		return nil, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, p.max+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if int64(len(data)) > p.max {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, p.max)
	}
	return data, nil
}

// imageSrc turns an image relationship into an img src: a data URI for
// embedded media, the target itself for linked pictures.
func (p *pkgReader) imageSrc(rels relationships, relID string) (string, bool) {
	t, ok := rels[relID]
	if !ok {
		return "", false
	}
	if t.external {
		return t.target, t.target != ""
	}
	name := partPath(t.target)
	data, err := p.read(name)
	if err != nil || len(data) == 0 {
		return "", false
	}
	return "data:" + imageMIME(name) + ";base64," + base64.StdEncoding.EncodeToString(data), true
}

var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
	".emf":  "image/x-emf",
	".wmf":  "image/x-wmf",
}

func imageMIME(name string) string {
	if t, ok := imageTypes[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return "application/octet-stream"
}
