// CLAUDE:SUMMARY Scores PDF text extraction quality to flag scanned documents that need OCR.
package pdftext

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Quality captures metrics about extracted text.
type Quality struct {
	PageCount       int     `json:"page_count"`
	CharsPerPage    float64 `json:"chars_per_page"`
	PrintableRatio  float64 `json:"printable_ratio"`
	WordlikeRatio   float64 `json:"wordlike_ratio"`
	HasImageStreams bool    `json:"has_image_streams"`
	VisualRefCount  int     `json:"visual_ref_count"`
}

// NeedsOCR reports whether the text layer is missing or unreadable: few
// characters on pages that carry images, or mostly unprintable output
// (CID fonts without a ToUnicode map).
func (q Quality) NeedsOCR() bool {
	return (q.CharsPerPage < 50 && q.HasImageStreams) || q.PrintableRatio < 0.85
}

// HasVisualGap reports text that points at figures or tables while the
// file holds images the import drops.
func (q Quality) HasVisualGap() bool {
	return q.VisualRefCount > 0 && q.HasImageStreams
}

// Assess scores decoded pages. hasImages comes from HasImages.
func Assess(pages []Page, hasImages bool) Quality {
	var all strings.Builder
	chars := 0
	for _, p := range pages {
		for _, item := range p.Items {
			chars += utf8.RuneCountInString(item)
			all.WriteString(item)
			all.WriteByte('\n')
		}
	}
	text := all.String()
	q := Quality{
		PageCount:       len(pages),
		PrintableRatio:  printableRatio(text),
		WordlikeRatio:   wordlikeRatio(text),
		HasImageStreams: hasImages,
		VisualRefCount:  countVisualRefs(text),
	}
	if len(pages) > 0 {
		q.CharsPerPage = float64(chars) / float64(len(pages))
	}
	return q
}

func printableRatio(text string) float64 {
	total, printable := 0, 0
	for _, r := range text {
		total++
		if garbage(r) {
			continue
		}
		if unicode.IsPrint(r) || r == '\n' || r == '\r' || r == '\t' {
			printable++
		}
	}
	if total == 0 {
		return 1.0
	}
	return float64(printable) / float64(total)
}

// garbage matches private-use code points, U+FFFD and control characters
// other than whitespace.
func garbage(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF, r == utf8.RuneError:
		return true
	case r < 0x20:
		return r != '\n' && r != '\r' && r != '\t'
	}
	return false
}

// wordlikeRatio is the share of tokens 2 to 15 characters long.
func wordlikeRatio(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	n := 0
	for _, f := range fields {
		if l := utf8.RuneCountInString(f); l >= 2 && l <= 15 {
			n++
		}
	}
	return float64(n) / float64(len(fields))
}

var visualRefPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(voir|cf\.?|see|refer\s+to)\s+(la\s+)?(figure|fig\.?|tableau|table|sch[eé]ma|image|illustration|graphique|graph|diagramme|diagram)\s*\d`),
	regexp.MustCompile(`(?i)(figure|fig\.?|tableau|table)\s+\d+`),
}

func countVisualRefs(text string) int {
	n := 0
	for _, re := range visualRefPatterns {
		n += len(re.FindAllString(text, -1))
	}
	return n
}
