package docimport

import (
	"mime"
	"strings"
)

// Format identifies an importable document type.
type Format string

const (
	FormatDocx Format = "docx"
	FormatPDF  Format = "pdf"
)

const (
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPDF  = "application/pdf"
)

// SupportedFormats lists the importable formats.
func SupportedFormats() []Format {
	return []Format{FormatDocx, FormatPDF}
}

// Detect picks the format from the file name extension, falling back to the
// declared content type. Parameters such as "; charset=" are ignored.
func Detect(name, contentType string) (Format, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".docx"):
		return FormatDocx, true
	case strings.HasSuffix(lower, ".pdf"):
		return FormatPDF, true
	}

	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	switch mt {
	case MIMEDocx:
		return FormatDocx, true
	case MIMEPDF:
		return FormatPDF, true
	}
	return "", false
}

// DocName derives a document name from a file name by dropping the final
// extension. A name whose only dot is the first character is kept whole.
func DocName(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i <= 0 {
		return filename
	}
	return filename[:i]
}
