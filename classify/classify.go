// CLAUDE:SUMMARY Turns extracted plain text (PDF) into Heading/Text blocks with a single-pass line classifier.
// Package classify recovers coarse structure from unstructured text.
//
// The only structure PDF text keeps is line breaks, so the heuristic is
// deliberately small: blank lines end paragraphs and short all-caps lines
// are headings.
package classify

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hazyhaar/blockdoc/block"
	"github.com/hazyhaar/blockdoc/idgen"
)

// MaxHeadingLen is the exclusive upper bound, in characters, of a line that
// may be classified as a heading.
const MaxHeadingLen = 100

// HeadingLevel is the level given to every detected heading.
const HeadingLevel = 2

type state struct {
	blocks []block.Block
	para   []string
}

// flush emits the pending paragraph, if any.
func (s state) flush(gen idgen.Generator) state {
	text := strings.TrimSpace(strings.Join(s.para, " "))
	s.para = nil
	if text != "" {
		s.blocks = append(s.blocks, block.Text(gen(), text))
	}
	return s
}

func (s state) step(line string, gen idgen.Generator) state {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return s.flush(gen)
	case IsHeading(trimmed):
		s = s.flush(gen)
		s.blocks = append(s.blocks, block.Heading(gen(), trimmed, HeadingLevel))
		return s
	}
	s.para = append(s.para, trimmed)
	return s
}

// Text splits text into lines and classifies them in one forward pass.
// Paragraph lines are joined with single spaces.
func Text(text string, gen idgen.Generator) []block.Block {
	s := state{blocks: []block.Block{}}
	for _, line := range strings.Split(text, "\n") {
		s = s.step(line, gen)
	}
	return s.flush(gen).blocks
}

// IsHeading reports whether a trimmed line reads as a heading: shorter than
// MaxHeadingLen, unchanged by upper-casing and containing at least one
// upper-case letter.
func IsHeading(trimmed string) bool {
	if utf8.RuneCountInString(trimmed) >= MaxHeadingLen {
		return false
	}
	if strings.ToUpper(trimmed) != trimmed || strings.IndexFunc(trimmed, expandsOnUpper) >= 0 {
		return false
	}
	return strings.IndexFunc(trimmed, unicode.IsUpper) >= 0
}

// expandsOnUpper reports lower-case runes with no single-rune upper case,
// such as ß (upper-cased to "SS") and the ﬁ ligature. ToUpper leaves them
// unchanged, yet a line holding one is not all caps.
func expandsOnUpper(r rune) bool {
	return unicode.IsLower(r) && unicode.ToUpper(r) == r
}
