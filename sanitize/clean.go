// CLAUDE:SUMMARY Strips Word/Google Docs markup noise from pasted or decoded HTML with an ordered, idempotent rule list.
// Package sanitize normalises HTML of unknown provenance (Word, Google Docs,
// decoder output) before it reaches the block converter, and reduces HTML to
// structured plain text.
package sanitize

import (
	"regexp"
	"strings"
)

// ws is whitespace as browsers see it. RE2's \s leaves out U+00A0, which
// Word pastes as padding.
const ws = `[\s\x{00A0}]*`

type rule struct {
	re   *regexp.Regexp
	repl string
}

func r(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl}
}

// rules run in order. Each only removes markup, renames tags or collapses
// whitespace, so the output is never longer in text content than the input.
var rules = []rule{
	// XML declarations and processing instructions.
	r(`(?i)<\?xml[^>]*>`, ""),
	// Conditional comments, content included.
	r(`(?i)<!--\[if[\s\S]*?<!\[endif\]-->`, ""),
	r(`<!--[\s\S]*?-->`, ""),
	// Office namespaces: <o:p>, <w:sdt>, <m:oMath>, <st1:place>.
	r(`(?i)</?(?:o|w|m|st\d+):[^>]*>`, ""),
	r(`(?i)<xml[^>]*>[\s\S]*?</xml>`, ""),
	r(`(?i)<style[^>]*>[\s\S]*?</style>`, ""),
	r(`(?i)<meta[^>]*/?>`, ""),
	r(`(?i)<link[^>]*/?>`, ""),
	r(`(?i)\s+class=(?:"[^"]*"|'[^']*')`, ""),
	r(`(?i)\s+style=(?:"[^"]*"|'[^']*')`, ""),
	r(`(?i)\s+data-[a-z0-9_-]+=(?:"[^"]*"|'[^']*')`, ""),
	r(`(?i)\s+(?:lang|dir)=(?:"[^"]*"|'[^']*')`, ""),
	r(`(?i)<b(\s|>)`, "<strong$1"),
	r(`(?i)</b>`, "</strong>"),
	r(`(?i)<i(\s|>)`, "<em$1"),
	r(`(?i)</i>`, "</em>"),
	// Empty paragraphs, including Word's <p>&nbsp;</p>.
	r(`(?i)<p(?:\s[^>]*)?>`+ws+`(?:&nbsp;|\x{00A0})?`+ws+`</p>`, ""),
	r(`(?i)<span(?:\s[^>]*)?>`+ws+`</span>`, ""),
	r(`(?i)(?:<br\s*/?\s*>){3,}`, "<br><br>"),
}

// emptyPair matches an open tag followed by a close tag with only whitespace
// between them. RE2 has no backreferences, so names are compared in code.
var emptyPair = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9]*)[^>]*>` + ws + `</([A-Za-z][A-Za-z0-9]*)>`)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Clean removes editor noise from html and returns the cleaned markup.
// It never adds text content and Clean(Clean(x)) == Clean(x).
//
// Removing markup can expose more (an outer empty element, a tag split by a
// comment), so the rule list is reapplied until the output stops changing.
// A pass only removes markup, or renames a b/i tag that a removal exposed,
// so the loop ends.
func Clean(html string) string {
	out := html
	for {
		next := cleanPass(out)
		if next == out {
			return out
		}
		out = next
	}
}

func cleanPass(s string) string {
	for _, rl := range rules {
		s = rl.re.ReplaceAllString(s, rl.repl)
	}
	s = removeEmptyPairs(s)
	s = blankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

// removeEmptyPairs drops empty element pairs until none are left, so nested
// empty wrappers go in one pass.
func removeEmptyPairs(s string) string {
	for {
		next := removeEmptyPairsOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func removeEmptyPairsOnce(s string) string {
	matches := emptyPair.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		open, close := s[m[2]:m[3]], s[m[4]:m[5]]
		if !strings.EqualFold(open, close) {
			continue
		}
		b.WriteString(s[last:m[0]])
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
