package sanitize

import (
	"strings"
	"testing"
)

var cleanCases = []struct {
	name string
	in   string
	want string
}{
	{
		name: "word paragraph",
		in:   `<?xml version="1.0"?><p class="MsoNormal" style="margin:0">Hello <b>World</b></p>`,
		want: `<p>Hello <strong>World</strong></p>`,
	},
	{
		name: "conditional comment",
		in:   `<!--[if gte mso 9]><xml><w:WordDocument></w:WordDocument></xml><![endif]--><p>Text</p>`,
		want: `<p>Text</p>`,
	},
	{
		name: "plain comment",
		in:   `<p>a<!-- note --></p>`,
		want: `<p>a</p>`,
	},
	{
		name: "office namespaces",
		in:   `<p>x<o:p></o:p><st1:place>Paris</st1:place></p>`,
		want: `<p>xParis</p>`,
	},
	{
		name: "head noise",
		in:   `<meta charset="utf-8"><link rel="stylesheet" href="a.css"><style>p{color:red}</style><p lang="en" dir="ltr" data-font-size="12">Hi</p>`,
		want: `<p>Hi</p>`,
	},
	{
		name: "italic",
		in:   `<i class='x'>it</i>`,
		want: `<em>it</em>`,
	},
	{
		name: "nbsp paragraphs",
		in:   "<p>&nbsp;</p><p>\u00a0</p><p> </p><p>Keep</p>",
		want: `<p>Keep</p>`,
	},
	{
		name: "nested empties",
		in:   `<div><section><span> </span></section></div><p>x</p>`,
		want: `<p>x</p>`,
	},
	{
		name: "nbsp padding",
		in:   "<p>\u00a0 \u00a0</p><span>\u00a0</span><div>\u00a0</div><p>y</p>",
		want: `<p>y</p>`,
	},
	{
		name: "br runs",
		in:   `a<br><br/><br /><br>b`,
		want: `a<br><br>b`,
	},
	{
		name: "blank lines",
		in:   "  <p>a</p>\n\n  \n<p>b</p>\n",
		want: "<p>a</p>\n<p>b</p>",
	},
	{
		name: "mismatched pair kept",
		in:   `<td> </tr>`,
		want: `<td> </tr>`,
	},
}

func TestClean(t *testing.T) {
	for _, tc := range cleanCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in); got != tc.want {
				t.Errorf("Clean(%q)\n got %q\nwant %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClean_Idempotent(t *testing.T) {
	// WHAT: cleaning twice is the same as cleaning once.
	// WHY: paste cleanup may run on already-cleaned content.
	inputs := []string{
		`<p><span><b> </b></span></p><div><p>&nbsp;</p></div>`,
		`<<p></p>b>x</b>`,
		"<ul>\n<li>a</li>\n\n<li> </li></ul>",
		`<p style="x"><i>ok</i></p><br><br><br><br>`,
	}
	for _, tc := range cleanCases {
		inputs = append(inputs, tc.in)
	}
	for _, in := range inputs {
		once := Clean(in)
		if twice := Clean(once); twice != once {
			t.Errorf("not idempotent for %q:\n once %q\ntwice %q", in, once, twice)
		}
	}
}

func TestClean_DeepNesting(t *testing.T) {
	// WHAT: empty wrappers nested far deeper than real documents are removed in one call.
	// WHY: a partially cleaned result would change again on the next Clean.
	for _, depth := range []int{33, 40, 200} {
		in := "<p>keep</p>" + strings.Repeat("<div>", depth) + strings.Repeat("</div>", depth)
		once := Clean(in)
		if once != "<p>keep</p>" {
			t.Errorf("depth %d: got %d bytes %q", depth, len(once), once)
		}
		if twice := Clean(once); twice != once {
			t.Errorf("depth %d: not idempotent: %q", depth, twice)
		}
	}
}

func TestClean_NeverAddsText(t *testing.T) {
	in := `<p class="a">alpha</p><p>&nbsp;</p><span></span><p>beta</p>`
	got := PlainText(Clean(in))
	if got != "alpha\n\nbeta" {
		t.Errorf("got %q", got)
	}
}

func TestPlainText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", `<p>Hello</p><p>World</p>`, "Hello\n\nWorld"},
		{"ordered", `<ol><li>A</li><li>B</li></ol>`, "1. A\n2. B"},
		{"unordered", `<ul><li> x </li><li>y</li></ul>`, "• x\n• y"},
		{"breaks and rules", `a<br>b<hr>c`, "a\nb\n---\nc"},
		{"word paste", `<p class="MsoNormal"><b>Title</b></p><p>&nbsp;</p><p>Body <i>text</i></p>`, "Title\n\nBody text"},
		{"inline only", `<span>one</span> <em>two</em>`, "one two"},
		{"script dropped", `<p>x</p><script>var a = 1;</script>`, "x"},
		{"empty", ``, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PlainText(tc.in); got != tc.want {
				t.Errorf("PlainText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSafe(t *testing.T) {
	in := `<p onclick="steal()">Hi</p><script>alert(1)</script>` +
		`<a href="javascript:alert(1)">bad</a>` +
		`<img src="data:image/png;base64,iVBORw0KGgo=" alt="logo">`
	got := Safe(in)
	for _, bad := range []string{"script", "onclick", "javascript:"} {
		if strings.Contains(got, bad) {
			t.Errorf("Safe output still contains %q: %s", bad, got)
		}
	}
	if !strings.Contains(got, "data:image/png;base64,") {
		t.Errorf("data URI image dropped: %s", got)
	}
	if !strings.Contains(got, "Hi") {
		t.Errorf("text dropped: %s", got)
	}
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(`<h1 class="Title">Report</h1><p><b>bold</b> move</p><ul><li>one</li></ul>`)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Report", "**bold** move", "one"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
