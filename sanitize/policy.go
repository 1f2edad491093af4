package sanitize

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// Policy returns the safety policy applied to decoder output: user-generated
// content rules plus inline data: images, which is how embedded document
// media arrives.
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowDataURIImages()
	return p
}

var defaultPolicy = Policy()

// Safe drops scripts, event handlers and javascript: URLs from src.
// bluemonday policies are safe for concurrent use once built.
func Safe(src string) string {
	return defaultPolicy.Sanitize(src)
}

var mdConverter = htmltomarkdown.NewConverter(
	htmltomarkdown.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Markdown cleans src and converts it to Markdown.
func Markdown(src string) (string, error) {
	md, err := mdConverter.ConvertString(Clean(src))
	if err != nil {
		return "", fmt.Errorf("sanitize: markdown: %w", err)
	}
	return md, nil
}
