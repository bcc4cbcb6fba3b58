// Package htmltomarkdown implements docqa.Converter using
// html-to-markdown v2 with the commonmark and table plugins.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/docqa"
)

// Ensure Converter implements docqa.Converter at compile time.
var _ docqa.Converter = (*Converter)(nil)

// droppedTags carry no retrievable text.
var droppedTags = []string{"img", "picture", "svg", "button", "form", "iframe"}

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	for _, tag := range droppedTags {
		conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
	}
	return &Converter{conv: conv}
}

// Convert transforms HTML content into trimmed Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", docqa.Errorf(docqa.EPARSE, "empty HTML input")
	}

	md, err := c.conv.ConvertString(html)
	if err != nil {
		return "", docqa.Errorf(docqa.EPARSE, "convert to markdown: %v", err)
	}
	return strings.TrimSpace(md), nil
}
