package chat

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderHTML converts a markdown reply to HTML for the chat window. Raw HTML
// in the reply is dropped, unsafe link schemes are not linked, and links
// open in a new tab.
func RenderHTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank | html.Safelink,
	})
	return string(markdown.ToHTML([]byte(md), p, r))
}
