package ui

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderMarkdown converts an agent answer to HTML. Raw HTML in the answer is
// dropped, so the result is safe to embed.
func renderMarkdown(answer string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.Safelink | html.NofollowLinks | html.NoreferrerLinks,
	})
	return template.HTML(markdown.ToHTML([]byte(answer), p, renderer))
}
