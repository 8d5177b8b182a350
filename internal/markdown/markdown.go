// Package markdown renders source and translated lines side by side.
package markdown

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/valpere/subtran/internal/proportional"
)

var cellReplacer = strings.NewReplacer(`|`, `\|`, "\r\n", " ", "\n", " ")

// PairsTable renders pairs as a two column Markdown table.
func PairsTable(pairs []proportional.LinePair) string {
	var b strings.Builder
	b.WriteString("| Source | Translated |\n")
	b.WriteString("| --- | --- |\n")
	for _, p := range pairs {
		b.WriteString("| ")
		b.WriteString(cell(p.Source))
		b.WriteString(" | ")
		b.WriteString(cell(p.Target))
		b.WriteString(" |\n")
	}
	return b.String()
}

func cell(s string) string {
	return strings.TrimSpace(cellReplacer.Replace(s))
}

func ToHTML(md []byte) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	}
	renderer := html.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.Attributes
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}
