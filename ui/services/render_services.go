package services

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gometa/adapters/export"
	"gometa/domain/meta"
	"gometa/domain/study"
)

// RenderService turns pooled results into display text for the UI
type RenderService struct{}

// NewRenderService creates a render service
func NewRenderService() *RenderService {
	return &RenderService{}
}

// SummaryText renders the verbatim export block
func (s *RenderService) SummaryText(title string, studies []study.Record, res *meta.PooledResult) string {
	return export.SummaryText(title, studies, res)
}

// SummaryMarkdown renders the markdown summary with the weight table
func (s *RenderService) SummaryMarkdown(title string, studies []study.Record, res *meta.PooledResult) string {
	return export.SummaryMarkdown(title, studies, res)
}

// SummaryHTML renders the markdown summary to an HTML fragment
func (s *RenderService) SummaryHTML(title string, studies []study.Record, res *meta.PooledResult) string {
	md := export.SummaryMarkdown(title, studies, res)
	return string(s.RenderMarkdown(md))
}

// RenderMarkdown converts markdown text to HTML with table support
func (s *RenderService) RenderMarkdown(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
