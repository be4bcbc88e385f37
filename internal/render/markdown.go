// Package render provides the rendering backends and builds the markup
// registry from whichever of them are available.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/meow/internal/frontmatter"
)

// MarkdownOptions tunes the goldmark pipeline.
type MarkdownOptions struct {
	HighlightStyle string
	HardWraps      bool
	UnsafeHTML     bool
	HeadingIDs     bool
}

// Markdown renders GitHub-flavoured markdown with highlighted code fences.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown builds a markdown backend.
func NewMarkdown(opts MarkdownOptions) *Markdown {
	style := opts.HighlightStyle
	if style == "" {
		style = "github"
	}

	var parserOpts []parser.Option
	if opts.HeadingIDs {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
	}

	var rendererOpts []goldmark.Option
	var htmlOpts []renderer.Option
	if opts.HardWraps {
		htmlOpts = append(htmlOpts, html.WithHardWraps())
	}
	if opts.UnsafeHTML {
		htmlOpts = append(htmlOpts, html.WithUnsafe())
	}
	if len(htmlOpts) > 0 {
		rendererOpts = append(rendererOpts, goldmark.WithRendererOptions(htmlOpts...))
	}

	md := goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
			),
		),
		goldmark.WithParserOptions(parserOpts...),
	}, rendererOpts...)...)

	return &Markdown{md: md}
}

// Render converts src to HTML, dropping any YAML front matter first.
func (m *Markdown) Render(src []byte) (string, error) {
	_, body := frontmatter.Split(src)

	var buf bytes.Buffer
	if err := m.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("markdown: %w", err)
	}
	return buf.String(), nil
}
