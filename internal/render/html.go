package render

import (
	"bytes"
	"fmt"
	"html/template"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// HTML renders markdown to an HTML fragment with class-based highlighting.
type HTML struct {
	md    goldmark.Markdown
	style string
}

// NewHTML returns an HTML renderer highlighting code with the named style.
func NewHTML(style string) *HTML {
	if style == "" {
		style = DefaultStyle
	}
	return &HTML{md: newMarkdownRenderer(style), style: style}
}

// newMarkdownRenderer creates a configured goldmark renderer
func newMarkdownRenderer(style string) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// Render converts markdown to an HTML fragment.
func (h *HTML) Render(text string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { max-width: 50rem; margin: 2rem auto; padding: 0 1rem; font-family: system-ui, sans-serif; line-height: 1.5; }
pre { padding: 0.75rem; overflow-x: auto; }
{{.CSS}}
</style>
</head>
<body>
<article class="markdown-body">
{{.Body}}
</article>
</body>
</html>
`))

// Page renders text as a complete HTML document with the chroma stylesheet
// inlined.
func (h *HTML) Page(title, text string) (string, error) {
	body, err := h.Render(text)
	if err != nil {
		return "", err
	}
	var css bytes.Buffer
	if err := chromahtml.New(chromahtml.WithClasses(true)).WriteCSS(&css, styles.Get(h.style)); err != nil {
		return "", fmt.Errorf("write css: %w", err)
	}
	var out bytes.Buffer
	err = pageTemplate.Execute(&out, struct {
		Title string
		CSS   template.CSS
		Body  template.HTML
	}{title, template.CSS(css.String()), template.HTML(body)})
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return out.String(), nil
}
