package render

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/x/ansi"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const minWidth = 20

// Terminal renders markdown as ANSI styled text for a terminal pane.
type Terminal struct {
	md        goldmark.Markdown
	style     *chroma.Style
	formatter chroma.Formatter
	width     int
	logger    *slog.Logger
}

// NewTerminal returns a renderer that wraps at width and highlights code
// with the named chroma style.
func NewTerminal(style string, width int, logger *slog.Logger) *Terminal {
	if style == "" {
		style = DefaultStyle
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Terminal{
		md:        goldmark.New(goldmark.WithExtensions(extension.GFM)),
		style:     styles.Get(style),
		formatter: formatters.TTY256,
		width:     width,
		logger:    logger,
	}
}

// SetWidth changes the wrap width used by later renders.
func (t *Terminal) SetWidth(width int) { t.width = width }

// Width is the effective wrap width.
func (t *Terminal) Width() int { return max(t.width, minWidth) }

// Render converts markdown text to terminal output.
func (t *Terminal) Render(src string) (string, error) {
	source := []byte(src)
	doc := t.md.Parser().Parse(text.NewReader(source))
	w := &termWriter{t: t, src: source}
	out := w.blocks(doc, t.Width(), "\n\n")
	return strings.TrimRight(out, "\n") + "\n", nil
}

// highlight formats one code block. A panic inside chroma is converted to an
// error so that a single bad block cannot take down the whole document.
func (t *Terminal) highlight(lang, code string) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("highlight %q: panic: %v", lang, r)
		}
	}()
	var lexer chroma.Lexer
	if lang != "" {
		lexer = lexers.Get(lang)
	} else {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.formatter.Format(&buf, t.style, it); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

type termWriter struct {
	t   *Terminal
	src []byte
}

func (w *termWriter) blocks(parent ast.Node, width int, sep string) string {
	var parts []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if s := w.block(n, width); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func (w *termWriter) block(node ast.Node, width int) string {
	switch n := node.(type) {
	case *ast.Heading:
		marks := strings.Repeat("#", n.Level)
		return ansi.Wrap(headingStyle(n.Level).Render(marks+" "+w.inlines(n)), width, "")
	case *ast.Paragraph, *ast.TextBlock:
		return ansi.Wrap(w.inlines(n), width, "")
	case *ast.ThematicBreak:
		return ruleStyle.Render(strings.Repeat("─", min(width, 60)))
	case *ast.FencedCodeBlock:
		return w.code(string(n.Language(w.src)), n)
	case *ast.CodeBlock:
		return w.code("", n)
	case *ast.Blockquote:
		return prefixLines(w.blocks(n, width-2, "\n\n"), quoteStyle.Render("│ "), quoteStyle.Render("│ "))
	case *ast.List:
		return w.list(n, width)
	case *ast.HTMLBlock:
		return mutedStyle.Render(strings.TrimRight(w.lines(n), "\n"))
	case *east.Table:
		return w.table(n)
	default:
		if node.HasChildren() {
			return w.blocks(node, width, "\n\n")
		}
		return ""
	}
}

func (w *termWriter) list(n *ast.List, width int) string {
	sep := "\n"
	if !n.IsTight {
		sep = "\n\n"
	}
	num := n.Start
	var items []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		marker := "• "
		if n.IsOrdered() {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		pad := strings.Repeat(" ", ansi.StringWidth(marker))
		body := w.blocks(c, width-len(pad), sep)
		items = append(items, prefixLines(body, markerStyle.Render(marker), pad))
	}
	return strings.Join(items, sep)
}

func (w *termWriter) code(lang string, n ast.Node) string {
	code := strings.TrimRight(w.lines(n), "\n")
	out, err := w.t.highlight(lang, code)
	if err != nil {
		w.t.logger.Warn("code block not highlighted", slog.String("lang", lang), slog.Any("error", err))
		out = blockStyle.Render(code)
	}
	body := prefixLines(out, "  ", "  ")
	if lang != "" {
		return labelStyle.Render("  "+lang) + "\n" + body
	}
	return body
}

func (w *termWriter) table(n *east.Table) string {
	var rows [][]string
	for r := n.FirstChild(); r != nil; r = r.NextSibling() {
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, strings.TrimSpace(w.inlines(c)))
		}
		rows = append(rows, cells)
	}
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], ansi.StringWidth(cell))
		}
	}
	var b strings.Builder
	for ri, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString(ruleStyle.Render(" │ "))
			}
			if ri == 0 {
				cell = strongStyle.Render(cell)
			}
			b.WriteString(cell + strings.Repeat(" ", widths[i]-ansi.StringWidth(cell)))
		}
		b.WriteString("\n")
		if ri == 0 {
			var rule []string
			for _, wd := range widths {
				rule = append(rule, strings.Repeat("─", wd))
			}
			b.WriteString(ruleStyle.Render(strings.Join(rule, "─┼─")) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (w *termWriter) inlines(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b.WriteString(w.inline(n))
	}
	return b.String()
}

func (w *termWriter) inline(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Text:
		s := string(n.Segment.Value(w.src))
		switch {
		case n.HardLineBreak():
			s += "\n"
		case n.SoftLineBreak():
			s += " "
		}
		return s
	case *ast.String:
		return string(n.Value)
	case *ast.CodeSpan:
		return codeStyle.Render(w.plain(n))
	case *ast.Emphasis:
		if n.Level >= 2 {
			return strongStyle.Render(w.inlines(n))
		}
		return emphStyle.Render(w.inlines(n))
	case *east.Strikethrough:
		return strikeStyle.Render(w.inlines(n))
	case *east.TaskCheckBox:
		if n.IsChecked {
			return markerStyle.Render("[x]") + " "
		}
		return markerStyle.Render("[ ]") + " "
	case *ast.Link:
		label := w.inlines(n)
		dest := string(n.Destination)
		if dest == "" || dest == w.plain(n) {
			return linkStyle.Render(label)
		}
		return linkStyle.Render(label) + " " + mutedStyle.Render("("+dest+")")
	case *ast.AutoLink:
		return linkStyle.Render(string(n.URL(w.src)))
	case *ast.Image:
		return mutedStyle.Render("[image: " + w.plain(n) + "]")
	case *ast.RawHTML:
		var b strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(w.src))
		}
		return mutedStyle.Render(b.String())
	default:
		return w.inlines(node)
	}
}

// plain returns the unstyled text under n.
func (w *termWriter) plain(n ast.Node) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(w.src))
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(w.plain(c))
		}
	}
	return b.String()
}

func (w *termWriter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(w.src))
	}
	return b.String()
}

func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if i == 0 {
			lines[i] = first + l
		} else {
			lines[i] = rest + l
		}
	}
	return strings.Join(lines, "\n")
}
