package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/jask/mdtabs/internal/session"
)

const (
	maxTabLabel = 24
	closeMark   = "×"
	overflowL   = "‹ "
)

// tabHit is the horizontal extent of one drawn tab, in cells.
type tabHit struct {
	index      int
	start, end int
	closeAt    int
}

func tabLabel(name string) string {
	return ansi.Truncate(name, maxTabLabel, "…")
}

// tabWidth is the width of " label × " plus its separator.
func tabWidth(name string) int {
	return ansi.StringWidth(tabLabel(name)) + 4 + 1
}

// layoutTabs draws the tab strip for width cells. Tabs scroll so the active
// tab stays visible.
func layoutTabs(docs []session.Document, active, width int) (string, []tabHit) {
	if len(docs) == 0 || width <= 0 {
		return tabBarStyle.Render(strings.Repeat(" ", max(width, 0))), nil
	}
	first := max(active, 0)
	used := tabWidth(docs[first].Name)
	for first > 0 {
		w := tabWidth(docs[first-1].Name)
		if used+w > width-ansi.StringWidth(overflowL) {
			break
		}
		used += w
		first--
	}

	var b strings.Builder
	var hits []tabHit
	x := 0
	if first > 0 {
		b.WriteString(tabSepStyle.Render(overflowL))
		x += ansi.StringWidth(overflowL)
	}
	for i := first; i < len(docs); i++ {
		label := tabLabel(docs[i].Name)
		w := tabWidth(docs[i].Name)
		if x+w > width && i != first {
			break
		}
		style := inactiveTabStyle
		if i == active {
			style = activeTabStyle
		}
		b.WriteString(style.Render(" "+label+" ") + closeMarkStyle.Inherit(style).Render(closeMark) + style.Render(" "))
		b.WriteString(tabSepStyle.Render("│"))
		labelW := ansi.StringWidth(label)
		hits = append(hits, tabHit{index: i, start: x, end: x + w - 1, closeAt: x + labelW + 2})
		x += w
	}
	line := b.String()
	if x < width {
		line += tabBarStyle.Render(strings.Repeat(" ", width-x))
	}
	return ansi.Truncate(line, width, ""), hits
}

// hitTab maps a click column to a tab index and whether the close mark was hit.
func hitTab(hits []tabHit, col int) (int, bool, bool) {
	for _, h := range hits {
		if col < h.start || col >= h.end {
			continue
		}
		return h.index, col == h.closeAt, true
	}
	return session.NoActive, false, false
}
