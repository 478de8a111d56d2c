package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Plain-output palette, taken from the dark TUI theme.
var (
	colorFrame = lipgloss.Color("#282726")
	colorRule  = lipgloss.Color("#575653")
	colorMuted = lipgloss.Color("#6F6E69")
	colorText  = lipgloss.Color("#FFFCF0")
	colorHead  = lipgloss.Color("#3AA99F")
	colorMet   = lipgloss.Color("#879A39")
	colorMiss  = lipgloss.Color("#D14D41")
	colorBar   = lipgloss.Color("#4385BE")
)

var (
	textStyle  = lipgloss.NewStyle().Foreground(colorText)
	headStyle  = lipgloss.NewStyle().Foreground(colorHead).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	ruleStyle  = lipgloss.NewStyle().Foreground(colorRule)
)

// Separator is a table row that renders as a horizontal rule.
const Separator = "---"

// Table is a boxed text table. The first column is left aligned, the rest
// are right aligned. A row of just Separator draws a rule.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // measured from the cells when nil
}

// RenderTitle draws title centered in a rounded frame.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorFrame).
		Padding(0, 1).
		Width(55).
		Align(lipgloss.Center).
		Render(textStyle.Bold(true).Render(title))
}

// RenderTable draws t, or "" when it has no columns.
func RenderTable(t Table) string {
	cols := len(t.Headers)
	if cols == 0 && len(t.Rows) > 0 {
		cols = len(t.Rows[0])
	}
	if cols == 0 {
		return ""
	}
	tl := tableLayout{widths: t.measure(cols)}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headStyle.Render(t.Title) + "\n")
	}
	tl.rule(&b, "╭", "┬", "╮")
	if len(t.Headers) > 0 {
		tl.row(&b, t.Headers, headStyle, false)
		tl.rule(&b, "├", "┼", "┤")
	}
	for _, r := range t.Rows {
		if isSeparator(r) {
			tl.rule(&b, "├", "┼", "┤")
		} else {
			tl.row(&b, r, textStyle, true)
		}
	}
	tl.rule(&b, "╰", "┴", "╯")
	return b.String()
}

func (t Table) measure(cols int) []int {
	widths := make([]int, cols)
	if t.Widths != nil {
		copy(widths, t.Widths)
		return widths
	}
	grow := func(cells []string) {
		for i := range min(len(cells), cols) {
			widths[i] = max(widths[i], lipgloss.Width(cells[i]))
		}
	}
	grow(t.Headers)
	for _, r := range t.Rows {
		if !isSeparator(r) {
			grow(r)
		}
	}
	return widths
}

func isSeparator(row []string) bool {
	return len(row) == 1 && row[0] == Separator
}

type tableLayout struct {
	widths []int
}

func (tl tableLayout) rule(b *strings.Builder, left, join, right string) {
	segs := make([]string, len(tl.widths))
	for i, w := range tl.widths {
		segs[i] = strings.Repeat("─", w+2)
	}
	b.WriteString(ruleStyle.Render(left+strings.Join(segs, join)+right) + "\n")
}

func (tl tableLayout) row(b *strings.Builder, cells []string, style lipgloss.Style, numeric bool) {
	bar := ruleStyle.Render("│")
	b.WriteString(bar)
	for i, w := range tl.widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		gap := strings.Repeat(" ", max(w-lipgloss.Width(cell), 0))
		if numeric && i > 0 {
			cell = gap + cell
		} else {
			cell += gap
		}
		b.WriteString(style.Render(" "+cell+" ") + bar)
	}
	b.WriteString("\n")
}

// RenderGoal is one goal line: a colored mark, the label, and the actual
// value against its target.
func RenderGoal(label string, met bool, actual, target string) string {
	markColor := colorMiss
	if met {
		markColor = colorMet
	}
	mark := lipgloss.NewStyle().Foreground(markColor).Render(GoalMark(met))
	return fmt.Sprintf("  %s %-10s %s %s", mark, label, textStyle.Render(actual), mutedStyle.Render("/ "+target))
}

// RenderHorizontalBar draws value as a bar of up to width cells, scaled so
// that full equals a full bar.
func RenderHorizontalBar(label string, value, full float64, width int) string {
	filled := 0
	if full > 0 && value > 0 {
		filled = min(int(value/full*float64(width)), width)
	}
	bar := lipgloss.NewStyle().Foreground(colorBar).Render(strings.Repeat("█", filled)) +
		ruleStyle.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("  %-9s %s %s", label, bar, FormatFixed(value, 1))
}
