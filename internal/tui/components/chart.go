package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/gridplan/gridplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// BarPair is one category of a paired bar chart.
type BarPair struct {
	Label string
	A, B  float64
}

// PairedBars renders two horizontal bars per category, each series scaled
// to its own maximum. Fractional cells use eighth blocks.
func PairedBars(pairs []BarPair, colorA, colorB lipgloss.Color, width int) string {
	if len(pairs) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	for _, p := range pairs {
		labelW = max(labelW, lipgloss.Width(p.Label))
	}
	valueW := 7
	barW := width - labelW - valueW - 3
	if barW < 5 {
		barW = 5
	}

	var maxA, maxB float64
	for _, p := range pairs {
		maxA = math.Max(maxA, p.A)
		maxB = math.Max(maxB, p.B)
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	aStyle := lipgloss.NewStyle().Foreground(colorA).Background(t.Surface)
	bStyle := lipgloss.NewStyle().Foreground(colorB).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, p.Label)))
		b.WriteString(space.Render(" "))
		b.WriteString(aStyle.Render(hbar(p.A, maxA, barW)))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %*.1f", valueW-1, p.A)))
		b.WriteString("\n")
		b.WriteString(space.Render(strings.Repeat(" ", labelW+1)))
		b.WriteString(bStyle.Render(hbar(p.B, maxB, barW)))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %*.2f", valueW-1, p.B)))
	}
	return b.String()
}

// hbar returns a bar exactly width cells wide.
func hbar(v, peak float64, width int) string {
	if peak <= 0 || v <= 0 {
		return strings.Repeat(" ", width)
	}
	eighths := int(math.Round(v / peak * float64(width*8)))
	if eighths > width*8 {
		eighths = width * 8
	}
	full := eighths / 8
	rem := eighths % 8

	partial := []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉'}
	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	used := full
	if rem > 0 {
		b.WriteRune(partial[rem])
		used++
	}
	b.WriteString(strings.Repeat(" ", width-used))
	return b.String()
}

// Segment is one slice of a StackedBar.
type Segment struct {
	Label string
	Value float64
	Color lipgloss.Color
}

// StackedBar renders segments proportionally in a single row, followed by
// a legend line. Segments too small for a cell are dropped from the bar.
func StackedBar(segments []Segment, width int) string {
	t := theme.Active
	total := 0.0
	for _, s := range segments {
		if s.Value > 0 {
			total += s.Value
		}
	}
	empty := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	if total <= 0 {
		return empty.Render(strings.Repeat("░", width))
	}

	var bar, legend strings.Builder
	used := 0
	for _, s := range segments {
		if s.Value <= 0 {
			continue
		}
		cells := int(math.Round(s.Value / total * float64(width)))
		if used+cells > width {
			cells = width - used
		}
		style := lipgloss.NewStyle().Foreground(s.Color).Background(t.Surface)
		bar.WriteString(style.Render(strings.Repeat("█", cells)))
		used += cells

		if legend.Len() > 0 {
			legend.WriteString(empty.Render("  "))
		}
		legend.WriteString(style.Render("■ "))
		legend.WriteString(empty.Render(fmt.Sprintf("%s %.0f%%", s.Label, s.Value/total*100)))
	}
	if used < width {
		bar.WriteString(empty.Render(strings.Repeat("░", width-used)))
	}
	return bar.String() + "\n" + legend.String()
}
