package components

import (
	"fmt"

	"github.com/gridplan/gridplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// GoalKind says which side of the target passes.
type GoalKind int

const (
	AtLeast GoalKind = iota // capacity
	AtMost                  // emissions, spend
)

// GoalColor picks the bar color for a goal. Met AtMost goals turn to the
// warning color once they use 90% of the allowance.
func GoalColor(kind GoalKind, pct float64, met bool) lipgloss.Color {
	t := theme.Active
	switch {
	case !met:
		return t.Missed
	case kind == AtMost && pct >= 0.9:
		return t.Warn
	default:
		return t.Met
	}
}

// GoalBar renders one goal: label, fill bar of actual/target, and values.
func GoalBar(label string, kind GoalKind, actual, target float64, met bool, labelW, barWidth int) string {
	t := theme.Active

	pct := 1.0
	if target > 0 {
		pct = actual / target
	}
	if pct < 0 {
		pct = 0
	}
	fill := pct
	if fill > 1 {
		fill = 1
	}

	color := GoalColor(kind, pct, met)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	targetStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	op := "≥"
	if kind == AtMost {
		op = "≤"
	}
	mark := "✗"
	if met {
		mark = "✓"
	}

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		spaceStyle.Render(" ") +
		bar.ViewAs(fill) +
		spaceStyle.Render(" ") +
		valueStyle.Render(fmt.Sprintf("%s %.2f", mark, actual)) +
		targetStyle.Render(fmt.Sprintf(" %s %.2f", op, target))
}
