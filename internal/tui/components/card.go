// Package components provides reusable TUI widgets for the gridplan screens.
package components

import (
	"github.com/gridplan/gridplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// minCardText is the narrowest text column a card will shrink to.
const minCardText = 10

// LayoutRow splits total into n column widths. The leftmost columns take
// the remainder, so the widths always add up to total.
func LayoutRow(total, n int) []int {
	if n <= 0 {
		return nil
	}
	widths := make([]int, n)
	for i := range widths {
		widths[i] = total / n
		if i < total%n {
			widths[i]++
		}
	}
	return widths
}

// ContentCard draws body in a rounded box of the given outer width, with
// title as a muted first line when non-empty.
func ContentCard(title, body string, outerWidth int) string {
	return renderCard(title, body, outerWidth, theme.Active.Border)
}

// FocusCard is ContentCard drawn with the accent border. The play screen
// uses it for the card that owns the arrow keys.
func FocusCard(title, body string, outerWidth int) string {
	return renderCard(title, body, outerWidth, theme.Active.BorderAccent)
}

func renderCard(title, body string, outerWidth int, border lipgloss.Color) string {
	t := theme.Active
	if title != "" {
		heading := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
		body = heading.Render(title) + "\n" + body
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		BorderBackground(t.Background).
		Background(t.Surface).
		Padding(0, 1).
		Width(max(outerWidth-2, minCardText)).
		Render(body)
}

// CardRow places rendered cards side by side, top aligned.
func CardRow(cards []string) string {
	if len(cards) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

// CardInnerWidth is the text width left inside a card of outerWidth once
// the border and padding are taken off.
func CardInnerWidth(outerWidth int) int {
	return max(outerWidth-4, minCardText)
}
