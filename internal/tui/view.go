package tui

import (
	"fmt"
	"strings"

	"github.com/gridplan/gridplan/internal/cli"
	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/ledger"
	"github.com/gridplan/gridplan/internal/session"
	"github.com/gridplan/gridplan/internal/tui/components"
	"github.com/gridplan/gridplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.nameForm != nil {
		return a.viewStart()
	}
	if a.showHelp {
		return a.viewHelp()
	}

	switch a.game.Session().Screen {
	case session.ScreenPlaying:
		return a.viewMain(a.viewPlay())
	case session.ScreenPaused:
		return a.viewPause()
	default:
		return a.viewMain(a.viewLevels())
	}
}

func (a App) viewTooNarrow() string {
	h := max(a.height, minContentHeight)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  gridplan needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewStart() string {
	t := theme.Active
	logo := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ gridplan")
	sub := lipgloss.NewStyle().Foreground(t.TextMuted).Render("Build a power grid that meets its goals.")

	body := logo + "\n" + sub + "\n\n" + a.nameForm.View()
	if a.flash != "" {
		body += "\n" + lipgloss.NewStyle().Foreground(t.Missed).Render(a.flash)
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// viewMain frames a screen body with the header and status bar and fills
// the remaining height with the theme background.
func (a App) viewMain(body string) string {
	t := theme.Active
	w := a.contentWidth()

	header := a.viewHeader(w)
	status := a.viewStatusBar(w)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(status), minContentHeight)
	body = padHeight(truncateHeight(body, contentH), contentH)

	out := header + "\n" + fillLinesWithBackground(body, w, t.Background) + "\n" + status
	return lipgloss.NewStyle().Background(t.Background).Render(out)
}

func (a App) viewHeader(w int) string {
	t := theme.Active
	sess := a.game.Session()

	left := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Background).Bold(true).Render(" ◈ gridplan")
	if lvl, ok := a.game.Level(); ok {
		left += lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Background).
			Render(fmt.Sprintf("  Level %d · %s", lvl.Number, lvl.Name))
	}
	right := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background).
		Render(fmt.Sprintf("%s · %s ", sess.Player, a.game.Policy().Name))

	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
	line := left + lipgloss.NewStyle().Background(t.Background).Render(strings.Repeat(" ", gap)) + right
	return line + "\n" + lipgloss.NewStyle().Foreground(t.Border).Background(t.Background).Render(strings.Repeat("─", w))
}

func (a App) viewStatusBar(w int) string {
	t := theme.Active
	var hints string
	switch a.game.Session().Screen {
	case session.ScreenPlaying:
		hints = "[←/→]units [tab]focus [space]invest [enter]submit [p]ause [?]help"
	default:
		hints = "[j/k]move [enter]play [?]help [q]uit"
	}

	status := ""
	if a.game.Session().InLevel() {
		status = "⏱ " + cli.FormatClock(a.game.Session().Timer.Elapsed)
	}
	if a.flash != "" {
		color := t.Met
		if a.flashBad {
			color = t.Missed
		}
		flash := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(a.flash)
		if status != "" {
			status = flash + "  " + status
		} else {
			status = flash
		}
	}
	return components.RenderStatusBar(w, hints, status)
}

func (a App) viewLevels() string {
	t := theme.Active
	w := a.contentWidth()
	sess := a.game.Session()

	cursor := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	open := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	locked := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	met := lipgloss.NewStyle().Foreground(t.Met).Background(t.Surface)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	inner := components.CardInnerWidth(w)
	var b strings.Builder
	for i, lvl := range a.game.Catalog().Levels() {
		if i > 0 {
			b.WriteString("\n")
		}
		unlocked := a.game.Catalog().Unlocked(sess.Progress, lvl.Number)

		mark := "  "
		switch {
		case sess.Progress.Completed(lvl.Number):
			mark = met.Render("✓ ")
		case !unlocked:
			mark = locked.Render("🔒")
		}
		label := fmt.Sprintf(" %d. %-28s", lvl.Number, lvl.Name)
		target := a.game.Goals(lvl)
		goals := fmt.Sprintf("capacity ≥ %s  emissions ≤ %s  budget %s",
			cli.FormatFixed(target.CapacityTarget, 1),
			cli.FormatFixed(target.EmissionsTarget, 1),
			cli.FormatMoney(target.Budget))

		style := open
		if !unlocked {
			style = locked
		}
		if i == a.levelCursor {
			style = cursor
		}
		row := mark + style.Render(label) + desc.Render("  "+goals)
		b.WriteString(lipgloss.NewStyle().Width(inner).MaxWidth(inner).Background(t.Surface).Render(row))
		if i == a.levelCursor && lvl.Description != "" {
			b.WriteString("\n")
			b.WriteString(desc.Render("      " + lvl.Description))
		}
	}
	return components.FocusCard("Levels", b.String(), w)
}

func (a App) viewPlay() string {
	t := theme.Active
	w := a.contentWidth()
	l := a.game.Ledger()
	if l == nil {
		return ""
	}
	snap := a.snap
	policy := a.game.Policy()

	// Row 1: energy table and investments
	cols := components.LayoutRow(w, 2)
	leftW := cols[0] + cols[1]/3
	rightW := w - leftW

	var energy strings.Builder
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	energy.WriteString(head.Render(fmt.Sprintf("  %-14s %5s %9s %9s %8s %9s", "Type", "Units", "Capacity", "Emissions", "Per unit", "Spend")))
	for i, r := range snap.Rows {
		line := fmt.Sprintf("%-14s %5d %9s %9s %8s %9s",
			r.Type.Label(), r.Units,
			cli.FormatFixed(r.Capacity, 2), cli.FormatFixed(r.Emissions, 2),
			cli.FormatMoney(r.UnitCost), cli.FormatMoney(r.Spend))
		energy.WriteString("\n")
		if i == a.rowCursor && a.focus == focusEnergy {
			energy.WriteString(sel.Render("▸ " + line))
		} else {
			energy.WriteString(cell.Render("  " + line))
		}
	}

	var invest strings.Builder
	invs := l.Investments()
	if len(invs) == 0 {
		invest.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No investments in this level."))
	}
	for i, inv := range invs {
		if i > 0 {
			invest.WriteString("\n")
		}
		box := "[ ]"
		if inv.Enabled {
			box = "[x]"
		}
		line := fmt.Sprintf("%s %-20s %7s  %s", box, inv.Label,
			cli.FormatMoney(policy.InvestmentCost(inv.Cost)), investmentImpact(policy, inv.Multiplier, inv.Reduction))
		if i == a.investCursor && a.focus == focusInvest {
			invest.WriteString(sel.Render(line))
		} else {
			invest.WriteString(cell.Render(line))
		}
	}

	energyCard := components.ContentCard("Energy mix", energy.String(), leftW)
	investCard := components.ContentCard("Investments", invest.String(), rightW)
	if a.focus == focusEnergy {
		energyCard = components.FocusCard("Energy mix", energy.String(), leftW)
	} else {
		investCard = components.FocusCard("Investments", invest.String(), rightW)
	}
	row1 := components.CardRow([]string{energyCard, investCard})

	// Row 2: goals and spend
	goalsW := cols[0]
	spendW := w - goalsW
	barW := max(components.CardInnerWidth(goalsW)-10-24, 8)
	goals := strings.Join([]string{
		components.GoalBar("Capacity", components.AtLeast, snap.Totals.Capacity, snap.Target.CapacityTarget, snap.Goals.CapacityMet, 9, barW),
		components.GoalBar("Emissions", components.AtMost, snap.Totals.EmissionsAdjusted, snap.Target.EmissionsTarget, snap.Goals.EmissionsMet, 9, barW),
		components.GoalBar("Spend", components.AtMost, snap.Totals.Spend, snap.Target.Budget, snap.Goals.BudgetMet, 9, barW),
	}, "\n")

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	remaining := value
	if snap.Totals.Remaining < 0 {
		remaining = remaining.Foreground(t.Missed)
	}
	var spend strings.Builder
	spend.WriteString(label.Render("Units ") + value.Render(cli.FormatMoney(snap.Totals.UnitSpend)))
	spend.WriteString(label.Render("  Investments ") + value.Render(cli.FormatMoney(snap.Totals.InvestmentSpend)))
	spend.WriteString(label.Render("  Remaining ") + remaining.Render(cli.FormatMoney(snap.Totals.Remaining)))
	spend.WriteString("\n\n")
	segments := make([]components.Segment, 0, len(snap.Rows))
	palette := []lipgloss.Color{t.Capacity, t.Emissions, t.Accent, t.Met, t.Warn, t.AccentBright, t.Missed}
	for _, s := range ledger.Breakdown(snap) {
		segments = append(segments, components.Segment{
			Label: s.Type.Label(),
			Value: s.Spend,
			Color: palette[max(s.Type.CatalogIndex(), 0)%len(palette)],
		})
	}
	spend.WriteString(components.StackedBar(segments, components.CardInnerWidth(spendW)))

	row2 := components.CardRow([]string{
		components.ContentCard("Goals", goals, goalsW),
		components.ContentCard("Spend", spend.String(), spendW),
	})

	// Row 3: per-type capacity and emissions
	pairs := make([]components.BarPair, 0, len(snap.Rows))
	for _, r := range snap.Rows {
		pairs = append(pairs, components.BarPair{Label: r.Type.Label(), A: r.Capacity, B: r.Emissions})
	}
	legend := lipgloss.NewStyle().Foreground(t.Capacity).Background(t.Surface).Render("■ capacity") +
		label.Render("  ") +
		lipgloss.NewStyle().Foreground(t.Emissions).Background(t.Surface).Render("■ emissions")
	chart := legend + "\n" + components.PairedBars(pairs, t.Capacity, t.Emissions, components.CardInnerWidth(w))
	row3 := components.ContentCard("By type", chart, w)

	return row1 + "\n" + row2 + "\n" + row3
}

func investmentImpact(p config.Policy, multiplier, reduction float64) string {
	if p.Mode == config.AdjustSubtract {
		return "−" + cli.FormatFixed(reduction, 2) + " emissions"
	}
	return "+" + cli.FormatPercent(multiplier*100) + " emissions"
}

func (a App) viewPause() string {
	t := theme.Active
	sess := a.game.Session()

	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	item := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	sel := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(title.Render("Paused"))
	b.WriteString(dim.Render("  " + cli.FormatClock(sess.Timer.Elapsed)))
	b.WriteString("\n\n")
	for i, opt := range pauseOptions {
		if i == a.pauseCursor {
			b.WriteString(sel.Render(fmt.Sprintf("▸ %-16s", opt.label)))
		} else {
			b.WriteString(item.Render(fmt.Sprintf("  %-16s", opt.label)))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("[enter] select  [p/esc] resume"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	title := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	key := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	groups := []struct {
		name     string
		bindings []struct{ key, desc string }
	}{
		{"Levels", []struct{ key, desc string }{
			{"j k", "Move cursor"},
			{"enter", "Play level"},
			{"q", "Quit"},
		}},
		{"Playing", []struct{ key, desc string }{
			{"j k", "Move cursor"},
			{"← → / - +", "Remove / add one unit"},
			{"H L", "Remove / add ten units"},
			{"tab", "Switch between mix and investments"},
			{"space", "Toggle investment"},
			{"enter", "Submit plan"},
			{"p esc", "Pause"},
		}},
	}

	var b strings.Builder
	b.WriteString(title.Render("◈ Keyboard Shortcuts"))
	for _, g := range groups {
		b.WriteString("\n\n")
		b.WriteString(section.Render(g.name))
		for _, kb := range g.bindings {
			b.WriteString("\n")
			b.WriteString(key.Render(fmt.Sprintf("  %-12s", kb.key)))
			b.WriteString(desc.Render(kb.desc))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(dim.Render("Press any key to close"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
