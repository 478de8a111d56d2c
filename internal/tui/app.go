// Package tui provides the interactive Bubble Tea game for gridplan.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gridplan/gridplan/internal/cli"
	"github.com/gridplan/gridplan/internal/game"
	"github.com/gridplan/gridplan/internal/ledger"
	"github.com/gridplan/gridplan/internal/model"
	"github.com/gridplan/gridplan/internal/session"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// focusArea is the play-screen card receiving cursor keys.
type focusArea int

const (
	focusEnergy focusArea = iota
	focusInvest
)

// pauseOptions are the pause menu entries, in display order.
var pauseOptions = []struct {
	label  string
	action string
}{
	{"Resume", game.ActionResume},
	{"Reset timer", game.ActionReset},
	{"Restart level", game.ActionRestart},
	{"Exit to levels", game.ActionExit},
}

// App is the root Bubble Tea model.
type App struct {
	game *game.Game
	snap model.Snapshot

	// UI state
	width    int
	height   int
	showHelp bool
	flash    string
	flashBad bool

	// Start screen (huh form)
	nameForm *huh.Form
	name     *string

	// Level select
	levelCursor int

	// Play screen
	focus        focusArea
	rowCursor    int
	investCursor int

	// Pause overlay
	pauseCursor int
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates the TUI around g. A non-empty player name skips the
// name form.
func NewApp(g *game.Game, player string) App {
	a := App{game: g, name: new(string)}
	if player != "" && g.Begin(player) == nil {
		return a
	}
	a.nameForm = newNameForm(a.name)
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd()}
	if a.nameForm != nil {
		cmds = append(cmds, a.nameForm.Init())
	}
	return tea.Batch(cmds...)
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.nameForm != nil {
			a.nameForm = a.nameForm.WithWidth(min(msg.Width, 60))
		}
		return a, nil

	case tickMsg:
		a.game.Tick()
		return a, tickCmd()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.nameForm != nil {
			return a.updateNameForm(msg)
		}

		key := msg.String()
		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		switch a.game.Session().Screen {
		case session.ScreenLevelSelect:
			return a.updateLevelSelect(key)
		case session.ScreenPlaying:
			return a.updatePlaying(key)
		case session.ScreenPaused:
			return a.updatePaused(key)
		}
		return a, nil
	}

	// Forward unhandled messages to the name form (cursor blinks, etc.)
	if a.nameForm != nil {
		return a.updateNameForm(msg)
	}
	return a, nil
}

func (a App) updateNameForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.nameForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.nameForm = f
	}

	switch a.nameForm.State {
	case huh.StateCompleted:
		if err := a.game.Begin(*a.name); err != nil {
			a.setFlash(err.Error(), true)
			a.nameForm = newNameForm(a.name)
			return a, a.nameForm.Init()
		}
		a.nameForm = nil
		a.setFlash(fmt.Sprintf("Welcome, %s", a.game.Session().Player), false)
		return a, nil
	case huh.StateAborted:
		return a, tea.Quit
	}
	return a, cmd
}

func (a App) updateLevelSelect(key string) (tea.Model, tea.Cmd) {
	levels := a.game.Catalog().Levels()
	switch key {
	case "q", "esc":
		return a, tea.Quit
	case "j", "down":
		if a.levelCursor < len(levels)-1 {
			a.levelCursor++
		}
	case "k", "up":
		if a.levelCursor > 0 {
			a.levelCursor--
		}
	case "enter", " ":
		if len(levels) == 0 {
			return a, nil
		}
		n := levels[a.levelCursor].Number
		if err := a.game.SelectLevel(n); err != nil {
			if errors.Is(err, session.ErrLevelLocked) {
				a.setFlash(fmt.Sprintf("Level %d is locked. Complete level %d first.", n, n-1), true)
			} else {
				a.setFlash(err.Error(), true)
			}
			return a, nil
		}
		a.focus = focusEnergy
		a.rowCursor, a.investCursor = 0, 0
		a.flash = ""
		a.recompute()
	}
	return a, nil
}

func (a App) updatePlaying(key string) (tea.Model, tea.Cmd) {
	l := a.game.Ledger()
	if l == nil {
		return a, nil
	}
	rows := l.Rows()
	invs := l.Investments()

	switch key {
	case "p", "esc", "q":
		_ = a.game.Control(game.ActionPause)
		a.pauseCursor = 0
		return a, nil
	case "tab", "shift+tab":
		if a.focus == focusEnergy && len(invs) > 0 {
			a.focus = focusInvest
		} else {
			a.focus = focusEnergy
		}
		return a, nil
	case "enter":
		return a.submit()
	}

	if a.focus == focusEnergy {
		if len(rows) == 0 {
			return a, nil
		}
		switch key {
		case "j", "down":
			if a.rowCursor < len(rows)-1 {
				a.rowCursor++
			}
		case "k", "up":
			if a.rowCursor > 0 {
				a.rowCursor--
			}
		case "+", "=", "l", "right":
			a.apply(ledger.Command{Op: ledger.OpUnits, Type: rows[a.rowCursor].Type, Delta: 1})
		case "-", "_", "h", "left":
			a.apply(ledger.Command{Op: ledger.OpUnits, Type: rows[a.rowCursor].Type, Delta: -1})
		case "L", "shift+right":
			a.apply(ledger.Command{Op: ledger.OpUnits, Type: rows[a.rowCursor].Type, Delta: 10})
		case "H", "shift+left":
			a.apply(ledger.Command{Op: ledger.OpUnits, Type: rows[a.rowCursor].Type, Delta: -10})
		}
		return a, nil
	}

	switch key {
	case "j", "down":
		if a.investCursor < len(invs)-1 {
			a.investCursor++
		}
	case "k", "up":
		if a.investCursor > 0 {
			a.investCursor--
		}
	case " ", "x":
		inv := invs[a.investCursor]
		a.apply(ledger.Command{Op: ledger.OpInvest, ID: inv.ID, Enabled: !inv.Enabled})
	}
	return a, nil
}

func (a App) updatePaused(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "p", "esc":
		_ = a.game.Control(game.ActionResume)
	case "j", "down":
		if a.pauseCursor < len(pauseOptions)-1 {
			a.pauseCursor++
		}
	case "k", "up":
		if a.pauseCursor > 0 {
			a.pauseCursor--
		}
	case "enter", " ":
		opt := pauseOptions[a.pauseCursor]
		if err := a.game.Control(opt.action); err != nil {
			a.setFlash(err.Error(), true)
			return a, nil
		}
		if opt.action == game.ActionExit {
			a.flash = ""
		}
		a.recompute()
	}
	return a, nil
}

func (a App) submit() (tea.Model, tea.Cmd) {
	lvl, _ := a.game.Level()
	res, err := a.game.Submit()
	switch {
	case errors.Is(err, game.ErrGoalsNotMet):
		a.setFlash("Not every goal is met yet.", true)
		return a, nil
	case err != nil && res.Level == 0:
		a.setFlash(err.Error(), true)
		return a, nil
	case err != nil:
		a.setFlash(fmt.Sprintf("Level %d complete, but the result was not saved: %v", lvl.Number, err), true)
	default:
		a.setFlash(fmt.Sprintf("Level %d complete in %s. Spent %s.",
			lvl.Number, cli.FormatClock(res.ElapsedSecs), cli.FormatMoney(res.Spend)), false)
	}
	a.moveLevelCursorTo(lvl.Number + 1)
	return a, nil
}

// apply runs a ledger command and refreshes the snapshot before any render.
func (a *App) apply(cmd ledger.Command) {
	snap, err := a.game.Apply(cmd)
	if err != nil {
		a.setFlash(err.Error(), true)
		return
	}
	a.snap = snap
}

func (a *App) recompute() {
	if snap, ok := a.game.Snapshot(); ok {
		a.snap = snap
	}
}

func (a *App) setFlash(msg string, bad bool) {
	a.flash = msg
	a.flashBad = bad
}

func (a *App) moveLevelCursorTo(n int) {
	for i, lvl := range a.game.Catalog().Levels() {
		if lvl.Number == n {
			a.levelCursor = i
			return
		}
	}
}

func newNameForm(name *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Who is planning the grid today?").
				Description("Your name is stored with your results.").
				Placeholder("Player name").
				CharLimit(40).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return session.ErrEmptyName
					}
					return nil
				}).
				Value(name),
		),
	).WithShowHelp(false)
}
