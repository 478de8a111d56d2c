package tui

import (
	"strings"
	"testing"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/game"
	"github.com/gridplan/gridplan/internal/levels"
	"github.com/gridplan/gridplan/internal/model"
	"github.com/gridplan/gridplan/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

type memRecorder struct{ results []model.Result }

func (m *memRecorder) SaveResult(r model.Result) error {
	m.results = append(m.results, r)
	return nil
}

func newTestApp(t *testing.T, rec game.Recorder) App {
	t.Helper()
	policy, _ := config.LookupPolicy(config.DefaultPolicyName)
	g := game.New(game.Options{Catalog: levels.Default(), Policy: policy, Recorder: rec}, levels.NewProgress())
	a := NewApp(g, "Ada")
	return send(t, a, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func send(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	m, _ := a.Update(msg)
	next, ok := m.(App)
	if !ok {
		t.Fatalf("Update returned %T, want App", m)
	}
	return next
}

func keys(t *testing.T, a App, ks ...string) App {
	t.Helper()
	for _, k := range ks {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		a = send(t, a, msg)
	}
	return a
}

func TestPresetPlayerSkipsNameForm(t *testing.T) {
	a := newTestApp(t, nil)
	if a.nameForm != nil {
		t.Fatal("name form shown for a preset player")
	}
	if got := a.game.Session().Screen; got != session.ScreenLevelSelect {
		t.Fatalf("screen = %q, want level select", got)
	}
	if !strings.Contains(a.View(), "Levels") {
		t.Fatal("level select view missing its card")
	}
}

func TestBlankPlayerShowsNameForm(t *testing.T) {
	policy, _ := config.LookupPolicy(config.DefaultPolicyName)
	g := game.New(game.Options{Policy: policy}, levels.NewProgress())
	a := NewApp(g, "   ")
	if a.nameForm == nil {
		t.Fatal("blank player should get the name form")
	}
}

func TestLockedLevelFlash(t *testing.T) {
	a := newTestApp(t, nil)
	a = keys(t, a, "j", "enter")
	if a.game.Session().Screen != session.ScreenLevelSelect {
		t.Fatal("locked level was entered")
	}
	if !a.flashBad || !strings.Contains(a.flash, "locked") {
		t.Fatalf("flash = %q (bad=%v)", a.flash, a.flashBad)
	}
}

func TestUnitKeysUpdateSnapshot(t *testing.T) {
	a := newTestApp(t, nil)
	a = keys(t, a, "enter")
	if a.game.Session().Screen != session.ScreenPlaying {
		t.Fatalf("screen = %q, want playing", a.game.Session().Screen)
	}

	first := a.snap.Rows[0]
	a = keys(t, a, "+", "+", "-")
	if got := a.snap.Rows[0].Units; got != first.Units+1 {
		t.Fatalf("units = %d, want %d", got, first.Units+1)
	}
	if a.snap.Totals.Capacity <= 0 {
		t.Fatal("snapshot not refreshed")
	}

	// Removing more than present clamps at zero.
	a = keys(t, a, "H", "H")
	if got := a.snap.Rows[0].Units; got != 0 {
		t.Fatalf("units after clamp = %d, want 0", got)
	}
}

func TestInvestmentToggle(t *testing.T) {
	a := newTestApp(t, nil)
	a = keys(t, a, "enter", "tab", " ")
	if a.focus != focusInvest {
		t.Fatal("tab did not move focus to investments")
	}
	if !a.game.Ledger().Investments()[0].Enabled {
		t.Fatal("space did not enable the first investment")
	}
	if a.snap.Totals.InvestmentSpend <= 0 {
		t.Fatalf("investment spend = %v", a.snap.Totals.InvestmentSpend)
	}
}

func TestPauseBlocksEdits(t *testing.T) {
	a := newTestApp(t, nil)
	a = keys(t, a, "enter", "p")
	if a.game.Session().Screen != session.ScreenPaused {
		t.Fatal("p did not pause")
	}
	a = send(t, a, tickMsg{})
	if a.game.Session().Timer.Elapsed != 0 {
		t.Fatal("timer advanced while paused")
	}
	if !strings.Contains(a.View(), "Paused") {
		t.Fatal("pause overlay not rendered")
	}

	a = keys(t, a, "esc")
	if a.game.Session().Screen != session.ScreenPlaying {
		t.Fatal("esc did not resume")
	}
	a = send(t, a, tickMsg{})
	if a.game.Session().Timer.Elapsed != 1 {
		t.Fatalf("elapsed = %d, want 1", a.game.Session().Timer.Elapsed)
	}
}

func TestPauseMenuExit(t *testing.T) {
	a := newTestApp(t, nil)
	a = keys(t, a, "enter", "p", "j", "j", "j", "enter")
	if a.game.Session().Screen != session.ScreenLevelSelect {
		t.Fatalf("screen = %q, want level select", a.game.Session().Screen)
	}
	if a.game.Session().Timer.Elapsed != 0 {
		t.Fatal("exit should zero the timer")
	}
}

func TestSubmitCompletesLevel(t *testing.T) {
	rec := &memRecorder{}
	a := newTestApp(t, rec)
	a = keys(t, a, "enter")

	a = keys(t, a, "enter")
	if !a.flashBad || a.game.Session().Screen != session.ScreenPlaying {
		t.Fatal("submitting unmet goals should flash and stay in the level")
	}

	nuclear := -1
	for i, r := range a.game.Ledger().Rows() {
		if r.Type == model.Nuclear {
			nuclear = i
		}
	}
	if nuclear < 0 {
		t.Fatal("level 1 has no nuclear row")
	}
	for range nuclear {
		a = keys(t, a, "j")
	}
	a = keys(t, a, "L", "L", "+", "+")
	if !a.snap.Goals.AllMet() {
		t.Fatalf("goals = %+v, totals = %+v", a.snap.Goals, a.snap.Totals)
	}

	a = keys(t, a, "enter")
	if a.flashBad {
		t.Fatalf("flash = %q", a.flash)
	}
	if a.game.Session().Screen != session.ScreenLevelSelect {
		t.Fatal("submit should return to level select")
	}
	if len(rec.results) != 1 || rec.results[0].Player != "Ada" {
		t.Fatalf("recorded = %+v", rec.results)
	}
	if a.levelCursor != 1 {
		t.Fatalf("level cursor = %d, want next level", a.levelCursor)
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := newTestApp(t, nil)
	a = send(t, a, tea.WindowSizeMsg{Width: 40, Height: 10})
	if !strings.Contains(a.View(), "too narrow") {
		t.Fatal("narrow terminal message missing")
	}
}

func TestHelpToggle(t *testing.T) {
	a := newTestApp(t, nil)
	a = keys(t, a, "?")
	if !strings.Contains(a.View(), "Keyboard Shortcuts") {
		t.Fatal("help not shown")
	}
	a = keys(t, a, "x")
	if a.showHelp {
		t.Fatal("any key should close help")
	}
}
