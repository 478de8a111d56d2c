package game

import (
	"errors"
	"testing"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/ledger"
	"github.com/gridplan/gridplan/internal/levels"
	"github.com/gridplan/gridplan/internal/model"
	"github.com/gridplan/gridplan/internal/session"
)

type memRecorder struct {
	results []model.Result
	err     error
}

func (m *memRecorder) SaveResult(r model.Result) error {
	m.results = append(m.results, r)
	return m.err
}

func newTestGame(t *testing.T, rec Recorder) *Game {
	t.Helper()
	policy, _ := config.LookupPolicy(config.DefaultPolicyName)
	g := New(Options{Catalog: levels.Default(), Policy: policy, Recorder: rec}, levels.NewProgress())
	if err := g.Begin("Ada"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return g
}

func TestApplyOutsideLevel(t *testing.T) {
	g := newTestGame(t, nil)
	_, err := g.Apply(ledger.Command{Op: ledger.OpUnits, Type: model.Gas, Delta: 1})
	if !errors.Is(err, ErrNoLevel) {
		t.Fatalf("err = %v, want ErrNoLevel", err)
	}
	if err := g.Control(ActionPause); !errors.Is(err, ErrNoLevel) {
		t.Fatalf("Control err = %v, want ErrNoLevel", err)
	}
}

func TestSelectLevelSeedsLedger(t *testing.T) {
	g := newTestGame(t, nil)
	if err := g.SelectLevel(2); !errors.Is(err, session.ErrLevelLocked) {
		t.Fatalf("SelectLevel(2) err = %v, want ErrLevelLocked", err)
	}
	if err := g.SelectLevel(1); err != nil {
		t.Fatalf("SelectLevel(1): %v", err)
	}
	lvl, ok := g.Level()
	if !ok || lvl.Number != 1 {
		t.Fatalf("Level() = %d, %v", lvl.Number, ok)
	}
	snap, err := g.Apply(ledger.Command{Op: ledger.OpUnits, Type: model.Gas, Delta: 3})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if row, _ := snap.Row(model.Gas); row.Units != 3 {
		t.Fatalf("gas units = %d, want 3", row.Units)
	}
}

func TestPausedRejectsChanges(t *testing.T) {
	g := newTestGame(t, nil)
	_ = g.SelectLevel(1)
	if err := g.Control(ActionPause); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := g.Apply(ledger.Command{Op: ledger.OpUnits, Type: model.Gas, Delta: 1}); !errors.Is(err, ErrPaused) {
		t.Fatalf("err = %v, want ErrPaused", err)
	}
	if g.Tick() {
		t.Fatal("paused timer advanced")
	}
	if err := g.Control(ActionResume); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !g.Tick() || g.Session().Timer.Elapsed != 1 {
		t.Fatalf("timer = %+v", g.Session().Timer)
	}
	if err := g.Control("rewind"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
}

func TestRestartRestoresSeed(t *testing.T) {
	g := newTestGame(t, nil)
	_ = g.SelectLevel(1)
	_, _ = g.Apply(ledger.Command{Op: ledger.OpUnits, Type: model.Wind, Delta: 5})
	_, _ = g.Apply(ledger.Command{Op: ledger.OpInvest, ID: "storage", Enabled: true})
	g.Tick()

	if err := g.Control(ActionRestart); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if g.Ledger().Units(model.Wind) != 0 {
		t.Fatal("restart kept unit changes")
	}
	for _, inv := range g.Ledger().Investments() {
		if inv.Enabled {
			t.Fatalf("investment %s still enabled", inv.ID)
		}
	}
	if g.Session().Timer.Elapsed != 0 {
		t.Fatal("restart kept elapsed time")
	}
}

func TestSubmit(t *testing.T) {
	rec := &memRecorder{}
	g := newTestGame(t, rec)
	_ = g.SelectLevel(1)

	if _, err := g.Submit(); !errors.Is(err, ErrGoalsNotMet) {
		t.Fatalf("err = %v, want ErrGoalsNotMet", err)
	}

	// 22 nuclear units lift capacity from 26.5 to 50.7.
	if _, err := g.Apply(ledger.Command{Op: ledger.OpUnits, Type: model.Nuclear, Delta: 22}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	g.Tick()
	g.Tick()

	res, err := g.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Player != "Ada" || res.Level != 1 || res.ElapsedSecs != 2 || res.Policy != config.DefaultPolicyName {
		t.Fatalf("result = %+v", res)
	}
	if len(rec.results) != 1 {
		t.Fatalf("recorded %d results, want 1", len(rec.results))
	}
	if g.Ledger() != nil || g.Session().Screen != session.ScreenLevelSelect {
		t.Fatal("submit did not leave the level")
	}
	if got := g.Unlocked(); len(got) != 2 || got[1] != 2 {
		t.Fatalf("Unlocked = %v, want [1 2]", got)
	}
}

func TestSubmitRecorderFailureStillCompletes(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	g := newTestGame(t, rec)
	_ = g.SelectLevel(1)
	_, _ = g.Apply(ledger.Command{Op: ledger.OpUnits, Type: model.Nuclear, Delta: 22})

	if _, err := g.Submit(); err == nil {
		t.Fatal("expected recording error")
	}
	if !g.Session().Progress.Completed(1) {
		t.Fatal("level not completed after recorder failure")
	}
}

type memHistory map[string][]int

func (h memHistory) CompletedLevels(player string) ([]int, error) {
	return h[player], nil
}

func TestBeginRestoresHistory(t *testing.T) {
	policy, _ := config.LookupPolicy(config.DefaultPolicyName)
	g := New(Options{Policy: policy, History: memHistory{"Ada": {1, 2}}}, levels.NewProgress())

	if err := g.Begin("  Ada "); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if got := g.Unlocked(); len(got) != 3 {
		t.Fatalf("unlocked = %v, want levels 1-3", got)
	}
	if err := g.SelectLevel(3); err != nil {
		t.Fatalf("SelectLevel(3): %v", err)
	}

	other := New(Options{Policy: policy, History: memHistory{}}, levels.NewProgress())
	_ = other.Begin("Grace")
	if err := other.SelectLevel(2); !errors.Is(err, session.ErrLevelLocked) {
		t.Fatalf("SelectLevel(2) for new player = %v, want ErrLevelLocked", err)
	}
}

func TestBeginRejectedDuringLevel(t *testing.T) {
	g := newTestGame(t, nil)
	if err := g.SelectLevel(1); err != nil {
		t.Fatalf("SelectLevel(1): %v", err)
	}
	for range 5 {
		g.Tick()
	}

	if err := g.Begin("Grace"); !errors.Is(err, ErrInLevel) {
		t.Fatalf("Begin while playing = %v, want ErrInLevel", err)
	}
	if err := g.Control(ActionPause); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := g.Begin("Grace"); !errors.Is(err, ErrInLevel) {
		t.Fatalf("Begin while paused = %v, want ErrInLevel", err)
	}

	sess := g.Session()
	if sess.Player != "Ada" || sess.Screen != session.ScreenPaused || sess.Timer.Elapsed != 5 {
		t.Fatalf("session changed by rejected Begin: %+v", sess)
	}

	if err := g.Control(ActionExit); err != nil {
		t.Fatalf("exit: %v", err)
	}
	if err := g.Begin("Grace"); err != nil {
		t.Fatalf("Begin after exit: %v", err)
	}
	if _, err := g.Apply(ledger.Command{Op: ledger.OpUnits, Type: model.Nuclear, Delta: 1}); !errors.Is(err, ErrNoLevel) {
		t.Fatalf("Apply after switching player = %v, want ErrNoLevel", err)
	}
	if g.Tick() {
		t.Fatal("timer advanced outside a level")
	}
	if g.Session().Player != "Grace" {
		t.Fatalf("player = %q, want Grace", g.Session().Player)
	}
}
