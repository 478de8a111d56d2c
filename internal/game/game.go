// Package game binds the session state to the ledger of the level being
// played. It is the single host-side controller used by the TUI and the
// server; it is not safe for concurrent use.
package game

import (
	"errors"
	"fmt"

	"github.com/gridplan/gridplan/internal/config"
	"github.com/gridplan/gridplan/internal/ledger"
	"github.com/gridplan/gridplan/internal/levels"
	"github.com/gridplan/gridplan/internal/model"
	"github.com/gridplan/gridplan/internal/session"
)

var (
	// ErrNoLevel is returned for ledger or timer actions outside a level.
	ErrNoLevel = errors.New("no level in progress")
	// ErrPaused is returned for ledger changes while the level is paused.
	ErrPaused = errors.New("level is paused")
	// ErrGoalsNotMet is returned by Submit while any goal is unmet.
	ErrGoalsNotMet = errors.New("not every goal is met")
	// ErrUnknownAction is returned by Control for an unrecognized action.
	ErrUnknownAction = errors.New("unknown timer action")
	// ErrInLevel is returned by Begin while a level is being played or is
	// paused. Exit the level first.
	ErrInLevel = errors.New("level in progress")
)

// Timer actions accepted by Control.
const (
	ActionPause   = "pause"
	ActionResume  = "resume"
	ActionReset   = "reset"
	ActionRestart = "restart"
	ActionExit    = "exit"
)

// Recorder persists finished attempts.
type Recorder interface {
	SaveResult(model.Result) error
}

// Options configures a Game.
type Options struct {
	Catalog  *levels.Catalog
	Policy   config.Policy
	Budget   *float64 // overrides every level's budget when set
	Recorder Recorder // optional
	History  History  // optional; restores progress in Begin
}

// History looks up the levels a player has already completed.
type History interface {
	CompletedLevels(player string) ([]int, error)
}

// Game is one player's run through the level catalog.
type Game struct {
	opts   Options
	sess   session.Session
	level  levels.Level
	ledger *ledger.Ledger
}

// New returns a game on the start screen.
func New(opts Options, progress levels.Progress) *Game {
	if opts.Catalog == nil {
		opts.Catalog = levels.Default()
	}
	return &Game{opts: opts, sess: session.New(progress)}
}

// Session returns the current session value.
func (g *Game) Session() session.Session { return g.sess }

// Catalog returns the level catalog.
func (g *Game) Catalog() *levels.Catalog { return g.opts.Catalog }

// Policy returns the adjustment policy ledgers are built with.
func (g *Game) Policy() config.Policy { return g.opts.Policy }

// Level returns the level being played.
func (g *Game) Level() (levels.Level, bool) {
	return g.level, g.ledger != nil
}

// Goals returns lvl's goals with the budget override applied.
func (g *Game) Goals(lvl levels.Level) model.Goals {
	goals := lvl.ModelGoals()
	if g.opts.Budget != nil {
		goals.Budget = *g.opts.Budget
	}
	return goals
}

// Ledger returns the active ledger, or nil outside a level.
func (g *Game) Ledger() *ledger.Ledger { return g.ledger }

// Snapshot recomputes the active ledger.
func (g *Game) Snapshot() (model.Snapshot, bool) {
	if g.ledger == nil {
		return model.Snapshot{}, false
	}
	return g.ledger.Recompute(), true
}

// Begin records the player name and, with a History, restores the
// player's completed levels. The player cannot change during a level.
func (g *Game) Begin(name string) error {
	if g.sess.InLevel() || g.ledger != nil {
		return ErrInLevel
	}
	next, err := g.sess.Begin(name)
	if err != nil {
		return err
	}
	if g.opts.History != nil {
		done, err := g.opts.History.CompletedLevels(next.Player)
		if err != nil {
			return fmt.Errorf("loading progress for %s: %w", next.Player, err)
		}
		next.Progress = levels.NewProgress(done...)
	}
	g.sess = next
	return nil
}

// SelectLevel starts level n with a freshly seeded ledger.
func (g *Game) SelectLevel(n int) error {
	next, err := g.sess.SelectLevel(g.opts.Catalog, n)
	if err != nil {
		return err
	}
	lvl, _ := g.opts.Catalog.Level(n)
	g.sess = next
	g.level = lvl
	g.ledger = ledger.FromLevel(lvl, g.opts.Policy, g.opts.Budget)
	return nil
}

// Apply runs a ledger command and returns the recomputed snapshot.
func (g *Game) Apply(cmd ledger.Command) (model.Snapshot, error) {
	if err := g.playable(); err != nil {
		return model.Snapshot{}, err
	}
	if err := g.ledger.Apply(cmd); err != nil {
		return model.Snapshot{}, err
	}
	return g.ledger.Recompute(), nil
}

// Control applies a timer action from the pause menu.
func (g *Game) Control(action string) error {
	if g.ledger == nil {
		return ErrNoLevel
	}
	switch action {
	case ActionPause:
		g.sess = g.sess.Pause()
	case ActionResume:
		g.sess = g.sess.Resume()
	case ActionReset:
		g.sess = g.sess.Reset()
	case ActionRestart:
		g.ledger.Reset()
		g.sess = g.sess.Reset()
	case ActionExit:
		g.leave(g.sess.Exit())
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	return nil
}

// Tick advances the level timer and reports whether it moved.
func (g *Game) Tick() bool {
	before := g.sess.Timer.Elapsed
	g.sess = g.sess.Tick()
	return g.sess.Timer.Elapsed != before
}

// Submit finishes the level when every goal is met. The level is completed
// even if recording the result fails; the recording error is returned.
func (g *Game) Submit() (model.Result, error) {
	if err := g.playable(); err != nil {
		return model.Result{}, err
	}
	snap := g.ledger.Recompute()
	if !snap.Goals.AllMet() {
		return model.Result{}, ErrGoalsNotMet
	}

	res := model.NewResult(g.sess.Player, g.level.Number, g.level.Fingerprint(),
		g.opts.Policy.Name, g.sess.Timer.Elapsed, snap)
	g.leave(g.sess.Complete())

	if g.opts.Recorder != nil {
		if err := g.opts.Recorder.SaveResult(res); err != nil {
			return res, fmt.Errorf("recording result: %w", err)
		}
	}
	return res, nil
}

// Unlocked returns the numbers of every level currently selectable.
func (g *Game) Unlocked() []int {
	var out []int
	for _, lvl := range g.opts.Catalog.Levels() {
		if g.opts.Catalog.Unlocked(g.sess.Progress, lvl.Number) {
			out = append(out, lvl.Number)
		}
	}
	return out
}

func (g *Game) playable() error {
	if g.ledger == nil {
		return ErrNoLevel
	}
	if g.sess.Screen == session.ScreenPaused {
		return ErrPaused
	}
	return nil
}

func (g *Game) leave(next session.Session) {
	g.sess = next
	g.ledger = nil
	g.level = levels.Level{}
}
