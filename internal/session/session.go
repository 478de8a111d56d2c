// Package session holds the player's session state as an explicit value:
// who is playing, which screen they are on, the level timer, and progress.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gridplan/gridplan/internal/clock"
	"github.com/gridplan/gridplan/internal/levels"
)

// Screen identifies where the player is in the game flow.
type Screen string

const (
	ScreenStart       Screen = "start"
	ScreenLevelSelect Screen = "level-select"
	ScreenPlaying     Screen = "playing"
	ScreenPaused      Screen = "paused"
)

var (
	// ErrEmptyName is returned by Begin for a blank player name.
	ErrEmptyName = errors.New("player name is empty")
	// ErrLevelLocked is returned by SelectLevel for a level not yet unlocked.
	ErrLevelLocked = errors.New("level is locked")
	// ErrUnknownLevel is returned by SelectLevel for a level not in the catalog.
	ErrUnknownLevel = errors.New("unknown level")
)

// Session is the state of one player's visit. Transitions return a new
// value; the receiver is never modified.
type Session struct {
	Player   string
	Screen   Screen
	Level    int
	Timer    clock.Timer
	Progress levels.Progress
}

// New returns a session on the start screen with the given progress.
func New(progress levels.Progress) Session {
	return Session{Screen: ScreenStart, Progress: progress}
}

// Begin records the player's name and moves to level selection.
func (s Session) Begin(name string) (Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, ErrEmptyName
	}
	s.Player = name
	s.Screen = ScreenLevelSelect
	return s, nil
}

// SelectLevel starts level n with a fresh running timer.
func (s Session) SelectLevel(c *levels.Catalog, n int) (Session, error) {
	if _, ok := c.Level(n); !ok {
		return s, fmt.Errorf("%w: %d", ErrUnknownLevel, n)
	}
	if !c.Unlocked(s.Progress, n) {
		return s, fmt.Errorf("%w: %d", ErrLevelLocked, n)
	}
	s.Level = n
	s.Screen = ScreenPlaying
	s.Timer = clock.Timer{}.Start()
	return s, nil
}

// Pause freezes the timer and shows the pause screen.
func (s Session) Pause() Session {
	if s.Screen != ScreenPlaying {
		return s
	}
	s.Screen = ScreenPaused
	s.Timer = s.Timer.Pause()
	return s
}

// Resume returns from the pause screen to play.
func (s Session) Resume() Session {
	if s.Screen != ScreenPaused {
		return s
	}
	s.Screen = ScreenPlaying
	s.Timer = s.Timer.Resume()
	return s
}

// Reset zeroes the timer and continues playing the same level.
func (s Session) Reset() Session {
	if s.Screen != ScreenPlaying && s.Screen != ScreenPaused {
		return s
	}
	s.Screen = ScreenPlaying
	s.Timer = s.Timer.Reset()
	return s
}

// Exit leaves the level and returns to level selection.
func (s Session) Exit() Session {
	if s.Screen != ScreenPlaying && s.Screen != ScreenPaused {
		return s
	}
	s.Screen = ScreenLevelSelect
	s.Level = 0
	s.Timer = s.Timer.Stop()
	return s
}

// Tick advances the level timer by one second.
func (s Session) Tick() Session {
	s.Timer = s.Timer.Tick()
	return s
}

// Complete marks the current level completed and returns to level
// selection. It is a no-op outside a level.
func (s Session) Complete() Session {
	if s.Level == 0 {
		return s
	}
	s.Progress = s.Progress.WithCompleted(s.Level)
	return s.Exit()
}

// InLevel reports whether a level is being played or is paused.
func (s Session) InLevel() bool {
	return s.Screen == ScreenPlaying || s.Screen == ScreenPaused
}
