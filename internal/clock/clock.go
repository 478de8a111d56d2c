// Package clock provides the game timer and the one-second tick service.
package clock

import (
	"context"
	"fmt"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current time using the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Timer is a count-up game timer. It is a plain value: every transition
// returns the next timer and leaves the receiver untouched.
type Timer struct {
	Elapsed int64 `json:"elapsed_secs"`
	Running bool  `json:"running"`
	Paused  bool  `json:"paused"`
}

// Start returns a running timer that keeps the elapsed count.
func (t Timer) Start() Timer {
	t.Running = true
	t.Paused = false
	return t
}

// Tick advances the timer by one second if it is running and not paused.
func (t Timer) Tick() Timer {
	if t.Running && !t.Paused {
		t.Elapsed++
	}
	return t
}

// Pause freezes the elapsed count.
func (t Timer) Pause() Timer {
	if t.Running {
		t.Paused = true
	}
	return t
}

// Resume unfreezes a paused timer.
func (t Timer) Resume() Timer {
	t.Paused = false
	return t
}

// Reset zeroes the elapsed count and leaves the timer running.
func (t Timer) Reset() Timer {
	return Timer{Running: true}
}

// Stop zeroes the timer and stops it.
func (t Timer) Stop() Timer {
	return Timer{}
}

// Active reports whether the next Tick will advance the timer.
func (t Timer) Active() bool {
	return t.Running && !t.Paused
}

// String renders the elapsed time as MM:SS. Minutes grow past 99.
func (t Timer) String() string {
	return fmt.Sprintf("%02d:%02d", t.Elapsed/60, t.Elapsed%60)
}

// Ticker calls a function at a fixed interval until its context ends.
type Ticker struct {
	Interval time.Duration
}

// Run invokes fn once per interval and blocks until ctx is cancelled.
func (tk Ticker) Run(ctx context.Context, fn func(time.Time)) {
	interval := tk.Interval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			fn(now)
		}
	}
}
