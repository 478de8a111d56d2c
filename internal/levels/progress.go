package levels

import "sort"

// Progress records which levels a player has completed.
type Progress struct {
	completed map[int]bool
}

// NewProgress returns progress with the given levels completed.
func NewProgress(completed ...int) Progress {
	p := Progress{completed: make(map[int]bool, len(completed))}
	for _, n := range completed {
		p.completed[n] = true
	}
	return p
}

// Completed reports whether level n has been completed.
func (p Progress) Completed(n int) bool {
	return p.completed[n]
}

// WithCompleted returns a copy of p with level n marked completed.
func (p Progress) WithCompleted(n int) Progress {
	next := NewProgress(p.CompletedLevels()...)
	next.completed[n] = true
	return next
}

// CompletedLevels returns the completed level numbers in ascending order.
func (p Progress) CompletedLevels() []int {
	out := make([]int, 0, len(p.completed))
	for n, done := range p.completed {
		if done {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// Unlocked reports whether level n is playable: the first level in the
// catalog always is, every later one needs its predecessor completed.
func (c *Catalog) Unlocked(p Progress, n int) bool {
	for i, lvl := range c.levels {
		if lvl.Number != n {
			continue
		}
		if i == 0 {
			return true
		}
		return p.Completed(c.levels[i-1].Number)
	}
	return false
}
