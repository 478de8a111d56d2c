// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatMoney formats an amount held in millions of euros.
// e.g., 1234.4 -> "€1,234M", -400 -> "-€400M"
func FormatMoney(millions float64) string {
	rounded := int64(math.Round(millions))
	if rounded < 0 {
		return "-€" + FormatNumber(-rounded) + "M"
	}
	return "€" + FormatNumber(rounded) + "M"
}

// FormatFixed formats a float with the given number of decimals,
// normalizing negative zero.
func FormatFixed(f float64, digits int) string {
	s := strconv.FormatFloat(f, 'f', digits, 64)
	if strings.TrimLeft(s, "-0.") == "" && strings.HasPrefix(s, "-") {
		return s[1:]
	}
	return s
}

// FormatClock formats elapsed seconds as MM:SS.
func FormatClock(secs int64) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// FormatDuration renders total play time, e.g. "1h 2m", "2m 5s" or "45s".
func FormatDuration(secs int64) string {
	d := time.Duration(max(secs, 0)) * time.Second
	h, m, sec := int64(d.Hours()), int64(d.Minutes())%60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", max(sec, 0))
	}
}

// FormatNumber groups digits in thousands: 1234567 -> "1,234,567".
func FormatNumber(n int64) string {
	digits := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}
	groups := make([]string, 0, len(digits)/3+1)
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)
	return sign + strings.Join(groups, ",")
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDelta formats a signed unit change, e.g. +3 or -1.
func FormatDelta(delta int) string {
	if delta >= 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// GoalMark returns a check or cross for a goal status.
func GoalMark(met bool) string {
	if met {
		return "✓"
	}
	return "✗"
}
