package stats

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownWindow is returned by ParseWindow for an unrecognised preset.
var ErrUnknownWindow = errors.New("stats: unknown time window")

const day = 24 * time.Hour

// Window is a named since-cutoff preset.
type Window string

// Window presets.
const (
	WindowAll        Window = "all"
	WindowLast30Days Window = "last-30-days"
	WindowLast7Days  Window = "last-7-days"
)

// Windows lists every preset, widest first.
func Windows() []Window {
	return []Window{WindowAll, WindowLast30Days, WindowLast7Days}
}

// ParseWindow resolves a preset name. An empty string means WindowAll.
func ParseWindow(s string) (Window, error) {
	if s == "" {
		return WindowAll, nil
	}

	for _, w := range Windows() {
		if string(w) == s {
			return w, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
}

// Since returns the inclusive cutoff for the window relative to now.
// WindowAll returns the zero time, which disables filtering.
func (w Window) Since(now time.Time) time.Time {
	switch w {
	case WindowLast30Days:
		return now.Add(-30 * day)
	case WindowLast7Days:
		return now.Add(-7 * day)
	default:
		return time.Time{}
	}
}

// Title is the human-readable window name.
func (w Window) Title() string {
	switch w {
	case WindowLast30Days:
		return "last 30 days"
	case WindowLast7Days:
		return "last 7 days"
	default:
		return "all time"
	}
}

// Slug is a name fragment for report identifiers.
func (w Window) Slug() string {
	switch w {
	case WindowLast30Days:
		return "30d"
	case WindowLast7Days:
		return "7d"
	default:
		return "all"
	}
}
