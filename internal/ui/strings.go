package ui

import (
	"fmt"
	"strings"
	"time"
)

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// singleLine collapses newlines and runs of whitespace into single spaces.
func singleLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// padRight pads s with spaces up to width runes.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// padLeft pads s with leading spaces up to width runes.
func padLeft(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(r)) + s
}

// maxInt returns the larger of two integers.
func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// humanizeDuration renders a coarse age such as "12s", "4m", "2h 3m" or "3d".
func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh %dm", h, m)
	default:
		return fmt.Sprintf("%dd", int(d.Hours())/24)
	}
}

// formatAge renders the time since ts, or "-" for an unknown timestamp.
func formatAge(ts, now time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return humanizeDuration(now.Sub(ts))
}

// formatPrice renders a listing price with two decimals.
func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f TL", price)
}

// visibleWindow returns the [start, end) slice of rows to draw so that the
// cursor stays on screen.
func visibleWindow(cursor, total, height int) (int, int) {
	if height <= 0 || total <= 0 {
		return 0, 0
	}
	if total <= height {
		return 0, total
	}
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	if start+height > total {
		start = total - height
	}
	return start, start + height
}

// clampCursor keeps a list cursor inside [0, total).
func clampCursor(cursor, total int) int {
	if total <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= total {
		return total - 1
	}
	return cursor
}
