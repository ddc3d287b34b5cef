package ui

import (
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"  short  ", 10, "short"},
		{"abcdef", 0, "abcdef"},
		{"abcdef", 3, "abc"},
		{"Vintage denim jacket", 10, "Vintage..."},
		{"çanta ölçü", 6, "çan..."},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.limit); got != tc.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestSingleLine(t *testing.T) {
	if got := singleLine("hello\n  there\tfriend "); got != "hello there friend" {
		t.Fatalf("singleLine = %q", got)
	}
}

func TestPadding(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q", got)
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight overflow = %q", got)
	}
	if got := padLeft("7", 3); got != "  7" {
		t.Fatalf("padLeft = %q", got)
	}
}

func timeSeconds(sec int64) time.Duration {
	return time.Duration(sec) * time.Second
}

func TestHumanizeDuration(t *testing.T) {
	cases := []struct {
		name string
		in   int64 // seconds
		want string
	}{
		{"negative", -5, "now"},
		{"subsecond", 0, "now"},
		{"seconds", 12, "12s"},
		{"minutes", 61, "1m"},
		{"hours_only", 2*60*60 + 10, "2h"},
		{"hours_minutes", 2*60*60 + 3*60, "2h 3m"},
		{"days", 24 * 60 * 60, "1d"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := humanizeDuration(timeSeconds(tc.in))
			if got != tc.want {
				t.Fatalf("humanizeDuration(%d) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if got := formatAge(time.Time{}, now); got != "-" {
		t.Fatalf("formatAge zero = %q", got)
	}
	if got := formatAge(now.Add(-90*time.Second), now); got != "1m" {
		t.Fatalf("formatAge = %q, want 1m", got)
	}
}

func TestFormatPrice(t *testing.T) {
	if got := formatPrice(120); got != "120.00 TL" {
		t.Fatalf("formatPrice = %q", got)
	}
}

func TestVisibleWindow(t *testing.T) {
	cases := []struct {
		cursor, total, height int
		start, end            int
	}{
		{0, 0, 10, 0, 0},
		{3, 5, 10, 0, 5},
		{0, 50, 10, 0, 10},
		{25, 50, 10, 20, 30},
		{49, 50, 10, 40, 50},
	}
	for _, tc := range cases {
		start, end := visibleWindow(tc.cursor, tc.total, tc.height)
		if start != tc.start || end != tc.end {
			t.Fatalf("visibleWindow(%d,%d,%d) = [%d,%d), want [%d,%d)",
				tc.cursor, tc.total, tc.height, start, end, tc.start, tc.end)
		}
		if tc.total > 0 && (tc.cursor < start || tc.cursor >= end) {
			t.Fatalf("cursor %d outside window [%d,%d)", tc.cursor, start, end)
		}
	}
}

func TestClampCursor(t *testing.T) {
	if got := clampCursor(5, 3); got != 2 {
		t.Fatalf("clampCursor = %d, want 2", got)
	}
	if got := clampCursor(-1, 3); got != 0 {
		t.Fatalf("clampCursor negative = %d", got)
	}
	if got := clampCursor(2, 0); got != 0 {
		t.Fatalf("clampCursor empty = %d", got)
	}
}
