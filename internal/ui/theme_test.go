package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestStatusStyle(t *testing.T) {
	th := GetTheme("Dracula")
	styles := th.Styles()

	if got := styles.StatusStyle("  Sold "); got.GetBackground() != lipgloss.Color(th.StatusColors["sold"]) {
		t.Fatalf("StatusStyle(sold) background = %v, want %v", got.GetBackground(), th.StatusColors["sold"])
	}
	if got := styles.StatusStyle("unknown"); got.GetBackground() != lipgloss.Color(th.Muted) {
		t.Fatalf("StatusStyle(unknown) background = %v, want %v", got.GetBackground(), th.Muted)
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 {
		t.Fatalf("ThemeNames() returned %d names, want 2", len(names))
	}
	if names[0] != "Dracula" || names[1] != "Slate" {
		t.Fatalf("ThemeNames() = %v, want [Dracula Slate]", names)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("missing"); got != "Dracula" {
		t.Fatalf("NextTheme(missing) = %q, want Dracula", got)
	}
}

func TestGetTheme_FallsBackToDracula(t *testing.T) {
	if got := GetTheme("nope"); got.Name != "Dracula" {
		t.Fatalf("GetTheme(nope) = %q, want Dracula", got.Name)
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range []string{"active", "reserved", "sold"} {
			if th.StatusColors[status] == "" {
				t.Fatalf("theme %s has no color for %s", name, status)
			}
		}
	}
}
