// Package prefs persists the settings a user changes from inside the TUI:
// the colour theme, the tab shown at start and how the catalog opens.
// They live in ~/.config/vinted/prefs.toml, next to the session file.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/VolkanCARBUGA/VintedClone/internal/market"
)

// ErrCorrupt is returned with the defaults when the file exists but cannot
// be used. Callers log it and carry on.
var ErrCorrupt = errors.New("preferences file is unusable")

// Prefs holds user preferences for the TUI.
type Prefs struct {
	Theme     string `toml:"theme"`
	StartView string `toml:"start_view"`
	Sort      string `toml:"sort,omitempty"`
	Category  string `toml:"category,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/vinted/prefs.toml"
	defaultTheme     = "Dracula"
	defaultStartView = "products"
)

var (
	startViews = []string{"products", "favorites", "inbox"}
	sortOrders = []string{"price_asc", "price_desc"}
)

// Default returns the preferences of a fresh install.
func Default() Prefs {
	return Prefs{Theme: defaultTheme, StartView: defaultStartView}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Normalize fills blanks with defaults and drops values this version does
// not understand, so an old or hand-edited file still opens.
func (p Prefs) Normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.StartView = oneOf(p.StartView, startViews, defaultStartView)
	p.Sort = oneOf(p.Sort, sortOrders, "")
	p.Category = strings.TrimSpace(p.Category)
	return p
}

// Query is the catalog query the products tab opens with.
func (p Prefs) Query() market.ProductQuery {
	return market.ProductQuery{Sort: p.Sort, Category: p.Category}
}

func oneOf(value string, allowed []string, fallback string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

// Load reads preferences from path. A missing file yields the defaults and
// no error; an unreadable or malformed one yields the defaults and an error
// wrapping ErrCorrupt.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	data, err := os.ReadFile(resolved)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("%w: %s: %v", ErrCorrupt, resolved, err)
	}
	return p.Normalize(), nil
}

// Update loads the file at path, applies change and saves the result.
// Fields change does not touch keep what is on disk.
func Update(path string, change func(*Prefs)) error {
	p, err := Load(path)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	change(&p)
	return Save(path, p)
}

// Save writes preferences to path, creating directories as needed. The file
// is replaced in one rename so a crash never leaves half a file behind.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.Normalize())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultPrefsPath
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		path = filepath.Join(home, rest)
	}
	return filepath.Abs(path)
}
