// Package prefs persists statekit user preferences in
// ~/.config/statekit/prefs.toml. A missing or unreadable file never fails a
// run; it yields the defaults.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences. LastDemo is the demo that ran most
// recently and is used when no demo is named on the command line.
type Prefs struct {
	Theme    string `toml:"theme"`
	LastDemo string `toml:"last_demo,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/statekit/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

func defaults() Prefs {
	return Prefs{Theme: defaultTheme}
}

func (p *Prefs) normalize() {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.LastDemo = strings.TrimSpace(p.LastDemo)
}

// Load reads preferences from path. Any failure to locate, read or parse
// the file returns the defaults.
func Load(path string) (Prefs, error) {
	p := defaults()
	resolved, err := resolvePath(path)
	if err != nil {
		return p, nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return p, nil
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return defaults(), nil
	}
	p.normalize()
	return p, nil
}

// Update loads the preferences at path, applies fn and saves the result
// when fn changed anything.
func Update(path string, fn func(*Prefs)) error {
	before, _ := Load(path)
	after := before
	fn(&after)
	after.normalize()
	if after == before {
		return nil
	}
	return Save(path, after)
}

// Remember records demo as the last one run, keeping the other fields.
func Remember(path, demo string) error {
	return Update(path, func(p *Prefs) { p.LastDemo = demo })
}

// SetTheme records the chosen theme, keeping the other fields.
func SetTheme(path, theme string) error {
	return Update(path, func(p *Prefs) { p.Theme = theme })
}

// Save writes p to path, creating parent directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if rest, ok := strings.CutPrefix(trimmed, "~"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, rest)
	}
	return filepath.Abs(trimmed)
}
