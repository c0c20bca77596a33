// Package prefs persists roomperms user preferences in
// ~/.config/roomperms/prefs.toml.
package prefs

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/five82/roomperms/internal/config"
	"github.com/five82/roomperms/internal/permissions"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme       string `toml:"theme"`
	LastSection string `toml:"last_section"`
}

const (
	defaultPrefsPath = "~/.config/roomperms/prefs.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Default returns the preferences used when nothing is stored.
func Default() Prefs {
	return Prefs{
		Theme:       defaultTheme,
		LastSection: permissions.SectionRoomDetails.String(),
	}
}

// Section returns the stored section, falling back to the first one.
func (p Prefs) Section() permissions.Section {
	section, err := permissions.ParseSection(p.LastSection)
	if err != nil {
		return permissions.SectionRoomDetails
	}
	return section
}

// Load reads preferences from path. A missing file yields defaults with no
// error. A file that cannot be read or parsed also yields defaults, together
// with the error so the caller can report it; preferences are never worth
// failing over.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default(), errors.Wrap(err, "resolve path")
	}

	data, err := os.ReadFile(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Default(), nil
	case err != nil:
		return Default(), errors.Wrap(err, "read prefs")
	}

	prefs := Default()
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Default(), errors.Wrapf(err, "parse %s", resolved)
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	if _, err := permissions.ParseSection(prefs.LastSection); err != nil {
		prefs.LastSection = Default().LastSection
	}
	return prefs, nil
}

// Save writes preferences to path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return errors.Wrap(err, "resolve path")
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return errors.Wrap(err, "create prefs dir")
	}

	data, err := toml.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "marshal prefs")
	}

	if err := os.WriteFile(resolved, data, 0o644); err != nil {
		return errors.Wrap(err, "write prefs")
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}
