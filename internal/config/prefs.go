package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// PrefsFileName holds state the UI writes back, kept apart from config.toml.
const PrefsFileName = "prefs.toml"

// Prefs are remembered between runs.
type Prefs struct {
	// Theme is "dark", "light" or empty when never chosen.
	Theme string `toml:"theme,omitempty"`
}

func prefsPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PrefsFileName), nil
}

// LoadPrefs reads prefs.toml; a missing file yields zero prefs.
func LoadPrefs() (Prefs, error) {
	var p Prefs
	path, err := prefsPath()
	if err != nil {
		return p, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("reading prefs %s: %w", path, err)
	}
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Prefs{}, fmt.Errorf("parsing prefs: %w", err)
	}
	return p, nil
}

// SavePrefs writes prefs.toml.
func SavePrefs(p Prefs) error {
	path, err := prefsPath()
	if err != nil {
		return err
	}
	data, err := toml.Marshal(&p)
	if err != nil {
		return fmt.Errorf("encoding prefs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing prefs: %w", err)
	}
	return nil
}
