// Package config persists user settings as a small JSON file under
// the user config directory. A missing or malformed file always
// yields defaults; settings are never required for the program to
// run.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds the persisted preferences.
type Settings struct {
	Theme         string  `json:"theme,omitempty"`
	OutputDir     string  `json:"output_dir,omitempty"`
	AvatarBackend string  `json:"avatar_backend,omitempty"`
	AvatarFPS     float64 `json:"avatar_fps,omitempty"`
	AvatarWidth   int     `json:"avatar_width,omitempty"`
	AvatarHeight  int     `json:"avatar_height,omitempty"`
}

// Default returns the settings used when nothing is stored.
func Default() Settings {
	return Settings{
		OutputDir:     "downloads",
		AvatarBackend: "auto",
		AvatarFPS:     10,
		AvatarWidth:   32,
		AvatarHeight:  16,
	}
}

// Path returns the settings file location, honoring XDG_CONFIG_HOME.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config dir: %w", err)
	}
	return filepath.Join(dir, "scrapetui", "settings.json"), nil
}

// Load reads the settings file. Any failure, including a missing or
// unparseable file, falls back to Default.
func Load() Settings {
	path, err := Path()
	if err != nil {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		return Default()
	}
	s.fillZeroes()
	return s
}

// Save writes the settings file, creating parent directories as
// needed.
func Save(s Settings) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// fillZeroes restores defaults for fields the stored file left empty,
// so partial settings files stay usable.
func (s *Settings) fillZeroes() {
	def := Default()
	if s.OutputDir == "" {
		s.OutputDir = def.OutputDir
	}
	if s.AvatarBackend == "" {
		s.AvatarBackend = def.AvatarBackend
	}
	if s.AvatarFPS <= 0 {
		s.AvatarFPS = def.AvatarFPS
	}
	if s.AvatarWidth <= 0 {
		s.AvatarWidth = def.AvatarWidth
	}
	if s.AvatarHeight <= 0 {
		s.AvatarHeight = def.AvatarHeight
	}
}
