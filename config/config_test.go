package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if got := Load(); got != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", got, Default())
	}
}

func TestLoadMalformedFileYieldsDefaults(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)

	dir := filepath.Join(root, "scrapetui")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := Load(); got != Default() {
		t.Errorf("Load() = %+v, want defaults", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	want := Settings{
		Theme:         "nord",
		OutputDir:     "/tmp/dl",
		AvatarBackend: "braille",
		AvatarFPS:     12,
		AvatarWidth:   64,
		AvatarHeight:  32,
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := Load(); got != want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadFillsPartialFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)

	dir := filepath.Join(root, "scrapetui")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "settings.json"), []byte(`{"theme":"dracula"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	got := Load()
	if got.Theme != "dracula" {
		t.Errorf("Theme = %q, want dracula", got.Theme)
	}
	if got.AvatarBackend != "auto" || got.AvatarFPS != 10 {
		t.Errorf("defaults not filled: %+v", got)
	}
}
