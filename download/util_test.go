package download

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "video", "video"},
		{"slashes replaced", "a/b\\c", "a_b_c"},
		{"special chars replaced", "wat??*: yes!", "wat_ yes_"},
		{"whitespace collapsed", "two   words", "two words"},
		{"trimmed dots and spaces", " .name. ", "name"},
		{"punctuation run collapses", "///", "_"},
		{"only dots falls back", "...", "download"},
		{"keeps unicode word chars", "café_01.png", "café_01.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilenameBoundsLength(t *testing.T) {
	long := strings.Repeat("a", 500)
	if got := SanitizeFilename(long); len(got) != maxFilenameLength {
		t.Errorf("length = %d, want %d", len(got), maxFilenameLength)
	}
}

func TestEnsureUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")

	got, err := EnsureUniquePath(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != path {
		t.Errorf("fresh path = %q, want %q", got, path)
	}

	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = EnsureUniquePath(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "img_1.png"); got != want {
		t.Errorf("second path = %q, want %q", got, want)
	}

	if err := os.WriteFile(got, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = EnsureUniquePath(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "img_2.png"); got != want {
		t.Errorf("third path = %q, want %q", got, want)
	}
}

func TestDomainFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/page", "example.com"},
		{"https://Sub.Example.ORG/x", "sub.example.org"},
		{"http://example.com:8080/", "example.com"},
		{"not a url", "site"},
		{"", "site"},
	}

	for _, tt := range tests {
		if got := DomainFromURL(tt.in); got != tt.want {
			t.Errorf("DomainFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
