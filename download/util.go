package download

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const maxFilenameLength = 180

var (
	invalidFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_.\- ]+`)
	whitespaceRuns       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename strips characters that are unsafe in filenames,
// collapses whitespace, and bounds the length. An empty result falls
// back to "download".
func SanitizeFilename(name string) string {
	cleaned := invalidFilenameChars.ReplaceAllString(name, "_")
	cleaned = strings.Trim(cleaned, " .")
	cleaned = whitespaceRuns.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		cleaned = "download"
	}
	if len(cleaned) > maxFilenameLength {
		cleaned = cleaned[:maxFilenameLength]
	}
	return cleaned
}

// EnsureUniquePath returns path if nothing exists there, otherwise the
// first "stem_N.ext" variant that is free.
func EnsureUniquePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for i := 1; i < 10000; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find a unique filename for %s", path)
}

// DomainFromURL extracts the lowercase hostname without a leading
// "www.", for grouping downloads by site. Unparseable input yields
// "site".
func DomainFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return "site"
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
