package avatar

import (
	"fmt"
	"image/gif"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/wbrown/scrapetui/imageutil"
)

// SourceStatus distinguishes the reasons a resolve produced no frames,
// so the caller can show an accurate placeholder.
type SourceStatus int

const (
	// SourceOK means at least one frame was decoded.
	SourceOK SourceStatus = iota

	// SourceMissing means the source path does not exist.
	SourceMissing

	// SourceEmpty means the path exists but holds nothing decodable.
	SourceEmpty
)

// Still-image extensions recognized when scanning a frames directory.
var stillExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// defaultFrameDuration is the per-frame fallback when no frame rate is
// configured for a directory of stills.
const defaultFrameDuration = 100 * time.Millisecond

// ResolveFrames discovers an ordered frame sequence at path. A .gif
// file is decoded and composited whole; anything else is treated as a
// directory of still images played at fps frames per second.
//
// Directory frames play back in lexicographic filename order, so
// sources must name files accordingly (000.png, 001.png, ...). A
// missing or empty source is not an error: it returns no frames and a
// status the caller can turn into a placeholder. A frame that fails to
// decode aborts the whole load, since indices must stay dense and
// ordered.
func ResolveFrames(path string, fps float64) ([]Frame, SourceStatus, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, SourceMissing, nil
	}

	if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".gif") {
		frames, err := resolveGIF(path)
		if err != nil {
			return nil, SourceEmpty, err
		}
		if len(frames) == 0 {
			return nil, SourceEmpty, nil
		}
		return frames, SourceOK, nil
	}

	if !info.IsDir() {
		return nil, SourceEmpty, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, SourceMissing, nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if stillExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return nil, SourceEmpty, nil
	}
	sort.Strings(names)

	duration := defaultFrameDuration
	if fps > 0 {
		duration = time.Duration(float64(time.Second) / fps)
	}

	frames := make([]Frame, 0, len(names))
	for _, name := range names {
		img, err := imageutil.LoadImage(filepath.Join(path, name))
		if err != nil {
			return nil, SourceEmpty, fmt.Errorf("loading frame %s: %w", name, err)
		}
		frames = append(frames, Frame{Image: img, Duration: duration})
	}
	return frames, SourceOK, nil
}

func resolveGIF(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gif: %w", err)
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("decoding gif %s: %w", path, err)
	}
	return CompositeGIF(g), nil
}
