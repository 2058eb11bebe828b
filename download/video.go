package download

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// VideoOption is one downloadable rendition presented to the user.
type VideoOption struct {
	Label     string
	ItagNo    int
	MimeType  string
	Height    int
	SizeBytes int64
	AudioOnly bool
}

// VideoDownloader probes video URLs and streams a chosen format.
type VideoDownloader struct {
	client youtube.Client
}

// NewVideoDownloader creates a downloader with a default client.
func NewVideoDownloader() *VideoDownloader {
	return &VideoDownloader{client: youtube.Client{}}
}

// Probe resolves the URL to video metadata. A URL the extractor does
// not recognize returns ErrUnsupportedURL so the caller can fall back
// to image scraping.
func (d *VideoDownloader) Probe(ctx context.Context, rawURL string) (*youtube.Video, error) {
	id, err := youtube.ExtractVideoID(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
	}
	video, err := d.client.GetVideoContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching video metadata: %w", err)
	}
	return video, nil
}

// BuildVideoOptions enumerates the qualities worth offering: one entry
// per distinct quality label (preferring variants that carry audio),
// highest resolution first, plus an audio-only entry when available.
func BuildVideoOptions(video *youtube.Video) []VideoOption {
	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		formats = video.Formats
	}

	byQuality := make(map[string]VideoOption)
	for _, f := range formats {
		if !strings.Contains(f.MimeType, "video/mp4") || f.QualityLabel == "" {
			continue
		}
		hasAudio := f.AudioChannels > 0
		opt := VideoOption{
			Label:     formatLabel(f.QualityLabel, f.ContentLength, hasAudio),
			ItagNo:    f.ItagNo,
			MimeType:  f.MimeType,
			Height:    f.Height,
			SizeBytes: f.ContentLength,
		}
		if existing, ok := byQuality[f.QualityLabel]; ok {
			existingHasAudio := !strings.Contains(existing.Label, "no audio")
			if existingHasAudio && !hasAudio {
				continue
			}
		}
		byQuality[f.QualityLabel] = opt
	}

	options := make([]VideoOption, 0, len(byQuality)+1)
	for _, opt := range byQuality {
		options = append(options, opt)
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].Height > options[j].Height
	})

	if audio := bestAudioOnly(video.Formats); audio != nil {
		options = append(options, *audio)
	}
	return options
}

func bestAudioOnly(formats youtube.FormatList) *VideoOption {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if best == nil {
		return nil
	}
	return &VideoOption{
		Label:     formatLabel("Audio only", best.ContentLength, true),
		ItagNo:    best.ItagNo,
		MimeType:  best.MimeType,
		SizeBytes: best.ContentLength,
		AudioOnly: true,
	}
}

func formatLabel(quality string, size int64, hasAudio bool) string {
	label := quality
	if size > 0 {
		if mb := size / (1024 * 1024); mb > 0 {
			label += fmt.Sprintf(" (~%dMB)", mb)
		} else {
			label += fmt.Sprintf(" (~%dKB)", size/1024)
		}
	}
	if !hasAudio {
		label += " (no audio)"
	}
	return label
}

// DownloadFormat streams the chosen option into outputDir, named after
// the sanitized video title, reporting byte progress as it copies.
func (d *VideoDownloader) DownloadFormat(ctx context.Context, video *youtube.Video, option VideoOption, outputDir string, progress ProgressFunc) (string, error) {
	var format *youtube.Format
	for i := range video.Formats {
		if video.Formats[i].ItagNo == option.ItagNo {
			format = &video.Formats[i]
			break
		}
	}
	if format == nil {
		return "", fmt.Errorf("format %d not present in video", option.ItagNo)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return "", fmt.Errorf("opening stream: %w", err)
	}
	defer stream.Close()

	name := SanitizeFilename(video.Title) + extensionForMime(format.MimeType)
	dest, err := EnsureUniquePath(filepath.Join(outputDir, name))
	if err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()

	var written int64
	buf := make([]byte, copyChunkSize)
	base := filepath.Base(dest)
	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				os.Remove(dest)
				return "", fmt.Errorf("writing %s: %w", dest, err)
			}
			written += int64(n)
			if progress != nil {
				progress(base, written, size)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			os.Remove(dest)
			return "", fmt.Errorf("downloading video: %w", readErr)
		}
	}
	return dest, nil
}

// extensionForMime maps a stream MIME type to a file extension,
// defaulting to .mp4 for video and .m4a for audio.
func extensionForMime(mimeType string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ".mp4"
	}
	switch mediaType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "audio/mp4":
		return ".m4a"
	case "audio/webm":
		return ".weba"
	}
	if strings.HasPrefix(mediaType, "audio/") {
		return ".m4a"
	}
	return ".mp4"
}
