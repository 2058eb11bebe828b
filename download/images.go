package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
)

// Browser-like user agent; some image hosts refuse default Go clients.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const copyChunkSize = 128 * 1024

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".svg":  true,
}

// ImageItem is one scraped image candidate: its absolute URL plus a
// filename hint taken from the URL path.
type ImageItem struct {
	URL          string
	FilenameHint string
}

// ImageDownloader fetches pages and images. The zero value is not
// usable; construct with NewImageDownloader.
type ImageDownloader struct {
	client    *http.Client
	userAgent string
	logger    *log.Logger
}

// ImageDownloaderOption configures an ImageDownloader.
type ImageDownloaderOption func(*ImageDownloader)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) ImageDownloaderOption {
	return func(d *ImageDownloader) {
		d.client = c
	}
}

// WithLogger routes scrape diagnostics to the given logger.
func WithLogger(logger *log.Logger) ImageDownloaderOption {
	return func(d *ImageDownloader) {
		d.logger = logger
	}
}

// NewImageDownloader creates a downloader with a default HTTP client.
func NewImageDownloader(opts ...ImageDownloaderOption) *ImageDownloader {
	d := &ImageDownloader{
		client:    &http.Client{},
		userAgent: defaultUserAgent,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DownloadImages resolves the URL to one or more image files in
// outputDir. A direct image URL (by extension or by the response
// content type) downloads as a single file; an HTML page is scraped
// for candidates. maxImages <= 0 means no cap. Individual fetch
// failures are skipped; it is an error only when nothing at all was
// downloaded.
func (d *ImageDownloader) DownloadImages(ctx context.Context, rawURL, outputDir string, maxImages int, progress ProgressFunc) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	if looksLikeDirectImage(rawURL) {
		dest, err := d.downloadOne(ctx, ImageItem{URL: rawURL, FilenameHint: "image"}, outputDir, progress)
		if err != nil {
			return nil, err
		}
		return []string{dest}, nil
	}

	resp, err := d.get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.HasPrefix(contentType, "image/") {
		resp.Body.Close()
		dest, err := d.downloadOne(ctx, ImageItem{URL: resp.Request.URL.String(), FilenameHint: "image"}, outputDir, progress)
		if err != nil {
			return nil, err
		}
		return []string{dest}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading page: %w", err)
	}
	if !strings.Contains(contentType, "text/html") &&
		!strings.Contains(strings.ToLower(string(body)), "<html") {
		return nil, fmt.Errorf("%w: %s is neither HTML nor an image", ErrUnsupportedURL, rawURL)
	}

	items, err := ExtractImageItems(strings.NewReader(string(body)), resp.Request.URL.String())
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no images found on the page", ErrNoImages)
	}
	if maxImages > 0 && len(items) > maxImages {
		items = items[:maxImages]
	}

	var downloaded []string
	for _, item := range items {
		dest, err := d.downloadOne(ctx, item, outputDir, progress)
		if err != nil {
			d.logger.Warn("skipping image", "url", item.URL, "err", err)
			continue
		}
		downloaded = append(downloaded, dest)
	}
	if len(downloaded) == 0 {
		return nil, fmt.Errorf("%w: every candidate failed", ErrNoImages)
	}
	return downloaded, nil
}

func (d *ImageDownloader) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp, nil
}

// downloadOne streams a single image to a uniquely named file,
// reporting progress in chunks.
func (d *ImageDownloader) downloadOne(ctx context.Context, item ImageItem, outputDir string, progress ProgressFunc) (string, error) {
	resp, err := d.get(ctx, item.URL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	ext := path.Ext(resp.Request.URL.Path)
	if ext == "" {
		ext = extensionFromContentType(resp.Header.Get("Content-Type"))
	}

	stem := strings.TrimSuffix(item.FilenameHint, path.Ext(item.FilenameHint))
	dest, err := EnsureUniquePath(filepath.Join(outputDir, SanitizeFilename(stem)+ext))
	if err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()

	total := resp.ContentLength
	name := filepath.Base(dest)
	var written int64
	buf := make([]byte, copyChunkSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := f.Write(buf[:n]); err != nil {
				os.Remove(dest)
				return "", fmt.Errorf("writing %s: %w", dest, err)
			}
			written += int64(n)
			if progress != nil {
				progress(name, written, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			os.Remove(dest)
			return "", fmt.Errorf("downloading %s: %w", item.URL, readErr)
		}
	}
	return dest, nil
}

// ExtractImageItems scrapes image candidates from an HTML document:
// the og:image meta tag, a link rel=image_src, and every img tag,
// preferring the largest srcset candidate over plain src. URLs resolve
// against baseURL (or a base tag when present), data: URLs are
// dropped, and duplicates collapse in first-seen order.
func ExtractImageItems(r io.Reader, baseURL string) ([]ImageItem, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("bad base URL %s: %w", baseURL, err)
	}

	var raw []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "base":
				if href := attr(n, "href"); href != "" {
					if resolved, err := base.Parse(href); err == nil {
						base = resolved
					}
				}
			case "meta":
				if attr(n, "property") == "og:image" {
					if content := attr(n, "content"); content != "" {
						raw = append(raw, content)
					}
				}
			case "link":
				if attr(n, "rel") == "image_src" {
					if href := attr(n, "href"); href != "" {
						raw = append(raw, href)
					}
				}
			case "img":
				if src := bestImageSource(n); src != "" {
					raw = append(raw, src)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	seen := make(map[string]bool)
	var items []ImageItem
	for _, candidate := range raw {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(candidate)), "data:") {
			continue
		}
		resolved, err := base.Parse(candidate)
		if err != nil {
			continue
		}
		absolute := resolved.String()
		if seen[absolute] {
			continue
		}
		seen[absolute] = true

		hint := path.Base(resolved.Path)
		if hint == "." || hint == "/" || hint == "" {
			hint = "image"
		}
		items = append(items, ImageItem{URL: absolute, FilenameHint: hint})
	}
	return items, nil
}

// bestImageSource picks an img tag's source, preferring srcset
// variants over the plain src and lazy-loading attributes.
func bestImageSource(n *html.Node) string {
	for _, key := range []string{"srcset", "data-srcset"} {
		if srcset := attr(n, key); srcset != "" {
			if best := parseSrcset(srcset); best != "" {
				return best
			}
		}
	}
	for _, key := range []string{"src", "data-src", "data-original", "data-lazy-src"} {
		if src := strings.TrimSpace(attr(n, key)); src != "" {
			return src
		}
	}
	return ""
}

// parseSrcset returns the candidate with the highest width or density
// descriptor. Candidates without a descriptor score zero.
func parseSrcset(srcset string) string {
	type candidate struct {
		score float64
		url   string
	}
	var candidates []candidate

	for _, part := range strings.Split(srcset, ",") {
		chunk := strings.TrimSpace(part)
		if chunk == "" {
			continue
		}
		bits := strings.Fields(chunk)
		c := candidate{url: bits[0]}
		if len(bits) > 1 {
			desc := bits[1]
			switch {
			case strings.HasSuffix(desc, "w"):
				if v, err := strconv.Atoi(strings.TrimSuffix(desc, "w")); err == nil {
					c.score = float64(v)
				}
			case strings.HasSuffix(desc, "x"):
				if v, err := strconv.ParseFloat(strings.TrimSuffix(desc, "x"), 64); err == nil {
					c.score = v
				}
			}
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return candidates[0].url
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// looksLikeDirectImage reports whether the URL path ends in a known
// image extension.
func looksLikeDirectImage(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(parsed.Path))]
}

// extensionFromContentType maps an image content type to a file
// extension, or "" for anything unrecognized.
func extensionFromContentType(contentType string) string {
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	subtype, ok := strings.CutPrefix(contentType, "image/")
	if !ok {
		return ""
	}
	switch subtype {
	case "jpeg", "jpg":
		return ".jpg"
	case "svg+xml":
		return ".svg"
	case "png", "gif", "webp", "bmp":
		return "." + subtype
	}
	return ""
}
