package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <meta property="og:image" content="/social/cover.png">
  <link rel="image_src" href="/link/preview.jpg">
</head>
<body>
  <img src="/a.png">
  <img srcset="/small.jpg 480w, /large.jpg 1200w, /medium.jpg 800w">
  <img data-src="/lazy.webp">
  <img src="data:image/gif;base64,R0lGOD">
  <img src="/a.png">
</body>
</html>`

func TestExtractImageItems(t *testing.T) {
	items, err := ExtractImageItems(strings.NewReader(samplePage), "https://example.com/gallery/")
	if err != nil {
		t.Fatalf("ExtractImageItems: %v", err)
	}

	want := []ImageItem{
		{URL: "https://example.com/social/cover.png", FilenameHint: "cover.png"},
		{URL: "https://example.com/link/preview.jpg", FilenameHint: "preview.jpg"},
		{URL: "https://example.com/a.png", FilenameHint: "a.png"},
		{URL: "https://example.com/large.jpg", FilenameHint: "large.jpg"},
		{URL: "https://example.com/lazy.webp", FilenameHint: "lazy.webp"},
	}
	if len(items) != len(want) {
		t.Fatalf("item count = %d, want %d: %v", len(items), len(want), items)
	}
	for i, item := range items {
		if item != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, item, want[i])
		}
	}
}

func TestExtractImageItemsHonorsBaseTag(t *testing.T) {
	page := `<html><head><base href="https://cdn.example.net/assets/"></head>
<body><img src="pic.png"></body></html>`

	items, err := ExtractImageItems(strings.NewReader(page), "https://example.com/")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].URL != "https://cdn.example.net/assets/pic.png" {
		t.Errorf("items = %v, want base-resolved URL", items)
	}
}

func TestParseSrcset(t *testing.T) {
	tests := []struct {
		name   string
		srcset string
		want   string
	}{
		{"width descriptors", "a.jpg 480w, b.jpg 1200w, c.jpg 800w", "b.jpg"},
		{"density descriptors", "a.jpg 1x, b.jpg 2x", "b.jpg"},
		{"no descriptors keeps first", "a.jpg, b.jpg", "a.jpg"},
		{"bad descriptor scores zero", "a.jpg banana, b.jpg 2x", "b.jpg"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseSrcset(tt.srcset); got != tt.want {
				t.Errorf("parseSrcset(%q) = %q, want %q", tt.srcset, got, tt.want)
			}
		})
	}
}

func TestExtensionFromContentType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png; charset=binary", ".png"},
		{"image/svg+xml", ".svg"},
		{"image/webp", ".webp"},
		{"text/html", ""},
		{"image/x-icon", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := extensionFromContentType(tt.in); got != tt.want {
			t.Errorf("extensionFromContentType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLooksLikeDirectImage(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"https://example.com/pic.PNG", true},
		{"https://example.com/pic.jpeg?size=big", true},
		{"https://example.com/page.html", false},
		{"https://example.com/", false},
	}

	for _, tt := range tests {
		if got := looksLikeDirectImage(tt.in); got != tt.want {
			t.Errorf("looksLikeDirectImage(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDownloadImagesScrapesPage(t *testing.T) {
	var mux http.ServeMux
	mux.HandleFunc("/gallery", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
<img src="/img/one.png">
<img src="/img/two.png">
<img src="/img/broken.png">
</body></html>`)
	})
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("fake png bytes"))
	})
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	dir := t.TempDir()
	var progressCalls int
	d := NewImageDownloader(WithHTTPClient(srv.Client()))

	paths, err := d.DownloadImages(context.Background(), srv.URL+"/gallery", dir, 0,
		func(name string, downloaded, total int64) { progressCalls++ })
	if err != nil {
		t.Fatalf("DownloadImages: %v", err)
	}
	// The broken candidate is skipped, not fatal.
	if len(paths) != 2 {
		t.Fatalf("downloaded %d files, want 2: %v", len(paths), paths)
	}
	if progressCalls == 0 {
		t.Error("progress callback never fired")
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "fake png bytes" {
			t.Errorf("%s content = %q", p, data)
		}
	}
}

func TestDownloadImagesMaxCap(t *testing.T) {
	var imageHits int
	var mux http.ServeMux
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
<img src="/i/1.png"><img src="/i/2.png"><img src="/i/3.png">
</body></html>`)
	})
	mux.HandleFunc("/i/", func(w http.ResponseWriter, r *http.Request) {
		imageHits++
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("x"))
	})
	srv := httptest.NewServer(&mux)
	defer srv.Close()

	d := NewImageDownloader(WithHTTPClient(srv.Client()))
	paths, err := d.DownloadImages(context.Background(), srv.URL+"/page", t.TempDir(), 2, nil)
	if err != nil {
		t.Fatalf("DownloadImages: %v", err)
	}
	if len(paths) != 2 || imageHits != 2 {
		t.Errorf("downloaded %d files with %d fetches, want 2 and 2", len(paths), imageHits)
	}
}

func TestDownloadImagesDirectImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewImageDownloader(WithHTTPClient(srv.Client()))
	paths, err := d.DownloadImages(context.Background(), srv.URL+"/photo.jpg", dir, 0, nil)
	if err != nil {
		t.Fatalf("DownloadImages: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("downloaded %d files, want 1", len(paths))
	}
	if ext := filepath.Ext(paths[0]); ext != ".jpg" {
		t.Errorf("extension = %q, want .jpg", ext)
	}
}

func TestDownloadImagesImageContentType(t *testing.T) {
	// URL without an image extension, but the response content type
	// identifies an image.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png bytes"))
	}))
	defer srv.Close()

	d := NewImageDownloader(WithHTTPClient(srv.Client()))
	paths, err := d.DownloadImages(context.Background(), srv.URL+"/render", t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("DownloadImages: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("downloaded %d files, want 1", len(paths))
	}
	if ext := filepath.Ext(paths[0]); ext != ".png" {
		t.Errorf("extension = %q, want .png", ext)
	}
}

func TestDownloadImagesFailures(t *testing.T) {
	t.Run("no images on page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><body><p>nothing here</p></body></html>")
		}))
		defer srv.Close()

		d := NewImageDownloader(WithHTTPClient(srv.Client()))
		if _, err := d.DownloadImages(context.Background(), srv.URL, t.TempDir(), 0, nil); !errors.Is(err, ErrNoImages) {
			t.Errorf("err = %v, want ErrNoImages", err)
		}
	})

	t.Run("not html or image", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"ok":true}`)
		}))
		defer srv.Close()

		d := NewImageDownloader(WithHTTPClient(srv.Client()))
		if _, err := d.DownloadImages(context.Background(), srv.URL, t.TempDir(), 0, nil); !errors.Is(err, ErrUnsupportedURL) {
			t.Errorf("err = %v, want ErrUnsupportedURL", err)
		}
	})

	t.Run("every candidate fails", func(t *testing.T) {
		var mux http.ServeMux
		mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, `<html><body><img src="/gone.png"></body></html>`)
		})
		mux.HandleFunc("/gone.png", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		})
		srv := httptest.NewServer(&mux)
		defer srv.Close()

		d := NewImageDownloader(WithHTTPClient(srv.Client()))
		if _, err := d.DownloadImages(context.Background(), srv.URL+"/page", t.TempDir(), 0, nil); !errors.Is(err, ErrNoImages) {
			t.Errorf("err = %v, want ErrNoImages", err)
		}
	})
}
