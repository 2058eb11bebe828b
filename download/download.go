// Package download classifies URLs and fetches their content: video
// streams through format negotiation, or images scraped from a page.
// It is I/O glue around third-party collaborators; the interesting
// rendering work lives in the avatar package.
package download

import "errors"

var (
	// ErrUnsupportedURL means no downloader recognizes the URL.
	ErrUnsupportedURL = errors.New("unsupported URL")

	// ErrNoImages means a page was fetched but nothing was downloaded.
	ErrNoImages = errors.New("no images downloaded")
)

// ProgressFunc receives byte progress while a file downloads. total is
// -1 when the server did not declare a length.
type ProgressFunc func(name string, downloaded, total int64)
