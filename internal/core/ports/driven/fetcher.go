package driven

import "context"

// PageFetcher retrieves the visible text of a web page.
// Implementations must be safe for concurrent use.
type PageFetcher interface {
	// Fetch returns the extracted text of the page at url.
	// Timeouts, network errors and non-2xx responses wrap domain.ErrPageUnavailable.
	// A page with no visible text returns domain.ErrEmptyContent.
	Fetch(ctx context.Context, url string) (string, error)

	// Close releases pooled connections.
	Close() error
}
