package driven

import "context"

// Fetcher retrieves raw HTML for a page.
// Failures are returned as *domain.FetchError and are never retried here.
type Fetcher interface {
	// Fetch returns the decoded response body of the page at url.
	Fetch(ctx context.Context, url string) (string, error)
}
