package driven

import "github.com/custodia-labs/essaycorpus/internal/core/domain"

// Extractor turns essay pages into domain values.
// Missing page structure yields empty fields, never an error.
type Extractor interface {
	// Extract builds an essay from one page. Chunks are left empty.
	Extract(html, title, url string) domain.Essay

	// DiscoverLinks lists the essay links on the index page in page order.
	DiscoverLinks(html, baseURL string) ([]domain.Link, error)
}
