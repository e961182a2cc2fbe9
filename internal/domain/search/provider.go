package search

import (
	"context"

	"github.com/honeylocust/chowdown/internal/domain"
)

// Provider represents an upstream restaurant data source (Google Places,
// the vector store, a mock in tests).
type Provider interface {
	// e.g. "places" or "vector"
	Name() string

	// FetchPage returns one batch of normalized candidates for a filter
	// set. pageToken is empty on the first call; an empty NextPageToken
	// in the result means no further pages exist.
	FetchPage(ctx context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error)
}
