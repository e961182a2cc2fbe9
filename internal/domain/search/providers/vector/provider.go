// Package vector adapts the embedding client and restaurant store to the
// search.Provider contract: the vibe text becomes a query vector and the
// store answers with its nearest neighbors.
package vector

import (
	"context"
	"fmt"

	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/internal/domain/search"
	"github.com/honeylocust/chowdown/internal/repository"
)

const defaultLimit = 20

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Provider implements search.Provider over a vector-similarity store
type Provider struct {
	embedder Embedder
	store    repository.RestaurantStore
	limit    int
}

// NewProvider builds a vector provider
func NewProvider(embedder Embedder, store repository.RestaurantStore) (*Provider, error) {
	if embedder == nil {
		return nil, fmt.Errorf("vector provider: embedder is required")
	}
	if store == nil {
		return nil, fmt.Errorf("vector provider: store is required")
	}
	return &Provider{embedder: embedder, store: store, limit: defaultLimit}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return "vector"
}

// FetchPage embeds the vibe and returns one ranked batch. The store answers
// with a complete result set, so there is never a continuation token.
func (p *Provider) FetchPage(ctx context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error) {
	if pageToken != "" {
		// A single ranked batch is all the store produces.
		return domain.SearchPage{}, nil
	}

	embedding, err := p.embedder.Embed(ctx, q.Vibe)
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("embed vibe: %w", err)
	}

	minTier, maxTier, ok := q.Budget.TierRange()
	if !ok {
		minTier, maxTier = 0, 4
	}

	items, err := p.store.SimilarByEmbedding(ctx, embedding, minTier, maxTier, p.limit)
	if err != nil {
		return domain.SearchPage{}, err
	}

	return domain.SearchPage{Items: items}, nil
}

var _ search.Provider = (*Provider)(nil)
