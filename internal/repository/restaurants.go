package repository

import (
	"context"

	"github.com/honeylocust/chowdown/internal/domain"
)

// RestaurantStore defines the storage operations behind the vector-search
// variant and the harvest pipeline.
type RestaurantStore interface {
	// EnsureVectorIndex creates the embedding index if it does not exist.
	EnsureVectorIndex(ctx context.Context, dimensions int) error

	// UpsertRestaurants merges harvested restaurants with their embeddings.
	UpsertRestaurants(ctx context.Context, restaurants []domain.EnrichedRestaurant) error

	// SimilarByEmbedding returns up to limit restaurants nearest to the
	// query vector whose price tier falls in [minTier, maxTier].
	SimilarByEmbedding(ctx context.Context, embedding []float32, minTier, maxTier, limit int) ([]domain.Candidate, error)
}
