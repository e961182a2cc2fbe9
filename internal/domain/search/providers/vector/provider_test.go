package vector

import (
	"context"
	"testing"

	"github.com/honeylocust/chowdown/internal/domain"
)

type fakeEmbedder struct {
	gotText string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.gotText = text
	return []float32{0.1, 0.2}, nil
}

type fakeStore struct {
	gotMin, gotMax, gotLimit int
	out                      []domain.Candidate
}

func (f *fakeStore) EnsureVectorIndex(context.Context, int) error { return nil }

func (f *fakeStore) UpsertRestaurants(context.Context, []domain.EnrichedRestaurant) error {
	return nil
}

func (f *fakeStore) SimilarByEmbedding(_ context.Context, _ []float32, minTier, maxTier, limit int) ([]domain.Candidate, error) {
	f.gotMin, f.gotMax, f.gotLimit = minTier, maxTier, limit
	return f.out, nil
}

func TestFetchPageEmbedsVibe(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{out: []domain.Candidate{{ID: "r1", Name: "Ba Bar", PriceTier: 2}}}

	provider, err := NewProvider(embedder, store)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	page, err := provider.FetchPage(context.Background(), domain.SearchQuery{Vibe: "rainy day pho", Budget: domain.BudgetMedium}, "")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}

	if embedder.gotText != "rainy day pho" {
		t.Errorf("embedded text = %q", embedder.gotText)
	}
	if store.gotMin != 2 || store.gotMax != 2 {
		t.Errorf("tier range = [%d,%d], want [2,2]", store.gotMin, store.gotMax)
	}
	if len(page.Items) != 1 || page.NextPageToken != "" {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestFetchPageWithTokenIsEmpty(t *testing.T) {
	provider, _ := NewProvider(&fakeEmbedder{}, &fakeStore{})

	page, err := provider.FetchPage(context.Background(), domain.SearchQuery{Vibe: "anything"}, "stale-token")
	if err != nil {
		t.Fatalf("FetchPage: %v", err)
	}
	if len(page.Items) != 0 || page.NextPageToken != "" {
		t.Errorf("token fetch should be empty, got %+v", page)
	}
}
