package search

import (
	"context"
	"errors"
	"testing"

	"github.com/honeylocust/chowdown/internal/domain"
)

type fakeProvider struct {
	page domain.SearchPage
	err  error
	gotQ domain.SearchQuery
	tok  string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchPage(_ context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error) {
	f.gotQ = q
	f.tok = pageToken
	return f.page, f.err
}

func TestSearchValidation(t *testing.T) {
	svc, err := NewService(WithProvider(&fakeProvider{}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Search(context.Background(), domain.SearchQuery{}, "")
	if !errors.Is(err, ErrMissingVibe) {
		t.Fatalf("expected ErrMissingVibe, got %v", err)
	}
}

func TestSearchCleansBatch(t *testing.T) {
	provider := &fakeProvider{page: domain.SearchPage{
		Items: []domain.Candidate{
			{ID: "a", Name: "A", PriceTier: 2},
			{ID: "a", Name: "A again", PriceTier: 2}, // duplicate id
			{ID: "", Name: "no id", PriceTier: 2},
			{ID: "b", Name: "B", PriceTier: 1}, // outside medium range
			{ID: "c", Name: "C", PriceTier: 2},
		},
		NextPageToken: "next",
	}}

	svc, err := NewService(WithProvider(provider))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	page, err := svc.Search(context.Background(), domain.SearchQuery{Vibe: "cozy", Budget: domain.BudgetMedium}, "tok")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if provider.tok != "tok" {
		t.Errorf("pageToken not forwarded, got %q", provider.tok)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 kept items, got %d: %+v", len(page.Items), page.Items)
	}
	if page.Items[0].ID != "a" || page.Items[1].ID != "c" {
		t.Errorf("unexpected kept ids: %q, %q", page.Items[0].ID, page.Items[1].ID)
	}
	if page.NextPageToken != "next" {
		t.Errorf("NextPageToken = %q, want %q", page.NextPageToken, "next")
	}
}

func TestSearchWrapsProviderError(t *testing.T) {
	boom := errors.New("quota exceeded")
	svc, err := NewService(WithProvider(&fakeProvider{err: boom}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Search(context.Background(), domain.SearchQuery{Vibe: "anything"}, "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped provider error, got %v", err)
	}
}

func TestTierRanges(t *testing.T) {
	cases := []struct {
		budget   domain.Budget
		min, max int
	}{
		{domain.BudgetLow, 0, 1},
		{domain.BudgetMedium, 2, 2},
		{domain.BudgetHigh, 3, 4},
	}

	for _, tc := range cases {
		min, max, ok := tc.budget.TierRange()
		if !ok {
			t.Errorf("%s: expected a defined range", tc.budget)
			continue
		}
		if min != tc.min || max != tc.max {
			t.Errorf("%s: range [%d,%d], want [%d,%d]", tc.budget, min, max, tc.min, tc.max)
		}
	}

	if _, _, ok := domain.Budget("lavish").TierRange(); ok {
		t.Error("unknown budget should have no defined range")
	}
}

func TestRadiusMapping(t *testing.T) {
	if got := domain.TransportWalking.RadiusMeters(); got != 3218 {
		t.Errorf("walking radius = %d, want 3218", got)
	}
	if got := domain.TransportDriving.RadiusMeters(); got != 11265 {
		t.Errorf("driving radius = %d, want 11265", got)
	}
	if got := domain.Transport("teleport").RadiusMeters(); got != 3218 {
		t.Errorf("unknown transport radius = %d, want walking default", got)
	}
}

func TestFallbackShape(t *testing.T) {
	list := Fallback()
	if len(list) != 5 {
		t.Fatalf("fallback list has %d entries, want 5", len(list))
	}
	seen := make(map[string]struct{})
	for _, c := range list {
		if c.ID == "" || c.Name == "" {
			t.Errorf("fallback entry missing id or name: %+v", c)
		}
		if _, dup := seen[c.ID]; dup {
			t.Errorf("duplicate fallback id %q", c.ID)
		}
		seen[c.ID] = struct{}{}
	}
}
