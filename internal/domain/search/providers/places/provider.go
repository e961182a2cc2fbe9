// Package places adapts the Google Places client to the search.Provider
// contract.
package places

import (
	"context"
	"fmt"
	"strings"

	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/internal/domain/search"
	"github.com/honeylocust/chowdown/pkg/places"
)

// searchClient describes the subset of the places client used by the provider.
type searchClient interface {
	TextSearch(ctx context.Context, params places.TextSearchParams) (places.SearchResponse, error)
}

// Provider implements search.Provider using the Google Places web service
type Provider struct {
	client searchClient
}

// NewProvider builds a places provider
func NewProvider(client searchClient) (*Provider, error) {
	if client == nil {
		return nil, fmt.Errorf("places provider: client is required")
	}
	return &Provider{client: client}, nil
}

// Name returns provider identifier
func (p *Provider) Name() string {
	return "places"
}

// FetchPage runs one text-search page and normalizes the results
func (p *Provider) FetchPage(ctx context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error) {
	if p == nil || p.client == nil {
		return domain.SearchPage{}, fmt.Errorf("places provider: client is nil")
	}

	params := places.TextSearchParams{
		Query:        buildQuery(q),
		RadiusMeters: q.Transport.RadiusMeters(),
		PageToken:    pageToken,
	}

	if q.HasCoordinates() {
		params.Location = &places.LatLng{Lat: *q.Lat, Lng: *q.Lng}
	}

	if minTier, maxTier, ok := q.Budget.TierRange(); ok {
		params.MinPrice = &minTier
		params.MaxPrice = &maxTier
	}

	resp, err := p.client.TextSearch(ctx, params)
	if err != nil {
		return domain.SearchPage{}, err
	}

	items := make([]domain.Candidate, 0, len(resp.Places))
	for _, place := range resp.Places {
		items = append(items, domain.Candidate{
			ID:          place.PlaceID,
			Name:        place.Name,
			Category:    categoryOf(place.Types),
			PriceTier:   place.PriceLevel,
			Rating:      place.Rating,
			RatingCount: place.UserRatingsTotal,
			Address:     place.Address(),
			Lat:         place.Geometry.Location.Lat,
			Lng:         place.Geometry.Location.Lng,
		})
	}

	return domain.SearchPage{Items: items, NextPageToken: resp.NextPageToken}, nil
}

var _ search.Provider = (*Provider)(nil)

func buildQuery(q domain.SearchQuery) string {
	parts := []string{q.Vibe, "restaurant"}
	if !q.HasCoordinates() && q.LocationText != "" {
		parts = append(parts, "in", q.LocationText)
	}
	return strings.Join(parts, " ")
}

// genericTypes are place types too broad to group skips by.
var genericTypes = map[string]struct{}{
	"restaurant":        {},
	"food":              {},
	"point_of_interest": {},
	"establishment":     {},
	"meal_takeaway":     {},
	"meal_delivery":     {},
	"store":             {},
}

// categoryOf picks the most specific cuisine-ish type for skip grouping.
func categoryOf(types []string) string {
	for _, t := range types {
		if _, generic := genericTypes[t]; generic {
			continue
		}
		return strings.TrimSuffix(t, "_restaurant")
	}
	return "restaurant"
}
