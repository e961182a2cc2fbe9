// Package harvest implements the offline ingestion pipeline behind the
// vector-search variant: sweep Google Places around fixed anchor points,
// enrich each place with a critic-style summary and tags from a chat model,
// embed the summary, and upsert everything into the restaurant store.
package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/internal/repository"
	"github.com/honeylocust/chowdown/pkg/logging"
	"github.com/honeylocust/chowdown/pkg/places"
)

const (
	nearbyPlaceType = "restaurant"

	// Continuation tokens from the nearby endpoint need a moment to become
	// valid upstream.
	pageTokenWarmup = 2 * time.Second

	maxRefineAttempts = 3

	refineSystemPrompt = "You are a local Seattle food critic. Analyze the reviews and summary. " +
		"Output a strict JSON object with two fields: " +
		"1. summary: A 1-sentence 'vibe check' description " +
		"(e.g. 'A chaotic but authentic late-night spot...'). " +
		"2. tags: A list of 5 short, punchy tags " +
		"(e.g. ['Study Friendly', 'Spicy', 'Date Night'])."
)

var detailFields = []string{
	"place_id",
	"name",
	"formatted_address",
	"price_level",
	"rating",
	"user_ratings_total",
	"website",
	"geometry",
	"types",
	"editorial_summary",
	"reviews",
}

// DefaultAnchors cover the University District corridor the seed dataset
// was built around.
var DefaultAnchors = []places.LatLng{
	{Lat: 47.6570, Lng: -122.3131},
	{Lat: 47.6612, Lng: -122.3131},
	{Lat: 47.6660, Lng: -122.3131},
}

// placesAPI describes the subset of the places client the pipeline uses.
type placesAPI interface {
	NearbySearch(ctx context.Context, params places.NearbySearchParams) (places.SearchResponse, error)
	Details(ctx context.Context, placeID string, fields []string) (places.Details, error)
}

// refiner describes the chat/embedding calls the pipeline uses.
type refiner interface {
	ChatJSON(ctx context.Context, system, user string) (json.RawMessage, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds pipeline settings
type Config struct {
	Anchors             []places.LatLng
	RadiusMeters        int
	BatchSize           int
	EmbeddingDimensions int
}

// Stats summarizes one pipeline run
type Stats struct {
	PlacesFound int
	Enriched    int
	Skipped     int
	Uploaded    int
}

// Service runs the harvest pipeline
type Service struct {
	places placesAPI
	llm    refiner
	store  repository.RestaurantStore
	logger *logging.Logger
	cfg    Config
	sleep  func(time.Duration)
}

// NewService builds the pipeline service
func NewService(placesClient placesAPI, llm refiner, store repository.RestaurantStore, logger *logging.Logger, cfg Config) (*Service, error) {
	if placesClient == nil || llm == nil || store == nil {
		return nil, fmt.Errorf("harvest: places client, refiner and store are all required")
	}

	if len(cfg.Anchors) == 0 {
		cfg.Anchors = DefaultAnchors
	}
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = 500
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.EmbeddingDimensions <= 0 {
		cfg.EmbeddingDimensions = 1536
	}

	return &Service{
		places: placesClient,
		llm:    llm,
		store:  store,
		logger: logger,
		cfg:    cfg,
		sleep:  time.Sleep,
	}, nil
}

// Run executes one full harvest sweep.
func (s *Service) Run(ctx context.Context) (Stats, error) {
	runID := uuid.NewString()
	log := s.logger.With("run_id", runID)

	var stats Stats

	if err := s.store.EnsureVectorIndex(ctx, s.cfg.EmbeddingDimensions); err != nil {
		return stats, fmt.Errorf("harvest: ensure vector index: %w", err)
	}

	ids, err := s.collectPlaceIDs(ctx, log)
	if err != nil {
		return stats, err
	}
	stats.PlacesFound = len(ids)
	log.Info("nearby sweep complete", "places", len(ids))

	batch := make([]domain.EnrichedRestaurant, 0, s.cfg.BatchSize)
	for _, id := range ids {
		enriched, err := s.enrichPlace(ctx, id)
		if err != nil {
			log.Warn("skipping place", "place_id", id, "err", err)
			stats.Skipped++
			continue
		}
		stats.Enriched++

		batch = append(batch, enriched)
		if len(batch) >= s.cfg.BatchSize {
			if err := s.store.UpsertRestaurants(ctx, batch); err != nil {
				return stats, fmt.Errorf("harvest: upsert batch: %w", err)
			}
			stats.Uploaded += len(batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.store.UpsertRestaurants(ctx, batch); err != nil {
			return stats, fmt.Errorf("harvest: upsert final batch: %w", err)
		}
		stats.Uploaded += len(batch)
	}

	log.Info("harvest complete",
		"found", stats.PlacesFound,
		"enriched", stats.Enriched,
		"skipped", stats.Skipped,
		"uploaded", stats.Uploaded,
	)

	return stats, nil
}

// collectPlaceIDs sweeps every anchor with the page-token loop and returns
// unique place ids in first-seen order.
func (s *Service) collectPlaceIDs(ctx context.Context, log *logging.Logger) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string

	for _, anchor := range s.cfg.Anchors {
		params := places.NearbySearchParams{
			Location:     anchor,
			RadiusMeters: s.cfg.RadiusMeters,
			PlaceType:    nearbyPlaceType,
		}

		for {
			resp, err := s.places.NearbySearch(ctx, params)
			if err != nil {
				return nil, fmt.Errorf("harvest: nearby search: %w", err)
			}

			for _, p := range resp.Places {
				if p.PlaceID == "" {
					continue
				}
				if _, dup := seen[p.PlaceID]; dup {
					continue
				}
				seen[p.PlaceID] = struct{}{}
				ids = append(ids, p.PlaceID)
			}

			if resp.NextPageToken == "" {
				break
			}
			s.sleep(pageTokenWarmup)
			params = places.NearbySearchParams{PageToken: resp.NextPageToken}
		}

		log.Debug("anchor swept", "lat", anchor.Lat, "lng", anchor.Lng, "total", len(ids))
	}

	return ids, nil
}

func (s *Service) enrichPlace(ctx context.Context, placeID string) (domain.EnrichedRestaurant, error) {
	details, err := s.places.Details(ctx, placeID, detailFields)
	if err != nil {
		return domain.EnrichedRestaurant{}, fmt.Errorf("details: %w", err)
	}

	ref, err := s.refine(ctx, details)
	if err != nil {
		return domain.EnrichedRestaurant{}, fmt.Errorf("refine: %w", err)
	}

	embedding, err := s.llm.Embed(ctx, ref.Summary)
	if err != nil {
		return domain.EnrichedRestaurant{}, fmt.Errorf("embed: %w", err)
	}

	return domain.EnrichedRestaurant{
		Candidate: domain.Candidate{
			ID:          details.PlaceID,
			Name:        details.Name,
			Category:    categoryOf(details.Types),
			PriceTier:   details.PriceLevel,
			Rating:      details.Rating,
			RatingCount: details.UserRatingsTotal,
			Address:     details.FormattedAddress,
			Lat:         details.Geometry.Location.Lat,
			Lng:         details.Geometry.Location.Lng,
			Summary:     ref.Summary,
			Tags:        ref.Tags,
			Website:     details.Website,
		},
		Embedding: embedding,
	}, nil
}

type refinement struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// refine asks the chat model for the vibe summary and tags, retrying with
// exponential backoff on transient failures.
func (s *Service) refine(ctx context.Context, details places.Details) (refinement, error) {
	prompt := buildRefinePrompt(details)

	var lastErr error
	backoff := time.Second
	for attempt := 0; attempt < maxRefineAttempts; attempt++ {
		if attempt > 0 {
			s.sleep(backoff)
			backoff *= 2
		}

		raw, err := s.llm.ChatJSON(ctx, refineSystemPrompt, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		ref, err := parseRefinement(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return ref, nil
	}

	return refinement{}, fmt.Errorf("after %d attempts: %w", maxRefineAttempts, lastErr)
}

func parseRefinement(raw json.RawMessage) (refinement, error) {
	var ref refinement
	if err := json.Unmarshal(raw, &ref); err != nil {
		return refinement{}, fmt.Errorf("decode refinement: %w", err)
	}
	if strings.TrimSpace(ref.Summary) == "" {
		return refinement{}, fmt.Errorf("refinement summary is empty")
	}
	return ref, nil
}

func buildRefinePrompt(details places.Details) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Name: %s\n", details.Name)
	if details.EditorialSummary.Overview != "" {
		fmt.Fprintf(&b, "Summary: %s\n", details.EditorialSummary.Overview)
	}
	for i, review := range details.Reviews {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&b, "Review (%d stars): %s\n", review.Rating, review.Text)
	}

	return b.String()
}

var genericTypes = map[string]struct{}{
	"restaurant":        {},
	"food":              {},
	"point_of_interest": {},
	"establishment":     {},
	"meal_takeaway":     {},
	"meal_delivery":     {},
	"store":             {},
}

func categoryOf(types []string) string {
	for _, t := range types {
		if _, generic := genericTypes[t]; generic {
			continue
		}
		return strings.TrimSuffix(t, "_restaurant")
	}
	return "restaurant"
}
