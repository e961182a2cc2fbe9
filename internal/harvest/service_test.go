package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/pkg/logging"
	"github.com/honeylocust/chowdown/pkg/places"
)

type stubPlaces struct {
	pages   []places.SearchResponse
	calls   []places.NearbySearchParams
	details map[string]places.Details
}

func (s *stubPlaces) NearbySearch(_ context.Context, params places.NearbySearchParams) (places.SearchResponse, error) {
	s.calls = append(s.calls, params)
	if len(s.pages) == 0 {
		return places.SearchResponse{}, nil
	}
	page := s.pages[0]
	s.pages = s.pages[1:]
	return page, nil
}

func (s *stubPlaces) Details(_ context.Context, placeID string, _ []string) (places.Details, error) {
	d, ok := s.details[placeID]
	if !ok {
		return places.Details{}, fmt.Errorf("no details for %s", placeID)
	}
	return d, nil
}

type stubRefiner struct {
	chatResponses []string
	chatErrs      []error
	chatCalls     int
	embedErr      error
}

func (s *stubRefiner) ChatJSON(_ context.Context, _, _ string) (json.RawMessage, error) {
	i := s.chatCalls
	s.chatCalls++
	if i < len(s.chatErrs) && s.chatErrs[i] != nil {
		return nil, s.chatErrs[i]
	}
	if i < len(s.chatResponses) {
		return json.RawMessage(s.chatResponses[i]), nil
	}
	return json.RawMessage(`{"summary":"A solid neighborhood spot.","tags":["Casual","Cheap Eats","Quick","Local","Cozy"]}`), nil
}

func (s *stubRefiner) Embed(_ context.Context, _ string) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type stubStore struct {
	indexDims int
	batches   [][]domain.EnrichedRestaurant
	upsertErr error
}

func (s *stubStore) EnsureVectorIndex(_ context.Context, dimensions int) error {
	s.indexDims = dimensions
	return nil
}

func (s *stubStore) UpsertRestaurants(_ context.Context, batch []domain.EnrichedRestaurant) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	copied := make([]domain.EnrichedRestaurant, len(batch))
	copy(copied, batch)
	s.batches = append(s.batches, copied)
	return nil
}

func (s *stubStore) SimilarByEmbedding(_ context.Context, _ []float32, _, _, _ int) ([]domain.Candidate, error) {
	return nil, nil
}

func detailsFor(id, name string, types ...string) places.Details {
	d := places.Details{
		PlaceID:          id,
		Name:             name,
		FormattedAddress: "4100 University Way NE",
		PriceLevel:       1,
		Rating:           4.4,
		UserRatingsTotal: 812,
		Types:            types,
	}
	d.Geometry.Location = places.LatLng{Lat: 47.658, Lng: -122.313}
	return d
}

func newService(t *testing.T, p *stubPlaces, r *stubRefiner, st *stubStore, cfg Config) *Service {
	t.Helper()
	svc, err := NewService(p, r, st, logging.NewNop(), cfg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	var slept []time.Duration
	svc.sleep = func(d time.Duration) { slept = append(slept, d) }
	return svc
}

func TestRun(t *testing.T) {
	Convey("Given a sweep that spans anchors and continuation pages", t, func() {
		p := &stubPlaces{
			pages: []places.SearchResponse{
				{Places: []places.Place{{PlaceID: "a"}, {PlaceID: "b"}}, NextPageToken: "page2"},
				{Places: []places.Place{{PlaceID: "b"}, {PlaceID: "c"}}},
				{Places: []places.Place{{PlaceID: "a"}}},
				{},
			},
			details: map[string]places.Details{
				"a": detailsFor("a", "Thai Tom", "thai_restaurant", "restaurant"),
				"b": detailsFor("b", "Shultzy's", "restaurant", "bar"),
				"c": detailsFor("c", "Portage Bay Cafe", "breakfast_restaurant"),
			},
		}
		st := &stubStore{}
		anchors := []places.LatLng{{Lat: 47.657, Lng: -122.313}, {Lat: 47.661, Lng: -122.313}, {Lat: 47.666, Lng: -122.313}}
		svc := newService(t, p, &stubRefiner{}, st, Config{Anchors: anchors, EmbeddingDimensions: 3})

		stats, err := svc.Run(context.Background())

		Convey("Then every unique place is enriched and uploaded once", func() {
			So(err, ShouldBeNil)
			So(stats.PlacesFound, ShouldEqual, 3)
			So(stats.Enriched, ShouldEqual, 3)
			So(stats.Skipped, ShouldEqual, 0)
			So(stats.Uploaded, ShouldEqual, 3)
			So(st.batches, ShouldHaveLength, 1)
			So(st.indexDims, ShouldEqual, 3)
		})

		Convey("Then continuation pages are requested by token alone", func() {
			So(p.calls, ShouldHaveLength, 4)
			So(p.calls[1].PageToken, ShouldEqual, "page2")
			So(p.calls[1].RadiusMeters, ShouldEqual, 0)
			So(p.calls[2].Location.Lat, ShouldEqual, 47.661)
		})

		Convey("Then categories come from the first non-generic place type", func() {
			byID := map[string]domain.EnrichedRestaurant{}
			for _, e := range st.batches[0] {
				byID[e.ID] = e
			}
			So(byID["a"].Category, ShouldEqual, "thai")
			So(byID["b"].Category, ShouldEqual, "bar")
			So(byID["c"].Category, ShouldEqual, "breakfast")
			So(byID["a"].Summary, ShouldNotBeEmpty)
			So(byID["a"].Embedding, ShouldHaveLength, 3)
		})
	})
}

func TestRunBatching(t *testing.T) {
	Convey("Given more places than one upload batch holds", t, func() {
		p := &stubPlaces{
			pages: []places.SearchResponse{
				{Places: []places.Place{{PlaceID: "a"}, {PlaceID: "b"}, {PlaceID: "c"}}},
			},
			details: map[string]places.Details{
				"a": detailsFor("a", "A", "thai_restaurant"),
				"b": detailsFor("b", "B", "pizza_restaurant"),
				"c": detailsFor("c", "C", "ramen_restaurant"),
			},
		}
		st := &stubStore{}
		svc := newService(t, p, &stubRefiner{}, st, Config{
			Anchors:   []places.LatLng{{Lat: 47.657, Lng: -122.313}},
			BatchSize: 2,
		})

		stats, err := svc.Run(context.Background())

		Convey("Then uploads are flushed in batch-size chunks plus a remainder", func() {
			So(err, ShouldBeNil)
			So(stats.Uploaded, ShouldEqual, 3)
			So(st.batches, ShouldHaveLength, 2)
			So(st.batches[0], ShouldHaveLength, 2)
			So(st.batches[1], ShouldHaveLength, 1)
		})
	})
}

func TestRunSkipsBadPlaces(t *testing.T) {
	Convey("Given a place whose details lookup fails", t, func() {
		p := &stubPlaces{
			pages: []places.SearchResponse{
				{Places: []places.Place{{PlaceID: "a"}, {PlaceID: "missing"}}},
			},
			details: map[string]places.Details{
				"a": detailsFor("a", "A", "thai_restaurant"),
			},
		}
		st := &stubStore{}
		svc := newService(t, p, &stubRefiner{}, st, Config{
			Anchors: []places.LatLng{{Lat: 47.657, Lng: -122.313}},
		})

		stats, err := svc.Run(context.Background())

		Convey("Then the run continues past it", func() {
			So(err, ShouldBeNil)
			So(stats.Skipped, ShouldEqual, 1)
			So(stats.Uploaded, ShouldEqual, 1)
		})
	})
}

func TestRefineRetries(t *testing.T) {
	Convey("Given a chat model that fails twice before answering", t, func() {
		r := &stubRefiner{
			chatErrs: []error{fmt.Errorf("rate limited"), fmt.Errorf("rate limited")},
			chatResponses: []string{"", "",
				`{"summary":"Late-night chaos, worth it.","tags":["Spicy","Late Night","Cash Only","Loud","Iconic"]}`,
			},
		}
		p := &stubPlaces{
			pages: []places.SearchResponse{
				{Places: []places.Place{{PlaceID: "a"}}},
			},
			details: map[string]places.Details{
				"a": detailsFor("a", "Thai Tom", "thai_restaurant"),
			},
		}
		st := &stubStore{}
		svc := newService(t, p, r, st, Config{
			Anchors: []places.LatLng{{Lat: 47.657, Lng: -122.313}},
		})

		stats, err := svc.Run(context.Background())

		Convey("Then the place is still uploaded after retries", func() {
			So(err, ShouldBeNil)
			So(r.chatCalls, ShouldEqual, 3)
			So(stats.Uploaded, ShouldEqual, 1)
			So(st.batches[0][0].Summary, ShouldEqual, "Late-night chaos, worth it.")
		})
	})

	Convey("Given a chat model that never answers validly", t, func() {
		r := &stubRefiner{
			chatResponses: []string{`{"summary":""}`, `not json`, `{"tags":["x"]}`},
		}
		p := &stubPlaces{
			pages: []places.SearchResponse{
				{Places: []places.Place{{PlaceID: "a"}}},
			},
			details: map[string]places.Details{
				"a": detailsFor("a", "Thai Tom", "thai_restaurant"),
			},
		}
		st := &stubStore{}
		svc := newService(t, p, r, st, Config{
			Anchors: []places.LatLng{{Lat: 47.657, Lng: -122.313}},
		})

		stats, err := svc.Run(context.Background())

		Convey("Then the place is skipped, not fatal", func() {
			So(err, ShouldBeNil)
			So(stats.Skipped, ShouldEqual, 1)
			So(stats.Uploaded, ShouldEqual, 0)
		})
	})
}

func TestParseRefinement(t *testing.T) {
	Convey("Given raw refinement payloads", t, func() {
		Convey("A valid payload parses", func() {
			ref, err := parseRefinement(json.RawMessage(`{"summary":"Cozy.","tags":["a","b"]}`))
			So(err, ShouldBeNil)
			So(ref.Summary, ShouldEqual, "Cozy.")
			So(ref.Tags, ShouldResemble, []string{"a", "b"})
		})

		Convey("An empty summary is rejected", func() {
			_, err := parseRefinement(json.RawMessage(`{"summary":"  ","tags":["a"]}`))
			So(err, ShouldNotBeNil)
		})
	})
}
