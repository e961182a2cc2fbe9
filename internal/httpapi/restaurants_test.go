package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/honeylocust/chowdown/internal/config"
	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/internal/domain/search"
	"github.com/honeylocust/chowdown/pkg/logging"
	"github.com/honeylocust/chowdown/pkg/metrics"
)

type stubService struct {
	page domain.SearchPage
	err  error
	gotQ domain.SearchQuery
	tok  string
}

func (s *stubService) Search(_ context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error) {
	s.gotQ = q
	s.tok = pageToken
	return s.page, s.err
}

func newHandler(mode string, svc *stubService) *RestaurantsHandler {
	cfg := config.Defaults()
	cfg.SearchMode = mode

	var service search.Service
	if svc != nil {
		service = svc
	}

	return NewRestaurantsHandler(cfg, service, logging.NewNop(), metrics.New("test"))
}

func post(t *testing.T, h *RestaurantsHandler, body string) (*httptest.ResponseRecorder, restaurantsResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/restaurants", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	var resp restaurantsResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, resp
}

func TestPlacesVariantSuccess(t *testing.T) {
	svc := &stubService{page: domain.SearchPage{
		Items:         []domain.Candidate{{ID: "p1", Name: "Thai Tom", PriceTier: 1}},
		NextPageToken: "t2",
	}}
	h := newHandler(config.ModePlaces, svc)

	rec, resp := post(t, h, `{"location":"Seattle","vibe":"cozy","budget":"low","transport":"walking"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.gotQ.Vibe != "cozy" || svc.gotQ.Budget != domain.BudgetLow || svc.gotQ.Transport != domain.TransportWalking {
		t.Errorf("query not mapped: %+v", svc.gotQ)
	}
	if len(resp.Restaurants) != 1 || resp.Restaurants[0].ID != "p1" {
		t.Errorf("unexpected restaurants: %+v", resp.Restaurants)
	}
	if resp.NextPageToken == nil || *resp.NextPageToken != "t2" {
		t.Errorf("nextPageToken = %v", resp.NextPageToken)
	}
}

func TestMissingVibeServesFallback(t *testing.T) {
	svc := &stubService{err: errors.New("should not matter")}
	h := newHandler(config.ModePlaces, svc)

	rec, resp := post(t, h, `{"location":"Seattle","budget":"low"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, errors must be masked", rec.Code)
	}
	if len(resp.Restaurants) != 5 {
		t.Errorf("expected the 5-item fallback list, got %d", len(resp.Restaurants))
	}
}

func TestUpstreamFailureServesFallback(t *testing.T) {
	svc := &stubService{err: errors.New("places API down")}
	h := newHandler(config.ModePlaces, svc)

	rec, resp := post(t, h, `{"location":"Seattle","vibe":"anything","budget":"low"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, errors must be masked", rec.Code)
	}
	if len(resp.Restaurants) != 5 {
		t.Errorf("expected fallback list, got %d items", len(resp.Restaurants))
	}
	if resp.NextPageToken != nil {
		t.Errorf("fallback must not carry a token")
	}
}

func TestMissingCredentialsServesFallback(t *testing.T) {
	h := newHandler(config.ModePlaces, nil)

	rec, resp := post(t, h, `{"location":"Seattle","vibe":"anything"}`)
	if rec.Code != http.StatusOK || len(resp.Restaurants) != 5 {
		t.Errorf("status = %d, restaurants = %d", rec.Code, len(resp.Restaurants))
	}
}

func TestEmptyFirstPageServesFallback(t *testing.T) {
	svc := &stubService{page: domain.SearchPage{}}
	h := newHandler(config.ModePlaces, svc)

	_, resp := post(t, h, `{"location":"Seattle","vibe":"obscure"}`)
	if len(resp.Restaurants) != 5 {
		t.Errorf("an empty first page should serve fallback, got %d items", len(resp.Restaurants))
	}
}

func TestEmptyContinuationPageIsNotFallback(t *testing.T) {
	svc := &stubService{page: domain.SearchPage{NextPageToken: "t3"}}
	h := newHandler(config.ModePlaces, svc)

	_, resp := post(t, h, `{"location":"Seattle","vibe":"obscure","pageToken":"t2"}`)

	if svc.tok != "t2" {
		t.Errorf("pageToken not forwarded: %q", svc.tok)
	}
	if len(resp.Restaurants) != 0 {
		t.Errorf("a paginated empty page must stay empty, got %d items", len(resp.Restaurants))
	}
	if resp.NextPageToken == nil || *resp.NextPageToken != "t3" {
		t.Errorf("nextPageToken = %v", resp.NextPageToken)
	}
}

func TestVectorVariant(t *testing.T) {
	svc := &stubService{page: domain.SearchPage{
		Items: []domain.Candidate{{ID: "v1", Name: "Ba Bar", PriceTier: 2}},
	}}
	h := newHandler(config.ModeVector, svc)

	rec, resp := post(t, h, `{"vibe":"rainy day pho","price_preference":"medium"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if svc.gotQ.Vibe != "rainy day pho" || svc.gotQ.Budget != domain.BudgetMedium {
		t.Errorf("query not mapped: %+v", svc.gotQ)
	}
	if len(resp.Restaurants) != 1 || resp.NextPageToken != nil {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestVectorVariantEmptyServesFallback(t *testing.T) {
	svc := &stubService{page: domain.SearchPage{}}
	h := newHandler(config.ModeVector, svc)

	_, resp := post(t, h, `{"vibe":"nothing matches","price_preference":"high"}`)
	if len(resp.Restaurants) != 5 {
		t.Errorf("empty vector result should serve fallback, got %d", len(resp.Restaurants))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newHandler(config.ModePlaces, &stubService{})

	req := httptest.NewRequest(http.MethodGet, "/restaurants", nil)
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
