package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/honeylocust/chowdown/internal/config"
	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/internal/domain/search"
	"github.com/honeylocust/chowdown/pkg/logging"
	"github.com/honeylocust/chowdown/pkg/metrics"
)

// placesRequest is the body for the places-search variant.
type placesRequest struct {
	Location  string   `json:"location"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
	Vibe      string   `json:"vibe"`
	Budget    string   `json:"budget"`
	Transport string   `json:"transport"`
	PageToken string   `json:"pageToken,omitempty"`
}

// vectorRequest is the body for the vector-search variant.
type vectorRequest struct {
	Vibe            string `json:"vibe"`
	PricePreference string `json:"price_preference"`
}

// restaurantsResponse is the common response envelope. A null nextPageToken
// means no further pages exist.
type restaurantsResponse struct {
	Restaurants   []domain.Candidate `json:"restaurants"`
	NextPageToken *string            `json:"nextPageToken"`
}

// RestaurantsHandler serves POST /restaurants. It is stateless: each call
// reshapes exactly one upstream request and response. Failures of any kind
// are masked as 200 responses carrying the static fallback list, never as
// HTTP errors, so the client always has something to offer.
type RestaurantsHandler struct {
	mode    string
	service search.Service // nil when credentials are missing
	logger  *logging.Logger
	metrics *metrics.Manager
}

// NewRestaurantsHandler builds the handler for the configured variant
func NewRestaurantsHandler(cfg config.Config, svc search.Service, log *logging.Logger, m *metrics.Manager) *RestaurantsHandler {
	return &RestaurantsHandler{
		mode:    cfg.SearchMode,
		service: svc,
		logger:  log,
		metrics: m,
	}
}

func (h *RestaurantsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if h.mode == config.ModeVector {
		h.handleVector(w, r)
		return
	}
	h.handlePlaces(w, r)
}

func (h *RestaurantsHandler) handlePlaces(w http.ResponseWriter, r *http.Request) {
	var req placesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("undecodable places request", "err", err)
		h.writeFallback(w)
		return
	}

	q := domain.SearchQuery{
		LocationText: req.Location,
		Lat:          req.Lat,
		Lng:          req.Lng,
		Vibe:         req.Vibe,
		Budget:       domain.Budget(req.Budget),
		Transport:    domain.Transport(req.Transport),
	}

	h.respond(w, r, q, req.PageToken)
}

func (h *RestaurantsHandler) handleVector(w http.ResponseWriter, r *http.Request) {
	var req vectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("undecodable vector request", "err", err)
		h.writeFallback(w)
		return
	}

	q := domain.SearchQuery{
		Vibe:   req.Vibe,
		Budget: domain.Budget(req.PricePreference),
	}

	h.respond(w, r, q, "")
}

func (h *RestaurantsHandler) respond(w http.ResponseWriter, r *http.Request, q domain.SearchQuery, pageToken string) {
	if h.service == nil {
		// Credentials were missing at startup; quality degrades, the
		// endpoint does not.
		h.writeFallback(w)
		return
	}

	page, err := h.service.Search(r.Context(), q, pageToken)
	h.metrics.UpstreamCall(h.mode, err)
	if err != nil {
		h.logger.Warn("search failed, serving fallback", "err", err)
		h.writeFallback(w)
		return
	}
	h.metrics.PageFetched()

	if len(page.Items) == 0 {
		if pageToken != "" {
			// An empty continuation page is not a global failure; the
			// client treats it as "this batch had nothing new".
			h.writeJSON(w, restaurantsResponse{Restaurants: []domain.Candidate{}, NextPageToken: tokenOrNil(page.NextPageToken)})
			return
		}
		h.writeFallback(w)
		return
	}

	h.writeJSON(w, restaurantsResponse{Restaurants: page.Items, NextPageToken: tokenOrNil(page.NextPageToken)})
}

func (h *RestaurantsHandler) writeFallback(w http.ResponseWriter) {
	h.metrics.FallbackServed()
	h.writeJSON(w, restaurantsResponse{Restaurants: search.Fallback(), NextPageToken: nil})
}

func (h *RestaurantsHandler) writeJSON(w http.ResponseWriter, payload restaurantsResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Warn("failed to encode response", "err", err)
	}
}

func tokenOrNil(token string) *string {
	if token == "" {
		return nil
	}
	return &token
}
