// Package places is a thin client for the Google Places web service
// endpoints Chowdown uses: text search, nearby search, and place details.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

// NewClient instantiates a Google Places API client
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("places: api key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// TextSearch runs a free-text place query. A returned NextPageToken becomes
// valid upstream a moment after the page it came with; callers re-invoke
// with it rather than chaining immediately.
func (c *Client) TextSearch(ctx context.Context, params TextSearchParams) (SearchResponse, error) {
	if c == nil {
		return SearchResponse{}, fmt.Errorf("places: client is nil")
	}
	if params.Query == "" && params.PageToken == "" {
		return SearchResponse{}, fmt.Errorf("places: query is required")
	}

	values := url.Values{}
	values.Set("key", c.apiKey)
	values.Set("type", "restaurant")

	if params.PageToken != "" {
		values.Set("pagetoken", params.PageToken)
	} else {
		values.Set("query", params.Query)
		if params.Location != nil {
			values.Set("location", formatLatLng(*params.Location))
		}
		if params.RadiusMeters > 0 {
			values.Set("radius", strconv.Itoa(params.RadiusMeters))
		}
		if params.MinPrice != nil {
			values.Set("minprice", strconv.Itoa(*params.MinPrice))
		}
		if params.MaxPrice != nil {
			values.Set("maxprice", strconv.Itoa(*params.MaxPrice))
		}
	}

	return c.search(ctx, "/textsearch/json", values)
}

// NearbySearch lists places of one type around a point.
func (c *Client) NearbySearch(ctx context.Context, params NearbySearchParams) (SearchResponse, error) {
	if c == nil {
		return SearchResponse{}, fmt.Errorf("places: client is nil")
	}

	values := url.Values{}
	values.Set("key", c.apiKey)

	if params.PageToken != "" {
		values.Set("pagetoken", params.PageToken)
	} else {
		values.Set("location", formatLatLng(params.Location))
		values.Set("radius", strconv.Itoa(params.RadiusMeters))
		if params.PlaceType != "" {
			values.Set("type", params.PlaceType)
		}
	}

	return c.search(ctx, "/nearbysearch/json", values)
}

// Details fetches the richer payload for one place id, restricted to fields.
func (c *Client) Details(ctx context.Context, placeID string, fields []string) (Details, error) {
	if c == nil {
		return Details{}, fmt.Errorf("places: client is nil")
	}
	if placeID == "" {
		return Details{}, fmt.Errorf("places: place id is required")
	}

	values := url.Values{}
	values.Set("key", c.apiKey)
	values.Set("place_id", placeID)
	if len(fields) > 0 {
		values.Set("fields", strings.Join(fields, ","))
	}

	body, err := c.get(ctx, "/details/json", values)
	if err != nil {
		return Details{}, err
	}

	var payload detailsResponseBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return Details{}, fmt.Errorf("places: decode details response: %w", err)
	}

	if payload.Status != statusOK {
		return Details{}, statusError("details", payload.Status, payload.ErrorMessage)
	}

	return payload.Result, nil
}

func (c *Client) search(ctx context.Context, endpoint string, values url.Values) (SearchResponse, error) {
	body, err := c.get(ctx, endpoint, values)
	if err != nil {
		return SearchResponse{}, err
	}

	var payload searchResponseBody
	if err := json.Unmarshal(body, &payload); err != nil {
		return SearchResponse{}, fmt.Errorf("places: decode search response: %w", err)
	}

	switch payload.Status {
	case statusOK:
		return SearchResponse{Places: payload.Results, NextPageToken: payload.NextPageToken}, nil
	case statusZeroResults:
		return SearchResponse{}, nil
	default:
		return SearchResponse{}, statusError("search", payload.Status, payload.ErrorMessage)
	}
}

func (c *Client) get(ctx context.Context, endpoint string, values url.Values) ([]byte, error) {
	u := c.baseURL + endpoint + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("places: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("places: API error (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("places: read response: %w", err)
	}

	return body, nil
}

func statusError(op, status, message string) error {
	if message != "" {
		return fmt.Errorf("places: %s status %s: %s", op, status, message)
	}
	return fmt.Errorf("places: %s status %s", op, status)
}

func formatLatLng(ll LatLng) string {
	return strconv.FormatFloat(ll.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(ll.Lng, 'f', -1, 64)
}
