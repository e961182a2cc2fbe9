package places

import "net/http"

// Config defines Google Places API client settings
type Config struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client queries the Google Places web service
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// LatLng is a WGS84 coordinate pair
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TextSearchParams describe a free-text place search
type TextSearchParams struct {
	Query        string
	Location     *LatLng // optional bias point
	RadiusMeters int
	MinPrice     *int // 0-4
	MaxPrice     *int // 0-4
	PageToken    string
}

// NearbySearchParams describe a radius search around a point
type NearbySearchParams struct {
	Location     LatLng
	RadiusMeters int
	PlaceType    string
	PageToken    string
}

// Place is one search result. FormattedAddress is populated by text search,
// Vicinity by nearby search.
type Place struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Vicinity         string   `json:"vicinity"`
	PriceLevel       int      `json:"price_level"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
}

// Address returns whichever address field the endpoint populated.
func (p Place) Address() string {
	if p.FormattedAddress != "" {
		return p.FormattedAddress
	}
	return p.Vicinity
}

// SearchResponse is one page of search results plus the continuation token
// for the next page, if any.
type SearchResponse struct {
	Places        []Place
	NextPageToken string
}

// Details is the richer per-place payload from the details endpoint.
type Details struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	PriceLevel       int      `json:"price_level"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Website          string   `json:"website"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location LatLng `json:"location"`
	} `json:"geometry"`
	EditorialSummary struct {
		Overview string `json:"overview"`
	} `json:"editorial_summary"`
	Reviews []Review `json:"reviews"`
}

// Review is one user review attached to a place.
type Review struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
}

type searchResponseBody struct {
	Results       []Place `json:"results"`
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message"`
	NextPageToken string  `json:"next_page_token"`
}

type detailsResponseBody struct {
	Result       Details `json:"result"`
	Status       string  `json:"status"`
	ErrorMessage string  `json:"error_message"`
}
