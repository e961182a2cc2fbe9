package domain

// Budget is the user-facing price preference.
type Budget string

const (
	BudgetLow    Budget = "low"
	BudgetMedium Budget = "medium"
	BudgetHigh   Budget = "high"
)

// TierRange maps a budget preference to the inclusive price-tier range it
// admits. Upstream tier filtering is best effort, so callers re-apply this
// range strictly on every fetched item.
func (b Budget) TierRange() (min, max int, ok bool) {
	switch b {
	case BudgetLow:
		return 0, 1, true
	case BudgetMedium:
		return 2, 2, true
	case BudgetHigh:
		return 3, 4, true
	default:
		return 0, 0, false
	}
}

// InRange reports whether tier falls inside the budget's admitted range.
// An unknown budget admits everything.
func (b Budget) InRange(tier int) bool {
	min, max, ok := b.TierRange()
	if !ok {
		return true
	}
	return tier >= min && tier <= max
}

// Transport is how the user plans to get to the restaurant.
type Transport string

const (
	TransportWalking Transport = "walking"
	TransportDriving Transport = "driving"
)

const (
	walkingRadiusMeters = 3218  // ~2 miles
	drivingRadiusMeters = 11265 // ~7 miles
)

// RadiusMeters returns the search radius for the transport mode. Unknown
// modes get the walking radius.
func (t Transport) RadiusMeters() int {
	if t == TransportDriving {
		return drivingRadiusMeters
	}
	return walkingRadiusMeters
}

// Candidate is one recommendable restaurant. IDs are upstream-assigned and
// unique within a search session only.
type Candidate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	PriceTier   int      `json:"priceTier"`
	Rating      float64  `json:"rating,omitempty"`
	RatingCount int      `json:"ratingCount,omitempty"`
	Address     string   `json:"address,omitempty"`
	Lat         float64  `json:"lat,omitempty"`
	Lng         float64  `json:"lng,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Website     string   `json:"website,omitempty"`
}

// SearchQuery is one filter set. Changing any field starts a new session:
// pool, seen set, skip counters and continuation token are all discarded.
type SearchQuery struct {
	LocationText string
	Lat          *float64
	Lng          *float64
	Vibe         string
	Budget       Budget
	Transport    Transport
}

// HasCoordinates reports whether the query carries an explicit lat/lng pair.
func (q SearchQuery) HasCoordinates() bool {
	return q.Lat != nil && q.Lng != nil
}

// SearchPage is one upstream batch. NextPageToken is empty when no further
// pages exist.
type SearchPage struct {
	Items         []Candidate
	NextPageToken string
}

// EnrichedRestaurant is a harvested candidate plus its vibe embedding, as
// stored for vector-similarity search.
type EnrichedRestaurant struct {
	Candidate
	Embedding []float32
}
