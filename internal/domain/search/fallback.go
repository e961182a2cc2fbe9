package search

import "github.com/honeylocust/chowdown/internal/domain"

// Fallback returns the static emergency list served when upstream search is
// unavailable or comes back empty. The user always gets something to spin.
func Fallback() []domain.Candidate {
	return []domain.Candidate{
		{
			ID:        "fallback-thai-tom",
			Name:      "Thai Tom",
			Category:  "thai",
			PriceTier: 1,
			Rating:    4.5,
			Address:   "4543 University Way NE, Seattle, WA 98105",
			Summary:   "Tiny counter, roaring wok burners, a line out the door that moves fast.",
			Tags:      []string{"Spicy", "Cash Only", "Counter Seats"},
		},
		{
			ID:        "fallback-aladdins",
			Name:      "Aladdin's Gyro-Cery & Deli",
			Category:  "mediterranean",
			PriceTier: 1,
			Rating:    4.4,
			Address:   "4139 University Way NE, Seattle, WA 98105",
			Summary:   "Late-night gyros that have rescued two generations of finals week.",
			Tags:      []string{"Late Night", "Cheap Eats", "Takeout"},
		},
		{
			ID:        "fallback-shultzys",
			Name:      "Shultzy's Bar & Grill",
			Category:  "german",
			PriceTier: 2,
			Rating:    4.3,
			Address:   "4114 University Way NE, Seattle, WA 98105",
			Summary:   "House-made sausages and a deep beer list in a dim wood-paneled room.",
			Tags:      []string{"Beer", "Sausage", "Game Day"},
		},
		{
			ID:        "fallback-samirs",
			Name:      "Samir's Mediterranean Grill",
			Category:  "mediterranean",
			PriceTier: 1,
			Rating:    4.6,
			Address:   "4541 University Way NE, Seattle, WA 98105",
			Summary:   "Generous plates and the friendliest counter service on the Ave.",
			Tags:      []string{"Falafel", "Friendly", "Big Portions"},
		},
		{
			ID:        "fallback-portage-bay",
			Name:      "Portage Bay Cafe",
			Category:  "breakfast",
			PriceTier: 2,
			Rating:    4.5,
			Address:   "4130 Roosevelt Way NE, Seattle, WA 98105",
			Summary:   "Brunch institution with a toppings bar that turns pancakes into an event.",
			Tags:      []string{"Brunch", "Local Sourcing", "Weekend Wait"},
		},
	}
}
