//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"github.com/honeylocust/chowdown/internal/config"
	"github.com/honeylocust/chowdown/internal/domain/search"
	placesProvider "github.com/honeylocust/chowdown/internal/domain/search/providers/places"
	"github.com/honeylocust/chowdown/internal/httpapi"
	"github.com/honeylocust/chowdown/pkg/logging"
	"github.com/honeylocust/chowdown/pkg/metrics"
	"github.com/honeylocust/chowdown/pkg/places"
)

// InitializePlacesServer wires the places-variant server graph. The manual
// Build in deps.go stays the runtime entry point because provider selection
// is config-dependent; this injector documents the graph for the static
// variant.
func InitializePlacesServer(cfg config.Config, logger *logging.Logger) (*Resources, error) {
	wire.Build(
		providePlacesConfig,
		places.NewClient,
		providePlacesProvider,
		provideSearchService,
		provideMetrics,
		httpapi.NewRestaurantsHandler,
		httpapi.NewServer,
		wire.Struct(new(Resources), "Config", "Logger", "Metrics", "Server"),
	)

	return &Resources{}, nil
}

// providePlacesConfig extracts places client config from main config
func providePlacesConfig(cfg config.Config) places.Config {
	return places.Config{APIKey: cfg.GoogleAPIKey}
}

// providePlacesProvider creates a places provider from the client
func providePlacesProvider(client *places.Client) (*placesProvider.Provider, error) {
	return placesProvider.NewProvider(client)
}

// provideSearchService builds the search service over the provider
func provideSearchService(provider *placesProvider.Provider, logger *logging.Logger) (search.Service, error) {
	return search.NewService(
		search.WithProvider(provider),
		search.WithLogger(logger),
	)
}

// provideMetrics builds the metrics manager
func provideMetrics(cfg config.Config) *metrics.Manager {
	return metrics.New(cfg.MetricsNamespace)
}
