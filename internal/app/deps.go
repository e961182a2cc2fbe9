// Package app assembles the Chowdown server from configuration: upstream
// clients, the search service for the configured variant, metrics, and the
// HTTP surface.
package app

import (
	"context"
	"fmt"

	"github.com/honeylocust/chowdown/internal/config"
	"github.com/honeylocust/chowdown/internal/domain/search"
	placesProvider "github.com/honeylocust/chowdown/internal/domain/search/providers/places"
	vectorProvider "github.com/honeylocust/chowdown/internal/domain/search/providers/vector"
	"github.com/honeylocust/chowdown/internal/httpapi"
	storage "github.com/honeylocust/chowdown/internal/storage/neo4j"
	"github.com/honeylocust/chowdown/pkg/logging"
	"github.com/honeylocust/chowdown/pkg/metrics"
	pkgneo4j "github.com/honeylocust/chowdown/pkg/neo4j"
	"github.com/honeylocust/chowdown/pkg/openai"
	"github.com/honeylocust/chowdown/pkg/places"
)

// Resources bundles everything the server binary needs at runtime.
type Resources struct {
	Config  config.Config
	Logger  *logging.Logger
	Metrics *metrics.Manager
	Server  *httpapi.Server

	// Neo4j is non-nil only in vector mode; the caller owns its shutdown.
	Neo4j *pkgneo4j.Client
}

// Build constructs Resources for the configured search mode. A missing
// credential does not fail the build: the handler then serves the static
// fallback list, which is the degradation policy the endpoint promises.
func Build(cfg config.Config, logger *logging.Logger) (*Resources, error) {
	m := metrics.New(cfg.MetricsNamespace)

	res := &Resources{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
	}

	var svc search.Service

	switch cfg.SearchMode {
	case config.ModePlaces:
		built, err := buildPlacesService(cfg, logger)
		if err != nil {
			logger.Warn("places search unavailable, serving fallback only", "err", err)
		} else {
			svc = built
			logger.Info("places search provider initialized")
		}

	case config.ModeVector:
		built, client, err := buildVectorService(cfg, logger)
		if err != nil {
			logger.Warn("vector search unavailable, serving fallback only", "err", err)
		} else {
			svc = built
			res.Neo4j = client
			logger.Info("vector search provider initialized")
		}

	default:
		return nil, fmt.Errorf("app: unknown search mode %q", cfg.SearchMode)
	}

	handler := httpapi.NewRestaurantsHandler(cfg, svc, logger, m)
	res.Server = httpapi.NewServer(logger, cfg, handler, m)

	return res, nil
}

func buildPlacesService(cfg config.Config, logger *logging.Logger) (search.Service, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("google api key missing")
	}

	client, err := places.NewClient(places.Config{APIKey: cfg.GoogleAPIKey})
	if err != nil {
		return nil, err
	}

	provider, err := placesProvider.NewProvider(client)
	if err != nil {
		return nil, err
	}

	return search.NewService(
		search.WithProvider(provider),
		search.WithLogger(logger),
	)
}

func buildVectorService(cfg config.Config, logger *logging.Logger) (search.Service, *pkgneo4j.Client, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, nil, fmt.Errorf("openai api key missing")
	}
	if !cfg.HasNeo4j() {
		return nil, nil, fmt.Errorf("neo4j credentials missing")
	}

	embedClient, err := openai.NewClient(openai.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		ChatModel:  cfg.OpenAIChatModel,
		EmbedModel: cfg.OpenAIEmbedModel,
	})
	if err != nil {
		return nil, nil, err
	}

	neoClient, err := pkgneo4j.NewClient(pkgneo4j.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUsername,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	})
	if err != nil {
		return nil, nil, err
	}

	repo := storage.NewRestaurantRepository(neoClient)

	provider, err := vectorProvider.NewProvider(embedClient, repo)
	if err != nil {
		_ = neoClient.Close(context.Background())
		return nil, nil, err
	}

	svc, err := search.NewService(
		search.WithProvider(provider),
		search.WithLogger(logger),
	)
	if err != nil {
		_ = neoClient.Close(context.Background())
		return nil, nil, err
	}

	return svc, neoClient, nil
}
