// Command harvester runs the offline ingestion pipeline: it sweeps Google
// Places around the seed anchors, enriches each restaurant through the chat
// model, embeds the summaries and upserts the results into Neo4j.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/honeylocust/chowdown/internal/config"
	"github.com/honeylocust/chowdown/internal/harvest"
	storage "github.com/honeylocust/chowdown/internal/storage/neo4j"
	"github.com/honeylocust/chowdown/pkg/logging"
	pkgneo4j "github.com/honeylocust/chowdown/pkg/neo4j"
	"github.com/honeylocust/chowdown/pkg/openai"
	"github.com/honeylocust/chowdown/pkg/places"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if cfg.GoogleAPIKey == "" || cfg.OpenAIAPIKey == "" || !cfg.HasNeo4j() {
		logger.Fatal("harvester requires google, openai and neo4j credentials")
	}

	placesClient, err := places.NewClient(places.Config{APIKey: cfg.GoogleAPIKey})
	if err != nil {
		logger.Fatal("failed to build places client", "err", err)
	}

	llm, err := openai.NewClient(openai.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		ChatModel:  cfg.OpenAIChatModel,
		EmbedModel: cfg.OpenAIEmbedModel,
	})
	if err != nil {
		logger.Fatal("failed to build openai client", "err", err)
	}

	neoClient, err := pkgneo4j.NewClient(pkgneo4j.Config{
		URI:      cfg.Neo4jURI,
		Username: cfg.Neo4jUsername,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	})
	if err != nil {
		logger.Fatal("failed to connect to neo4j", "err", err)
	}
	defer func() { _ = neoClient.Close(context.Background()) }()

	svc, err := harvest.NewService(placesClient, llm, storage.NewRestaurantRepository(neoClient), logger, harvest.Config{
		RadiusMeters:        cfg.HarvestRadiusMeters,
		BatchSize:           cfg.HarvestBatchSize,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
	})
	if err != nil {
		logger.Fatal("failed to build harvest service", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats, err := svc.Run(ctx)
	if err != nil {
		logger.Error("harvest failed", "err", err)
		os.Exit(1)
	}

	logger.Info("harvest finished",
		"found", stats.PlacesFound,
		"enriched", stats.Enriched,
		"skipped", stats.Skipped,
		"uploaded", stats.Uploaded,
	)
}
