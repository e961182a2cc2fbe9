// Package config loads runtime settings for the Chowdown binaries by
// layering defaults, an optional YAML file, and CHOWDOWN_-prefixed
// environment variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Search backend variants for POST /restaurants.
const (
	ModePlaces = "places"
	ModeVector = "vector"
)

// Config contains runtime settings for the Chowdown server and pipeline
type Config struct {
	LogLevel   string `koanf:"log_level"`
	Addr       string `koanf:"addr"`
	SearchMode string `koanf:"search_mode"` // places or vector

	MetricsNamespace string `koanf:"metrics_namespace"`

	GoogleAPIKey string `koanf:"google_api_key"`

	OpenAIAPIKey     string `koanf:"openai_api_key"`
	OpenAIBaseURL    string `koanf:"openai_base_url"`
	OpenAIChatModel  string `koanf:"openai_chat_model"`
	OpenAIEmbedModel string `koanf:"openai_embed_model"`

	Neo4jURI      string `koanf:"neo4j_uri"`
	Neo4jUsername string `koanf:"neo4j_username"`
	Neo4jPassword string `koanf:"neo4j_password"`
	Neo4jDatabase string `koanf:"neo4j_database"`

	EmbeddingDimensions int `koanf:"embedding_dimensions"`

	HarvestRadiusMeters int `koanf:"harvest_radius_meters"`
	HarvestBatchSize    int `koanf:"harvest_batch_size"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		LogLevel:            "info",
		Addr:                "0.0.0.0:8080",
		SearchMode:          ModePlaces,
		MetricsNamespace:    "chowdown",
		EmbeddingDimensions: 1536,
		HarvestRadiusMeters: 500,
		HarvestBatchSize:    50,
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults
//  2. file (YAML) if CHOWDOWN_CONFIG is set
//  3. env (prefix CHOWDOWN_)
func Load() (Config, error) {
	cfg := Defaults()

	k := koanf.New(".")

	if path := os.Getenv("CHOWDOWN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	// CHOWDOWN_GOOGLE_API_KEY -> google_api_key (flat keys, underscores
	// preserved to match the koanf tags above).
	envProvider := env.Provider("CHOWDOWN_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "chowdown_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return cfg, fmt.Errorf("config: load env: %w", err)
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return cfg, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr must not be empty")
	}
	if c.SearchMode != ModePlaces && c.SearchMode != ModeVector {
		return fmt.Errorf("config: search_mode must be %q or %q, got %q", ModePlaces, ModeVector, c.SearchMode)
	}
	return nil
}

// HasNeo4j reports whether store credentials are present.
func (c Config) HasNeo4j() bool {
	return c.Neo4jURI != "" && c.Neo4jUsername != "" && c.Neo4jPassword != ""
}
