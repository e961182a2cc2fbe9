package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/internal/repository"

	pkgneo4j "github.com/honeylocust/chowdown/pkg/neo4j"
)

const vectorIndexName = "restaurant_embedding"

// Ensure RestaurantRepository implements repository.RestaurantStore
var _ repository.RestaurantStore = (*RestaurantRepository)(nil)

// RestaurantRepository implements repository.RestaurantStore with Neo4j
type RestaurantRepository struct {
	client *pkgneo4j.Client
}

// NewRestaurantRepository creates a RestaurantRepository with a Neo4j client
func NewRestaurantRepository(client *pkgneo4j.Client) *RestaurantRepository {
	return &RestaurantRepository{
		client: client,
	}
}

// EnsureVectorIndex creates the cosine vector index over embeddings
func (r *RestaurantRepository) EnsureVectorIndex(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("neo4j: vector index dimensions must be positive")
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (r:Restaurant) ON (r.embedding)
		OPTIONS {indexConfig: {
			`+"`vector.dimensions`"+`: $dimensions,
			`+"`vector.similarity_function`"+`: 'cosine'
		}}
	`, vectorIndexName)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]interface{}{"dimensions": dimensions})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	return err
}

// UpsertRestaurants will merge and set restaurant data in Neo4j
func (r *RestaurantRepository) UpsertRestaurants(ctx context.Context, restaurants []domain.EnrichedRestaurant) error {
	if len(restaurants) == 0 {
		return nil
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		UNWIND $restaurants AS row
		MERGE (r:Restaurant {placeId: row.placeId})
		SET r.name = row.name,
		    r.category = row.category,
		    r.priceLevel = row.priceLevel,
		    r.rating = row.rating,
		    r.ratingCount = row.ratingCount,
		    r.address = row.address,
		    r.lat = row.lat,
		    r.lng = row.lng,
		    r.summary = row.summary,
		    r.tags = row.tags,
		    r.website = row.website
		WITH r, row
		CALL db.create.setNodeVectorProperty(r, 'embedding', row.embedding)
	`

	rows := make([]map[string]interface{}, 0, len(restaurants))
	for _, rest := range restaurants {
		embedding := make([]float64, len(rest.Embedding))
		for i, v := range rest.Embedding {
			embedding[i] = float64(v)
		}

		rows = append(rows, map[string]interface{}{
			"placeId":     rest.ID,
			"name":        rest.Name,
			"category":    rest.Category,
			"priceLevel":  rest.PriceTier,
			"rating":      rest.Rating,
			"ratingCount": rest.RatingCount,
			"address":     rest.Address,
			"lat":         rest.Lat,
			"lng":         rest.Lng,
			"summary":     rest.Summary,
			"tags":        rest.Tags,
			"website":     rest.Website,
			"embedding":   embedding,
		})
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]interface{}{"restaurants": rows})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	return err
}

// SimilarByEmbedding queries the vector index and post-filters by price tier
func (r *RestaurantRepository) SimilarByEmbedding(ctx context.Context, embedding []float32, minTier, maxTier, limit int) ([]domain.Candidate, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("neo4j: query embedding is empty")
	}
	if limit <= 0 {
		limit = 20
	}

	session := r.client.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	// Over-fetch before the tier filter so a narrow budget still fills the
	// requested limit.
	query := `
		CALL db.index.vector.queryNodes($index, $k, $embedding)
		YIELD node, score
		WHERE node.priceLevel >= $minTier AND node.priceLevel <= $maxTier
		RETURN node, score
		ORDER BY score DESC
		LIMIT $limit
	`

	vector := make([]float64, len(embedding))
	for i, v := range embedding {
		vector[i] = float64(v)
	}

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]interface{}{
			"index":     vectorIndexName,
			"k":         limit * 4,
			"embedding": vector,
			"minTier":   minTier,
			"maxTier":   maxTier,
			"limit":     limit,
		})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: vector query: %w", err)
	}

	collected, ok := records.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("neo4j: unexpected result type %T", records)
	}

	candidates := make([]domain.Candidate, 0, len(collected))
	for _, record := range collected {
		nodeValue, found := record.Get("node")
		if !found {
			continue
		}
		node, ok := nodeValue.(neo4j.Node)
		if !ok {
			continue
		}
		candidates = append(candidates, nodeToCandidate(node))
	}

	return candidates, nil
}

func nodeToCandidate(node neo4j.Node) domain.Candidate {
	c := domain.Candidate{
		ID:          stringProp(node, "placeId"),
		Name:        stringProp(node, "name"),
		Category:    stringProp(node, "category"),
		PriceTier:   intProp(node, "priceLevel"),
		Rating:      floatProp(node, "rating"),
		RatingCount: intProp(node, "ratingCount"),
		Address:     stringProp(node, "address"),
		Lat:         floatProp(node, "lat"),
		Lng:         floatProp(node, "lng"),
		Summary:     stringProp(node, "summary"),
		Website:     stringProp(node, "website"),
	}

	if raw, ok := node.Props["tags"].([]any); ok {
		tags := make([]string, 0, len(raw))
		for _, t := range raw {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		c.Tags = tags
	}

	return c
}

func stringProp(node neo4j.Node, key string) string {
	if v, ok := node.Props[key].(string); ok {
		return v
	}
	return ""
}

func intProp(node neo4j.Node, key string) int {
	if v, ok := node.Props[key].(int64); ok {
		return int(v)
	}
	return 0
}

func floatProp(node neo4j.Node, key string) float64 {
	switch v := node.Props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	default:
		return 0
	}
}
