// Package search fronts the upstream restaurant sources: it validates the
// filter set, fans the call out to the configured provider, and cleans up
// the returned batch (id dedup, strict price-tier re-filtering).
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/pkg/logging"
)

// ErrMissingVibe is returned when the free-text vibe is absent. Callers at
// the HTTP boundary translate it into fallback content, never a hard error.
var ErrMissingVibe = errors.New("search: vibe is required")

type Service interface {
	Search(ctx context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error)
}

// Option configures Service
type Option func(*config)

type config struct {
	provider Provider
	logger   *logging.Logger
}

// WithProvider sets the upstream provider
func WithProvider(p Provider) Option {
	return func(c *config) {
		c.provider = p
	}
}

// WithLogger sets the logger
func WithLogger(log *logging.Logger) Option {
	return func(c *config) {
		c.logger = log
	}
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.provider == nil {
		return nil, fmt.Errorf("search.Service: a provider is required")
	}

	return &service{
		provider: cfg.provider,
		logger:   cfg.logger,
	}, nil
}

type service struct {
	provider Provider
	logger   *logging.Logger
}

// Search queries the provider and returns one cleaned batch
func (s *service) Search(ctx context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error) {
	if q.Vibe == "" {
		return domain.SearchPage{}, ErrMissingVibe
	}

	page, err := s.provider.FetchPage(ctx, q, pageToken)
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("search: %s: %w", s.provider.Name(), err)
	}

	kept := make([]domain.Candidate, 0, len(page.Items))
	seen := make(map[string]struct{}, len(page.Items))
	dropped := 0
	for _, c := range page.Items {
		if c.ID == "" {
			dropped++
			continue
		}
		if _, dup := seen[c.ID]; dup {
			dropped++
			continue
		}
		// Upstream tier filtering is best effort only; re-apply the
		// budget range strictly.
		if !q.Budget.InRange(c.PriceTier) {
			dropped++
			continue
		}
		seen[c.ID] = struct{}{}
		kept = append(kept, c)
	}

	if s.logger != nil && dropped > 0 {
		s.logger.Debug("filtered upstream batch",
			"provider", s.provider.Name(),
			"received", len(page.Items),
			"kept", len(kept),
		)
	}

	return domain.SearchPage{Items: kept, NextPageToken: page.NextPageToken}, nil
}
