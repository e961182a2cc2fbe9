package pick

import (
	"errors"

	"github.com/honeylocust/chowdown/internal/domain"
)

var errNilAdapter = errors.New("pick: adapter is required")

// Option configures an Engine.
type Option func(*Engine)

// WithRand overrides the uniform source used to choose among eligible
// candidates. n is guaranteed > 0; the return value must be in [0, n).
// Intended for deterministic tests.
func WithRand(intn func(n int) int) Option {
	return func(e *Engine) {
		if intn != nil {
			e.intn = intn
		}
	}
}

// WithFilters installs an initial filter set.
func WithFilters(q domain.SearchQuery) Option {
	return func(e *Engine) {
		e.filters = q
	}
}
