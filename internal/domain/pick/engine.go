// Package pick implements the candidate pool and selection engine behind the
// "spin the wheel" experience: it accumulates fetched candidates, tracks what
// has already been shown, soft-bans categories the user keeps skipping, and
// decides when another upstream page is needed.
package pick

import (
	"context"
	"math/rand"
	"sync"

	"github.com/honeylocust/chowdown/internal/domain"
)

// skipLimit is the number of explicit skips after which a category is
// considered exhausted and never offered again within the session.
const skipLimit = 2

// Adapter is the upstream search collaborator. pageToken is empty on the
// first fetch for a filter set.
type Adapter interface {
	FetchPage(ctx context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error)
}

// Outcome is the discrete result of a selection attempt.
type Outcome int

const (
	// OutcomePicked means Result.Pick holds the next candidate to show.
	OutcomePicked Outcome = iota
	// OutcomeNeedsRetry means the fetched page was filtered to nothing but
	// more pages exist upstream; the caller should invoke again.
	OutcomeNeedsRetry
	// OutcomeExhausted means no candidate remains under the current filters.
	OutcomeExhausted
	// OutcomeAdapterError means the upstream call failed; the caller should
	// fall back to a static list rather than leave the user empty-handed.
	OutcomeAdapterError
)

func (o Outcome) String() string {
	switch o {
	case OutcomePicked:
		return "picked"
	case OutcomeNeedsRetry:
		return "needs_retry"
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeAdapterError:
		return "adapter_error"
	default:
		return "unknown"
	}
}

// Result is what a SelectNext or Skip call produced.
type Result struct {
	Outcome Outcome
	Pick    *domain.Candidate // set when Outcome == OutcomePicked
	Err     error             // set when Outcome == OutcomeAdapterError
}

// Phase names the engine's externally visible state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseRevealing
	PhaseShowing
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseRevealing:
		return "revealing"
	case PhaseShowing:
		return "showing"
	case PhaseExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Engine owns one session's pool, seen set, skip counters and continuation
// token as a single unit behind one mutex. Winners are computed
// synchronously; any reveal animation is purely cosmetic and runs after the
// fact in the presentation layer.
type Engine struct {
	mu      sync.Mutex
	adapter Adapter
	intn    func(int) int

	filters   domain.SearchQuery
	phase     Phase
	pool      []domain.Candidate
	inPool    map[string]struct{}
	seen      map[string]struct{}
	skips     map[string]int
	pageToken string
}

// New builds an Engine around an upstream adapter.
func New(adapter Adapter, opts ...Option) (*Engine, error) {
	if adapter == nil {
		return nil, errNilAdapter
	}

	e := &Engine{
		adapter: adapter,
		intn:    rand.Intn,
	}
	e.resetLocked()

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// SetFilters installs a new filter set and discards all session state
// accumulated for the previous one.
func (e *Engine) SetFilters(q domain.SearchQuery) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.filters = q
	e.resetLocked()
}

// Filters returns the active filter set.
func (e *Engine) Filters() domain.SearchQuery {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filters
}

// Phase returns the engine's current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Revealed marks the cosmetic reveal as finished, moving Revealing to
// Showing. No selection state depends on it.
func (e *Engine) Revealed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase == PhaseRevealing {
		e.phase = PhaseShowing
	}
}

// PoolSize returns how many candidates have been accumulated.
func (e *Engine) PoolSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pool)
}

// SeenCount returns how many candidates have been shown.
func (e *Engine) SeenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.seen)
}

// SelectNext picks the next candidate to show. Order of checks:
//
//  1. An unseen, non-banned candidate already in the pool wins (no network).
//  2. Otherwise, if the pool is empty or a continuation token is stored, one
//     page is fetched. A page filtered to nothing yields NeedsRetry when a
//     further token exists (no auto-chaining) and Exhausted when it does not.
//  3. Otherwise the session is exhausted.
//
// Selection is always uniform over the eligible set; freshly fetched batches
// are preferred over the whole pool.
func (e *Engine) SelectNext(ctx context.Context) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectLocked(ctx, "")
}

// Skip rejects the current winner: its category's skip counter is bumped,
// and a replacement is drawn under the updated exclusions (the winner
// itself, everything seen, every banned category). When the pool has nothing
// left to offer, Skip falls through to the same fetch path as SelectNext.
func (e *Engine) Skip(ctx context.Context, winner domain.Candidate) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.skips[winner.Category]++
	return e.selectLocked(ctx, winner.ID)
}

// SkipCount returns how many times a category has been skipped.
func (e *Engine) SkipCount(category string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.skips[category]
}

func (e *Engine) resetLocked() {
	e.phase = PhaseIdle
	e.pool = nil
	e.inPool = make(map[string]struct{})
	e.seen = make(map[string]struct{})
	e.skips = make(map[string]int)
	e.pageToken = ""
}

func (e *Engine) bannedLocked(category string) bool {
	return e.skips[category] >= skipLimit
}

// eligibleLocked returns pool candidates that are unseen, not banned, and
// not excludeID. Skip and exhaustion share this path so their exclusion
// semantics cannot drift apart.
func (e *Engine) eligibleLocked(excludeID string) []domain.Candidate {
	var out []domain.Candidate
	for _, c := range e.pool {
		if c.ID == excludeID {
			continue
		}
		if _, ok := e.seen[c.ID]; ok {
			continue
		}
		if e.bannedLocked(c.Category) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (e *Engine) selectLocked(ctx context.Context, excludeID string) Result {
	if eligible := e.eligibleLocked(excludeID); len(eligible) > 0 {
		return e.pickLocked(eligible)
	}

	if len(e.pool) == 0 || e.pageToken != "" {
		return e.fetchAndPickLocked(ctx)
	}

	e.phase = PhaseExhausted
	return Result{Outcome: OutcomeExhausted}
}

func (e *Engine) fetchAndPickLocked(ctx context.Context) Result {
	e.phase = PhaseFetching

	page, err := e.adapter.FetchPage(ctx, e.filters, e.pageToken)
	if err != nil {
		e.phase = PhaseIdle
		return Result{Outcome: OutcomeAdapterError, Err: err}
	}

	fresh := e.admitLocked(page.Items)
	e.pageToken = page.NextPageToken

	if len(fresh) == 0 {
		if e.pageToken != "" {
			e.phase = PhaseIdle
			return Result{Outcome: OutcomeNeedsRetry}
		}
		e.phase = PhaseExhausted
		return Result{Outcome: OutcomeExhausted}
	}

	e.pool = append(e.pool, fresh...)
	return e.pickLocked(fresh)
}

// admitLocked filters a fetched batch: duplicates of pooled ids are dropped,
// banned categories are dropped, and the budget's tier range is re-applied
// strictly because upstream tier assignment is fuzzy.
func (e *Engine) admitLocked(items []domain.Candidate) []domain.Candidate {
	var fresh []domain.Candidate
	for _, c := range items {
		if _, dup := e.inPool[c.ID]; dup {
			continue
		}
		if e.bannedLocked(c.Category) {
			continue
		}
		if !e.filters.Budget.InRange(c.PriceTier) {
			continue
		}
		e.inPool[c.ID] = struct{}{}
		fresh = append(fresh, c)
	}
	return fresh
}

func (e *Engine) pickLocked(eligible []domain.Candidate) Result {
	winner := eligible[e.intn(len(eligible))]
	e.seen[winner.ID] = struct{}{}
	e.phase = PhaseRevealing
	return Result{Outcome: OutcomePicked, Pick: &winner}
}
