// Command chow is an interactive terminal client for the Chowdown server.
// It collects filters, then spins through candidates one at a time: accept
// the pick, skip it, or start over with new filters. Skipping the same
// cuisine twice removes that cuisine from the running.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/honeylocust/chowdown/internal/domain"
	"github.com/honeylocust/chowdown/internal/domain/pick"
	"github.com/honeylocust/chowdown/internal/domain/search"
)

const requestTimeout = 15 * time.Second

func main() {
	addr := flag.String("addr", "http://localhost:8080", "chowdown server base URL")
	mode := flag.String("mode", "places", "request variant: places or vector")
	flag.Parse()

	if *mode != "places" && *mode != "vector" {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(1)
	}

	in := bufio.NewScanner(os.Stdin)

	fmt.Println("chowdown — let's find you a restaurant")

	adapter := &apiAdapter{
		baseURL: strings.TrimRight(*addr, "/"),
		mode:    *mode,
		client:  &http.Client{Timeout: requestTimeout},
	}

	engine, err := pick.New(adapter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine: %v\n", err)
		os.Exit(1)
	}
	engine.SetFilters(promptFilters(in, *mode))

	runLoop(in, engine, *mode)
}

// runLoop drives the select/skip session until the user accepts a pick or
// quits.
func runLoop(in *bufio.Scanner, engine *pick.Engine, mode string) {
	ctx := context.Background()

	result := spinFor(ctx, engine.SelectNext)
	for {
		switch result.Outcome {
		case pick.OutcomePicked:
			winner := *result.Pick
			printCard(winner)
			engine.Revealed()

			switch prompt(in, "[enter] go there  [s]kip  [n]ew filters  [q]uit > ") {
			case "s":
				if engine.SkipCount(winner.Category) == 1 {
					fmt.Printf("okay, no more %s tonight.\n", winner.Category)
				}
				result = spinFor(ctx, func(ctx context.Context) pick.Result {
					return engine.Skip(ctx, winner)
				})
			case "n":
				engine.SetFilters(promptFilters(in, mode))
				result = spinFor(ctx, engine.SelectNext)
			case "q":
				fmt.Println("bye!")
				return
			default:
				fmt.Printf("enjoy %s!\n", winner.Name)
				return
			}

		case pick.OutcomeNeedsRetry:
			fmt.Println("nothing on that page matched, checking the next one...")
			result = spinFor(ctx, engine.SelectNext)

		case pick.OutcomeExhausted:
			fmt.Println("that's everything that matched. try different filters?")
			switch prompt(in, "[n]ew filters  [q]uit > ") {
			case "n":
				engine.SetFilters(promptFilters(in, mode))
				result = spinFor(ctx, engine.SelectNext)
			default:
				fmt.Println("bye!")
				return
			}

		case pick.OutcomeAdapterError:
			fmt.Printf("couldn't reach the server (%v) — falling back to the house list.\n", result.Err)
			fallbackEngine, err := pick.New(&staticAdapter{items: search.Fallback()})
			if err != nil {
				fmt.Fprintf(os.Stderr, "engine: %v\n", err)
				return
			}
			fallbackEngine.SetFilters(engine.Filters())
			engine = fallbackEngine
			result = spinFor(ctx, engine.SelectNext)
		}
	}
}

func promptFilters(in *bufio.Scanner, mode string) domain.SearchQuery {
	q := domain.SearchQuery{
		Vibe:   prompt(in, "what are you in the mood for? > "),
		Budget: domain.Budget(promptChoice(in, "budget (low/medium/high)", "low", "medium", "high")),
	}
	if mode == "places" {
		q.LocationText = prompt(in, "where are you? > ")
		q.Transport = domain.Transport(promptChoice(in, "getting there (walking/driving)", "walking", "driving"))
	}
	return q
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !in.Scan() {
		fmt.Println()
		os.Exit(0)
	}
	return strings.ToLower(strings.TrimSpace(in.Text()))
}

func promptChoice(in *bufio.Scanner, label string, choices ...string) string {
	for {
		answer := prompt(in, label+" > ")
		for _, c := range choices {
			if answer == c {
				return c
			}
		}
		fmt.Printf("pick one of: %s\n", strings.Join(choices, ", "))
	}
}

// spinFor runs the selection behind a small slot-machine animation so the
// reveal lands with a beat.
func spinFor(ctx context.Context, sel func(context.Context) pick.Result) pick.Result {
	done := make(chan pick.Result, 1)
	go func() { done <- sel(ctx) }()

	frames := []string{"|", "/", "-", "\\"}
	i := 0
	ticker := time.NewTicker(90 * time.Millisecond)
	defer ticker.Stop()

	deadline := time.After(1200 * time.Millisecond)
	var result pick.Result
	var have bool
	for {
		select {
		case result = <-done:
			have = true
		case <-ticker.C:
			fmt.Printf("\r  %s spinning...", frames[i%len(frames)])
			i++
		case <-deadline:
			if have {
				fmt.Print("\r                 \r")
				return result
			}
			// selection still in flight, keep animating until it lands
			result = <-done
			fmt.Print("\r                 \r")
			return result
		}
	}
}

func printCard(c domain.Candidate) {
	fmt.Println()
	fmt.Printf("  ★ %s\n", c.Name)
	if c.Category != "" {
		fmt.Printf("    %s · %s\n", c.Category, strings.Repeat("$", c.PriceTier+1))
	}
	if c.Rating > 0 {
		fmt.Printf("    %.1f stars (%d ratings)\n", c.Rating, c.RatingCount)
	}
	if c.Address != "" {
		fmt.Printf("    %s\n", c.Address)
	}
	if c.Summary != "" {
		fmt.Printf("    %q\n", c.Summary)
	}
	if len(c.Tags) > 0 {
		fmt.Printf("    %s\n", strings.Join(c.Tags, " · "))
	}
	fmt.Println()
}

// apiAdapter fetches candidate pages from POST /restaurants.
type apiAdapter struct {
	baseURL string
	mode    string
	client  *http.Client
}

type restaurantsResponse struct {
	Restaurants   []domain.Candidate `json:"restaurants"`
	NextPageToken *string            `json:"nextPageToken"`
}

func (a *apiAdapter) FetchPage(ctx context.Context, q domain.SearchQuery, pageToken string) (domain.SearchPage, error) {
	var body any
	if a.mode == "vector" {
		body = map[string]string{
			"vibe":             q.Vibe,
			"price_preference": string(q.Budget),
		}
	} else {
		body = map[string]any{
			"location":  q.LocationText,
			"vibe":      q.Vibe,
			"budget":    string(q.Budget),
			"transport": string(q.Transport),
			"pageToken": pageToken,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("chow: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/restaurants", bytes.NewReader(payload))
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("chow: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("chow: call server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return domain.SearchPage{}, fmt.Errorf("chow: server returned %s", resp.Status)
	}

	var decoded restaurantsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.SearchPage{}, fmt.Errorf("chow: decode response: %w", err)
	}

	page := domain.SearchPage{Items: decoded.Restaurants}
	if decoded.NextPageToken != nil {
		page.NextPageToken = *decoded.NextPageToken
	}
	return page, nil
}

// staticAdapter serves one fixed page; used when the server is unreachable.
type staticAdapter struct {
	items  []domain.Candidate
	served bool
}

func (a *staticAdapter) FetchPage(_ context.Context, _ domain.SearchQuery, _ string) (domain.SearchPage, error) {
	if a.served {
		return domain.SearchPage{}, nil
	}
	a.served = true
	return domain.SearchPage{Items: a.items}, nil
}
